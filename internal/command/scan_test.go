package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{" 1", 1, true},
		{"1", 1, true},
		{" -18000", -18000, true},
		{"\t+42", 42, true},
		{" 12abc", 12, true},
		{" 0", 0, true},
		{"", 0, false},
		{"   ", 0, false},
		{" -", 0, false},
		{" x1", 0, false},
		{" - 1", 0, false},
		{" 99999999999999999999999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := scanInt(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
