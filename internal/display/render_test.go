package display

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/netclock/internal/link"
	"github.com/nerrad567/netclock/internal/timesync"
)

// 2026-10-15 20:07:00 UTC.
var refTime = time.Date(2026, 10, 15, 20, 7, 0, 0, time.UTC)

func sampleAt(t time.Time, healthy bool) timesync.Sample {
	return timesync.Sample{EpochSeconds: uint64(t.Unix()), SessionHealthy: healthy}
}

func TestRender_NoTimeRegardlessOfLink(t *testing.T) {
	for _, state := range []link.State{link.Disconnected, link.Associated, link.SessionUp} {
		t.Run(state.String(), func(t *testing.T) {
			r := NewRenderer(nil)
			// Light the indicators first so the reset is observable.
			r.Render(Input{Sample: sampleAt(refTime, true), Link: link.SessionUp})

			f := r.Render(Input{Sample: timesync.Sample{SessionHealthy: true}, Link: state})
			assert.Equal(t, NoTimeFrame(), f)
			assert.Equal(t, "----", f.Digits())
			assert.False(t, f.Colon())
			assert.False(t, f.DP4())
		})
	}
}

func TestRender_ImplausibleEpochIsNoTime(t *testing.T) {
	tests := []struct {
		name   string
		epoch  uint64
		offset int
	}{
		{"1970", 1, 0},
		{"before 2020", uint64(time.Date(2019, 12, 31, 23, 59, 59, 0, time.UTC).Unix()), 0},
		{"year 2100", uint64(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC).Unix()), 0},
		{"max uint64", ^uint64(0), 0},
		{"negative after offset", uint64(refTime.Unix()), -2_000_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(nil)
			f := r.Render(Input{Sample: timesync.Sample{EpochSeconds: tt.epoch}, Link: link.SessionUp, UTCOffset: tt.offset})
			assert.Equal(t, NoTimeFrame(), f)
		})
	}
}

func TestValidateSample(t *testing.T) {
	assert.ErrorIs(t, ValidateSample(timesync.Sample{}), ErrTimeSampleInvalid)
	assert.ErrorIs(t, ValidateSample(timesync.Sample{EpochSeconds: 42}), ErrTimeSampleInvalid)
	assert.NoError(t, ValidateSample(sampleAt(refTime, false)))
}

func TestRender_FrameLayout(t *testing.T) {
	r := NewRenderer(nil)
	f := r.Render(Input{Sample: sampleAt(refTime, true), Link: link.SessionUp, Time24: true})

	assert.Equal(t, Frame{0x77, 0x18, 0x79, 0x00, '2', '0', '0', '7'}, f)
}

func TestRender_UTCOffset(t *testing.T) {
	r := NewRenderer(nil)
	f := r.Render(Input{Sample: sampleAt(refTime, true), Link: link.SessionUp, UTCOffset: -28800, Time24: true})

	assert.Equal(t, "1207", f.Digits())
}

func TestRender_ColonBlinks(t *testing.T) {
	r := NewRenderer(nil)
	in := Input{Sample: sampleAt(refTime, true), Link: link.SessionUp}

	var got []bool
	for range 4 {
		got = append(got, r.Render(in).Colon())
	}
	assert.Equal(t, []bool{true, false, true, false}, got)
}

func TestRender_DP4(t *testing.T) {
	t.Run("solid when healthy", func(t *testing.T) {
		r := NewRenderer(nil)
		in := Input{Sample: sampleAt(refTime, true), Link: link.SessionUp}
		for range 3 {
			assert.True(t, r.Render(in).DP4())
		}
	})

	t.Run("blinks when unhealthy", func(t *testing.T) {
		r := NewRenderer(nil)
		in := Input{Sample: sampleAt(refTime, false), Link: link.Associated}
		assert.True(t, r.Render(in).DP4())
		assert.False(t, r.Render(in).DP4())
		assert.True(t, r.Render(in).DP4())
	})

	t.Run("off without address", func(t *testing.T) {
		r := NewRenderer(nil)
		r.Render(Input{Sample: sampleAt(refTime, true), Link: link.SessionUp})
		f := r.Render(Input{Sample: sampleAt(refTime, true), Link: link.Disconnected})
		assert.False(t, f.DP4())
		assert.Equal(t, " 807", f.Digits(), "time still shown")
	})
}

func TestFormatClock_24Hour(t *testing.T) {
	for hour := range 24 {
		t.Run(fmt.Sprintf("h%02d", hour), func(t *testing.T) {
			ts := time.Date(2026, 1, 1, hour, 5, 0, 0, time.UTC).Unix()
			d := formatClock(ts, true)
			assert.Equal(t, fmt.Sprintf("%02d05", hour), string(d[:]))
		})
	}
}

func TestFormatClock_12Hour(t *testing.T) {
	for hour := range 24 {
		t.Run(fmt.Sprintf("h%02d", hour), func(t *testing.T) {
			ts := time.Date(2026, 1, 1, hour, 59, 0, 0, time.UTC).Unix()
			d := formatClock(ts, false)

			want := hour % 12
			if want == 0 {
				want = 12
			}
			var shown int
			if d[0] == glyphBlank {
				_, err := fmt.Sscanf(string(d[1:2]), "%d", &shown)
				require.NoError(t, err)
			} else {
				_, err := fmt.Sscanf(string(d[:2]), "%d", &shown)
				require.NoError(t, err)
				assert.NotEqual(t, byte('0'), d[0], "leading zero is blanked, never printed")
			}
			assert.Equal(t, want, shown)
			assert.GreaterOrEqual(t, shown, 1)
			assert.LessOrEqual(t, shown, 12)
			assert.Equal(t, "59", string(d[2:]))
		})
	}
}

func TestRender_12HourDigits(t *testing.T) {
	r := NewRenderer(nil)
	f := r.Render(Input{Sample: sampleAt(refTime, true), Link: link.SessionUp})
	assert.Equal(t, " 807", f.Digits())
	assert.Equal(t, byte('x'), f[4])
}

type recordingLogger struct{ msgs []string }

func (l *recordingLogger) Debug(msg string, args ...any) {
	l.msgs = append(l.msgs, fmt.Sprint(append([]any{msg}, args...)...))
}

func TestRender_LogsOncePerMinute(t *testing.T) {
	logger := &recordingLogger{}
	r := NewRenderer(logger)

	for i := range 120 {
		ts := refTime.Add(time.Duration(i) * time.Second)
		r.Render(Input{Sample: sampleAt(ts, true), Link: link.SessionUp, Time24: true})
	}
	assert.Len(t, logger.msgs, 2)
}

func TestFrameJSON(t *testing.T) {
	b, err := NoTimeFrame().MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"digits":"----","colon":false,"dp4":false,"raw":[119,0,121,0,45,45,45,45]}`, string(b))
}
