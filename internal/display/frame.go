package display

import (
	"encoding/json"
	"strings"
)

// FrameSize is the length of one display update.
const FrameSize = 8

// Protocol bytes.
const (
	cmdDecimalControl = 0x77
	cmdCursorControl  = 0x79

	dotColon byte = 0x10
	dotDP4   byte = 0x08

	glyphDash  = '-'
	glyphBlank = 'x' // the module renders 'x' as an unlit digit
)

// Frame is one display update.
type Frame [FrameSize]byte

// newFrame builds a frame from an indicator bitmap and four glyphs.
func newFrame(dots byte, digits [4]byte) Frame {
	return Frame{cmdDecimalControl, dots, cmdCursorControl, 0x00, digits[0], digits[1], digits[2], digits[3]}
}

// Digits returns the four digit glyphs with blanks shown as spaces.
func (f Frame) Digits() string {
	return strings.ReplaceAll(string(f[4:]), string(rune(glyphBlank)), " ")
}

// Colon reports whether the colon is lit.
func (f Frame) Colon() bool { return f[1]&dotColon != 0 }

// DP4 reports whether the health indicator is lit.
func (f Frame) DP4() bool { return f[1]&dotDP4 != 0 }

// MarshalJSON encodes the frame for display mirrors.
func (f Frame) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Digits string `json:"digits"`
		Colon  bool   `json:"colon"`
		DP4    bool   `json:"dp4"`
		Raw    []int  `json:"raw"`
	}{
		Digits: f.Digits(),
		Colon:  f.Colon(),
		DP4:    f.DP4(),
		Raw:    f.raw(),
	})
}

func (f Frame) raw() []int {
	out := make([]int, FrameSize)
	for i, b := range f {
		out[i] = int(b)
	}
	return out
}

// NoTimeFrame is shown before time is known: dashes, indicators off.
func NoTimeFrame() Frame {
	return newFrame(0, [4]byte{glyphDash, glyphDash, glyphDash, glyphDash})
}
