package display

import (
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/netclock/internal/link"
	"github.com/nerrad567/netclock/internal/timesync"
)

// ErrTimeSampleInvalid marks a sample that cannot be shown as time.
var ErrTimeSampleInvalid = errors.New("display: time sample invalid")

// Plausible epoch range. Anything outside is treated as no time.
const (
	minPlausibleEpoch = 1577836800 // 2020-01-01T00:00:00Z
	maxPlausibleEpoch = 4102444800 // 2100-01-01T00:00:00Z
)

// Logger is the logging interface used by the Renderer.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Input is everything one tick reads.
type Input struct {
	Sample    timesync.Sample
	Link      link.State
	UTCOffset int
	Time24    bool
}

// ValidateSample reports whether s carries a usable time.
func ValidateSample(s timesync.Sample) error {
	switch {
	case s.EpochSeconds == 0:
		return fmt.Errorf("%w: no time yet", ErrTimeSampleInvalid)
	case s.EpochSeconds < minPlausibleEpoch || s.EpochSeconds >= maxPlausibleEpoch:
		return fmt.Errorf("%w: implausible epoch %d", ErrTimeSampleInvalid, s.EpochSeconds)
	}
	return nil
}

// Renderer turns inputs into frames. The indicator bitmap carries over
// between ticks so the colon and an unhealthy DP4 blink.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	dots   byte
	logger Logger
}

// NewRenderer creates a renderer with all indicators off.
func NewRenderer(logger Logger) *Renderer {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Renderer{logger: logger}
}

// Render produces the frame for one tick.
func (r *Renderer) Render(in Input) Frame {
	if err := ValidateSample(in.Sample); err != nil {
		return r.noTime()
	}
	local := int64(in.Sample.EpochSeconds) + int64(in.UTCOffset)
	if local < 0 {
		return r.noTime()
	}

	r.dots ^= dotColon
	switch {
	case in.Link == link.Disconnected:
		r.dots &^= dotDP4
	case in.Sample.SessionHealthy:
		r.dots |= dotDP4
	default:
		r.dots ^= dotDP4
	}

	digits := formatClock(local, in.Time24)
	if local%60 == 0 {
		r.logger.Debug("time", "display", string(digits[:]))
	}
	return newFrame(r.dots, digits)
}

func (r *Renderer) noTime() Frame {
	r.dots &^= dotColon | dotDP4
	return NoTimeFrame()
}

// formatClock renders HHMM of the UTC time local seconds after the epoch.
// In 12-hour mode hours run 1-12 and a leading zero is blanked.
func formatClock(local int64, time24 bool) [4]byte {
	t := time.Unix(local, 0).UTC()
	hour, minute := t.Hour(), t.Minute()

	var d [4]byte
	if time24 {
		d[0] = byte('0' + hour/10)
	} else {
		hour %= 12
		if hour == 0 {
			hour = 12
		}
		d[0] = glyphBlank
		if hour >= 10 {
			d[0] = '1'
		}
	}
	d[1] = byte('0' + hour%10)
	d[2] = byte('0' + minute/10)
	d[3] = byte('0' + minute%10)
	return d
}
