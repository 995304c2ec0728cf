// Package diagnostics holds the payloads pushed to the diag socket.
package diagnostics

import (
	"fmt"
	"time"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes raised by the frame loop.
const (
	CodeFrameLag   = "FRAME.LAG"
	CodeFrameRate  = "FRAME.RATE"
	CodeHardware   = "LED.WRITE"
	CodeBadMessage = "MSG.MALFORMED"
	CodeUnknown    = "MSG.UNKNOWN"
	CodeScene      = "SCENE.SELECT"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

func New(sev Severity, code, summary string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Summary: summary}
}

// With returns d with one more evidence entry.
func (d Diagnostic) With(key string, v any) Diagnostic {
	ev := make(map[string]any, len(d.Evidence)+1)
	for k, x := range d.Evidence {
		ev[k] = x
	}
	ev[key] = v
	d.Evidence = ev
	return d
}

// Hardware reports a strip write that failed after every retry.
func Hardware(err error) Diagnostic {
	d := New(Err, CodeHardware, "strip write failed").With("error", err.Error())
	d.Detail = "the transmission worker gave up on a frame and the frame loop is stopping"
	d.LikelyCauses = []string{
		"SPI device missing or not enabled",
		"no permission on the spidev node",
		"strip power or data line disconnected",
	}
	d.SuggestedFixes = []string{
		"enable SPI and check the configured spi.dev exists",
		"run with access to the spidev group",
		"try driver sim to rule out the hardware",
	}
	return d
}

// FrameLag reports a frame that took longer than its period.
func FrameLag(took, period time.Duration) Diagnostic {
	d := New(Warn, CodeFrameLag, "frame lagging").
		With("ms", took.Milliseconds()).
		With("budget_ms", period.Milliseconds())
	d.Detail = fmt.Sprintf("frame took %s of a %s period", took, period)
	d.LikelyCauses = []string{
		"scene too heavy for the host",
		"SPI clock too slow for the strip length",
	}
	d.SuggestedFixes = []string{
		"lower fps",
		"raise spi.speed_hz",
	}
	return d
}

// Sink receives diagnostics. A nil Sink drops them.
type Sink interface {
	PushDiag(d Diagnostic)
}
