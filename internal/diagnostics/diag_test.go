package diagnostics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHardwareExplains(t *testing.T) {
	d := Hardware(errors.New("spi gone"))
	assert.Equal(t, Err, d.Severity)
	assert.Equal(t, CodeHardware, d.Code)
	assert.Equal(t, "spi gone", d.Evidence["error"])
	assert.NotEmpty(t, d.Detail)
	assert.NotEmpty(t, d.LikelyCauses)
	assert.NotEmpty(t, d.SuggestedFixes)
}

func TestFrameLag(t *testing.T) {
	d := FrameLag(40*time.Millisecond, 16*time.Millisecond)
	assert.Equal(t, CodeFrameLag, d.Code)
	assert.Equal(t, int64(40), d.Evidence["ms"])
	assert.Equal(t, int64(16), d.Evidence["budget_ms"])
	assert.Contains(t, d.Detail, "40ms")
	assert.Len(t, d.SuggestedFixes, 2)
}

func TestWithCopiesEvidence(t *testing.T) {
	a := New(Info, CodeFrameRate, "frame rate").With("fps", 60.0)
	b := a.With("extra", 1)
	assert.Len(t, a.Evidence, 1)
	assert.Len(t, b.Evidence, 2)
}
