package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestLoadKeepsDefaults(t *testing.T) {
	p := writeFile(t, "config.yaml", "fps: 30\nencoding:\n  policy: adaptive\n")
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 30, c.FPS)
	assert.Equal(t, "adaptive", c.Encoding.Policy)
	assert.Equal(t, 2.5, c.Encoding.Gamma)
	assert.Equal(t, 15, c.Scheduler.ShutdownSteps)
	assert.NoError(t, c.Validate())
}

func TestSaveLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	c := Default()
	c.Scripts = map[string]string{"glow": "function render(t) end"}
	require.NoError(t, Save(p, c))
	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"driver":              func(c *Config) { c.Driver = "pwm" },
		"follow":              func(c *Config) { c.Role = "follower" },
		"fps":                 func(c *Config) { c.FPS = 0 },
		"encoding.brightness": func(c *Config) { c.Encoding.Brightness = 40 },
		"scheduler.hold":      func(c *Config) { c.Scheduler.HoldMaxS = 1 },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			c := Default()
			mutate(c)
			var verr *ValidationError
			require.True(t, errors.As(c.Validate(), &verr))
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestDefaultCalibration(t *testing.T) {
	c, err := LoadCalibration("")
	require.NoError(t, err)
	s, err := c.Samples()
	require.NoError(t, err)
	assert.Len(t, s, 11)
	assert.Equal(t, 180.0, s[0])
	assert.Equal(t, 0.0, s[527])
	assert.Equal(t, 180.0, s[900])
}

func TestLoadCalibration(t *testing.T) {
	p := writeFile(t, "geometry.yaml", "pixels:\n  count: 20\n  angles:\n    90: [0]\n    270: [10]\n")
	c, err := LoadCalibration(p)
	require.NoError(t, err)
	s, _ := c.Samples()
	assert.Equal(t, map[int]float64{0: 90, 10: 270}, s)
}

func TestLoadCalibrationErrors(t *testing.T) {
	bad := map[string]string{
		"missing":   "",
		"garbage":   "pixels: [",
		"count":     "pixels:\n  angles:\n    0: [1]\n",
		"empty":     "pixels:\n  count: 10\n",
		"range":     "pixels:\n  count: 10\n  angles:\n    0: [11]\n",
		"duplicate": "pixels:\n  count: 10\n  angles:\n    0: [3]\n    90: [3]\n",
	}
	for name, body := range bad {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "nope.yaml")
			if body != "" {
				p = writeFile(t, "geometry.yaml", body)
			}
			_, err := LoadCalibration(p)
			var verr *ValidationError
			assert.True(t, errors.As(err, &verr), "got %v", err)
		})
	}
}
