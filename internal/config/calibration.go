package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Calibration is the geometry file: the angle (degrees) measured at a few
// pixel indices along the strip.
//
//	pixels:
//	  count: 900
//	  angles:
//	    180: [0, 900]
//	    0: [120, 336]
type Calibration struct {
	Pixels struct {
		Count  int               `yaml:"count"`
		Angles map[float64][]int `yaml:"angles"`
	} `yaml:"pixels"`
}

// DefaultCalibration is the tree as measured: the strip starts at the bottom
// facing 180 degrees and winds up in ever tighter turns.
func DefaultCalibration() *Calibration {
	c := &Calibration{}
	c.Pixels.Count = 900
	c.Pixels.Angles = map[float64][]int{
		180: {0, 900},
		0:   {120, 336, 527, 648, 737, 814, 862, 876, 886},
	}
	return c
}

// LoadCalibration reads a geometry file. An empty path selects the built-in
// table. The result is already validated.
func LoadCalibration(path string) (*Calibration, error) {
	if path == "" {
		return DefaultCalibration(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, invalid("geometry", "%v", err)
	}
	c := &Calibration{}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, invalid("geometry", "parse %s: %v", path, err)
	}
	if _, err := c.Samples(); err != nil {
		return nil, err
	}
	return c, nil
}

// Samples flattens the angle table into index -> angle.
func (c *Calibration) Samples() (map[int]float64, error) {
	if c.Pixels.Count <= 0 {
		return nil, invalid("geometry.pixels.count", "must be positive")
	}
	if len(c.Pixels.Angles) == 0 {
		return nil, invalid("geometry.pixels.angles", "no samples")
	}
	// iterate angles in order so duplicate reports are stable
	angles := make([]float64, 0, len(c.Pixels.Angles))
	for a := range c.Pixels.Angles {
		angles = append(angles, a)
	}
	sort.Float64s(angles)

	out := make(map[int]float64)
	for _, a := range angles {
		for _, i := range c.Pixels.Angles[a] {
			if i < 0 || i > c.Pixels.Count {
				return nil, invalid("geometry.pixels.angles", "index %d outside 0..%d", i, c.Pixels.Count)
			}
			if prev, ok := out[i]; ok && prev != a {
				return nil, invalid("geometry.pixels.angles", "index %d sampled at both %g and %g", i, prev, a)
			}
			out[i] = a
		}
	}
	return out, nil
}

func (c *Calibration) String() string {
	n := 0
	for _, idx := range c.Pixels.Angles {
		n += len(idx)
	}
	return fmt.Sprintf("%d pixels, %d samples", c.Pixels.Count, n)
}
