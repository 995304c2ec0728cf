package app

const deltaWindow = 60

// SchedulerState is everything the frame loop owns between ticks.
type SchedulerState struct {
	VirtualTime float64 // animation clock, seconds
	Speed       float64 // multiplier on the ideal frame step
	Frame       uint64
	Sync        bool // pace to the target frame rate

	deltas [deltaWindow]float64
	n      int
	next   int
}

func NewSchedulerState(speed float64, sync bool) SchedulerState {
	if speed == 0 {
		speed = 1
	}
	return SchedulerState{Speed: speed, Sync: sync}
}

// ChangeSpeedBy multiplies the speed, snapping back to exactly 1 when it
// lands close, and returns the new speed.
func (s *SchedulerState) ChangeSpeedBy(factor float64) float64 {
	s.Speed *= factor
	if d := s.Speed - 1; d > -0.01 && d < 0.01 {
		s.Speed = 1
	}
	return s.Speed
}

// RecordDelta adds one wall-clock frame time, in seconds, to the window.
func (s *SchedulerState) RecordDelta(d float64) {
	s.deltas[s.next] = d
	s.next = (s.next + 1) % deltaWindow
	if s.n < deltaWindow {
		s.n++
	}
}

// AverageFPS is the frame rate over the last 60 frames, 0 before the first.
func (s *SchedulerState) AverageFPS() float64 {
	var sum float64
	for i := 0; i < s.n; i++ {
		sum += s.deltas[i]
	}
	if s.n == 0 || sum <= 0 {
		return 0
	}
	return float64(s.n) / sum
}
