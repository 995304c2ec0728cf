package render

import "github.com/coreman2200/funtimes-treelights/internal/pixel"

// Limiter keeps the strip inside its power supply:
// 1) per-LED white cap: scales (R,G,B) so R+G+B <= WhiteCap (3 = no cap)
// 2) global budget: estimates current and scales the whole frame to stay
// under BudgetMA, starting gently at Knee*BudgetMA.
type Limiter struct {
	WhiteCap float64
	ChanMA   float64 // mA per channel at full scale; APA102 ~ 20
	BudgetMA float64 // 0 disables the global stage
	Knee     float64
}

func DefaultLimiter() Limiter {
	return Limiter{WhiteCap: 3, ChanMA: 20, Knee: 0.9}
}

// Estimate returns the frame's current draw in mA.
func (l Limiter) Estimate(buf *pixel.Buffer) float64 {
	chanMA := l.ChanMA
	if chanMA <= 0 {
		chanMA = 20
	}
	var total float64
	for _, c := range buf.Colors() {
		total += (c.R + c.G + c.B) * chanMA
	}
	return total
}

func (l Limiter) Apply(buf *pixel.Buffer) {
	px := buf.Colors()

	if wc := l.WhiteCap; wc > 0 && wc < 3 {
		for i := range px {
			s := px[i].R + px[i].G + px[i].B
			if s > wc {
				px[i] = px[i].Scale(wc / s)
			}
		}
	}

	if l.BudgetMA <= 0 {
		return
	}
	total := l.Estimate(buf)
	if total <= 0 {
		return
	}
	knee := l.Knee
	if knee <= 0 || knee >= 1 {
		knee = 0.9
	}
	ratio := total / l.BudgetMA
	if ratio <= knee {
		return
	}
	minS := l.BudgetMA / total
	if ratio <= 1 {
		// map ratio in [knee,1] to scale in [1, budget/total]
		t := (ratio - knee) / (1 - knee)
		buf.Scale(1 - t*(1-minS))
		return
	}
	buf.Scale(minS)
}
