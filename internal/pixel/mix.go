package pixel

// Mix blends two framebuffers (a,b) into dst using alpha (0..1).
// Channels are linear; no gamma assumed. dst may alias a or b.
func Mix(dst, a, b *Buffer, alpha float64) {
	if alpha <= 0 {
		copy(dst.px, a.px)
		return
	}
	if alpha >= 1 {
		copy(dst.px, b.px)
		return
	}
	af := 1.0 - alpha
	n := len(dst.px)
	for i := 0; i < n; i++ {
		dst.px[i].R = a.px[i].R*af + b.px[i].R*alpha
		dst.px[i].G = a.px[i].G*af + b.px[i].G*alpha
		dst.px[i].B = a.px[i].B*af + b.px[i].B*alpha
	}
}
