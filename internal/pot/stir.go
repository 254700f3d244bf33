package pot

import "github.com/hammamikhairi/ottokitchen/internal/domain"

// DefaultStirThreshold is the pot displacement that counts as a stir.
const DefaultStirThreshold = 0.5

// StirDetector turns pot movement into stir signals. The reference point
// only moves when a stir is detected, so slow drags accumulate.
type StirDetector struct {
	Threshold float64
	last      domain.Vec2
}

// NewStirDetector creates a detector anchored at the pot's resting position.
func NewStirDetector(threshold float64, origin domain.Vec2) *StirDetector {
	if threshold <= 0 {
		threshold = DefaultStirThreshold
	}
	return &StirDetector{Threshold: threshold, last: origin}
}

// Moved reports whether pos is farther than the threshold from the last
// stir position.
func (d *StirDetector) Moved(pos domain.Vec2) bool {
	if pos.Dist(d.last) <= d.Threshold {
		return false
	}
	d.last = pos
	return true
}

// Reset re-anchors the detector.
func (d *StirDetector) Reset(pos domain.Vec2) {
	d.last = pos
}
