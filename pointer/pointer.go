// Package pointer reads mouse and touch input from Ebitengine and turns it
// into loupe samples.
package pointer

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/loupe"
)

const maxTouches = 10

// Source polls Ebitengine once per tick and produces loupe.Sample values.
// Touches keep a stable slot for as long as they are down, so the two
// pointers of a pinch never swap places between frames. The left mouse
// button acts as a single touch when no finger is down.
type Source struct {
	ticks  uint64
	offset time.Duration

	touchIDs  []ebiten.TouchID
	touchMap  [maxTouches]ebiten.TouchID
	touchUsed [maxTouches]bool

	last loupe.Sample
}

// NewSource creates a Source.
func NewSource() *Source {
	return &Source{}
}

func (s *Source) now() time.Duration {
	return s.offset + time.Duration(s.ticks)*time.Second/time.Duration(ebiten.TPS())
}

// SkipTo moves the source's clock so that the next sample is stamped after
// t. Call it with Viewer.InputClock after injecting gestures.
func (s *Source) SkipTo(t time.Duration) {
	if now := s.now(); now < t {
		s.offset += t - now
	}
}

// Poll reads the current input state. Call it exactly once per Update. It
// returns false when nothing changed since the previous call.
func (s *Source) Poll() (loupe.Sample, bool) {
	s.ticks++
	t := s.now()

	s.touchIDs = ebiten.AppendTouchIDs(s.touchIDs[:0])
	var active [maxTouches]bool
	var positions [maxTouches]loupe.Vec2
	for _, tid := range s.touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true
		x, y := ebiten.TouchPosition(tid)
		positions[slot] = loupe.Vec2{X: float64(x), Y: float64(y)}
	}
	s.releaseSlots(active)

	points := make([]loupe.Vec2, 0, 2)
	for i := 0; i < maxTouches; i++ {
		if active[i] {
			points = append(points, positions[i])
		}
	}
	if len(points) == 0 && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		points = append(points, loupe.Vec2{X: float64(mx), Y: float64(my)})
	}
	return s.collect(points, t)
}

// Wheel returns the vertical wheel delta and the cursor position.
func Wheel() (dy, x, y float64) {
	_, dy = ebiten.Wheel()
	mx, my := ebiten.CursorPosition()
	return dy, float64(mx), float64(my)
}

// collect builds a sample from the pointers currently down, ordered by slot.
// A release repeats the previous positions so the final point is known.
func (s *Source) collect(points []loupe.Vec2, t time.Duration) (loupe.Sample, bool) {
	sample := loupe.Sample{Count: len(points), T: t}
	if len(points) == 0 {
		sample.Points = s.last.Points
	}
	for i := 0; i < len(points) && i < 2; i++ {
		sample.Points[i] = points[i]
	}

	if sample.Count == s.last.Count && sample.Points == s.last.Points {
		return sample, false
	}
	s.last = sample
	return sample, true
}

// touchSlot maps a touch ID to a slot, allocating one if needed. Returns -1
// if every slot is taken.
func (s *Source) touchSlot(tid ebiten.TouchID) int {
	for i := 0; i < maxTouches; i++ {
		if s.touchUsed[i] && s.touchMap[i] == tid {
			return i
		}
	}
	for i := 0; i < maxTouches; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// releaseSlots frees slots whose touch was not seen this tick.
func (s *Source) releaseSlots(active [maxTouches]bool) {
	for i := 0; i < maxTouches; i++ {
		if s.touchUsed[i] && !active[i] {
			s.touchUsed[i] = false
			s.touchMap[i] = 0
		}
	}
}
