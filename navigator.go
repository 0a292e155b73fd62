package loupe

import (
	"math"

	"github.com/tanema/gween"
)

// NavState is the paging state of a Navigator.
type NavState uint8

const (
	NavAtRest     NavState = iota // track aligned with the current index
	NavDragging                   // a swipe is moving the track
	NavSettling                   // snapping back to the current index; a new swipe may interrupt
	NavCommitting                 // animating to a newly committed index; swipes are ignored
)

// String returns the state name.
func (s NavState) String() string {
	switch s {
	case NavAtRest:
		return "at-rest"
	case NavDragging:
		return "dragging"
	case NavSettling:
		return "settling"
	case NavCommitting:
		return "committing"
	default:
		return "unknown"
	}
}

// Navigator pages a horizontal slide track. It turns swipe events into
// index commits or snap-backs and animates the track offset.
type Navigator struct {
	cfg   *Config
	index int
	total int
	width float64

	state  NavState
	offset float64 // track displacement relative to index
	anchor float64 // offset when the current swipe started
	tween  *gween.Tween
}

// NewNavigator creates a Navigator over total slides starting at index.
func NewNavigator(total, index int, cfg Config) *Navigator {
	c := cfg.withDefaults()
	return newNavigator(&c, total, index)
}

func newNavigator(cfg *Config, total, index int) *Navigator {
	return &Navigator{cfg: cfg, total: total, index: index}
}

// Index returns the current slide index.
func (n *Navigator) Index() int { return n.index }

// Total returns the number of slides.
func (n *Navigator) Total() int { return n.total }

// State returns the paging state.
func (n *Navigator) State() NavState { return n.state }

// DragOffset returns the track displacement relative to the current index.
func (n *Navigator) DragOffset() float64 { return n.offset }

// Animating reports whether a settle, commit, or jump animation is running.
func (n *Navigator) Animating() bool { return n.tween != nil }

// SetViewportWidth sets the page width. Outside a drag, any animation is
// dropped and the track realigns with the current index.
func (n *Navigator) SetViewportWidth(w float64) {
	n.width = w
	if n.state != NavDragging {
		n.settleNow()
	}
}

// Reset moves to index immediately, discarding drag and animation state.
func (n *Navigator) Reset(index int) {
	n.index = index
	n.settleNow()
}

func (n *Navigator) settleNow() {
	n.tween = nil
	n.offset = 0
	n.state = NavAtRest
}

// Handle applies a swipe event. When the event commits a navigation it
// returns the previous index and true; the new index is Index(). A commit is
// reported exactly once.
func (n *Navigator) Handle(ev Event) (from int, committed bool) {
	switch ev.Type {
	case EventSwipeStart:
		if n.state == NavCommitting {
			return n.index, false
		}
		n.tween = nil
		n.anchor = n.offset
		n.state = NavDragging
		n.offset = n.drag(n.anchor + ev.OffsetX)
	case EventSwipeMove:
		if n.state == NavDragging {
			n.offset = n.drag(n.anchor + ev.OffsetX)
		}
	case EventSwipeEnd:
		if n.state == NavDragging {
			n.offset = n.drag(n.anchor + ev.OffsetX)
			return n.release(n.anchor+ev.OffsetX, ev.VelocityX, ev.Cancelled)
		}
	}
	return n.index, false
}

// drag damps a raw track offset: limited to one page either way, with
// elastic resistance past the first and last slide.
func (n *Navigator) drag(raw float64) float64 {
	if n.width > 0 {
		raw = math.Max(-n.width, math.Min(raw, n.width))
	}
	if (n.index == 0 && raw > 0) || (n.index == n.total-1 && raw < 0) {
		return raw * n.cfg.Damping
	}
	return raw
}

// direction decides the swipe outcome: +1 for the next slide, -1 for the
// previous one, 0 to snap back. A flick past the velocity threshold decides
// on its own; otherwise the distance does.
func (n *Navigator) direction(final, velocity float64) int {
	vt := n.cfg.SwipeVelocityThreshold
	switch {
	case velocity < -vt:
		return 1
	case velocity > vt:
		return -1
	}
	if n.width <= 0 {
		return 0
	}
	threshold := n.width * n.cfg.SwipeCommitThreshold
	switch {
	case final < -threshold:
		return 1
	case final > threshold:
		return -1
	}
	return 0
}

func (n *Navigator) release(final, velocity float64, cancelled bool) (int, bool) {
	from := n.index
	dir := 0
	if !cancelled {
		dir = n.direction(final, velocity)
	}
	to := from + dir
	if to < 0 || to >= n.total {
		dir = 0
		to = from
	}

	if dir == 0 {
		n.cfg.Logger.Debug("loupe: snap back", "index", from, "offset", final, "velocity", velocity)
		n.animate(NavSettling)
		return from, false
	}

	n.cfg.Logger.Debug("loupe: commit", "from", from, "to", to, "offset", final, "velocity", velocity)
	n.moveTo(to)
	n.animate(NavCommitting)
	return from, true
}

// moveTo changes the index while keeping the track visually in place.
func (n *Navigator) moveTo(index int) {
	n.offset += float64(index-n.index) * n.width
	n.index = index
}

// animate tweens the offset back to zero, entering state while it runs.
func (n *Navigator) animate(state NavState) {
	d := n.cfg.transitionSeconds()
	if d <= 0 || n.offset == 0 {
		n.settleNow()
		return
	}
	n.tween = gween.New(float32(n.offset), 0, d, n.cfg.EaseFunc)
	n.state = state
}

// JumpTo moves to index. With immediate the track snaps; otherwise it
// animates from wherever it currently is. The caller validates index.
func (n *Navigator) JumpTo(index int, immediate bool) {
	n.tween = nil
	n.moveTo(index)
	if immediate {
		n.settleNow()
		return
	}
	n.animate(NavCommitting)
}

// Advance moves the track animation forward by dt seconds. It reports
// whether an animation was running.
func (n *Navigator) Advance(dt float32) bool {
	if n.tween == nil {
		return false
	}
	val, done := n.tween.Update(dt)
	n.offset = float64(val)
	if done {
		n.settleNow()
	}
	return true
}
