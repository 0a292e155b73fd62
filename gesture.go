package loupe

import (
	"math"
	"time"
)

// Sample is one normalized pointer reading. Points[0] is the primary pointer;
// Points[1] is meaningful only when Count >= 2. A sample with Count 0 is a
// release and carries the final position of the last pointer in Points[0].
type Sample struct {
	Points [2]Vec2
	Count  int
	T      time.Duration
}

// Touch returns a single-pointer sample.
func Touch(x, y float64, t time.Duration) Sample {
	return Sample{Points: [2]Vec2{{x, y}}, Count: 1, T: t}
}

// Touch2 returns a two-pointer sample.
func Touch2(x0, y0, x1, y1 float64, t time.Duration) Sample {
	return Sample{Points: [2]Vec2{{x0, y0}, {x1, y1}}, Count: 2, T: t}
}

// Release returns a sample with no pointers down, lifted at (x, y).
func Release(x, y float64, t time.Duration) Sample {
	return Sample{Points: [2]Vec2{{x, y}}, T: t}
}

// Event is a discrete gesture recognised from a sample stream.
type Event struct {
	Type EventType

	// X and Y are the pointer position, or the pinch midpoint.
	X, Y float64
	// DeltaX and DeltaY are the movement since the previous event of the
	// same gesture.
	DeltaX, DeltaY float64
	// OffsetX and OffsetY are the movement since the gesture's pointer went
	// down (pinch: since pinch start).
	OffsetX, OffsetY float64

	// Scale is the pinch distance ratio to the previous pinch sample.
	Scale float64

	// VelocityX and VelocityY are in px/s, set on pan and swipe ends.
	VelocityX, VelocityY float64

	// Cancelled marks an *End event caused by a pointer-count change rather
	// than a release. Consumers should not treat it as a deliberate fling.
	Cancelled bool

	T time.Duration
}

type timedPoint struct {
	t    time.Duration
	x, y float64
}

// GestureTracker turns pointer samples into gesture events. It is not safe
// for concurrent use; feed it from one goroutine in arrival order.
type GestureTracker struct {
	cfg *Config

	phase   GesturePhase
	started bool
	lastT   time.Duration
	held    int // pointer count of the last accepted sample

	startX, startY float64
	startT         time.Duration
	lastX, lastY   float64
	noTap          bool

	history []timedPoint

	pinchPrevDist float64
	pinchPrevMid  Vec2
	pinchStartMid Vec2

	hasTap     bool
	tapT       time.Duration
	tapX, tapY float64
}

// NewGestureTracker creates a tracker using cfg's thresholds. Zero fields of
// cfg fall back to defaults.
func NewGestureTracker(cfg Config) *GestureTracker {
	c := cfg.withDefaults()
	return newGestureTracker(&c)
}

func newGestureTracker(cfg *Config) *GestureTracker {
	return &GestureTracker{cfg: cfg, history: make([]timedPoint, 0, 16)}
}

// Phase returns the gesture currently in progress.
func (g *GestureTracker) Phase() GesturePhase {
	return g.phase
}

// LastTime returns the timestamp of the last accepted sample.
func (g *GestureTracker) LastTime() time.Duration {
	return g.lastT
}

// Reset abandons the gesture in progress without emitting an end event.
// Pointers still down are treated as fresh presses on their next sample,
// and those presses never produce a tap.
func (g *GestureTracker) Reset() {
	g.phase = PhaseIdle
	g.history = g.history[:0]
	g.hasTap = false
	g.noTap = false
}

// Track consumes one sample and returns the event it produces. zoomed
// reports whether the slide under the gesture is zoomed past MinScale; it is
// read only when a single-pointer drag starts.
func (g *GestureTracker) Track(s Sample, zoomed bool) Event {
	if g.started && s.T <= g.lastT {
		g.cfg.Logger.Debug("loupe: dropped out-of-order sample", "t", s.T, "last", g.lastT)
		return Event{}
	}
	g.started = true
	g.lastT = s.T

	count := min(max(s.Count, 0), 2)
	prev := g.held
	g.held = count

	switch g.phase {
	case PhasePinching:
		return g.trackPinch(s, count)
	case PhasePanning, PhaseSwiping:
		return g.trackDrag(s, count)
	case PhaseTapping:
		return g.trackPending(s, count, zoomed)
	default:
		switch count {
		case 1:
			g.press(s, prev > 0)
		case 2:
			return g.startPinch(s)
		}
		return Event{}
	}
}

// press begins a single-pointer gesture at the sample's primary point.
func (g *GestureTracker) press(s Sample, noTap bool) {
	p := s.Points[0]
	g.phase = PhaseTapping
	g.startX, g.startY = p.X, p.Y
	g.lastX, g.lastY = p.X, p.Y
	g.startT = s.T
	g.noTap = noTap
	g.history = append(g.history[:0], timedPoint{s.T, p.X, p.Y})
}

func (g *GestureTracker) trackPending(s Sample, count int, zoomed bool) Event {
	p := s.Points[0]
	switch count {
	case 0:
		g.phase = PhaseIdle
		return g.release(s)
	case 2:
		return g.startPinch(s)
	}

	g.record(s.T, p.X, p.Y)
	dx := p.X - g.startX
	dy := p.Y - g.startY
	if math.Hypot(dx, dy) <= g.cfg.TapSlop {
		g.lastX, g.lastY = p.X, p.Y
		return Event{}
	}

	g.hasTap = false
	typ := EventSwipeStart
	g.phase = PhaseSwiping
	if zoomed {
		typ = EventPanStart
		g.phase = PhasePanning
	}
	ev := g.dragEvent(typ, s.T, p)
	g.lastX, g.lastY = p.X, p.Y
	return ev
}

// release resolves a press that never became a drag into a tap, a double
// tap, or nothing.
func (g *GestureTracker) release(s Sample) Event {
	p := s.Points[0]
	if g.noTap || s.T-g.startT > g.cfg.TapTimeout ||
		math.Hypot(p.X-g.startX, p.Y-g.startY) > g.cfg.TapSlop {
		g.hasTap = false
		return Event{}
	}

	if g.hasTap && s.T-g.tapT <= g.cfg.DoubleTapTimeout &&
		math.Hypot(p.X-g.tapX, p.Y-g.tapY) <= g.cfg.DoubleTapSlop {
		g.hasTap = false
		return Event{Type: EventDoubleTap, X: p.X, Y: p.Y, T: s.T}
	}

	g.hasTap = true
	g.tapT = s.T
	g.tapX, g.tapY = p.X, p.Y
	return Event{Type: EventTap, X: p.X, Y: p.Y, T: s.T}
}

func (g *GestureTracker) trackDrag(s Sample, count int) Event {
	p := s.Points[0]
	moveType, endType := EventSwipeMove, EventSwipeEnd
	if g.phase == PhasePanning {
		moveType, endType = EventPanMove, EventPanEnd
	}

	if count != 1 {
		// Release, or a second pointer arrived: end the drag either way.
		// A new pinch starts on the next two-pointer sample.
		g.record(s.T, p.X, p.Y)
		ev := g.dragEvent(endType, s.T, p)
		ev.VelocityX, ev.VelocityY = g.velocity()
		ev.Cancelled = count == 2
		g.phase = PhaseIdle
		g.history = g.history[:0]
		return ev
	}

	if p.X == g.lastX && p.Y == g.lastY {
		return Event{}
	}
	g.record(s.T, p.X, p.Y)
	ev := g.dragEvent(moveType, s.T, p)
	g.lastX, g.lastY = p.X, p.Y
	return ev
}

func (g *GestureTracker) dragEvent(typ EventType, t time.Duration, p Vec2) Event {
	return Event{
		Type: typ,
		X:    p.X, Y: p.Y,
		DeltaX: p.X - g.lastX, DeltaY: p.Y - g.lastY,
		OffsetX: p.X - g.startX, OffsetY: p.Y - g.startY,
		T: t,
	}
}

func pinchGeometry(s Sample) (mid Vec2, dist float64) {
	a, b := s.Points[0], s.Points[1]
	mid = Vec2{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
	dist = math.Hypot(b.X-a.X, b.Y-a.Y)
	return mid, dist
}

func (g *GestureTracker) startPinch(s Sample) Event {
	mid, dist := pinchGeometry(s)
	g.phase = PhasePinching
	g.history = g.history[:0]
	g.hasTap = false
	g.pinchPrevDist = dist
	g.pinchPrevMid = mid
	g.pinchStartMid = mid
	return Event{Type: EventPinchStart, X: mid.X, Y: mid.Y, Scale: 1, T: s.T}
}

func (g *GestureTracker) trackPinch(s Sample, count int) Event {
	if count < 2 {
		mid := g.pinchPrevMid
		g.phase = PhaseIdle
		if count == 1 {
			// The remaining pointer starts over; it may drag but never taps.
			g.press(s, true)
		}
		return Event{
			Type: EventPinchEnd,
			X:    mid.X, Y: mid.Y,
			OffsetX: mid.X - g.pinchStartMid.X, OffsetY: mid.Y - g.pinchStartMid.Y,
			Scale: 1,
			T:     s.T,
		}
	}

	mid, dist := pinchGeometry(s)
	floor := g.cfg.MinPinchDistance
	ratio := math.Max(dist, floor) / math.Max(g.pinchPrevDist, floor)
	if !finite(ratio) || ratio <= 0 {
		ratio = 1
	}
	if ratio == 1 && mid == g.pinchPrevMid {
		return Event{}
	}

	ev := Event{
		Type: EventPinchMove,
		X:    mid.X, Y: mid.Y,
		DeltaX: mid.X - g.pinchPrevMid.X, DeltaY: mid.Y - g.pinchPrevMid.Y,
		OffsetX: mid.X - g.pinchStartMid.X, OffsetY: mid.Y - g.pinchStartMid.Y,
		Scale: ratio,
		T:     s.T,
	}
	g.pinchPrevDist = dist
	g.pinchPrevMid = mid
	return ev
}

// record appends a point to the velocity history and drops points older than
// the velocity window.
func (g *GestureTracker) record(t time.Duration, x, y float64) {
	g.history = append(g.history, timedPoint{t, x, y})
	cutoff := t - g.cfg.VelocityWindow
	i := 0
	for i < len(g.history)-1 && g.history[i].t < cutoff {
		i++
	}
	if i > 0 {
		n := copy(g.history, g.history[i:])
		g.history = g.history[:n]
	}
}

// velocity returns the average speed in px/s across the velocity window.
// Fewer than two points inside the window means the pointer was at rest.
func (g *GestureTracker) velocity() (vx, vy float64) {
	if len(g.history) < 2 {
		return 0, 0
	}
	first := g.history[0]
	last := g.history[len(g.history)-1]
	if last.t-first.t > g.cfg.VelocityWindow {
		return 0, 0
	}
	dt := (last.t - first.t).Seconds()
	if dt <= 0 {
		return 0, 0
	}
	return (last.x - first.x) / dt, (last.y - first.y) / dt
}
