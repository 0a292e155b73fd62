package loupe

// MinScale is the fit-to-viewport zoom level. Every slide rests here.
const MinScale = 1.0

// scaleEpsilon is the tolerance under which a scale counts as MinScale.
const scaleEpsilon = 1e-3

// Vec2 is a 2D vector used for positions, offsets and pan values.
type Vec2 struct {
	X, Y float64
}

// ImageMetrics describes one slide's image and the viewport it is shown in.
// All sizes are in pixels. The zero value means "metrics unknown".
type ImageMetrics struct {
	NaturalWidth, NaturalHeight   float64
	ViewportWidth, ViewportHeight float64
}

// Valid reports whether every dimension is positive. Gestures on a slide with
// invalid metrics are accepted but change nothing.
func (m ImageMetrics) Valid() bool {
	return m.NaturalWidth > 0 && m.NaturalHeight > 0 &&
		m.ViewportWidth > 0 && m.ViewportHeight > 0
}

// FitScale returns the factor that fits the natural image inside the viewport
// while preserving its aspect ratio. Returns 0 for invalid metrics.
func (m ImageMetrics) FitScale() float64 {
	if !m.Valid() {
		return 0
	}
	return min(m.ViewportWidth/m.NaturalWidth, m.ViewportHeight/m.NaturalHeight)
}

// ZoomPanSnapshot is the zoom and pan of a single slide. PanX and PanY are the
// offset of the image center from the viewport center in screen pixels.
type ZoomPanSnapshot struct {
	Scale      float64
	PanX, PanY float64
}

// restingSnapshot is the default zoom/pan of every slide.
var restingSnapshot = ZoomPanSnapshot{Scale: MinScale}

// Snapshot is the render state a renderer reads each frame.
type Snapshot struct {
	Index int
	Total int

	Scale      float64
	PanX, PanY float64

	// DragOffset is the horizontal displacement of the slide track relative
	// to the current index, in pixels. Non-zero only while swiping or while
	// a navigation animation is settling.
	DragOffset float64

	// Transitioning reports whether a zoom or navigation animation is in
	// flight. Renderers keep calling Advance while it is true.
	Transitioning bool
}

// GesturePhase is the gesture currently recognised by a GestureTracker.
type GesturePhase uint8

const (
	PhaseIdle     GesturePhase = iota // no pointer down
	PhasePanning                      // one pointer dragging a zoomed slide
	PhasePinching                     // two pointers scaling
	PhaseSwiping                      // one pointer dragging the slide track
	PhaseTapping                      // one pointer down, still inside the tap slop
)

// String returns the phase name.
func (p GesturePhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePanning:
		return "panning"
	case PhasePinching:
		return "pinching"
	case PhaseSwiping:
		return "swiping"
	case PhaseTapping:
		return "tapping"
	default:
		return "unknown"
	}
}

// EventType identifies a discrete gesture event.
type EventType uint8

const (
	EventNone       EventType = iota // sample did not cross a recognition threshold
	EventTap                         // single short press and release
	EventDoubleTap                   // second tap close in time and space to the first
	EventPanStart                    // zoomed drag began
	EventPanMove                     // zoomed drag moved
	EventPanEnd                      // zoomed drag ended
	EventPinchStart                  // second pointer went down
	EventPinchMove                   // pointer distance or midpoint changed
	EventPinchEnd                    // pointer count dropped below two
	EventSwipeStart                  // resting drag began
	EventSwipeMove                   // resting drag moved
	EventSwipeEnd                    // resting drag ended
)

var eventNames = [...]string{
	EventNone:       "none",
	EventTap:        "tap",
	EventDoubleTap:  "doubleTap",
	EventPanStart:   "panStart",
	EventPanMove:    "panMove",
	EventPanEnd:     "panEnd",
	EventPinchStart: "pinchStart",
	EventPinchMove:  "pinchMove",
	EventPinchEnd:   "pinchEnd",
	EventSwipeStart: "swipeStart",
	EventSwipeMove:  "swipeMove",
	EventSwipeEnd:   "swipeEnd",
}

// String returns the event name.
func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}
