package loupe

import (
	"log/slog"
	"time"
)

// Viewer is the top-level gesture engine for a multi-image viewer. It owns
// the current index and one ZoomPan per slide, routes gestures to the active
// slide or the Navigator, and notifies observers of committed changes.
//
// A Viewer is single-threaded: call every method from the goroutine that
// drives input and animation.
type Viewer struct {
	cfg Config
	log *slog.Logger

	tracker *GestureTracker
	nav     *Navigator
	slides  []*ZoomPan

	// naturals holds each slide's natural image size; zero means not loaded.
	naturals []Vec2
	// committed holds the last scale reported through OnZoomChange.
	committed []float64

	viewportW, viewportH float64
	visible              bool

	handlers handlerRegistry

	injectClock time.Duration
}

// New creates an open Viewer over count slides. Zero fields of cfg take
// their defaults.
func New(count int, cfg Config) (*Viewer, error) {
	if count <= 0 {
		return nil, ErrNoSlides
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	c := cfg.withDefaults()
	if c.DefaultIndex < 0 || c.DefaultIndex >= count {
		return nil, &OutOfRangeError{Op: "new", Index: c.DefaultIndex, Total: count}
	}

	v := &Viewer{
		cfg:       c,
		log:       c.Logger,
		slides:    make([]*ZoomPan, count),
		naturals:  make([]Vec2, count),
		committed: make([]float64, count),
		visible:   true,
	}
	v.tracker = newGestureTracker(&v.cfg)
	v.nav = newNavigator(&v.cfg, count, c.DefaultIndex)
	for i := range v.slides {
		v.slides[i] = newZoomPan(&v.cfg)
		v.committed[i] = MinScale
	}
	return v, nil
}

// Index returns the current slide index.
func (v *Viewer) Index() int { return v.nav.Index() }

// Total returns the number of slides.
func (v *Viewer) Total() int { return len(v.slides) }

// Visible reports whether the viewer is open.
func (v *Viewer) Visible() bool { return v.visible }

// Phase returns the gesture currently being recognised.
func (v *Viewer) Phase() GesturePhase { return v.tracker.Phase() }

// Slide returns the ZoomPan of slide i, or nil if i is out of range.
func (v *Viewer) Slide(i int) *ZoomPan {
	if i < 0 || i >= len(v.slides) {
		return nil
	}
	return v.slides[i]
}

// Navigator returns the viewer's slide navigator.
func (v *Viewer) Navigator() *Navigator { return v.nav }

// Snapshot returns the render state of the current slide.
func (v *Viewer) Snapshot() Snapshot {
	i := v.nav.Index()
	z := v.slides[i]
	zs := z.Snapshot()
	return Snapshot{
		Index:         i,
		Total:         len(v.slides),
		Scale:         zs.Scale,
		PanX:          zs.PanX,
		PanY:          zs.PanY,
		DragOffset:    v.nav.DragOffset(),
		Transitioning: v.nav.Animating() || z.Transitioning(),
	}
}

// SetViewport sets the viewport size and recomputes every loaded slide's
// metrics.
func (v *Viewer) SetViewport(w, h float64) {
	if w == v.viewportW && h == v.viewportH {
		return
	}
	v.viewportW, v.viewportH = w, h
	v.nav.SetViewportWidth(w)
	for i := range v.slides {
		if v.naturals[i] != (Vec2{}) {
			v.slides[i].SetMetrics(v.metricsFor(i))
			v.settleZoom(i)
		}
	}
}

func (v *Viewer) metricsFor(i int) ImageMetrics {
	return ImageMetrics{
		NaturalWidth:   v.naturals[i].X,
		NaturalHeight:  v.naturals[i].Y,
		ViewportWidth:  v.viewportW,
		ViewportHeight: v.viewportH,
	}
}

// SetImageMetrics records slide i's natural image size, typically when its
// image finishes loading.
func (v *Viewer) SetImageMetrics(i int, naturalW, naturalH float64) error {
	if i < 0 || i >= len(v.slides) {
		return &OutOfRangeError{Op: "set metrics", Index: i, Total: len(v.slides)}
	}
	v.naturals[i] = Vec2{naturalW, naturalH}
	v.slides[i].SetMetrics(v.metricsFor(i))
	v.settleZoom(i)
	return nil
}

// ClearImageMetrics marks slide i's image as unavailable. Zoom gestures on
// it become no-ops until metrics are set again.
func (v *Viewer) ClearImageMetrics(i int) error {
	if i < 0 || i >= len(v.slides) {
		return &OutOfRangeError{Op: "clear metrics", Index: i, Total: len(v.slides)}
	}
	v.naturals[i] = Vec2{}
	v.slides[i].ClearMetrics()
	v.settleZoom(i)
	return nil
}

// Push feeds one pointer sample through gesture recognition and applies the
// resulting event.
func (v *Viewer) Push(s Sample) Snapshot {
	if !v.visible {
		return v.Snapshot()
	}
	ev := v.tracker.Track(s, v.slides[v.nav.Index()].holdsZoom())
	if ev.Type == EventNone {
		return v.Snapshot()
	}
	return v.HandleGestureEvent(ev)
}

// HandleGestureEvent routes an already-recognised gesture event. Zoom and
// pan events go to the current slide; swipe events go to the navigator,
// but only while the slide is at MinScale and not zooming in.
func (v *Viewer) HandleGestureEvent(ev Event) Snapshot {
	if !v.visible {
		return v.Snapshot()
	}
	i := v.nav.Index()
	z := v.slides[i]

	switch ev.Type {
	case EventTap:
		v.fireTap(ev.X, ev.Y)

	case EventDoubleTap, EventPinchStart, EventPanStart:
		if v.nav.State() == NavCommitting || v.nav.State() == NavDragging {
			break
		}
		z.Handle(ev)
		v.settleZoom(i)

	case EventPinchMove, EventPanMove:
		z.Handle(ev)

	case EventPinchEnd, EventPanEnd:
		z.Handle(ev)
		v.settleZoom(i)

	case EventSwipeStart:
		if z.holdsZoom() || z.Active() {
			break
		}
		v.nav.Handle(ev)

	case EventSwipeMove, EventSwipeEnd:
		if from, ok := v.nav.Handle(ev); ok {
			v.afterNavigate(from, v.nav.Index())
		}
	}
	return v.Snapshot()
}

// afterNavigate resets the departing and arriving slides and notifies
// observers of the index change.
func (v *Viewer) afterNavigate(from, to int) {
	v.slides[from].Reset()
	v.slides[to].Reset()
	v.settleZoom(from)
	v.settleZoom(to)
	if from != to {
		v.fireIndexChange(from, to)
	}
}

// JumpTo navigates to index programmatically. Both the departing and the
// arriving slide return to rest, any gesture in progress is abandoned, and
// the track animates to the new slide unless immediate is set. The last call
// wins. An out-of-range index returns an *OutOfRangeError and changes
// nothing.
func (v *Viewer) JumpTo(index int, immediate bool) error {
	if index < 0 || index >= len(v.slides) {
		return &OutOfRangeError{Op: "jump", Index: index, Total: len(v.slides)}
	}
	from := v.nav.Index()
	v.log.Debug("loupe: jump", "from", from, "to", index, "immediate", immediate)

	v.tracker.Reset()
	v.nav.JumpTo(index, immediate)
	v.afterNavigate(from, index)
	return nil
}

// ZoomAt zooms the current slide to scale around the screen point (x, y),
// e.g. for a mouse wheel. Ignored while the track is moving or a gesture
// holds the slide.
func (v *Viewer) ZoomAt(scale, x, y float64) Snapshot {
	if !v.visible || v.nav.State() != NavAtRest {
		return v.Snapshot()
	}
	i := v.nav.Index()
	v.slides[i].ZoomTo(scale, x, y, false)
	v.settleZoom(i)
	return v.Snapshot()
}

// Advance steps every running animation by dt seconds. Call it once per
// frame from the animation clock.
func (v *Viewer) Advance(dt float32) Snapshot {
	if !v.visible {
		return v.Snapshot()
	}
	v.nav.Advance(dt)
	for i, z := range v.slides {
		if z.Advance(dt) {
			v.settleZoom(i)
		}
	}
	return v.Snapshot()
}

// Open shows the viewer.
func (v *Viewer) Open() {
	v.visible = true
}

// Close hides the viewer. Every slide returns to rest, all animations are
// discarded, and the index returns to the configured default.
func (v *Viewer) Close() {
	if !v.visible {
		return
	}
	v.visible = false
	v.tracker.Reset()

	from := v.nav.Index()
	v.nav.Reset(v.cfg.DefaultIndex)
	for i, z := range v.slides {
		z.Reset()
		v.settleZoom(i)
	}
	if from != v.cfg.DefaultIndex {
		v.fireIndexChange(from, v.cfg.DefaultIndex)
	}
}

// settleZoom reports slide i's scale to observers once the slide is neither
// animating nor under a gesture and the scale differs from the last report.
func (v *Viewer) settleZoom(i int) {
	z := v.slides[i]
	if z.Transitioning() || z.Active() {
		return
	}
	scale := z.Snapshot().Scale
	if scale == v.committed[i] {
		return
	}
	v.committed[i] = scale
	v.fireZoomChange(i, scale)
}
