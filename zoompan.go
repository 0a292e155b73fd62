package loupe

import (
	"github.com/tanema/gween"
)

// ZoomState is the settled or animating state of a slide's zoom.
type ZoomState uint8

const (
	ZoomResting       ZoomState = iota // scale == MinScale, pan == 0
	ZoomZoomed                         // scale > MinScale
	ZoomTransitioning                  // animating toward a target snapshot
)

// String returns the state name.
func (s ZoomState) String() string {
	switch s {
	case ZoomResting:
		return "resting"
	case ZoomZoomed:
		return "zoomed"
	case ZoomTransitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}

// zoomTween holds the active tweens for scale and pan.
type zoomTween struct {
	scale  *gween.Tween
	x, y   *gween.Tween
	done   [3]bool
	target ZoomPanSnapshot
}

// ZoomPan owns one slide's zoom level and pan offset. It consumes gesture
// events and animates rebounds; Advance drives the animation.
type ZoomPan struct {
	cfg     *Config
	metrics ImageMetrics

	scale      float64
	panX, panY float64

	tween *zoomTween

	panning  bool
	pinching bool
	anchor   Vec2 // pan when the current pan gesture started
}

// NewZoomPan creates a resting ZoomPan with unknown metrics.
func NewZoomPan(cfg Config) *ZoomPan {
	c := cfg.withDefaults()
	return newZoomPan(&c)
}

func newZoomPan(cfg *Config) *ZoomPan {
	return &ZoomPan{cfg: cfg, scale: MinScale}
}

// Metrics returns the slide's current metrics.
func (z *ZoomPan) Metrics() ImageMetrics {
	return z.metrics
}

// SetMetrics installs new metrics, e.g. after the image loads or the
// viewport resizes. Any animation is dropped and the current zoom and pan are
// clamped to the new bounds. Invalid metrics reset the slide.
func (z *ZoomPan) SetMetrics(m ImageMetrics) {
	z.metrics = m
	if !m.Valid() {
		z.Reset()
		return
	}
	z.tween = nil
	z.scale = ClampScale(z.scale, MinScale, z.cfg.maxScale(m))
	pan := ClampPan(Vec2{z.panX, z.panY}, z.scale, m)
	z.apply(ZoomPanSnapshot{Scale: z.scale, PanX: pan.X, PanY: pan.Y})
}

// ClearMetrics marks the slide's metrics as unknown and resets it.
func (z *ZoomPan) ClearMetrics() {
	z.SetMetrics(ImageMetrics{})
}

// Snapshot returns the current, possibly interpolated, zoom and pan.
func (z *ZoomPan) Snapshot() ZoomPanSnapshot {
	return ZoomPanSnapshot{Scale: z.scale, PanX: z.panX, PanY: z.panY}
}

// Zoomed reports whether the current scale is past MinScale.
func (z *ZoomPan) Zoomed() bool {
	return z.scale > MinScale+scaleEpsilon
}

// holdsZoom reports whether the slide is zoomed or animating toward a zoomed
// target. Drags on such a slide pan rather than swipe.
func (z *ZoomPan) holdsZoom() bool {
	return z.Zoomed() || (z.tween != nil && z.tween.target.Scale > MinScale+scaleEpsilon)
}

// Transitioning reports whether a rebound or zoom animation is in flight.
func (z *ZoomPan) Transitioning() bool {
	return z.tween != nil
}

// Active reports whether a pan or pinch gesture is manipulating the slide.
func (z *ZoomPan) Active() bool {
	return z.panning || z.pinching
}

// State returns the slide's zoom state.
func (z *ZoomPan) State() ZoomState {
	switch {
	case z.tween != nil:
		return ZoomTransitioning
	case z.Zoomed():
		return ZoomZoomed
	default:
		return ZoomResting
	}
}

// Reset cancels any gesture or animation and returns to the resting
// snapshot.
func (z *ZoomPan) Reset() {
	z.tween = nil
	z.panning = false
	z.pinching = false
	z.apply(restingSnapshot)
}

// Handle applies a gesture event. It reports whether the snapshot changed.
// Events on a slide without valid metrics are accepted and ignored.
func (z *ZoomPan) Handle(ev Event) bool {
	if !z.metrics.Valid() {
		return false
	}
	before := z.Snapshot()

	switch ev.Type {
	case EventPinchStart:
		z.tween = nil
		z.panning = false
		z.pinching = true
	case EventPinchMove:
		if z.pinching {
			z.pinchMove(ev)
		}
	case EventPinchEnd:
		if z.pinching {
			z.pinching = false
			z.settle()
		}
	case EventPanStart:
		if !z.Zoomed() {
			return false
		}
		z.tween = nil
		z.pinching = false
		z.panning = true
		z.anchor = Vec2{z.panX, z.panY}
		z.panTo(ev)
	case EventPanMove:
		if z.panning {
			z.panTo(ev)
		}
	case EventPanEnd:
		if z.panning {
			z.panTo(ev)
			z.panning = false
			z.settle()
		}
	case EventDoubleTap:
		z.doubleTap(ev)
	}
	return z.Snapshot() != before
}

// focal converts a screen point to pan coordinates (relative to the
// viewport center).
func (z *ZoomPan) focal(x, y float64) Vec2 {
	return Vec2{x - z.metrics.ViewportWidth/2, y - z.metrics.ViewportHeight/2}
}

// zoomAround returns the pan that keeps the image point under focal fixed
// when the scale goes from z.scale to scale.
func (z *ZoomPan) zoomAround(focal Vec2, scale float64) Vec2 {
	k := scale / z.scale
	return Vec2{
		X: focal.X - (focal.X-z.panX)*k,
		Y: focal.Y - (focal.Y-z.panY)*k,
	}
}

func (z *ZoomPan) pinchMove(ev Event) {
	if !finite(ev.Scale) || ev.Scale <= 0 {
		return
	}
	scale := ClampScale(z.scale*ev.Scale, MinScale, z.cfg.maxScale(z.metrics))
	// Zoom around the previous midpoint, then follow the midpoint's motion.
	pan := z.zoomAround(z.focal(ev.X-ev.DeltaX, ev.Y-ev.DeltaY), scale)
	pan.X += ev.DeltaX
	pan.Y += ev.DeltaY
	pan = ClampPan(pan, scale, z.metrics)
	if !finite(scale, pan.X, pan.Y) {
		return
	}
	z.scale = scale
	z.panX, z.panY = pan.X, pan.Y
}

// panTo moves the pan to anchor+offset, damping the part beyond the clamp
// bounds.
func (z *ZoomPan) panTo(ev Event) {
	bound := MaxPan(z.scale, z.metrics)
	x := rubberBand(z.anchor.X+ev.OffsetX, bound.X, z.cfg.Damping)
	y := rubberBand(z.anchor.Y+ev.OffsetY, bound.Y, z.cfg.Damping)
	if !finite(x, y) {
		return
	}
	z.panX, z.panY = x, y
}

func (z *ZoomPan) doubleTap(ev Event) {
	current := z.Snapshot()
	if z.tween != nil {
		current = z.tween.target
	}
	z.tween = nil

	if current.Scale > MinScale+scaleEpsilon {
		z.animateTo(restingSnapshot)
		return
	}

	scale := z.cfg.tapZoom(z.metrics)
	if scale <= MinScale+scaleEpsilon {
		return
	}
	pan := ClampPan(z.zoomAround(z.focal(ev.X, ev.Y), scale), scale, z.metrics)
	if !finite(pan.X, pan.Y) {
		return
	}
	z.animateTo(ZoomPanSnapshot{Scale: scale, PanX: pan.X, PanY: pan.Y})
}

// ZoomTo zooms to scale keeping the screen point (x, y) fixed. With animate
// the change runs as a transition; otherwise it applies immediately.
func (z *ZoomPan) ZoomTo(scale, x, y float64, animate bool) {
	if !z.metrics.Valid() || !finite(scale, x, y) || z.Active() {
		return
	}
	z.tween = nil
	scale = ClampScale(scale, MinScale, z.cfg.maxScale(z.metrics))
	pan := ClampPan(z.zoomAround(z.focal(x, y), scale), scale, z.metrics)
	target := ZoomPanSnapshot{Scale: scale, PanX: pan.X, PanY: pan.Y}
	if animate {
		z.animateTo(target)
		return
	}
	z.apply(target)
}

// settle picks the rebound target after a gesture ends: rest if the scale is
// back at MinScale, otherwise the clamped pan at the current scale.
func (z *ZoomPan) settle() {
	target := restingSnapshot
	if z.Zoomed() {
		pan := ClampPan(Vec2{z.panX, z.panY}, z.scale, z.metrics)
		target = ZoomPanSnapshot{Scale: z.scale, PanX: pan.X, PanY: pan.Y}
	}
	if target == z.Snapshot() {
		z.apply(target)
		return
	}
	z.cfg.Logger.Debug("loupe: rebound", "scale", target.Scale, "panX", target.PanX, "panY", target.PanY)
	z.animateTo(target)
}

// animateTo starts a transition from the current snapshot to target.
func (z *ZoomPan) animateTo(target ZoomPanSnapshot) {
	d := z.cfg.transitionSeconds()
	if d <= 0 || target == z.Snapshot() {
		z.tween = nil
		z.apply(target)
		return
	}
	fn := z.cfg.EaseFunc
	z.tween = &zoomTween{
		scale:  gween.New(float32(z.scale), float32(target.Scale), d, fn),
		x:      gween.New(float32(z.panX), float32(target.PanX), d, fn),
		y:      gween.New(float32(z.panY), float32(target.PanY), d, fn),
		target: target,
	}
}

// Advance moves the transition forward by dt seconds. It reports whether an
// animation was running. When the transition finishes the target snapshot
// is applied exactly.
func (z *ZoomPan) Advance(dt float32) bool {
	tw := z.tween
	if tw == nil {
		return false
	}
	fields := [3]*gween.Tween{tw.scale, tw.x, tw.y}
	out := [3]*float64{&z.scale, &z.panX, &z.panY}
	allDone := true
	for i, t := range fields {
		if tw.done[i] {
			continue
		}
		val, finished := t.Update(dt)
		*out[i] = float64(val)
		tw.done[i] = finished
		if !finished {
			allDone = false
		}
	}
	if allDone {
		z.tween = nil
		z.apply(tw.target)
	}
	return true
}

// apply sets the snapshot, enforcing pan == 0 at MinScale.
func (z *ZoomPan) apply(s ZoomPanSnapshot) {
	if s.Scale <= MinScale+scaleEpsilon {
		s = restingSnapshot
	}
	z.scale = s.Scale
	z.panX, z.panY = s.PanX, s.PanY
}
