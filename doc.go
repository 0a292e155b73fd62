// Package loupe is the gesture, zoom and navigation engine behind a
// full-screen image viewer.
//
// Loupe turns normalized pointer samples into pinch-zoom, pan, double-tap
// and swipe-to-navigate behaviour, and reconciles it with programmatic
// control (jumping to a slide, opening and closing). It draws nothing: each
// frame a renderer reads a [Snapshot] and applies its index, scale, pan and
// drag offset however it likes. The [pointer] package feeds samples from
// [Ebitengine], and cmd/loupe is a complete viewer built on both.
//
// # Quick start
//
//	v, err := loupe.New(len(images), loupe.Config{MaxZoom: 4})
//	if err != nil {
//		return err
//	}
//	v.SetViewport(800, 600)
//	v.OnIndexChange(func(old, new int) { caption.SetText(titles[new]) })
//
//	// when an image finishes loading:
//	v.SetImageMetrics(i, float64(w), float64(h))
//
//	// every frame:
//	v.Push(sample)
//	snap := v.Advance(dt)
//	draw(snap)
//
// # Pieces
//
// The engine is layered; each piece is usable on its own.
//
//   - [ClampScale], [MaxPan] and [ClampPan] compute valid zoom and pan.
//   - [GestureTracker] classifies samples into taps, double taps, pans,
//     pinches and swipes.
//   - [ZoomPan] is one slide's zoom/pan state machine with rebound
//     animations.
//   - [Navigator] pages the slide track with distance and velocity
//     thresholds.
//   - [Viewer] ties them together and owns the current index.
//
// A pan only starts when the slide is zoomed and a swipe only when it is
// not, so the two never compete for the same drag.
//
// # Animation
//
// Nothing in loupe waits or spawns goroutines. Rebounds, double-tap zooms
// and slide changes are tweens (via [gween]) advanced by [Viewer.Advance]
// with the frame's dt, so tests drive time by hand.
//
// # Configuration
//
// [Config] fields default when zero. [LoadConfig] reads the same settings
// from a TOML file:
//
//	max_zoom = "auto"
//	swipe_commit_threshold = 0.25
//	transition_duration = "250ms"
//	ease = "out-quart"
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [pointer]: https://pkg.go.dev/github.com/phanxgames/loupe/pointer
package loupe
