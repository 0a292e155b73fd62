package loupe

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type indexChange struct{ From, To int }

type zoomChange struct {
	Slide int
	Scale float64
}

// recorder captures observer notifications.
type recorder struct {
	index []indexChange
	zoom  []zoomChange
	taps  int
}

func (r *recorder) attach(v *Viewer) {
	v.OnIndexChange(func(oldIndex, newIndex int) {
		r.index = append(r.index, indexChange{oldIndex, newIndex})
	})
	v.OnZoomChange(func(slide int, scale float64) {
		r.zoom = append(r.zoom, zoomChange{slide, scale})
	})
	v.OnTap(func(x, y float64) { r.taps++ })
}

// newTestViewer returns an 800x600 viewer over count 1600x1200 slides.
func newTestViewer(t *testing.T, count int, cfg Config) (*Viewer, *recorder) {
	t.Helper()
	v, err := New(count, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v.SetViewport(800, 600)
	for i := 0; i < count; i++ {
		if err := v.SetImageMetrics(i, 1600, 1200); err != nil {
			t.Fatalf("SetImageMetrics(%d): %v", i, err)
		}
	}
	r := &recorder{}
	r.attach(v)
	return v, r
}

// finishViewer advances v until no animation is running.
func finishViewer(t *testing.T, v *Viewer) {
	t.Helper()
	for i := 0; v.Snapshot().Transitioning; i++ {
		if i > 120 {
			t.Fatal("viewer animation did not finish")
		}
		v.Advance(1.0 / 60)
	}
}

// checkRestingSlides verifies that every settled slide at MinScale has no pan.
func checkRestingSlides(t *testing.T, v *Viewer) {
	t.Helper()
	for i := 0; i < v.Total(); i++ {
		z := v.Slide(i)
		if z.Transitioning() || z.Active() || z.Zoomed() {
			continue
		}
		if s := z.Snapshot(); s.PanX != 0 || s.PanY != 0 {
			t.Errorf("slide %d at rest has pan (%v, %v)", i, s.PanX, s.PanY)
		}
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(0, Config{}); !errors.Is(err, ErrNoSlides) {
		t.Errorf("New(0) error = %v, want ErrNoSlides", err)
	}
	if _, err := New(3, Config{DefaultIndex: 3}); !IsOutOfRange(err) {
		t.Errorf("New with DefaultIndex 3 error = %v, want out of range", err)
	}
	if _, err := New(3, Config{Damping: 2}); err == nil {
		t.Error("New with Damping 2 returned nil error")
	}
	if _, err := New(3, Config{Ease: "wobble"}); err == nil {
		t.Error("New with unknown ease returned nil error")
	}
}

func TestNewStartsOpenAtDefaultIndex(t *testing.T) {
	v, _ := newTestViewer(t, 5, Config{DefaultIndex: 2})
	want := Snapshot{Index: 2, Total: 5, Scale: MinScale}
	if diff := cmp.Diff(want, v.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if !v.Visible() {
		t.Error("Visible = false, want true")
	}
}

func TestViewerSwipeCommitsOnce(t *testing.T) {
	v, r := newTestViewer(t, 5, Config{DefaultIndex: 2})

	v.Push(Touch(600, 300, ms(0)))
	v.Push(Touch(450, 300, ms(16)))
	snap := v.Push(Touch(300, 300, ms(32)))
	if snap.Index != 2 || snap.DragOffset != -300 {
		t.Errorf("mid-swipe index %d offset %v, want 2 and -300", snap.Index, snap.DragOffset)
	}
	if len(r.index) != 0 {
		t.Fatalf("index notifications mid-swipe = %v, want none", r.index)
	}

	snap = v.Push(Release(300, 300, ms(232)))
	if snap.Index != 3 {
		t.Errorf("Index = %d, want 3", snap.Index)
	}
	if diff := cmp.Diff([]indexChange{{2, 3}}, r.index); diff != "" {
		t.Errorf("index notifications (-want +got):\n%s", diff)
	}

	finishViewer(t, v)
	if diff := cmp.Diff([]indexChange{{2, 3}}, r.index); diff != "" {
		t.Errorf("index notifications after settle (-want +got):\n%s", diff)
	}
	if got := v.Snapshot().DragOffset; got != 0 {
		t.Errorf("DragOffset = %v, want 0", got)
	}
}

func TestViewerInjectDragCommitsByDistance(t *testing.T) {
	v, r := newTestViewer(t, 5, Config{DefaultIndex: 2})
	// 0.325 of the width with a resting release.
	v.InjectDrag(600, 300, 340, 300, 30, 100*time.Millisecond)
	if v.Index() != 3 {
		t.Errorf("Index = %d, want 3", v.Index())
	}
	if len(r.index) != 1 {
		t.Errorf("index notifications = %v, want exactly one", r.index)
	}
}

func TestViewerInjectDragSnapsBack(t *testing.T) {
	v, r := newTestViewer(t, 5, Config{DefaultIndex: 2})
	snap := v.InjectDrag(600, 300, 520, 300, 8, 100*time.Millisecond)
	if snap.Index != 2 || snap.DragOffset != -80 || !snap.Transitioning {
		t.Errorf("after release: index %d offset %v transitioning %v", snap.Index, snap.DragOffset, snap.Transitioning)
	}
	finishViewer(t, v)
	if got := v.Snapshot().DragOffset; got != 0 {
		t.Errorf("DragOffset = %v, want 0", got)
	}
	if len(r.index) != 0 {
		t.Errorf("index notifications = %v, want none", r.index)
	}
}

func TestViewerDragWhileZoomedPans(t *testing.T) {
	v, r := newTestViewer(t, 5, Config{DefaultIndex: 2})
	v.ZoomAt(2, 400, 300)

	snap := v.InjectDrag(600, 300, 100, 300, 20, 100*time.Millisecond)
	if snap.Index != 2 || snap.DragOffset != 0 {
		t.Fatalf("zoomed drag moved the track: index %d offset %v", snap.Index, snap.DragOffset)
	}
	if !approxEqual(snap.PanX, -430, 1e-6) {
		t.Errorf("PanX at release = %v, want -430 (rubber band)", snap.PanX)
	}

	finishViewer(t, v)
	want := Snapshot{Index: 2, Total: 5, Scale: 2, PanX: -400}
	if diff := cmp.Diff(want, v.Snapshot(), cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if len(r.index) != 0 {
		t.Errorf("index notifications = %v, want none", r.index)
	}
	if diff := cmp.Diff([]zoomChange{{2, 2}}, r.zoom); diff != "" {
		t.Errorf("zoom notifications (-want +got):\n%s", diff)
	}
}

func TestViewerDragAtRestNeverPans(t *testing.T) {
	v, _ := newTestViewer(t, 5, Config{DefaultIndex: 2})
	v.InjectDrag(400, 300, 400, 100, 10, 100*time.Millisecond)
	v.InjectDrag(400, 300, 350, 350, 10, 100*time.Millisecond)
	finishViewer(t, v)

	snap := v.Snapshot()
	if snap.PanX != 0 || snap.PanY != 0 || snap.Scale != MinScale {
		t.Errorf("snapshot = %+v, want resting", snap)
	}
	if snap.Index != 2 {
		t.Errorf("Index = %d, want 2", snap.Index)
	}
	checkRestingSlides(t, v)
}

func TestViewerDoubleTap(t *testing.T) {
	v, r := newTestViewer(t, 3, Config{})
	snap := v.InjectDoubleTap(500, 350)
	if !snap.Transitioning {
		t.Fatal("Transitioning = false after double tap")
	}
	if r.taps != 1 {
		t.Errorf("taps = %d, want 1 (the first tap of the pair)", r.taps)
	}
	if len(r.zoom) != 0 {
		t.Errorf("zoom notifications mid-transition = %v, want none", r.zoom)
	}

	finishViewer(t, v)
	want := Snapshot{Total: 3, Scale: 3, PanX: -200, PanY: -100}
	if diff := cmp.Diff(want, v.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]zoomChange{{0, 3}}, r.zoom); diff != "" {
		t.Errorf("zoom notifications (-want +got):\n%s", diff)
	}

	v.InjectDoubleTap(500, 350)
	finishViewer(t, v)
	checkRestingSlides(t, v)
	if got := v.Snapshot().Scale; got != MinScale {
		t.Errorf("Scale after second double tap = %v, want %v", got, MinScale)
	}
}

func TestViewerPinch(t *testing.T) {
	v, r := newTestViewer(t, 3, Config{})
	snap := v.InjectPinch(400, 300, 100, 200, 10)
	if !approxEqual(snap.Scale, 2, 1e-9) {
		t.Errorf("Scale = %v, want 2", snap.Scale)
	}
	if snap.PanX != 0 || snap.PanY != 0 {
		t.Errorf("pan = (%v, %v), want zero for a centred pinch", snap.PanX, snap.PanY)
	}
	if len(r.zoom) != 1 || r.zoom[0].Slide != 0 || !approxEqual(r.zoom[0].Scale, 2, 1e-9) {
		t.Errorf("zoom notifications = %v, want one for slide 0 at 2", r.zoom)
	}
}

func TestViewerPinchCoincidentPointersStaysFinite(t *testing.T) {
	v, _ := newTestViewer(t, 3, Config{})
	samples := []Sample{
		Touch2(400, 300, 400, 300, ms(0)),
		Touch2(400, 300, 400.0001, 300, ms(16)),
		Touch2(300, 300, 500, 300, ms(32)),
		Touch2(400, 300, 400, 300, ms(48)),
		Release(400, 300, ms(64)),
	}
	for _, s := range samples {
		snap := v.Push(s)
		if !finite(snap.Scale, snap.PanX, snap.PanY) {
			t.Fatalf("snapshot %+v not finite after %+v", snap, s)
		}
	}
	finishViewer(t, v)
	snap := v.Snapshot()
	if !finite(snap.Scale, snap.PanX, snap.PanY) || math.Abs(snap.PanX) > 800 {
		t.Errorf("settled snapshot = %+v", snap)
	}
}

func TestViewerPinchIgnoredWhileCommitting(t *testing.T) {
	v, _ := newTestViewer(t, 5, Config{DefaultIndex: 2})
	v.InjectDrag(600, 300, 200, 300, 10, 100*time.Millisecond)
	if v.Index() != 3 || v.Navigator().State() != NavCommitting {
		t.Fatalf("Index %d state %v, want 3 committing", v.Index(), v.Navigator().State())
	}
	v.InjectPinch(400, 300, 100, 300, 10)
	if got := v.Slide(3).Snapshot().Scale; got != MinScale {
		t.Errorf("Scale = %v, want %v: pinch must not start during a commit", got, MinScale)
	}
}

func TestViewerUnknownMetrics(t *testing.T) {
	v, err := New(3, Config{})
	if err != nil {
		t.Fatal(err)
	}
	v.SetViewport(800, 600)
	r := &recorder{}
	r.attach(v)

	snap := v.InjectPinch(400, 300, 100, 300, 10)
	if snap.Scale != MinScale {
		t.Errorf("Scale = %v, want %v without metrics", snap.Scale, MinScale)
	}
	v.InjectDoubleTap(400, 300)
	if v.Snapshot().Transitioning {
		t.Error("double tap started a transition without metrics")
	}

	v.InjectDrag(600, 300, 300, 300, 10, 100*time.Millisecond)
	if v.Index() != 1 {
		t.Errorf("Index = %d, want 1: navigation works without metrics", v.Index())
	}
	if len(r.zoom) != 0 {
		t.Errorf("zoom notifications = %v, want none", r.zoom)
	}
}

func TestViewerJumpTo(t *testing.T) {
	v, r := newTestViewer(t, 5, Config{})
	v.ZoomAt(2, 400, 300)

	if err := v.JumpTo(3, false); err != nil {
		t.Fatalf("JumpTo: %v", err)
	}
	snap := v.Snapshot()
	if snap.Index != 3 || !snap.Transitioning || snap.DragOffset != 3*800 {
		t.Errorf("after animated jump: %+v", snap)
	}
	if got := v.Slide(0).Snapshot(); got != restingSnapshot {
		t.Errorf("departing slide = %+v, want resting", got)
	}
	finishViewer(t, v)

	if diff := cmp.Diff([]indexChange{{0, 3}}, r.index); diff != "" {
		t.Errorf("index notifications (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]zoomChange{{0, 2}, {0, 1}}, r.zoom); diff != "" {
		t.Errorf("zoom notifications (-want +got):\n%s", diff)
	}
}

func TestViewerJumpToIdempotent(t *testing.T) {
	v, r := newTestViewer(t, 5, Config{})
	if err := v.JumpTo(3, true); err != nil {
		t.Fatal(err)
	}
	once := v.Snapshot()
	if err := v.JumpTo(3, true); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(once, v.Snapshot()); diff != "" {
		t.Errorf("second JumpTo changed the snapshot (-first +second):\n%s", diff)
	}
	if len(r.index) != 1 {
		t.Errorf("index notifications = %v, want exactly one", r.index)
	}
}

func TestViewerJumpToOutOfRange(t *testing.T) {
	v, r := newTestViewer(t, 5, Config{DefaultIndex: 1})
	before := v.Snapshot()
	for _, i := range []int{-1, 5, 100} {
		err := v.JumpTo(i, false)
		var oor *OutOfRangeError
		if !errors.As(err, &oor) {
			t.Fatalf("JumpTo(%d) error = %v, want *OutOfRangeError", i, err)
		}
		if oor.Index != i || oor.Total != 5 {
			t.Errorf("error fields = %+v", oor)
		}
	}
	if diff := cmp.Diff(before, v.Snapshot()); diff != "" {
		t.Errorf("failed JumpTo changed state (-want +got):\n%s", diff)
	}
	if len(r.index) != 0 {
		t.Errorf("index notifications = %v, want none", r.index)
	}
}

func TestViewerJumpToLastCallWins(t *testing.T) {
	v, r := newTestViewer(t, 5, Config{})
	v.JumpTo(1, false)
	v.Advance(0.05)
	v.JumpTo(3, false)
	finishViewer(t, v)
	if v.Index() != 3 || v.Snapshot().DragOffset != 0 {
		t.Errorf("Index %d offset %v, want 3 and 0", v.Index(), v.Snapshot().DragOffset)
	}
	if diff := cmp.Diff([]indexChange{{0, 1}, {1, 3}}, r.index); diff != "" {
		t.Errorf("index notifications (-want +got):\n%s", diff)
	}
}

func TestViewerJumpToDuringSwipe(t *testing.T) {
	v, r := newTestViewer(t, 5, Config{DefaultIndex: 2})
	v.Push(Touch(600, 300, ms(0)))
	v.Push(Touch(550, 300, ms(16)))
	v.Push(Touch(500, 300, ms(32)))

	if err := v.JumpTo(4, false); err != nil {
		t.Fatal(err)
	}
	// The finger is still down; it must not drive the track any more.
	v.Push(Touch(450, 300, ms(48)))
	v.Push(Touch(300, 300, ms(64)))
	v.Push(Release(300, 300, ms(80)))

	if v.Index() != 4 {
		t.Errorf("Index = %d, want 4", v.Index())
	}
	finishViewer(t, v)
	if v.Snapshot().DragOffset != 0 {
		t.Errorf("DragOffset = %v, want 0", v.Snapshot().DragOffset)
	}
	if diff := cmp.Diff([]indexChange{{2, 4}}, r.index); diff != "" {
		t.Errorf("index notifications (-want +got):\n%s", diff)
	}
	if r.taps != 0 {
		t.Errorf("taps = %d, want 0", r.taps)
	}
}

func TestViewerDragDuringZoomOutDoesNotSwipe(t *testing.T) {
	v, r := newTestViewer(t, 5, Config{DefaultIndex: 2})
	v.InjectDoubleTap(400, 300)
	finishViewer(t, v)

	// Double tap back toward rest, then drag before the scale gets there.
	v.InjectDoubleTap(400, 300)
	v.Advance(0.05)
	if !v.Slide(2).Zoomed() {
		t.Fatal("slide reached rest too early")
	}
	snap := v.InjectDrag(600, 300, 200, 300, 10, 100*time.Millisecond)
	if snap.Index != 2 || snap.DragOffset != 0 {
		t.Errorf("index %d offset %v, want 2 and 0", snap.Index, snap.DragOffset)
	}
	finishViewer(t, v)
	if len(r.index) != 0 {
		t.Errorf("index notifications = %v, want none", r.index)
	}
	checkRestingSlides(t, v)
}

func TestViewerDragDuringZoomInDoesNotSwipe(t *testing.T) {
	v, r := newTestViewer(t, 5, Config{DefaultIndex: 2})
	v.InjectDoubleTap(400, 300)
	if v.Slide(2).Zoomed() {
		t.Fatal("slide zoomed before any animation step")
	}

	// The drag crosses the tap slop before the first animation step.
	x := 600.0
	v.Push(Touch(x, 300, v.nextInjectTime()))
	x -= 20
	v.Push(Touch(x, 300, v.nextInjectTime()))
	for i := 0; i < 10; i++ {
		v.Advance(1.0 / 60)
		x -= 20
		snap := v.Push(Touch(x, 300, v.nextInjectTime()))
		if snap.DragOffset != 0 || v.Navigator().State() != NavAtRest {
			t.Fatalf("frame %d: offset %v nav %v, want 0 and at rest", i, snap.DragOffset, v.Navigator().State())
		}
	}
	v.Push(Release(x, 300, v.nextInjectTime()))
	finishViewer(t, v)

	if v.Index() != 2 {
		t.Errorf("Index = %d, want 2", v.Index())
	}
	if len(r.index) != 0 {
		t.Errorf("index notifications = %v, want none", r.index)
	}
	if !v.Slide(2).Zoomed() {
		t.Error("zoom-in did not complete")
	}
}

func TestViewerSetViewportClampsZoomedSlide(t *testing.T) {
	v, _ := newTestViewer(t, 3, Config{})
	v.ZoomAt(3, 0, 0)
	want := Snapshot{Total: 3, Scale: 3, PanX: 800, PanY: 600}
	if diff := cmp.Diff(want, v.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	v.SetViewport(400, 300)
	want = Snapshot{Total: 3, Scale: 3, PanX: 400, PanY: 300}
	if diff := cmp.Diff(want, v.Snapshot()); diff != "" {
		t.Errorf("after resize (-want +got):\n%s", diff)
	}
}

func TestViewerClose(t *testing.T) {
	v, r := newTestViewer(t, 5, Config{DefaultIndex: 1})
	v.JumpTo(3, true)
	v.ZoomAt(2, 400, 300)

	v.Close()
	if v.Visible() {
		t.Error("Visible = true after Close")
	}
	want := Snapshot{Index: 1, Total: 5, Scale: MinScale}
	if diff := cmp.Diff(want, v.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]indexChange{{1, 3}, {3, 1}}, r.index); diff != "" {
		t.Errorf("index notifications (-want +got):\n%s", diff)
	}
	checkRestingSlides(t, v)

	v.InjectTap(400, 300)
	if r.taps != 0 {
		t.Errorf("taps while closed = %d, want 0", r.taps)
	}

	v.Open()
	if !v.Visible() {
		t.Error("Visible = false after Open")
	}
	v.InjectTap(400, 300)
	if r.taps != 1 {
		t.Errorf("taps after Open = %d, want 1", r.taps)
	}
}

func TestViewerMetricsErrors(t *testing.T) {
	v, _ := newTestViewer(t, 2, Config{})
	if err := v.SetImageMetrics(2, 10, 10); !IsOutOfRange(err) {
		t.Errorf("SetImageMetrics(2) error = %v, want out of range", err)
	}
	if err := v.ClearImageMetrics(-1); !IsOutOfRange(err) {
		t.Errorf("ClearImageMetrics(-1) error = %v, want out of range", err)
	}
	if v.Slide(2) != nil {
		t.Error("Slide(2) != nil")
	}
}

func TestCallbackHandleRemove(t *testing.T) {
	v, _ := newTestViewer(t, 3, Config{})
	calls := 0
	h := v.OnIndexChange(func(int, int) { calls++ })
	v.JumpTo(1, true)
	h.Remove()
	h.Remove()
	v.JumpTo(2, true)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	CallbackHandle{}.Remove()
}

func TestOutOfRangeErrorMessage(t *testing.T) {
	err := &OutOfRangeError{Op: "jump", Index: 7, Total: 3}
	want := "loupe: jump: index 7 out of range [0, 3)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
