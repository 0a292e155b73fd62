package loupe

import "time"

// injectStep is the spacing between synthetic samples, one 60 Hz frame.
const injectStep = 16 * time.Millisecond

// nextInjectTime returns a timestamp after every sample seen so far.
func (v *Viewer) nextInjectTime() time.Duration {
	v.wait(injectStep)
	return v.injectClock
}

// wait moves the synthetic clock forward by d without emitting a sample.
func (v *Viewer) wait(d time.Duration) {
	if last := v.tracker.LastTime(); v.injectClock < last {
		v.injectClock = last
	}
	v.injectClock += d
}

// InputClock returns the latest sample time the viewer has seen or
// synthesised. Injected gestures and pushed samples share one timeline, so a
// host that injects gestures must keep its own sample times after this.
func (v *Viewer) InputClock() time.Duration {
	return max(v.injectClock, v.tracker.LastTime())
}

// InjectTap pushes a press and release at screen point (x, y).
func (v *Viewer) InjectTap(x, y float64) Snapshot {
	v.Push(Touch(x, y, v.nextInjectTime()))
	return v.Push(Release(x, y, v.nextInjectTime()))
}

// InjectDoubleTap pushes two taps at (x, y) inside the double-tap window.
func (v *Viewer) InjectDoubleTap(x, y float64) Snapshot {
	v.InjectTap(x, y)
	v.wait(3 * injectStep)
	return v.InjectTap(x, y)
}

// InjectDrag pushes a single-pointer drag from (fromX, fromY) to (toX, toY)
// over the given number of intermediate frames, then releases at the end
// point. If hold is positive the pointer rests at the end point for that
// long before release, which zeroes the release velocity.
func (v *Viewer) InjectDrag(fromX, fromY, toX, toY float64, frames int, hold time.Duration) Snapshot {
	if frames < 1 {
		frames = 1
	}
	v.Push(Touch(fromX, fromY, v.nextInjectTime()))
	for i := 1; i <= frames; i++ {
		t := float64(i) / float64(frames)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		v.Push(Touch(x, y, v.nextInjectTime()))
	}
	if hold > 0 {
		v.wait(hold)
	}
	return v.Push(Release(toX, toY, v.nextInjectTime()))
}

// InjectPinch pushes a horizontal two-finger pinch centred on (cx, cy) whose
// finger distance goes from fromDist to toDist over frames samples, then
// lifts both fingers.
func (v *Viewer) InjectPinch(cx, cy, fromDist, toDist float64, frames int) Snapshot {
	if frames < 1 {
		frames = 1
	}
	for i := 0; i <= frames; i++ {
		t := float64(i) / float64(frames)
		half := (fromDist + (toDist-fromDist)*t) / 2
		v.Push(Touch2(cx-half, cy, cx+half, cy, v.nextInjectTime()))
	}
	return v.Push(Release(cx, cy, v.nextInjectTime()))
}
