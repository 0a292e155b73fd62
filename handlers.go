package loupe

// handlerKind identifies which observer list a CallbackHandle belongs to.
type handlerKind uint8

const (
	handlerIndexChange handlerKind = iota
	handlerZoomChange
	handlerTap
)

type indexHandler struct {
	id uint32
	fn func(oldIndex, newIndex int)
}

type zoomHandler struct {
	id uint32
	fn func(slide int, scale float64)
}

type tapHandler struct {
	id uint32
	fn func(x, y float64)
}

type handlerRegistry struct {
	indexChange []indexHandler
	zoomChange  []zoomHandler
	tap         []tapHandler
	nextID      uint32
}

// CallbackHandle allows removing a registered observer.
type CallbackHandle struct {
	id   uint32
	reg  *handlerRegistry
	kind handlerKind
}

// Remove unregisters the observer so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.kind {
	case handlerIndexChange:
		h.reg.indexChange = removeHandler(h.reg.indexChange, func(e indexHandler) bool { return e.id == h.id })
	case handlerZoomChange:
		h.reg.zoomChange = removeHandler(h.reg.zoomChange, func(e zoomHandler) bool { return e.id == h.id })
	case handlerTap:
		h.reg.tap = removeHandler(h.reg.tap, func(e tapHandler) bool { return e.id == h.id })
	}
}

func removeHandler[T any](s []T, match func(T) bool) []T {
	for i := range s {
		if match(s[i]) {
			var zero T
			copy(s[i:], s[i+1:])
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	return s
}

// OnIndexChange registers an observer for committed index changes: a swipe
// commit, a JumpTo that changes the index, or Close restoring the default
// index. Transient drag offsets never trigger it.
func (v *Viewer) OnIndexChange(fn func(oldIndex, newIndex int)) CallbackHandle {
	v.handlers.nextID++
	id := v.handlers.nextID
	v.handlers.indexChange = append(v.handlers.indexChange, indexHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &v.handlers, kind: handlerIndexChange}
}

// OnZoomChange registers an observer for settled scale changes of any slide.
// It fires when a gesture or animation ends at a new scale, not during it.
func (v *Viewer) OnZoomChange(fn func(slide int, scale float64)) CallbackHandle {
	v.handlers.nextID++
	id := v.handlers.nextID
	v.handlers.zoomChange = append(v.handlers.zoomChange, zoomHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &v.handlers, kind: handlerZoomChange}
}

// OnTap registers an observer for single taps, given in screen coordinates.
// Viewers commonly close on tap.
func (v *Viewer) OnTap(fn func(x, y float64)) CallbackHandle {
	v.handlers.nextID++
	id := v.handlers.nextID
	v.handlers.tap = append(v.handlers.tap, tapHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &v.handlers, kind: handlerTap}
}

func (v *Viewer) fireIndexChange(oldIndex, newIndex int) {
	for _, h := range v.handlers.indexChange {
		h.fn(oldIndex, newIndex)
	}
}

func (v *Viewer) fireZoomChange(slide int, scale float64) {
	for _, h := range v.handlers.zoomChange {
		h.fn(slide, scale)
	}
}

func (v *Viewer) fireTap(x, y float64) {
	for _, h := range v.handlers.tap {
		h.fn(x, y)
	}
}
