package main

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/loupe"
	"github.com/phanxgames/loupe/pointer"
)

const wheelZoomStep = 1.15

// game renders a loupe.Viewer with Ebitengine.
type game struct {
	viewer *loupe.Viewer
	source *pointer.Source
	loader *loader
	paths  []string
	images []*ebiten.Image
	log    *slog.Logger

	// drained counts load results taken off the loader, failures included.
	drained int

	// script, if set, is replayed once every image has loaded.
	script *loupe.Script

	shotDir   string
	shotQueue []string

	width, height int
	showFooter    bool
}

func newGame(v *loupe.Viewer, paths []string, shotDir string, log *slog.Logger) *game {
	g := &game{
		viewer:     v,
		source:     pointer.NewSource(),
		loader:     newLoader(paths, log),
		paths:      paths,
		images:     make([]*ebiten.Image, len(paths)),
		log:        log,
		shotDir:    shotDir,
		showFooter: true,
	}
	v.OnTap(func(x, y float64) { g.showFooter = !g.showFooter })
	v.OnIndexChange(func(oldIndex, newIndex int) {
		log.Info("slide", "index", newIndex, "path", paths[newIndex])
	})
	v.OnZoomChange(func(slide int, scale float64) {
		log.Debug("zoom", "slide", slide, "scale", scale)
	})
	return g
}

func (g *game) Update() error {
	g.drainLoads()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.viewer.Close()
	}
	if !g.viewer.Visible() {
		return ebiten.Termination
	}
	g.handleKeys()
	g.runScript()

	if s, ok := g.source.Poll(); ok {
		g.viewer.Push(s)
	}
	if dy, x, y := pointer.Wheel(); dy != 0 {
		scale := g.viewer.Snapshot().Scale * math.Pow(wheelZoomStep, dy)
		g.viewer.ZoomAt(scale, x, y)
	}

	g.viewer.Advance(float32(1.0 / float64(ebiten.TPS())))
	return nil
}

func (g *game) handleKeys() {
	i := g.viewer.Index()
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.screenshot(filepath.Base(g.paths[i]))
	}
	target, immediate := i, false
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		target = i - 1
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		target = i + 1
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		target, immediate = 0, true
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		target, immediate = g.viewer.Total()-1, true
	default:
		return
	}
	if err := g.viewer.JumpTo(target, immediate); err != nil && !loupe.IsOutOfRange(err) {
		g.log.Error("jump", "err", err)
	}
}

// runScript replays the gesture script once all images are in, then captures
// the result.
func (g *game) runScript() {
	if g.script == nil || g.drained < len(g.paths) {
		return
	}
	snap, err := g.script.Run(g.viewer)
	g.script = nil
	g.source.SkipTo(g.viewer.InputClock())
	if err != nil {
		g.log.Error("gesture script", "err", err)
		return
	}
	g.log.Info("gesture script done", "index", snap.Index, "scale", snap.Scale, "panX", snap.PanX, "panY", snap.PanY)
	g.screenshot("script")
}

// drainLoads installs decoded images without blocking.
func (g *game) drainLoads() {
	for {
		select {
		case r := <-g.loader.done:
			g.drained++
			if r.err != nil {
				continue
			}
			b := r.img.Bounds()
			g.images[r.index] = ebiten.NewImageFromImage(r.img)
			if err := g.viewer.SetImageMetrics(r.index, float64(b.Dx()), float64(b.Dy())); err != nil {
				g.log.Error("set metrics", "err", err)
			}
		default:
			return
		}
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	snap := g.viewer.Snapshot()
	vw, vh := float64(g.width), float64(g.height)

	for k := -1; k <= 1; k++ {
		i := snap.Index + k
		if i < 0 || i >= snap.Total || g.images[i] == nil {
			continue
		}
		m := g.viewer.Slide(i).Metrics()
		scale, panX, panY := 1.0, 0.0, 0.0
		if k == 0 {
			scale, panX, panY = snap.Scale, snap.PanX, snap.PanY
		}

		var op ebiten.DrawImageOptions
		op.GeoM.Translate(-m.NaturalWidth/2, -m.NaturalHeight/2)
		op.GeoM.Scale(m.FitScale()*scale, m.FitScale()*scale)
		op.GeoM.Translate(vw/2+float64(k)*vw+snap.DragOffset+panX, vh/2+panY)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(g.images[i], &op)
	}

	if g.showFooter {
		footer := fmt.Sprintf("%d / %d   loaded %d", snap.Index+1, snap.Total, g.loader.loaded.Load())
		if n := g.loader.failed.Load(); n > 0 {
			footer += fmt.Sprintf("   failed %d", n)
		}
		ebitenutil.DebugPrintAt(screen, footer, 8, g.height-20)
	}
	g.flushScreenshots(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.viewer.SetViewport(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}
