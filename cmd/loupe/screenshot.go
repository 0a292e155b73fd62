package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// screenshot queues a capture of the next rendered frame. The label ends up
// in the file name.
func (g *game) screenshot(label string) {
	g.shotQueue = append(g.shotQueue, label)
}

// flushScreenshots writes every queued capture of screen as a PNG in
// g.shotDir. Called at the end of Draw.
func (g *game) flushScreenshots(screen *ebiten.Image) {
	if len(g.shotQueue) == 0 {
		return
	}
	defer func() { g.shotQueue = g.shotQueue[:0] }()

	if err := os.MkdirAll(g.shotDir, 0o755); err != nil {
		g.log.Error("screenshot", "dir", g.shotDir, "err", err)
		return
	}

	img := frameImage(screen)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range g.shotQueue {
		path := filepath.Join(g.shotDir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			g.log.Error("screenshot", "err", err)
			continue
		}
		g.log.Info("screenshot saved", "path", path)
	}
}

// frameImage copies screen into a straight-alpha image.
func frameImage(screen *ebiten.Image) *image.NRGBA {
	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pixels); i += 4 {
		r, gr, bl, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			gr = uint8(min(int(gr)*255/int(a), 255))
			bl = uint8(min(int(bl)*255/int(a), 255))
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, gr, bl, a
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.', replacing everything else
// with '_'.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
