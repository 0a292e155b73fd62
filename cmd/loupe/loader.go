package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"go.uber.org/atomic"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

const maxParallelDecodes = 4

// loadResult is one decoded image, delivered to the game loop.
type loadResult struct {
	index int
	img   image.Image
	err   error
}

// loader decodes images in the background. Results arrive on done and are
// consumed on the game goroutine, which is the only one touching the viewer.
type loader struct {
	paths  []string
	done   chan loadResult
	loaded atomic.Int64
	failed atomic.Int64
	log    *slog.Logger
}

func newLoader(paths []string, log *slog.Logger) *loader {
	return &loader{
		paths: paths,
		done:  make(chan loadResult, len(paths)),
		log:   log,
	}
}

// start decodes every path with bounded parallelism. It returns immediately.
func (l *loader) start() {
	go func() {
		var g errgroup.Group
		g.SetLimit(maxParallelDecodes)
		for i, path := range l.paths {
			i, path := i, path
			g.Go(func() error {
				img, err := decodeFile(path)
				if err != nil {
					l.failed.Inc()
					l.log.Warn("decode image", "path", path, "err", err)
				} else {
					l.loaded.Inc()
				}
				l.done <- loadResult{index: i, img: img, err: err}
				return nil
			})
		}
		_ = g.Wait()
		l.log.Debug("all images decoded", "loaded", l.loaded.Load(), "failed", l.failed.Load())
	}()
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
