package loupe

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tanema/gween/ease"
)

// ZoomLimit is the configured maximum zoom. ZoomAuto derives the limit from
// each image's natural width.
type ZoomLimit float64

// ZoomAuto selects AutoMaxScale per slide.
const ZoomAuto ZoomLimit = -1

// UnmarshalTOML accepts a number or the string "auto".
func (z *ZoomLimit) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case string:
		if strings.EqualFold(val, "auto") {
			*z = ZoomAuto
			return nil
		}
		return fmt.Errorf("max_zoom: want a number or \"auto\", got %q", val)
	case int64:
		*z = ZoomLimit(val)
	case float64:
		*z = ZoomLimit(val)
	default:
		return fmt.Errorf("max_zoom: unsupported type %T", v)
	}
	if *z < MinScale {
		return fmt.Errorf("max_zoom: %v is below %v", float64(*z), MinScale)
	}
	return nil
}

// String returns "auto" or the numeric limit.
func (z ZoomLimit) String() string {
	if z == ZoomAuto {
		return "auto"
	}
	return fmt.Sprintf("%g", float64(z))
}

// Default configuration values. Zero fields in Config fall back to these.
const (
	DefaultMaxZoom                = 3.0
	DefaultSwipeCommitThreshold   = 0.3
	DefaultSwipeVelocityThreshold = 500.0 // px/s
	DefaultTapSlop                = 10.0  // px
	DefaultTapTimeout             = 300 * time.Millisecond
	DefaultDoubleTapTimeout       = 300 * time.Millisecond
	DefaultDoubleTapSlop          = 30.0 // px
	DefaultVelocityWindow         = 50 * time.Millisecond
	DefaultMinPinchDistance       = 1.0 // px
	DefaultDamping                = 0.3
	DefaultTransitionDuration     = 300 * time.Millisecond
	DefaultEase                   = "out-cubic"
)

// Config holds the viewer's tunables. The zero value is usable; every zero
// field is replaced by its default when the viewer is created.
type Config struct {
	// MaxZoom is the zoom limit, or ZoomAuto.
	MaxZoom ZoomLimit `toml:"max_zoom"`
	// DefaultIndex is the slide shown when the viewer opens.
	DefaultIndex int `toml:"default_index"`
	// SwipeCommitThreshold is the fraction of viewport width a swipe must
	// travel to commit without help from velocity.
	SwipeCommitThreshold float64 `toml:"swipe_commit_threshold"`
	// SwipeVelocityThreshold is the flick speed in px/s that commits a swipe
	// regardless of distance.
	SwipeVelocityThreshold float64 `toml:"swipe_velocity_threshold"`
	// DoubleTapZoom is the zoom a double tap toggles to. Zero means MaxZoom.
	DoubleTapZoom float64 `toml:"double_tap_zoom"`

	TapSlop          float64       `toml:"tap_slop"`
	TapTimeout       time.Duration `toml:"tap_timeout"`
	DoubleTapTimeout time.Duration `toml:"double_tap_timeout"`
	DoubleTapSlop    float64       `toml:"double_tap_slop"`
	VelocityWindow   time.Duration `toml:"velocity_window"`
	MinPinchDistance float64       `toml:"min_pinch_distance"`

	// Damping scales gesture input beyond a soft limit (0 < Damping <= 1).
	Damping float64 `toml:"damping"`

	TransitionDuration time.Duration `toml:"transition_duration"`
	// Ease names a gween easing function, e.g. "out-cubic" or "linear".
	Ease string `toml:"ease"`

	// EaseFunc overrides Ease when set.
	EaseFunc ease.TweenFunc `toml:"-"`
	// Logger receives debug records. Nil means slog.Default().
	Logger *slog.Logger `toml:"-"`
}

var easeFuncs = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"out-quart":    ease.OutQuart,
	"out-quint":    ease.OutQuint,
	"out-sine":     ease.OutSine,
	"out-expo":     ease.OutExpo,
	"out-back":     ease.OutBack,
}

// withDefaults returns a copy of c with every zero field filled in.
func (c Config) withDefaults() Config {
	if c.MaxZoom == 0 {
		c.MaxZoom = DefaultMaxZoom
	}
	if c.SwipeCommitThreshold == 0 {
		c.SwipeCommitThreshold = DefaultSwipeCommitThreshold
	}
	if c.SwipeVelocityThreshold == 0 {
		c.SwipeVelocityThreshold = DefaultSwipeVelocityThreshold
	}
	if c.TapSlop == 0 {
		c.TapSlop = DefaultTapSlop
	}
	if c.TapTimeout == 0 {
		c.TapTimeout = DefaultTapTimeout
	}
	if c.DoubleTapTimeout == 0 {
		c.DoubleTapTimeout = DefaultDoubleTapTimeout
	}
	if c.DoubleTapSlop == 0 {
		c.DoubleTapSlop = DefaultDoubleTapSlop
	}
	if c.VelocityWindow == 0 {
		c.VelocityWindow = DefaultVelocityWindow
	}
	if c.MinPinchDistance == 0 {
		c.MinPinchDistance = DefaultMinPinchDistance
	}
	if c.Damping == 0 {
		c.Damping = DefaultDamping
	}
	if c.TransitionDuration == 0 {
		c.TransitionDuration = DefaultTransitionDuration
	}
	if c.Ease == "" {
		c.Ease = DefaultEase
	}
	if c.EaseFunc == nil {
		fn, ok := easeFuncs[c.Ease]
		if !ok {
			fn = easeFuncs[DefaultEase]
		}
		c.EaseFunc = fn
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// validate reports the first out-of-range field.
func (c Config) validate() error {
	switch {
	case c.MaxZoom != 0 && c.MaxZoom != ZoomAuto && c.MaxZoom < MinScale:
		return fmt.Errorf("max_zoom %v is below %v", float64(c.MaxZoom), MinScale)
	case c.SwipeCommitThreshold < 0 || c.SwipeCommitThreshold > 1:
		return fmt.Errorf("swipe_commit_threshold %v outside [0, 1]", c.SwipeCommitThreshold)
	case c.SwipeVelocityThreshold < 0:
		return fmt.Errorf("swipe_velocity_threshold %v is negative", c.SwipeVelocityThreshold)
	case c.DoubleTapZoom != 0 && c.DoubleTapZoom < MinScale:
		return fmt.Errorf("double_tap_zoom %v is below %v", c.DoubleTapZoom, MinScale)
	case c.Damping < 0 || c.Damping > 1:
		return fmt.Errorf("damping %v outside [0, 1]", c.Damping)
	case c.TapSlop < 0 || c.DoubleTapSlop < 0 || c.MinPinchDistance < 0:
		return fmt.Errorf("negative distance threshold")
	case c.TapTimeout < 0 || c.DoubleTapTimeout < 0 || c.VelocityWindow < 0 || c.TransitionDuration < 0:
		return fmt.Errorf("negative duration")
	}
	if c.Ease != "" {
		if _, ok := easeFuncs[c.Ease]; !ok {
			return fmt.Errorf("unknown ease %q", c.Ease)
		}
	}
	return nil
}

// maxScale returns the zoom limit for a slide with metrics m.
func (c *Config) maxScale(m ImageMetrics) float64 {
	if c.MaxZoom == ZoomAuto {
		return AutoMaxScale(m)
	}
	return max(MinScale, float64(c.MaxZoom))
}

// tapZoom returns the double-tap target for a slide with metrics m.
func (c *Config) tapZoom(m ImageMetrics) float64 {
	limit := c.maxScale(m)
	if c.DoubleTapZoom == 0 {
		return limit
	}
	return ClampScale(c.DoubleTapZoom, MinScale, limit)
}

// transitionSeconds returns TransitionDuration in the unit gween expects.
func (c *Config) transitionSeconds() float32 {
	return float32(c.TransitionDuration.Seconds())
}

// DecodeConfig parses a TOML document into a Config. Unknown keys are an
// error. Defaults are not applied; zero fields stay zero.
func DecodeConfig(data []byte) (Config, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("decode config: unknown keys %s", strings.Join(keys, ", "))
	}
	if err := c.validate(); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// LoadConfig reads and decodes a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return DecodeConfig(data)
}
