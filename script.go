package loupe

import (
	"encoding/json"
	"fmt"
	"time"
)

// scriptStep is a single action in a gesture script.
type scriptStep struct {
	Action    string  `json:"action"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	FromX     float64 `json:"fromX,omitempty"`
	FromY     float64 `json:"fromY,omitempty"`
	ToX       float64 `json:"toX,omitempty"`
	ToY       float64 `json:"toY,omitempty"`
	From      float64 `json:"from,omitempty"`
	To        float64 `json:"to,omitempty"`
	Frames    int     `json:"frames,omitempty"`
	HoldMS    int     `json:"holdMs,omitempty"`
	Index     int     `json:"index,omitempty"`
	Immediate bool    `json:"immediate,omitempty"`
	Seconds   float64 `json:"seconds,omitempty"`
}

// gestureScript is the top-level JSON structure for a gesture script.
type gestureScript struct {
	Steps []scriptStep `json:"steps"`
}

// Script replays a sequence of synthetic gestures against a Viewer. It is
// used for automated tests and reproducible demos.
type Script struct {
	steps []scriptStep
}

var scriptActions = map[string]bool{
	"tap": true, "doubletap": true, "drag": true, "pinch": true,
	"jump": true, "advance": true, "open": true, "close": true,
}

// LoadGestureScript parses a JSON gesture script.
func LoadGestureScript(jsonData []byte) (*Script, error) {
	var script gestureScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse gesture script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse gesture script: no steps")
	}
	for i, st := range script.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse gesture script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: script.Steps}, nil
}

// Len returns the number of steps.
func (s *Script) Len() int {
	return len(s.steps)
}

// Run plays every step against v and returns the final snapshot. "advance"
// steps tick the animation clock at 60 Hz and move the input clock by the
// same amount, so taps on either side of one are not paired.
func (s *Script) Run(v *Viewer) (Snapshot, error) {
	for i, st := range s.steps {
		switch st.Action {
		case "tap":
			v.InjectTap(st.X, st.Y)
		case "doubletap":
			v.InjectDoubleTap(st.X, st.Y)
		case "drag":
			v.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames,
				time.Duration(st.HoldMS)*time.Millisecond)
		case "pinch":
			v.InjectPinch(st.X, st.Y, st.From, st.To, st.Frames)
		case "jump":
			if err := v.JumpTo(st.Index, st.Immediate); err != nil {
				return v.Snapshot(), fmt.Errorf("gesture script step %d: %w", i, err)
			}
		case "advance":
			const frame = float32(1.0 / 60)
			for left := float32(st.Seconds); left > 0; left -= frame {
				v.Advance(min(frame, left))
			}
			v.wait(time.Duration(st.Seconds * float64(time.Second)))
		case "open":
			v.Open()
		case "close":
			v.Close()
		}
	}
	return v.Snapshot(), nil
}
