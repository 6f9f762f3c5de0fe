package renderer

import (
	"errors"
	"fmt"
)

// FrameState is the orchestrator's position within one camera frame.
type FrameState int

const (
	StateIdle FrameState = iota
	StateCulled
	StateLightsCollected
	StateShadowsRendered
	StateGeometryRendered
	StatePostProcessed
	StateSubmitted
)

func (s FrameState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateCulled:
		return "Culled"
	case StateLightsCollected:
		return "LightsCollected"
	case StateShadowsRendered:
		return "ShadowsRendered"
	case StateGeometryRendered:
		return "GeometryRendered"
	case StatePostProcessed:
		return "PostProcessed"
	case StateSubmitted:
		return "Submitted"
	default:
		return fmt.Sprintf("FrameState(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when a stage runs out of order.
var ErrInvalidTransition = errors.New("invalid frame state transition")

// next lists the states reachable from each state. Any state may fall back to
// Idle when a camera is abandoned. The render graph executor has no shadow
// stage and goes straight from LightsCollected to GeometryRendered.
var next = map[FrameState][]FrameState{
	StateIdle:             {StateCulled},
	StateCulled:           {StateLightsCollected},
	StateLightsCollected:  {StateShadowsRendered, StateGeometryRendered},
	StateShadowsRendered:  {StateGeometryRendered},
	StateGeometryRendered: {StatePostProcessed},
	StatePostProcessed:    {StateSubmitted},
	StateSubmitted:        {},
}

// CanTransition reports whether to may follow from.
func CanTransition(from, to FrameState) bool {
	if to == StateIdle {
		return true
	}
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}
