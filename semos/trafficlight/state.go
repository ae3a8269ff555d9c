package trafficlight

// State is one phase of the light cycle.
type State uint8

const (
	GreenCar State = iota
	YellowCar
	SafetyGapBefore
	GreenPedestrian
	SafetyGapAfter

	stateCount
)

var next = [stateCount]State{
	GreenCar:        YellowCar,
	YellowCar:       SafetyGapBefore,
	SafetyGapBefore: GreenPedestrian,
	GreenPedestrian: SafetyGapAfter,
	SafetyGapAfter:  GreenCar,
}

// Next returns the state that follows s in the cycle. Invalid states
// restart the cycle.
func Next(s State) State {
	if !s.Valid() {
		return GreenCar
	}
	return next[s]
}

// States returns every state in cycle order.
func States() []State {
	return []State{GreenCar, YellowCar, SafetyGapBefore, GreenPedestrian, SafetyGapAfter}
}

func (s State) Valid() bool { return s < stateCount }

func (s State) String() string {
	switch s {
	case GreenCar:
		return "GREEN_CAR"
	case YellowCar:
		return "YELLOW_CAR"
	case SafetyGapBefore:
		return "SAFETY_GAP_BEFORE"
	case GreenPedestrian:
		return "GREEN_PEDESTRIAN"
	case SafetyGapAfter:
		return "SAFETY_GAP_AFTER"
	default:
		return "UNKNOWN"
	}
}
