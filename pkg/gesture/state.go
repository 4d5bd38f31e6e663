package gesture

// State is the classifier's externally visible gesture state
type State int

const (
	// StateUnavailable means the classifier is stabilizing after a probe
	// change and its output must not be trusted
	StateUnavailable State = iota
	// StateCalibrating means baseline energy and threshold samples are
	// still being collected
	StateCalibrating
	// StateNone means detection is active and no gesture is present
	StateNone
	// StateToward means a hand is moving toward the microphone
	StateToward
	// StateAway means a hand is moving away from the microphone
	StateAway
)

func (s State) String() string {
	switch s {
	case StateUnavailable:
		return "unavailable"
	case StateCalibrating:
		return "calibrating"
	case StateNone:
		return "none"
	case StateToward:
		return "toward"
	case StateAway:
		return "away"
	default:
		return "unknown"
	}
}

// Detecting reports whether the classifier has finished calibrating and its
// state reflects actual gesture detection
func (s State) Detecting() bool {
	return s == StateNone || s == StateToward || s == StateAway
}
