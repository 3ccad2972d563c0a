package classifier

type Kind uint8

const (
	KindNone Kind = iota
	KindFallingBackward
	KindFallingForward
	KindFallingDown
	KindDistress
	KindErrorReadingVideo
	KindNoEvent
)

var kindNames = map[Kind]string{
	KindNone:              "none",
	KindFallingBackward:   "falling_backward",
	KindFallingForward:    "falling_forward",
	KindFallingDown:       "falling_down",
	KindDistress:          "distress",
	KindErrorReadingVideo: "error_reading_video",
	KindNoEvent:           "no_event",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Condition is one of the fixed event/risk/precaution triples.
type Condition struct {
	Kind       Kind   `json:"-"`
	Event      string `json:"event"`
	Risk       string `json:"risk"`
	Precaution string `json:"precaution"`
}

var (
	FallingBackward = Condition{
		Kind:       KindFallingBackward,
		Event:      "⚠️ Falling backward",
		Risk:       "High risk of head/back injury",
		Precaution: "Check consciousness, support head/neck, call medical help",
	}
	FallingForward = Condition{
		Kind:       KindFallingForward,
		Event:      "⚠️ Falling forward",
		Risk:       "Risk of facial injury or broken arms",
		Precaution: "Ensure airway clear, stop bleeding, seek medical evaluation",
	}
	FallingDown = Condition{
		Kind:       KindFallingDown,
		Event:      "⚠️ Falling down",
		Risk:       "Possible fracture or trauma",
		Precaution: "Do not move patient, call emergency services",
	}
	Distress = Condition{
		Kind:       KindDistress,
		Event:      "😡 Distress/anger detected",
		Risk:       "Emotional stress, possible breathing difficulty",
		Precaution: "Calm patient, ensure safe environment, monitor breathing",
	}
	ErrorReadingVideo = Condition{
		Kind:       KindErrorReadingVideo,
		Event:      "Error reading video",
		Risk:       "Unknown",
		Precaution: "Check file format and try again",
	}
	NoEvent = Condition{
		Kind:       KindNoEvent,
		Event:      "No event detected",
		Risk:       "No immediate health risk",
		Precaution: "Continue monitoring",
	}
)

var vocabulary = []Condition{
	FallingBackward,
	FallingForward,
	FallingDown,
	Distress,
	ErrorReadingVideo,
	NoEvent,
}

// Detected reports whether c is one of the four frame-level detections.
func (c Condition) Detected() bool {
	switch c.Kind {
	case KindFallingBackward, KindFallingForward, KindFallingDown, KindDistress:
		return true
	default:
		return false
	}
}

// ByEvent maps a stored event label back to its condition.
func ByEvent(event string) (Condition, bool) {
	for _, c := range vocabulary {
		if c.Event == event {
			return c, true
		}
	}
	return Condition{}, false
}
