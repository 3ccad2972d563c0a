package entity

// MediaPipe pose topology indices used by the fall rules.
const (
	PoseNose          = 0
	PoseLeftShoulder  = 11
	PoseRightShoulder = 12
	PoseLeftHip       = 23
	PoseRightHip      = 24
	PoseLeftKnee      = 25
	PoseRightKnee     = 26
	PoseLandmarkCount = 33
)

// Face mesh indices of the inner lips.
const (
	FaceUpperLip = 13
	FaceLowerLip = 14
)

// Point is a landmark in normalized image space, origin top-left.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility,omitempty"`
}

type Pose struct {
	Landmarks []Point `json:"landmarks"`
}

// At returns the landmark at idx and whether the provider reported it.
func (p *Pose) At(idx int) (Point, bool) {
	if p == nil || idx < 0 || idx >= len(p.Landmarks) {
		return Point{}, false
	}
	return p.Landmarks[idx], true
}

type FaceMesh struct {
	Landmarks []Point `json:"landmarks"`
}

func (f FaceMesh) At(idx int) (Point, bool) {
	if idx < 0 || idx >= len(f.Landmarks) {
		return Point{}, false
	}
	return f.Landmarks[idx], true
}

// Landmarks is everything the provider returned for one frame.
type Landmarks struct {
	Pose  *Pose
	Faces []FaceMesh
}
