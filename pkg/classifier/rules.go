package classifier

import (
	"FallWatch/internal/entity"
	"math"
)

const (
	HipAngleThreshold  = 120.0
	MouthOpenThreshold = 0.03
)

// Rule yields Condition when Match holds for a frame's landmarks.
type Rule struct {
	Name      string
	Condition Condition
	Match     func(entity.Landmarks) bool
}

// DefaultRules is ordered by precedence, highest first. The face rule beats
// the hip-angle rule, which beats both posture rules.
var DefaultRules = []Rule{
	{Name: "mouth_open", Condition: Distress, Match: mouthOpen},
	{Name: "hip_angle", Condition: FallingDown, Match: hipAngleClosed},
	{Name: "inverted_head_down", Condition: FallingBackward, Match: invertedHeadDown},
	{Name: "inverted_head_up", Condition: FallingForward, Match: invertedHeadUp},
}

// Evaluate returns the condition of the first matching rule.
func Evaluate(lm entity.Landmarks, rules []Rule) (Condition, bool) {
	for _, r := range rules {
		if r.Match(lm) {
			return r.Condition, true
		}
	}
	return Condition{}, false
}

type posture struct {
	nose, shoulder, hip, knee entity.Point
}

func leftPosture(p *entity.Pose) (posture, bool) {
	nose, ok1 := p.At(entity.PoseNose)
	shoulder, ok2 := p.At(entity.PoseLeftShoulder)
	hip, ok3 := p.At(entity.PoseLeftHip)
	knee, ok4 := p.At(entity.PoseLeftKnee)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return posture{}, false
	}
	return posture{nose: nose, shoulder: shoulder, hip: hip, knee: knee}, true
}

// Smaller y is higher in the frame.
func invertedHeadDown(lm entity.Landmarks) bool {
	p, ok := leftPosture(lm.Pose)
	return ok && p.hip.Y < p.shoulder.Y && p.nose.Y > p.shoulder.Y
}

func invertedHeadUp(lm entity.Landmarks) bool {
	p, ok := leftPosture(lm.Pose)
	return ok && p.hip.Y < p.shoulder.Y && p.nose.Y < p.shoulder.Y
}

func hipAngleClosed(lm entity.Landmarks) bool {
	p, ok := leftPosture(lm.Pose)
	return ok && Angle(p.shoulder, p.hip, p.knee) < HipAngleThreshold
}

// Only the first face counts; the provider runs with a single-face limit.
func mouthOpen(lm entity.Landmarks) bool {
	if len(lm.Faces) == 0 {
		return false
	}
	upper, ok1 := lm.Faces[0].At(entity.FaceUpperLip)
	lower, ok2 := lm.Faces[0].At(entity.FaceLowerLip)
	if !ok1 || !ok2 {
		return false
	}
	return math.Abs(lower.Y-upper.Y) > MouthOpenThreshold
}
