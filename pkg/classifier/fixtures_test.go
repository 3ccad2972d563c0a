package classifier

import (
	"FallWatch/internal/entity"
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func pt(x, y float64) entity.Point {
	return entity.Point{X: x, Y: y, Visibility: 1}
}

// makePose fills a full 33-point skeleton and places the four points the
// rules read.
func makePose(nose, shoulder, hip, knee entity.Point) *entity.Pose {
	points := make([]entity.Point, entity.PoseLandmarkCount)
	points[entity.PoseNose] = nose
	points[entity.PoseLeftShoulder] = shoulder
	points[entity.PoseLeftHip] = hip
	points[entity.PoseLeftKnee] = knee
	return &entity.Pose{Landmarks: points}
}

func makeFace(upperLipY, lowerLipY float64) entity.FaceMesh {
	points := make([]entity.Point, 478)
	points[entity.FaceUpperLip] = pt(0.5, upperLipY)
	points[entity.FaceLowerLip] = pt(0.5, lowerLipY)
	return entity.FaceMesh{Landmarks: points}
}

var (
	// Upright: hip below shoulder, straight hip angle.
	standingPose = makePose(pt(0.5, 0.1), pt(0.5, 0.3), pt(0.5, 0.6), pt(0.5, 0.8))
	// Hip above shoulder, head below shoulder, straight hip angle.
	backwardPose = makePose(pt(0.5, 0.7), pt(0.5, 0.5), pt(0.5, 0.3), pt(0.5, 0.1))
	// Hip above shoulder, head above shoulder, straight hip angle.
	forwardPose = makePose(pt(0.6, 0.4), pt(0.5, 0.5), pt(0.5, 0.3), pt(0.5, 0.1))
	// Backward posture with the knee folded to 90° at the hip.
	backwardFoldedPose = makePose(pt(0.5, 0.7), pt(0.5, 0.5), pt(0.5, 0.3), pt(0.7, 0.3))
	// Upright posture with the knee folded to 90° at the hip.
	seatedPose = makePose(pt(0.5, 0.1), pt(0.5, 0.3), pt(0.5, 0.6), pt(0.7, 0.6))
)

type fakeProvider struct {
	pose     *entity.Pose
	poseErr  error
	faces    []entity.FaceMesh
	facesErr error

	poseCalls int
	faceCalls int
}

func (f *fakeProvider) DetectPose(ctx context.Context, frame []byte) (*entity.Pose, error) {
	f.poseCalls++
	return f.pose, f.poseErr
}

func (f *fakeProvider) DetectFaceMesh(ctx context.Context, frame []byte) ([]entity.FaceMesh, error) {
	f.faceCalls++
	return f.faces, f.facesErr
}
