package landmark

import (
	"FallWatch/internal/entity"
	"context"
)

// Provider is the external pose / face-mesh model. A nil pose or an empty
// face slice means the model saw nothing in the frame.
type Provider interface {
	DetectPose(ctx context.Context, frame []byte) (*entity.Pose, error)
	DetectFaceMesh(ctx context.Context, frame []byte) ([]entity.FaceMesh, error)
}

type Model string

const (
	PoseModel     Model = "POSE"
	FaceMeshModel Model = "FACE_MESH"
)

func (m Model) Name() string {
	switch m {
	case PoseModel:
		return "Pose Landmarker"
	case FaceMeshModel:
		return "Face Mesh"
	default:
		return "Unknown Model"
	}
}

type poseResponse struct {
	Landmarks []entity.Point `json:"landmarks"`
	Error     string         `json:"error,omitempty"`
}

type faceMeshResponse struct {
	Faces [][]entity.Point `json:"faces"`
	Error string           `json:"error,omitempty"`
}
