package classifier

import (
	"FallWatch/internal/entity"
	"FallWatch/pkg/landmark"
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type Classifier struct {
	provider landmark.Provider
	rules    []Rule
	log      *logrus.Logger
}

// Verdict is the outcome for one frame. Degraded marks a frame on which at
// least one landmark model failed, so a miss there proves nothing.
type Verdict struct {
	Condition Condition
	Matched   bool
	Degraded  bool
}

func New(provider landmark.Provider, log *logrus.Logger) *Classifier {
	return &Classifier{
		provider: provider,
		rules:    DefaultRules,
		log:      log,
	}
}

// Classify runs both landmark models on frame and returns the condition of
// the highest-precedence rule that fires, if any. A model that errors
// contributes no landmarks and marks the verdict degraded.
func (c *Classifier) Classify(ctx context.Context, frame []byte) Verdict {
	lm, err := c.Detect(ctx, frame)
	cond, ok := Evaluate(lm, c.rules)
	return Verdict{Condition: cond, Matched: ok, Degraded: err != nil}
}

// Detect returns whatever landmarks the models produced. The error joins
// every model failure; the landmarks are still usable when it is non-nil.
func (c *Classifier) Detect(ctx context.Context, frame []byte) (entity.Landmarks, error) {
	var (
		lm   entity.Landmarks
		errs []error
	)

	pose, err := c.provider.DetectPose(ctx, frame)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"error":      err.Error(),
			"frame_size": len(frame),
		}).Warn("Pose detection failed, skipping pose rules")
		errs = append(errs, fmt.Errorf("pose: %w", err))
	} else {
		lm.Pose = pose
	}

	faces, err := c.provider.DetectFaceMesh(ctx, frame)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"error":      err.Error(),
			"frame_size": len(frame),
		}).Warn("Face mesh detection failed, skipping face rules")
		errs = append(errs, fmt.Errorf("face mesh: %w", err))
	} else {
		lm.Faces = faces
	}

	return lm, errors.Join(errs...)
}
