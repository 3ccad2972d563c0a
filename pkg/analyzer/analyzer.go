// Package analyzer reduces a whole video to a single fall/distress result.
package analyzer

import (
	"FallWatch/pkg/classifier"
	"FallWatch/pkg/video"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// FrameClassifier classifies one decoded frame.
type FrameClassifier interface {
	Classify(ctx context.Context, frame []byte) classifier.Verdict
}

type Report struct {
	Result          classifier.Condition
	FramesProcessed int
	FramesMatched   int
	// FramesDegraded counts frames on which a landmark model failed. A
	// report with any such frame may be a false negative.
	FramesDegraded int
	Tally          []classifier.Tally
}

// Complete reports whether every frame was seen by every landmark model.
func (r Report) Complete() bool {
	return r.FramesDegraded == 0
}

type Analyzer struct {
	opener     video.Opener
	classifier FrameClassifier
	log        *logrus.Logger
	onFrame    func(index int)
}

type Option func(*Analyzer)

// WithProgress registers fn to be called after every frame with its
// 1-based index.
func WithProgress(fn func(index int)) Option {
	return func(a *Analyzer) {
		a.onFrame = fn
	}
}

func New(opener video.Opener, fc FrameClassifier, log *logrus.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		opener:     opener,
		classifier: fc,
		log:        log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze reads every frame of path in order, classifies it and votes.
//
// A source that cannot be opened yields ErrorReadingVideo without touching
// the classifier. A decode fault after opening is returned as an error.
func (a *Analyzer) Analyze(ctx context.Context, path string) (Report, error) {
	src, err := a.opener.Open(ctx, path)
	if err != nil {
		a.log.WithFields(logrus.Fields{
			"path":  path,
			"error": err.Error(),
		}).Error("Could not open video file")
		return Report{Result: classifier.ErrorReadingVideo}, nil
	}
	defer func() {
		if err := src.Close(); err != nil {
			a.log.WithFields(logrus.Fields{
				"path":  path,
				"error": err.Error(),
			}).Warn("Failed to release video source")
		}
	}()

	var (
		predictions []classifier.Condition
		frameCount  int
		degraded    int
	)

	for {
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Report{FramesProcessed: frameCount, FramesDegraded: degraded}, fmt.Errorf("read frame %d: %w", frameCount+1, err)
		}

		frameCount++
		v := a.classifier.Classify(ctx, frame)
		if v.Matched {
			predictions = append(predictions, v.Condition)
		}
		if v.Degraded {
			degraded++
		}
		if a.onFrame != nil {
			a.onFrame(frameCount)
		}
	}

	entry := a.log.WithFields(logrus.Fields{
		"path":     path,
		"frames":   frameCount,
		"matched":  len(predictions),
		"degraded": degraded,
	})
	if degraded > 0 {
		entry.Warn("Processed video frames with landmark model failures")
	} else {
		entry.Info("Processed video frames")
	}

	result, tally := classifier.Vote(predictions)

	a.log.WithFields(logrus.Fields{
		"path":  path,
		"event": result.Event,
	}).Info("Final summarized prediction")

	return Report{
		Result:          result,
		FramesProcessed: frameCount,
		FramesMatched:   len(predictions),
		FramesDegraded:  degraded,
		Tally:           tally,
	}, nil
}
