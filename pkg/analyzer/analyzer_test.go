package analyzer

import (
	"FallWatch/pkg/classifier"
	"FallWatch/pkg/video"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// memorySource replays frames and fails with err after them when set.
type memorySource struct {
	frames [][]byte
	pos    int
	err    error
	closed int
}

func (s *memorySource) Next() ([]byte, error) {
	if s.pos < len(s.frames) {
		f := s.frames[s.pos]
		s.pos++
		return f, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, io.EOF
}

func (s *memorySource) Close() error {
	s.closed++
	return nil
}

type fakeOpener struct {
	src     *memorySource
	openErr error
}

func (o *fakeOpener) Open(ctx context.Context, path string) (video.Source, error) {
	if o.openErr != nil {
		return nil, o.openErr
	}
	o.src.pos = 0
	return o.src, nil
}

// scriptedClassifier maps a one-byte frame to a condition; byte 0 means
// nothing detected and byte 9 a frame the landmark models failed on.
type scriptedClassifier struct {
	calls int
}

var script = map[byte]classifier.Condition{
	1: classifier.FallingBackward,
	2: classifier.FallingForward,
	3: classifier.FallingDown,
	4: classifier.Distress,
}

func (c *scriptedClassifier) Classify(ctx context.Context, frame []byte) classifier.Verdict {
	c.calls++
	if frame[0] == 9 {
		return classifier.Verdict{Degraded: true}
	}
	cond, ok := script[frame[0]]
	return classifier.Verdict{Condition: cond, Matched: ok}
}

func frames(codes ...byte) [][]byte {
	out := make([][]byte, len(codes))
	for i, c := range codes {
		out[i] = []byte{c}
	}
	return out
}

func TestAnalyze_UnopenableSource(t *testing.T) {
	fc := &scriptedClassifier{}
	a := New(&fakeOpener{openErr: fmt.Errorf("%w: bad codec", video.ErrCannotOpen)}, fc, quietLogger())

	report, err := a.Analyze(context.Background(), "broken.mp4")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.Result != classifier.ErrorReadingVideo {
		t.Errorf("expected error-reading-video result, got %q", report.Result.Event)
	}
	if fc.calls != 0 {
		t.Errorf("classifier must not run for an unopenable source, ran %d times", fc.calls)
	}
}

func TestAnalyze_NoConditions(t *testing.T) {
	src := &memorySource{frames: frames(0, 0, 0)}
	fc := &scriptedClassifier{}
	a := New(&fakeOpener{src: src}, fc, quietLogger())

	report, err := a.Analyze(context.Background(), "calm.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Result != classifier.NoEvent {
		t.Errorf("expected no-event result, got %q", report.Result.Event)
	}
	if report.FramesProcessed != 3 || report.FramesMatched != 0 {
		t.Errorf("unexpected counters: processed=%d matched=%d", report.FramesProcessed, report.FramesMatched)
	}
	if fc.calls != 3 {
		t.Errorf("expected 3 classifier calls, got %d", fc.calls)
	}
	if src.closed != 1 {
		t.Errorf("expected source closed once, got %d", src.closed)
	}
}

func TestAnalyze_EmptyVideo(t *testing.T) {
	src := &memorySource{}
	a := New(&fakeOpener{src: src}, &scriptedClassifier{}, quietLogger())

	report, err := a.Analyze(context.Background(), "empty.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Result != classifier.NoEvent {
		t.Errorf("expected no-event result, got %q", report.Result.Event)
	}
	if src.closed != 1 {
		t.Errorf("expected source closed, got %d", src.closed)
	}
}

func TestAnalyze_MajorityVote(t *testing.T) {
	tests := []struct {
		name  string
		codes []byte
		want  classifier.Condition
	}{
		{name: "A A B", codes: []byte{3, 0, 3, 4}, want: classifier.FallingDown},
		{name: "A B B", codes: []byte{3, 4, 0, 4}, want: classifier.Distress},
		{name: "tie keeps first", codes: []byte{0, 2, 1}, want: classifier.FallingForward},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &memorySource{frames: frames(tt.codes...)}
			a := New(&fakeOpener{src: src}, &scriptedClassifier{}, quietLogger())

			report, err := a.Analyze(context.Background(), "clip.mp4")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.Result != tt.want {
				t.Errorf("Analyze() = %q, want %q", report.Result.Event, tt.want.Event)
			}
		})
	}
}

func TestAnalyze_CountsDegradedFrames(t *testing.T) {
	src := &memorySource{frames: frames(9, 3, 9, 0)}
	a := New(&fakeOpener{src: src}, &scriptedClassifier{}, quietLogger())

	report, err := a.Analyze(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.FramesDegraded != 2 {
		t.Errorf("expected 2 degraded frames, got %d", report.FramesDegraded)
	}
	if report.Complete() {
		t.Error("a report with degraded frames must not be complete")
	}
	if report.Result != classifier.FallingDown {
		t.Errorf("degraded frames must not vote, got %q", report.Result.Event)
	}

	clean, err := New(&fakeOpener{src: &memorySource{frames: frames(0, 0)}}, &scriptedClassifier{}, quietLogger()).
		Analyze(context.Background(), "calm.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !clean.Complete() {
		t.Errorf("expected a complete report, got %d degraded frames", clean.FramesDegraded)
	}
}

func TestAnalyze_DecodeFaultReleasesSource(t *testing.T) {
	decodeErr := errors.New("corrupt packet")
	src := &memorySource{frames: frames(3, 3), err: decodeErr}
	a := New(&fakeOpener{src: src}, &scriptedClassifier{}, quietLogger())

	_, err := a.Analyze(context.Background(), "corrupt.mp4")
	if !errors.Is(err, decodeErr) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if src.closed != 1 {
		t.Errorf("expected source closed after decode fault, got %d", src.closed)
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	src := &memorySource{frames: frames(1, 2, 2, 0, 1, 4)}
	a := New(&fakeOpener{src: src}, &scriptedClassifier{}, quietLogger())

	first, err := a.Analyze(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.Analyze(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Result != second.Result || first.FramesMatched != second.FramesMatched {
		t.Errorf("results differ across runs: %+v vs %+v", first, second)
	}
	if first.Result != classifier.FallingBackward {
		t.Errorf("expected falling backward, got %q", first.Result.Event)
	}
}

func TestAnalyze_Progress(t *testing.T) {
	src := &memorySource{frames: frames(0, 1, 0)}
	var seen []int
	a := New(&fakeOpener{src: src}, &scriptedClassifier{}, quietLogger(),
		WithProgress(func(i int) { seen = append(seen, i) }))

	if _, err := a.Analyze(context.Background(), "clip.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Errorf("unexpected progress callbacks: %v", seen)
	}
}
