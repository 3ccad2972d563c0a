package detectionService

import (
	"FallWatch/internal/api/detection"
	detectionRepository "FallWatch/internal/api/detection/repository"
	"FallWatch/internal/entity"
	"FallWatch/pkg/analyzer"
	"FallWatch/pkg/classifier"
	"FallWatch/pkg/mqtt"
	"FallWatch/pkg/redis"
	"FallWatch/pkg/smtp"
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func videoHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("video", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("failed to parse form: %v", err)
	}
	return req.MultipartForm.File["video"][0]
}

type memoryStore struct {
	mu       sync.Mutex
	items    map[string]entity.Analysis
	failNext error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: map[string]entity.Analysis{}}
}

func (m *memoryStore) CreateAnalysis(ctx context.Context, a entity.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.items[a.ID] = a
	return nil
}

func (m *memoryStore) GetByID(ctx context.Context, id string) (entity.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return entity.Analysis{}, detection.ErrAnalysisNotFound
	}
	return a, nil
}

func (m *memoryStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]entity.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entity.Analysis
	for _, a := range m.items {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if offset >= len(out) {
		return []entity.Analysis{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) all() []entity.Analysis {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Analysis, 0, len(m.items))
	for _, a := range m.items {
		out = append(out, a)
	}
	return out
}

type fakeRepo struct {
	store *memoryStore
}

func (r *fakeRepo) NewClient(tx bool) (detectionRepository.Client, error) {
	return detectionRepository.Client{
		Analyses: r.store,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type fakeAnalyzer struct {
	report analyzer.Report
	err    error
	paths  []string
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, path string) (analyzer.Report, error) {
	a.paths = append(a.paths, path)
	return a.report, a.err
}

type fakeClassifier struct {
	verdict classifier.Verdict
}

func (c *fakeClassifier) Classify(ctx context.Context, frame []byte) classifier.Verdict {
	return c.verdict
}

type fakeCache struct {
	items  map[string]redis.CachedAnalysis
	getErr error
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]redis.CachedAnalysis{}}
}

func (c *fakeCache) GetAnalysis(ctx context.Context, hash string) (redis.CachedAnalysis, error) {
	if c.getErr != nil {
		return redis.CachedAnalysis{}, c.getErr
	}
	hit, ok := c.items[hash]
	if !ok {
		return redis.CachedAnalysis{}, redis.ErrCacheMiss
	}
	return hit, nil
}

func (c *fakeCache) SetAnalysis(ctx context.Context, hash string, result redis.CachedAnalysis, expiration time.Duration) error {
	c.sets++
	c.items[hash] = result
	return nil
}

type fakeArchive struct {
	err        error
	presignErr error
	deleteErr  error
	keys       []string
	deleted    []string
}

func (a *fakeArchive) UploadVideo(localPath string, key string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	return "https://bucket.s3.amazonaws.com/videos/" + key + ".mp4", nil
}

func (a *fakeArchive) PresignUrl(key string) (string, error) {
	if a.presignErr != nil {
		return "", a.presignErr
	}
	return "https://bucket.s3.amazonaws.com/" + key + "?X-Amz-Signature=test", nil
}

func (a *fakeArchive) DeleteFile(key string) error {
	a.deleted = append(a.deleted, key)
	return a.deleteErr
}

type fakePublisher struct {
	err    error
	events []mqtt.Event
}

func (p *fakePublisher) PublishEvent(event mqtt.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) Close() {}

type sentMail struct {
	to    string
	alert smtp.Alert
}

type fakeMailer struct {
	err  error
	sent []sentMail
}

func (m *fakeMailer) SendAlert(to string, alert smtp.Alert) error {
	m.sent = append(m.sent, sentMail{to: to, alert: alert})
	return m.err
}

type fakeAdvisor struct {
	advice string
	err    error
	calls  int
}

func (a *fakeAdvisor) GenerateAdvice(ctx context.Context, event, risk, precaution string) (string, error) {
	a.calls++
	return a.advice, a.err
}
