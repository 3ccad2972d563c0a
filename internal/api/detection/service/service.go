package detectionService

import (
	"FallWatch/internal/api/detection"
	detectionRepository "FallWatch/internal/api/detection/repository"
	"FallWatch/pkg/analyzer"
	"FallWatch/pkg/gemini"
	"FallWatch/pkg/mqtt"
	"FallWatch/pkg/redis"
	"FallWatch/pkg/s3"
	"FallWatch/pkg/smtp"
	"FallWatch/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IDetectionService interface {
	Predict(ctx context.Context, req detection.PredictRequest) (detection.PredictResponse, error)
	ListAnalyses(ctx context.Context, userID string, query detection.HistoryQuery) (detection.AnalysisListResponse, error)
	GetAnalysis(ctx context.Context, userID string, id string) (detection.AnalysisResponse, error)
	GenerateAdvice(ctx context.Context, userID string, id string) (detection.AdviceResponse, error)
	ClassifyFrame(ctx context.Context, index int, frame []byte) detection.FrameResult
}

// VideoAnalyzer reduces a stored video to one prediction.
type VideoAnalyzer interface {
	Analyze(ctx context.Context, path string) (analyzer.Report, error)
}

// Integrations holds the optional collaborators; a nil field disables the
// matching feature.
type Integrations struct {
	Cache     redis.IRedis
	Archive   s3.ItfS3
	Advisor   gemini.IGemini
	Publisher mqtt.IPublisher
	Mailer    smtp.ItfSmtp
}

type detectionService struct {
	log        *logrus.Logger
	repo       detectionRepository.Repository
	analyzer   VideoAnalyzer
	classifier analyzer.FrameClassifier
	utils      utils.IUtils
	uploadDir  string

	cache     redis.IRedis
	archive   s3.ItfS3
	advisor   gemini.IGemini
	publisher mqtt.IPublisher
	mailer    smtp.ItfSmtp
}

func NewDetectionService(
	log *logrus.Logger,
	repo detectionRepository.Repository,
	videoAnalyzer VideoAnalyzer,
	frameClassifier analyzer.FrameClassifier,
	utils utils.IUtils,
	uploadDir string,
	integrations Integrations,
) IDetectionService {
	return &detectionService{
		log:        log,
		repo:       repo,
		analyzer:   videoAnalyzer,
		classifier: frameClassifier,
		utils:      utils,
		uploadDir:  uploadDir,

		cache:     integrations.Cache,
		archive:   integrations.Archive,
		advisor:   integrations.Advisor,
		publisher: integrations.Publisher,
		mailer:    integrations.Mailer,
	}
}
