package detectionService

import (
	"FallWatch/internal/api/detection"
	"FallWatch/internal/entity"
	"FallWatch/pkg/analyzer"
	"FallWatch/pkg/classifier"
	contextPkg "FallWatch/pkg/context"
	"FallWatch/pkg/redis"
	"FallWatch/pkg/response"
	"FallWatch/pkg/s3"
	"FallWatch/pkg/utils"
	"errors"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *detectionService) Predict(ctx context.Context, req detection.PredictRequest) (detection.PredictResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	logger := s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    contextPkg.GetUserID(ctx),
		"video_name": req.File.Filename,
	})

	path, hash, err := s.utils.SaveUpload(req.File, s.uploadDir)
	if err != nil {
		logger.WithField("error", err.Error()).Error("Failed to save uploaded video")
		return detection.PredictResponse{}, detection.ErrFileSave
	}

	logger = logger.WithField("video_hash", hash)
	logger.WithField("path", path).Info("Uploaded video saved")

	report, cached := s.lookupCache(ctx, logger, hash)
	if !cached {
		report, err = s.analyzer.Analyze(ctx, path)
		if err != nil {
			logger.WithField("error", err.Error()).Error("Video analysis failed")
			return detection.PredictResponse{}, response.Wrap(detection.ErrServer, err)
		}
		s.storeCache(ctx, logger, hash, report)
	}

	result := report.Result
	now := time.Now()

	analysisID, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return detection.PredictResponse{}, response.Wrap(detection.ErrServer, err)
	}

	analysis := entity.Analysis{
		ID:              analysisID,
		UserID:          req.UserID,
		VideoName:       req.File.Filename,
		VideoHash:       hash,
		VideoURL:        s.archiveVideo(logger, path, analysisID),
		Event:           result.Event,
		Risk:            result.Risk,
		Precaution:      result.Precaution,
		FramesProcessed: report.FramesProcessed,
		FramesMatched:   report.FramesMatched,
		CreatedAt:       now,
	}
	if !s.saveAnalysis(ctx, logger, analysis) {
		s.discardArchive(logger, analysis)
	}

	if result.Detected() {
		s.sendAlerts(logger, analysis, req)
	}

	logger.WithFields(logrus.Fields{
		"analysis_id": analysisID,
		"event":       result.Event,
		"cached":      cached,
	}).Info("Prediction completed")

	return detection.PredictResponse{
		AnalysisID: analysisID,
		Event:      result.Event,
		Risk:       result.Risk,
		Precaution: result.Precaution,
	}, nil
}

// lookupCache replays a stored result for identical content. Any cache
// failure is treated as a miss.
func (s *detectionService) lookupCache(ctx context.Context, logger *logrus.Entry, hash string) (analyzer.Report, bool) {
	if s.cache == nil {
		return analyzer.Report{}, false
	}

	hit, err := s.cache.GetAnalysis(ctx, hash)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			logger.WithField("error", err.Error()).Warn("Result cache lookup failed")
		}
		return analyzer.Report{}, false
	}

	cond, ok := classifier.ByEvent(hit.Event)
	if !ok {
		logger.WithField("event", hit.Event).Warn("Ignoring cached result with unknown event")
		return analyzer.Report{}, false
	}

	logger.Debug("Result cache hit")
	return analyzer.Report{
		Result:          cond,
		FramesProcessed: hit.FramesProcessed,
		FramesMatched:   hit.FramesMatched,
	}, true
}

// storeCache skips unreadable videos and reports with landmark model
// failures so a retry analyzes them again.
func (s *detectionService) storeCache(ctx context.Context, logger *logrus.Entry, hash string, report analyzer.Report) {
	if s.cache == nil || report.Result.Kind == classifier.KindErrorReadingVideo {
		return
	}
	if !report.Complete() {
		logger.WithField("frames_degraded", report.FramesDegraded).Warn("Not caching result of a partially analyzed video")
		return
	}

	err := s.cache.SetAnalysis(ctx, hash, redis.CachedAnalysis{
		Event:           report.Result.Event,
		Risk:            report.Result.Risk,
		Precaution:      report.Result.Precaution,
		FramesProcessed: report.FramesProcessed,
		FramesMatched:   report.FramesMatched,
	}, redis.AnalysisTTL)
	if err != nil {
		logger.WithField("error", err.Error()).Warn("Failed to cache analysis result")
	}
}

func (s *detectionService) archiveVideo(logger *logrus.Entry, path string, analysisID string) string {
	if s.archive == nil {
		return ""
	}

	url, err := s.archive.UploadVideo(path, analysisID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
			"file":  filepath.Base(path),
		}).Warn("Failed to archive video")
		return ""
	}

	return url
}

// saveAnalysis reports whether the analysis was stored. Without a repository
// there is nothing to store and the call counts as saved.
func (s *detectionService) saveAnalysis(ctx context.Context, logger *logrus.Entry, analysis entity.Analysis) bool {
	if s.repo == nil {
		return true
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		logger.WithField("error", err.Error()).Error("Failed to create repository client")
		return false
	}

	if err := repo.Analyses.CreateAnalysis(ctx, analysis); err != nil {
		logger.WithField("error", err.Error()).Error("Failed to store analysis")
		return false
	}

	return true
}

// discardArchive removes the archived copy of a video whose analysis row
// could not be stored, since nothing would ever reference it.
func (s *detectionService) discardArchive(logger *logrus.Entry, analysis entity.Analysis) {
	if s.archive == nil || analysis.VideoURL == "" {
		return
	}

	key := archiveKey(analysis)
	if err := s.archive.DeleteFile(key); err != nil {
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
			"key":   key,
		}).Warn("Failed to delete orphaned video archive")
	}
}

// archiveKey rebuilds the object key UploadVideo used: the saved upload keeps
// the sanitized client filename, and with it the extension.
func archiveKey(a entity.Analysis) string {
	return s3.ObjectKey(a.ID, utils.SanitizeFilename(a.VideoName))
}

// videoURL hands out a short-lived link to the archived video. The stored
// location is returned when signing fails.
func (s *detectionService) videoURL(ctx context.Context, a entity.Analysis) string {
	if s.archive == nil || a.VideoURL == "" {
		return a.VideoURL
	}

	url, err := s.archive.PresignUrl(archiveKey(a))
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":  contextPkg.GetRequestID(ctx),
			"analysis_id": a.ID,
			"error":       err.Error(),
		}).Warn("Failed to presign video url")
		return a.VideoURL
	}

	return url
}

func (s *detectionService) ListAnalyses(ctx context.Context, userID string, query detection.HistoryQuery) (detection.AnalysisListResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = detection.DefaultHistoryLimit
	}
	if limit > detection.MaxHistoryLimit {
		limit = detection.MaxHistoryLimit
	}
	offset := max(query.Offset, 0)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return detection.AnalysisListResponse{}, err
	}

	analyses, err := repo.Analyses.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return detection.AnalysisListResponse{}, err
	}

	data := make([]detection.AnalysisResponse, 0, len(analyses))
	for _, a := range analyses {
		data = append(data, makeAnalysisResponse(a, s.videoURL(ctx, a)))
	}

	return detection.AnalysisListResponse{Data: data, Limit: limit, Offset: offset}, nil
}

func (s *detectionService) GetAnalysis(ctx context.Context, userID string, id string) (detection.AnalysisResponse, error) {
	analysis, err := s.ownedAnalysis(ctx, userID, id)
	if err != nil {
		return detection.AnalysisResponse{}, err
	}

	return makeAnalysisResponse(analysis, s.videoURL(ctx, analysis)), nil
}

func (s *detectionService) GenerateAdvice(ctx context.Context, userID string, id string) (detection.AdviceResponse, error) {
	if s.advisor == nil {
		return detection.AdviceResponse{}, detection.ErrAdviceUnavailable
	}

	analysis, err := s.ownedAnalysis(ctx, userID, id)
	if err != nil {
		return detection.AdviceResponse{}, err
	}

	cond, ok := classifier.ByEvent(analysis.Event)
	if !ok || !cond.Detected() {
		return detection.AdviceResponse{}, detection.ErrAdviceNotNeeded
	}

	advice, err := s.advisor.GenerateAdvice(ctx, analysis.Event, analysis.Risk, analysis.Precaution)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":  contextPkg.GetRequestID(ctx),
			"analysis_id": id,
			"error":       err.Error(),
		}).Error("Failed to generate advice")
		return detection.AdviceResponse{}, response.Wrap(detection.ErrServer, err)
	}

	return detection.AdviceResponse{
		AnalysisID: analysis.ID,
		Event:      analysis.Event,
		Advice:     advice,
	}, nil
}

// ownedAnalysis hides other users' analyses behind the same not-found error.
func (s *detectionService) ownedAnalysis(ctx context.Context, userID string, id string) (entity.Analysis, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return entity.Analysis{}, err
	}

	analysis, err := repo.Analyses.GetByID(ctx, id)
	if err != nil {
		return entity.Analysis{}, err
	}
	if analysis.UserID == "" || analysis.UserID != userID {
		return entity.Analysis{}, detection.ErrAnalysisNotFound
	}

	return analysis, nil
}

func (s *detectionService) ClassifyFrame(ctx context.Context, index int, frame []byte) detection.FrameResult {
	res := detection.FrameResult{Frame: index}

	v := s.classifier.Classify(ctx, frame)
	res.Degraded = v.Degraded
	if !v.Matched {
		return res
	}

	res.Detected = true
	res.Event = v.Condition.Event
	res.Risk = v.Condition.Risk
	res.Precaution = v.Condition.Precaution

	return res
}

func makeAnalysisResponse(a entity.Analysis, videoURL string) detection.AnalysisResponse {
	return detection.AnalysisResponse{
		ID:              a.ID,
		VideoName:       a.VideoName,
		VideoURL:        videoURL,
		Event:           a.Event,
		Risk:            a.Risk,
		Precaution:      a.Precaution,
		FramesProcessed: a.FramesProcessed,
		FramesMatched:   a.FramesMatched,
		CreatedAt:       a.CreatedAt,
	}
}
