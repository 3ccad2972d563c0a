package detectionService

import (
	"FallWatch/internal/api/detection"
	"FallWatch/internal/entity"
	"FallWatch/pkg/mqtt"
	"FallWatch/pkg/smtp"

	"github.com/sirupsen/logrus"
)

// sendAlerts fans a detected event out to MQTT and the uploader's inbox.
// Failures are logged only.
func (s *detectionService) sendAlerts(logger *logrus.Entry, analysis entity.Analysis, req detection.PredictRequest) {
	if s.publisher != nil {
		err := s.publisher.PublishEvent(mqtt.Event{
			AnalysisID: analysis.ID,
			Event:      analysis.Event,
			Risk:       analysis.Risk,
			Precaution: analysis.Precaution,
			DetectedAt: analysis.CreatedAt,
		})
		if err != nil {
			logger.WithField("error", err.Error()).Warn("Failed to publish detection event")
		}
	}

	if s.mailer != nil && req.Email != "" {
		err := s.mailer.SendAlert(req.Email, smtp.Alert{
			Username:   req.Username,
			VideoName:  analysis.VideoName,
			Event:      analysis.Event,
			Risk:       analysis.Risk,
			Precaution: analysis.Precaution,
			DetectedAt: analysis.CreatedAt,
		})
		if err != nil {
			logger.WithField("error", err.Error()).Warn("Failed to send alert e-mail")
		}
	}
}
