package detectionRepository

import (
	"FallWatch/internal/api/detection"
	"FallWatch/internal/entity"
	contextPkg "FallWatch/pkg/context"
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type AnalysisDB struct {
	ID              string         `db:"id"`
	UserID          sql.NullString `db:"user_id"`
	VideoName       string         `db:"video_name"`
	VideoHash       string         `db:"video_hash"`
	VideoURL        sql.NullString `db:"video_url"`
	Event           string         `db:"event"`
	Risk            string         `db:"risk"`
	Precaution      string         `db:"precaution"`
	FramesProcessed int            `db:"frames_processed"`
	FramesMatched   int            `db:"frames_matched"`
	CreatedAt       sql.NullTime   `db:"created_at"`
}

func (r *analysisRepository) CreateAnalysis(c context.Context, a entity.Analysis) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":               a.ID,
		"user_id":          sql.NullString{String: a.UserID, Valid: a.UserID != ""},
		"video_name":       a.VideoName,
		"video_hash":       a.VideoHash,
		"video_url":        a.VideoURL,
		"event":            a.Event,
		"risk":             a.Risk,
		"precaution":       a.Precaution,
		"frames_processed": a.FramesProcessed,
		"frames_matched":   a.FramesMatched,
		"created_at":       a.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateAnalysis, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateAnalysis")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating analysis")
		return err
	}

	return nil
}

func (r *analysisRepository) GetByID(c context.Context, id string) (entity.Analysis, error) {
	requestID := contextPkg.GetRequestID(c)
	var row AnalysisDB

	query, args, err := sqlx.Named(queryGetAnalysisById, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID named query preparation err")
		return entity.Analysis{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Analysis{}, detection.ErrAnalysisNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID execution err")
		return entity.Analysis{}, err
	}

	return makeAnalysis(row), nil
}

func (r *analysisRepository) ListByUser(c context.Context, userID string, limit, offset int) ([]entity.Analysis, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryListAnalysesByUser, map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
		"offset":  offset,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByUser named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	rows, err := r.q.QueryxContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByUser execution err")
		return nil, err
	}
	defer rows.Close()

	analyses := make([]entity.Analysis, 0)
	for rows.Next() {
		var row AnalysisDB
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		analyses = append(analyses, makeAnalysis(row))
	}

	return analyses, rows.Err()
}

func makeAnalysis(row AnalysisDB) entity.Analysis {
	return entity.Analysis{
		ID:              row.ID,
		UserID:          row.UserID.String,
		VideoName:       row.VideoName,
		VideoHash:       row.VideoHash,
		VideoURL:        row.VideoURL.String,
		Event:           row.Event,
		Risk:            row.Risk,
		Precaution:      row.Precaution,
		FramesProcessed: row.FramesProcessed,
		FramesMatched:   row.FramesMatched,
		CreatedAt:       row.CreatedAt.Time,
	}
}
