package detectionRepository

const (
	queryCreateAnalysis = `
INSERT INTO analyses (id, user_id, video_name, video_hash, video_url, event, risk, precaution,
                      frames_processed, frames_matched, created_at)
VALUES (:id, :user_id, :video_name, :video_hash, :video_url, :event, :risk, :precaution,
        :frames_processed, :frames_matched, :created_at)`

	queryGetAnalysisById = `
SELECT id, user_id, video_name, video_hash, video_url, event, risk, precaution,
       frames_processed, frames_matched, created_at
FROM analyses
    WHERE id = :id`

	queryListAnalysesByUser = `
SELECT id, user_id, video_name, video_hash, video_url, event, risk, precaution,
       frames_processed, frames_matched, created_at
FROM analyses
    WHERE user_id = :user_id
ORDER BY created_at DESC, id DESC
LIMIT :limit OFFSET :offset`
)
