package entity

import "time"

// Analysis is one stored prediction for an uploaded video. UserID is empty
// for anonymous uploads.
type Analysis struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	VideoName       string    `db:"video_name"`
	VideoHash       string    `db:"video_hash"`
	VideoURL        string    `db:"video_url"`
	Event           string    `db:"event"`
	Risk            string    `db:"risk"`
	Precaution      string    `db:"precaution"`
	FramesProcessed int       `db:"frames_processed"`
	FramesMatched   int       `db:"frames_matched"`
	CreatedAt       time.Time `db:"created_at"`
}
