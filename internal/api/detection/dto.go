package detection

import (
	"mime/multipart"
	"time"
)

// PredictRequest is everything the service needs from an upload; the user
// fields are empty for anonymous callers.
type PredictRequest struct {
	File     *multipart.FileHeader
	UserID   string
	Email    string
	Username string
}

type PredictResponse struct {
	AnalysisID string `json:"-"`
	Event      string `json:"event"`
	Risk       string `json:"risk"`
	Precaution string `json:"precaution"`
}

type HistoryQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

type AnalysisResponse struct {
	ID              string    `json:"id"`
	VideoName       string    `json:"video_name"`
	VideoURL        string    `json:"video_url,omitempty"`
	Event           string    `json:"event"`
	Risk            string    `json:"risk"`
	Precaution      string    `json:"precaution"`
	FramesProcessed int       `json:"frames_processed"`
	FramesMatched   int       `json:"frames_matched"`
	CreatedAt       time.Time `json:"created_at"`
}

type AnalysisListResponse struct {
	Data   []AnalysisResponse `json:"data"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type AdviceResponse struct {
	AnalysisID string `json:"analysis_id"`
	Event      string `json:"event"`
	Advice     string `json:"advice"`
}

// FrameResult answers one live frame on the detection WebSocket.
type FrameResult struct {
	Frame      int    `json:"frame"`
	Detected   bool   `json:"detected"`
	Event      string `json:"event,omitempty"`
	Risk       string `json:"risk,omitempty"`
	Precaution string `json:"precaution,omitempty"`
	Degraded   bool   `json:"degraded,omitempty"`
}

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)
