package main

import (
	"FallWatch/pkg/analyzer"
	"FallWatch/pkg/classifier"
	"FallWatch/pkg/landmark"
	"FallWatch/pkg/log"
	"FallWatch/pkg/utils"
	"FallWatch/pkg/video"
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	InputPath   string
	PoseURL     string
	FaceMeshURL string
	Verbose     bool
	NoProgress  bool
}

type analyzeOutput struct {
	Event           string             `json:"event"`
	Risk            string             `json:"risk"`
	Precaution      string             `json:"precaution"`
	VideoHash       string             `json:"video_hash,omitempty"`
	FramesProcessed *int               `json:"frames_processed,omitempty"`
	FramesMatched   *int               `json:"frames_matched,omitempty"`
	FramesDegraded  *int               `json:"frames_degraded,omitempty"`
	Tally           []classifier.Tally `json:"tally,omitempty"`
}

var analyzeOpts analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify a video file and print the summarized event as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, analyzeOpts, os.Stdout, os.Stderr)
	},
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions, stdout, stderr io.Writer) error {
	if opts.InputPath == "" {
		return errors.New("an input video is required (-i)")
	}
	if _, err := os.Stat(opts.InputPath); err != nil {
		return fmt.Errorf("input video: %w", err)
	}

	if opts.PoseURL == "" {
		opts.PoseURL = landmark.URLFromEnv(landmark.PoseModel)
	}
	if opts.FaceMeshURL == "" {
		opts.FaceMeshURL = landmark.URLFromEnv(landmark.FaceMeshModel)
	}

	// Verbose output carries the content hash the web service caches
	// results under.
	var hash string
	if opts.Verbose {
		h, err := utils.New().HashFile(opts.InputPath)
		if err != nil {
			return fmt.Errorf("hash input video: %w", err)
		}
		hash = h
	}

	logger := log.NewCLILogger(opts.Verbose)

	client := landmark.NewWithURLs(logger, opts.PoseURL, opts.FaceMeshURL)
	defer client.CloseConnections()

	opener := video.NewFFmpegOpener()

	var analyzerOpts []analyzer.Option
	if !opts.NoProgress {
		total := opener.CountFrames(cmd.Context(), opts.InputPath)
		if total <= 0 {
			total = -1
		}
		bar := progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Analyzing "+opts.InputPath),
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		analyzerOpts = append(analyzerOpts, analyzer.WithProgress(func(int) {
			_ = bar.Add(1)
		}))
	}

	a := analyzer.New(opener, classifier.New(client, logger), logger, analyzerOpts...)

	report, err := a.Analyze(cmd.Context(), opts.InputPath)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", opts.InputPath, err)
	}

	return writeReport(stdout, report, hash, opts.Verbose)
}

func writeReport(w io.Writer, report analyzer.Report, videoHash string, verbose bool) error {
	out := analyzeOutput{
		Event:      report.Result.Event,
		Risk:       report.Result.Risk,
		Precaution: report.Result.Precaution,
	}
	if verbose {
		out.VideoHash = videoHash
		out.FramesProcessed = &report.FramesProcessed
		out.FramesMatched = &report.FramesMatched
		out.FramesDegraded = &report.FramesDegraded
		out.Tally = report.Tally
	}

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOpts.InputPath, "input", "i", "", "Path to the video file (required)")
	analyzeCmd.Flags().StringVar(&analyzeOpts.PoseURL, "pose-url", "", "Pose landmark WebSocket endpoint (default $AI_POSE_LANDMARK_URL)")
	analyzeCmd.Flags().StringVar(&analyzeOpts.FaceMeshURL, "face-mesh-url", "", "Face mesh WebSocket endpoint (default $AI_FACE_MESH_URL)")
	analyzeCmd.Flags().BoolVarP(&analyzeOpts.Verbose, "verbose", "v", false, "Include the video hash, frame counts and the vote tally, and log debug output")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.NoProgress, "no-progress", false, "Disable the progress bar")
	analyzeCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(analyzeCmd)
}
