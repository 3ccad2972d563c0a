package video

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const megabyte = 1024 * 1024

type FFmpegOpener struct {
	FFmpegPath  string
	FFprobePath string
}

func NewFFmpegOpener() *FFmpegOpener {
	return &FFmpegOpener{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
	}
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType     string `json:"codec_type"`
		NbFrames      string `json:"nb_frames"`
		NbReadPackets string `json:"nb_read_packets"`
	} `json:"streams"`
}

// Open checks path for a video stream with ffprobe and starts an MJPEG decoder on it.
// Every failure before the first frame wraps ErrCannotOpen.
func (o *FFmpegOpener) Open(ctx context.Context, path string) (Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCannotOpen, err)
	}

	if err := o.inspect(ctx, path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCannotOpen, err)
	}

	cmd := exec.CommandContext(ctx, o.FFmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-f", "image2pipe", "-vcodec", "mjpeg", "-")

	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg stdout pipe: %v", ErrCannotOpen, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg start: %v", ErrCannotOpen, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, megabyte), 64*megabyte)
	scanner.Split(SplitJpeg)

	return &ffmpegSource{cmd: cmd, scanner: scanner, stderr: stderr}, nil
}

func (o *FFmpegOpener) inspect(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, o.FFprobePath,
		"-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=codec_type", "-of", "json", path)

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return fmt.Errorf("ffprobe: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return fmt.Errorf("ffprobe: %w", err)
	}

	var res ffprobeOutput
	if err := json.Unmarshal(out, &res); err != nil {
		return fmt.Errorf("ffprobe JSON parse error: %w", err)
	}
	if len(res.Streams) == 0 {
		return errors.New("no video stream found")
	}

	return nil
}

// CountFrames estimates the number of frames in path for progress
// reporting. It returns 0 when the count is unknown.
func (o *FFmpegOpener) CountFrames(ctx context.Context, path string) int {
	fast := exec.CommandContext(ctx, o.FFprobePath,
		"-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=nb_frames", "-of", "json", path)
	if out, err := fast.Output(); err == nil {
		if n := parseCount(out, func(r ffprobeOutput) string { return r.Streams[0].NbFrames }); n > 0 {
			return n
		}
	}

	// Container metadata is missing for some formats; count packets instead.
	slow := exec.CommandContext(ctx, o.FFprobePath,
		"-v", "error", "-select_streams", "v:0", "-count_packets",
		"-show_entries", "stream=nb_read_packets", "-of", "json", path)
	out, err := slow.Output()
	if err != nil {
		return 0
	}
	return parseCount(out, func(r ffprobeOutput) string { return r.Streams[0].NbReadPackets })
}

func parseCount(out []byte, field func(ffprobeOutput) string) int {
	var res ffprobeOutput
	if err := json.Unmarshal(out, &res); err != nil || len(res.Streams) == 0 {
		return 0
	}
	n, err := strconv.Atoi(field(res))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

type ffmpegSource struct {
	cmd     *exec.Cmd
	scanner *bufio.Scanner
	stderr  *bytes.Buffer
	done    bool
}

func (s *ffmpegSource) Next() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}

	if s.scanner.Scan() {
		token := s.scanner.Bytes()
		frame := make([]byte, len(token))
		copy(frame, token)
		return frame, nil
	}

	if err := s.scanner.Err(); err != nil {
		// ffmpeg blocks on a full pipe once nobody reads it.
		_ = s.Close()
		return nil, fmt.Errorf("frame scanner failed: %w", err)
	}

	if waitErr := s.wait(); waitErr != nil {
		if s.stderr.Len() > 0 {
			return nil, fmt.Errorf("ffmpeg execution failed: %w: %s", waitErr, strings.TrimSpace(s.stderr.String()))
		}
		return nil, fmt.Errorf("ffmpeg execution failed: %w", waitErr)
	}

	return nil, io.EOF
}

func (s *ffmpegSource) Close() error {
	if s.done {
		return nil
	}
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.wait()
	return nil
}

func (s *ffmpegSource) wait() error {
	s.done = true
	return s.cmd.Wait()
}
