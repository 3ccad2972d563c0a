package video

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestOpen_MissingFile(t *testing.T) {
	opener := NewFFmpegOpener()

	_, err := opener.Open(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if err == nil {
		t.Fatal("expected error for a missing file")
	}
	if !errors.Is(err, ErrCannotOpen) {
		t.Errorf("expected ErrCannotOpen, got %v", err)
	}
}

func TestOpen_FFprobeMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	writeFile(t, path, []byte("not really a video"))

	opener := &FFmpegOpener{
		FFmpegPath:  filepath.Join(dir, "no-ffmpeg"),
		FFprobePath: filepath.Join(dir, "no-ffprobe"),
	}

	_, err := opener.Open(context.Background(), path)
	if !errors.Is(err, ErrCannotOpen) {
		t.Errorf("expected ErrCannotOpen when ffprobe cannot run, got %v", err)
	}
}

func TestCountFrames_Unknown(t *testing.T) {
	dir := t.TempDir()
	opener := &FFmpegOpener{FFprobePath: filepath.Join(dir, "no-ffprobe")}

	if n := opener.CountFrames(context.Background(), filepath.Join(dir, "clip.mp4")); n != 0 {
		t.Errorf("expected 0 when ffprobe is unavailable, got %d", n)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want int
	}{
		{name: "metadata count", out: `{"streams":[{"nb_frames":"240"}]}`, want: 240},
		{name: "not available", out: `{"streams":[{"nb_frames":"N/A"}]}`, want: 0},
		{name: "no streams", out: `{"streams":[]}`, want: 0},
		{name: "garbage", out: `not json`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCount([]byte(tt.out), func(r ffprobeOutput) string { return r.Streams[0].NbFrames })
			if got != tt.want {
				t.Errorf("parseCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNext_ScannerErrorStopsDecoder(t *testing.T) {
	yes, err := exec.LookPath("yes")
	if err != nil {
		t.Skip("yes not available")
	}

	// An endless writer stands in for ffmpeg emitting a corrupt stream.
	cmd := exec.Command(yes)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}

	errCorrupt := errors.New("corrupt frame")
	scanner := bufio.NewScanner(stdout)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		return 0, nil, errCorrupt
	})
	src := &ffmpegSource{cmd: cmd, scanner: scanner, stderr: &bytes.Buffer{}}

	done := make(chan error, 1)
	go func() {
		_, err := src.Next()
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, errCorrupt) {
			t.Errorf("expected the scanner error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatal("Next did not return after a scanner error")
	}

	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after failure, got %v", err)
	}
}
