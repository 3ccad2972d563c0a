package video

import (
	"bufio"
	"bytes"
	"testing"
)

func TestSplitJpeg(t *testing.T) {
	jpegData := []byte{0xFF, 0xD8, 0x01, 0x02, 0x03, 0xFF, 0xD9}

	streamData := []byte{0x00, 0x00}
	streamData = append(streamData, jpegData...)
	streamData = append(streamData, []byte{0x00, 0x00}...)

	scanner := bufio.NewScanner(bytes.NewReader(streamData))
	scanner.Split(SplitJpeg)

	if !scanner.Scan() {
		t.Fatal("Expected to find a token, got EOF")
	}

	if !bytes.Equal(scanner.Bytes(), jpegData) {
		t.Errorf("Expected %X, got %X", jpegData, scanner.Bytes())
	}

	// Trailing garbage is not a frame.
	if scanner.Scan() {
		t.Error("Expected only one token, found more")
	}
	if err := scanner.Err(); err != nil {
		t.Errorf("unexpected scanner error: %v", err)
	}
}

func TestSplitJpeg_ConsecutiveFrames(t *testing.T) {
	first := []byte{0xFF, 0xD8, 0xAA, 0xFF, 0xD9}
	second := []byte{0xFF, 0xD8, 0xBB, 0xCC, 0xFF, 0xD9}

	stream := append(append([]byte{}, first...), second...)

	scanner := bufio.NewScanner(bytes.NewReader(stream))
	scanner.Split(SplitJpeg)

	var frames [][]byte
	for scanner.Scan() {
		frames = append(frames, append([]byte(nil), scanner.Bytes()...))
	}

	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if !bytes.Equal(frames[0], first) {
		t.Errorf("frame 0: expected %X, got %X", first, frames[0])
	}
	if !bytes.Equal(frames[1], second) {
		t.Errorf("frame 1: expected %X, got %X", second, frames[1])
	}
}

func TestSplitJpeg_TruncatedFrame(t *testing.T) {
	stream := []byte{0xFF, 0xD8, 0x01, 0x02}

	scanner := bufio.NewScanner(bytes.NewReader(stream))
	scanner.Split(SplitJpeg)

	if scanner.Scan() {
		t.Errorf("expected no token for a frame without EOI, got %X", scanner.Bytes())
	}
}

func TestSplitJpeg_EmptyStream(t *testing.T) {
	scanner := bufio.NewScanner(bytes.NewReader(nil))
	scanner.Split(SplitJpeg)

	if scanner.Scan() {
		t.Error("expected no token on empty stream")
	}
}
