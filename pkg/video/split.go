package video

import "bytes"

var (
	JpegSOI = []byte{0xFF, 0xD8}
	JpegEOI = []byte{0xFF, 0xD9}
)

// SplitJpeg is a bufio.SplitFunc that extracts whole JPEG images from an
// MJPEG byte stream by scanning for SOI/EOI markers. Bytes before the first
// SOI are skipped.
func SplitJpeg(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	start := bytes.Index(data, JpegSOI)
	if start == -1 {
		if atEOF {
			return len(data), nil, nil
		}
		return 0, nil, nil
	}
	end := bytes.Index(data[start+len(JpegSOI):], JpegEOI)
	if end == -1 {
		if atEOF {
			return len(data), nil, nil
		}
		return 0, nil, nil
	}
	stop := start + len(JpegSOI) + end + len(JpegEOI)
	return stop, data[start:stop], nil
}
