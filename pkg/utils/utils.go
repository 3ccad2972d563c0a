package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const MaxVideoSize = 100 * 1024 * 1024

var (
	ErrNoFile        = errors.New("no file uploaded")
	ErrEmptyFilename = errors.New("empty filename")
	ErrEmptyFile     = errors.New("uploaded file is empty")
	ErrFileTooLarge  = errors.New("file size exceeds limit")
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateVideoFile(file *multipart.FileHeader) error
	SaveUpload(file *multipart.FileHeader, dir string) (path string, hash string, err error)
	HashFile(path string) (string, error)
}

type utils struct {
	maxFileSize int64
}

func New() IUtils {
	return &utils{
		maxFileSize: MaxVideoSize,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// ValidateVideoFile checks the upload itself; container format problems
// surface later when the decoder cannot open the file.
func (u *utils) ValidateVideoFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if strings.TrimSpace(file.Filename) == "" {
		return ErrEmptyFilename
	}

	if file.Size == 0 {
		return ErrEmptyFile
	}

	if file.Size > u.maxFileSize {
		return ErrFileTooLarge
	}

	return nil
}

// SaveUpload streams file into dir under a sanitized, collision-free name and
// returns the stored path with the SHA-256 of its content.
func (u *utils) SaveUpload(file *multipart.FileHeader, dir string) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	id, err := u.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return "", "", err
	}

	dstPath := filepath.Join(dir, id+"-"+SanitizeFilename(file.Filename))
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", "", fmt.Errorf("create upload file: %w", err)
	}

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(dst, hasher), src); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return "", "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return "", "", fmt.Errorf("close upload file: %w", err)
	}

	return dstPath, hex.EncodeToString(hasher.Sum(nil)), nil
}

func (u *utils) HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// SanitizeFilename drops any directory part and characters outside
// [A-Za-z0-9._-].
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}
