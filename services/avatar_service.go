package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const avatarDir = "profile_images"

var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AvatarStore keeps uploaded profile images on local disk under root and
// serves them below baseURL.
type AvatarStore struct {
	root     string
	baseURL  string
	maxBytes int64
}

func NewAvatarStore(root, baseURL string, maxBytes int64) *AvatarStore {
	return &AvatarStore{root: root, baseURL: baseURL, maxBytes: maxBytes}
}

// Save validates an uploaded image by its content, writes it under a random
// name and returns its public URL.
func (s *AvatarStore) Save(fh *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", NewValidationError("avatar", fmt.Sprintf("The image must be at most %d bytes.", s.maxBytes))
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect upload type: %w", err)
	}
	ext, ok := avatarTypes[mtype.String()]
	if !ok {
		return "", NewValidationError("avatar",
			"Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	rel := path.Join(avatarDir, uuid.NewString()+ext)
	dst := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create avatar file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}
	return s.URL(rel), nil
}

// Remove deletes the avatar stored at url. URLs outside the avatar
// directory are ignored.
func (s *AvatarStore) Remove(url string) error {
	rel := strings.TrimPrefix(url, strings.TrimRight(s.baseURL, "/")+"/")
	if rel == url || !strings.HasPrefix(path.Clean(rel), avatarDir+"/") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(path.Clean(rel))))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove avatar: %w", err)
	}
	return nil
}

// URL maps a stored relative path to its public location.
func (s *AvatarStore) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return strings.TrimRight(s.baseURL, "/") + "/" + rel
}
