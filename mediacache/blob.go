package mediacache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adlytic/meta-ads-mcp/domains/media"
	"github.com/adlytic/meta-ads-mcp/pkg/fingerprint"
	"github.com/google/uuid"
)

// BlobStore places media files under <root>/{images,videos}/<shard>/ where
// shard is the first two hex characters of the fingerprint.
type BlobStore struct {
	root string
}

func NewBlobStore(root string) *BlobStore {
	return &BlobStore{root: root}
}

func (b *BlobStore) Root() string {
	return b.root
}

func kindDir(kind media.Kind) string {
	if kind == media.KindVideo {
		return "videos"
	}
	return "images"
}

// Path returns where the blob for a fingerprint lives, without touching disk.
func (b *BlobStore) Path(kind media.Kind, fp, contentType string) string {
	name := fp + ExtensionFor(kind, contentType)
	return filepath.Join(b.root, kindDir(kind), fingerprint.Shard(fp), name)
}

// WriteAtomic publishes the blob with a temp-file-then-rename so a reader
// never observes a partially written file. The temp file is created in the
// destination directory to keep the rename on one filesystem.
func (b *BlobStore) WriteAtomic(kind media.Kind, fp, contentType string, data []byte) (string, error) {
	dest := b.Path(kind, fp, contentType)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}

	tmp := filepath.Join(dir, "tmp-"+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write temp blob: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("sync temp blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp blob: %w", err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		return "", fmt.Errorf("publish blob: %w", err)
	}
	success = true
	return dest, nil
}

func (b *BlobStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (b *BlobStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Remove deletes a blob, treating an already missing file as success.
func (b *BlobStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ExtensionFor picks a file extension from the content type, falling back to
// a sensible default per kind so stored names stay recognizable.
func ExtensionFor(kind media.Kind, contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	}
	if kind == media.KindVideo {
		return ".mp4"
	}
	return ".jpg"
}
