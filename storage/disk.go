// Package storage holds the binary asset store: uploads land on disk and
// come back as a served URL plus a sniffed mime classification. The routing
// engine treats the resulting URL as an opaque message field.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"chat-relay/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// StoredAsset describes one uploaded blob.
type StoredAsset struct {
	URL  string
	Mime string
	Size int64
}

type AssetStore struct {
	log     *slog.Logger
	dir     string
	baseURL string
	maxSize int64
	allowed []string // mime prefixes, e.g. "image/", "application/pdf"
}

func NewAssetStore(log *slog.Logger, dir, baseURL string, maxSize int64, allowed []string) (*AssetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("asset directory creation failed: %w", err)
	}
	return &AssetStore{log: log, dir: dir, baseURL: baseURL, maxSize: maxSize, allowed: allowed}, nil
}

// MaxSize reports the largest blob Save will accept, so transports can cap
// request bodies before buffering them.
func (s *AssetStore) MaxSize() int64 {
	return s.maxSize
}

// Save sniffs the blob's content type, rejects disallowed or oversized
// blobs, and writes the file under a fresh uuid name keeping the detected
// extension. The declared filename is never trusted.
func (s *AssetStore) Save(blob []byte) (StoredAsset, error) {
	if int64(len(blob)) > s.maxSize {
		return StoredAsset{}, fmt.Errorf("%w: %d bytes exceeds limit", errors.ErrUnsupportedAsset, len(blob))
	}

	detected := mimetype.Detect(blob)
	if !s.isAllowed(detected) {
		return StoredAsset{}, fmt.Errorf("%w: %s", errors.ErrUnsupportedAsset, detected.String())
	}

	name := uuid.NewString() + detected.Extension()
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return StoredAsset{}, fmt.Errorf("asset write failed: %w", err)
	}

	asset := StoredAsset{
		URL:  s.baseURL + "/" + name,
		Mime: detected.String(),
		Size: int64(len(blob)),
	}
	s.log.Info("Asset stored", "mime", asset.Mime, "size", asset.Size, "url", asset.URL)
	return asset, nil
}

func (s *AssetStore) isAllowed(detected *mimetype.MIME) bool {
	for _, prefix := range s.allowed {
		if strings.HasPrefix(detected.String(), prefix) {
			return true
		}
	}
	return false
}
