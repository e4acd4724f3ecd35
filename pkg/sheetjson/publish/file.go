package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
)

const lockRetryDelay = 50 * time.Millisecond

// FilePublisher publishes objects under a local directory. Each object's metadata is kept
// in a "<file>.meta.json" sidecar, and writers of one key are serialized by a lock file.
type FilePublisher struct {
	dir string
	log logrus.FieldLogger
}

type fileMetadata struct {
	ContentType string            `json:"content_type"`
	Metadata    map[string]string `json:"metadata"`
}

// NewFilePublisher creates a publisher rooted at dir.
func NewFilePublisher(dir string, log logrus.FieldLogger) (*FilePublisher, error) {
	if dir == "" {
		return nil, errors.New("file publisher requires a directory")
	}
	if log == nil {
		log = discardLogger()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create publish directory: %w", err)
	}
	return &FilePublisher{dir: dir, log: log}, nil
}

func (p *FilePublisher) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(key, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(p.dir, clean), nil
}

// Publish implements Publisher.
func (p *FilePublisher) Publish(ctx context.Context, obj Object) (bool, error) {
	target, err := p.path(obj.Key)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return false, err
	}

	fileLock := flock.New(target + ".lock")
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return false, fmt.Errorf("failed to acquire write lock: %w", err)
	}
	if !locked {
		return false, fmt.Errorf("could not acquire write lock on %s", target)
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			p.log.WithError(err).Warn("Failed to release write lock")
		}
	}()

	log := p.log.WithFields(logrus.Fields{"key": obj.Key, "timestamp": obj.Timestamp})
	stored, found, err := p.storedTimestamp(target, obj.Key)
	if err != nil {
		return false, err
	}
	if !shouldWrite(stored, found, obj.Timestamp) {
		log.WithField("stored_timestamp", stored).Info("Stored object is current, skipping")
		return false, nil
	}

	if err := writeFileAtomic(target, obj.Body); err != nil {
		return false, err
	}
	meta, err := json.Marshal(fileMetadata{
		ContentType: obj.ContentType,
		Metadata:    map[string]string{MetadataKey: strconv.FormatInt(obj.Timestamp, 10)},
	})
	if err != nil {
		return false, err
	}
	if err := writeFileAtomic(target+".meta.json", meta); err != nil {
		return false, err
	}

	log.WithField("bytes", len(obj.Body)).Info("Published object")
	return true, nil
}

func (p *FilePublisher) storedTimestamp(target, key string) (int64, bool, error) {
	data, err := os.ReadFile(target + ".meta.json")
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read metadata for %s: %w", key, err)
	}

	var meta fileMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		p.log.WithError(err).WithField("key", key).Warn("Ignoring unreadable metadata file")
		return 0, false, nil
	}
	ts, found := parseTimestamp(p.log, key, meta.Metadata[MetadataKey])
	return ts, found, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
