package gcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

// ObjectReader opens objects from Cloud Storage, or from a fake-gcs emulator.
type ObjectReader interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Close() error
}

type objectReader struct {
	log     *logger.Logger
	client  *storage.Client
	timeout time.Duration
}

func NewObjectReaderWithConfig(log *logger.Logger, cfg StorageConfig) (ObjectReader, error) {
	if err := ValidateStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate gcs config: %w", err)
	}
	client, err := newStorageClientForMode(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog := log.With("service", "GCSObjectReader")
	serviceLog.Info("GCS reader initialized",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"emulator_host", cfg.EmulatorHost,
	)
	return &objectReader{log: serviceLog, client: client, timeout: 2 * time.Minute}, nil
}

func newStorageClientForMode(ctx context.Context, cfg StorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case StorageModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadOnly))
		return storage.NewClient(ctx, opts...)
	case StorageModeGCSEmulator:
		// The storage client picks the emulator endpoint up from this variable.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(cfg.EmulatorHost, "/"))
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &StorageConfigError{Code: StorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}

// The cancel func is tied to Close; cancelling before the caller reads would
// leave it with an empty body.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func (r *objectReader) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	ctx2, cancel := context.WithTimeout(ctx, r.timeout)
	rc, err := r.client.Bucket(bucket).Object(key).NewReader(ctx2)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open gs://%s/%s: %w", bucket, key, err)
	}
	return &readCloserWithCancel{ReadCloser: rc, cancel: cancel}, nil
}

func (r *objectReader) Close() error {
	return r.client.Close()
}
