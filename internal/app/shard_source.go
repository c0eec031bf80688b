package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/shards"
	"github.com/yungbote/curriculum-backend/internal/platform/gcp"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

var (
	newObjectReaderWithConfig = gcp.NewObjectReaderWithConfig
	resolveGCSConfig          = gcp.ResolveStorageConfigFromEnv
)

type SourceBootstrapErrorCode string

const (
	SourceBootstrapErrorInvalidMode         SourceBootstrapErrorCode = "invalid_mode"
	SourceBootstrapErrorMissingEmulatorHost SourceBootstrapErrorCode = "missing_emulator_host"
	SourceBootstrapErrorInvalidEmulatorHost SourceBootstrapErrorCode = "invalid_emulator_host"
	SourceBootstrapErrorConnectFailed       SourceBootstrapErrorCode = "connect_failed"
)

// SourceBootstrapError reports an object store backend that a configured
// shard location needs but that could not be built.
type SourceBootstrapError struct {
	Code         SourceBootstrapErrorCode
	Scheme       string
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *SourceBootstrapError) Error() string {
	if e == nil {
		return "shard source bootstrap failed"
	}
	return fmt.Sprintf(
		"shard source bootstrap failed (scheme=%s code=%s mode=%q emulator_host=%q): %v",
		e.Scheme,
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *SourceBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ShardSource holds the dispatching source and any clients it owns.
type ShardSource struct {
	Source *shards.MultiSource
	gcs    gcp.ObjectReader
}

func (s *ShardSource) Close() {
	if s != nil && s.gcs != nil {
		_ = s.gcs.Close()
	}
}

// resolveShardSource always serves http(s) and only builds the object store
// clients a configured shard location actually points at.
func resolveShardSource(log *logger.Logger, cfg Config, specs []shards.Spec) (*ShardSource, error) {
	out := &ShardSource{Source: &shards.MultiSource{HTTP: shards.NewHTTPSource(cfg.ShardFetchTimeout)}}

	schemes := map[string]bool{}
	for _, s := range specs {
		if scheme, _, ok := strings.Cut(s.Location, "://"); ok {
			schemes[strings.ToLower(scheme)] = true
		}
	}

	if schemes["gs"] {
		reader, err := resolveGCSReader(log)
		if err != nil {
			return nil, err
		}
		out.gcs = reader
		out.Source.GCS = &shards.GCSSource{Reader: reader}
	}
	if schemes["s3"] {
		src, err := shards.NewS3Source(cfg.S3)
		if err != nil {
			log.Error("S3 shard source bootstrap failed", "endpoint", cfg.S3.Endpoint, "error", err)
			out.Close()
			return nil, &SourceBootstrapError{Code: SourceBootstrapErrorConnectFailed, Scheme: "s3", Cause: err}
		}
		out.Source.S3 = src
	}
	log.Info("Shard source ready", "shards", len(specs), "gcs", out.Source.GCS != nil, "s3", out.Source.S3 != nil)
	return out, nil
}

func resolveGCSReader(log *logger.Logger) (gcp.ObjectReader, error) {
	storageCfg, err := resolveGCSConfig()
	if err != nil {
		classified := classifySourceBootstrapError(storageCfg, err)
		log.Error("GCS shard source selection failed", "error", classified)
		return nil, classified
	}

	log.Info(
		"Selecting GCS shard source",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
	)
	reader, err := newObjectReaderWithConfig(log, storageCfg)
	if err != nil {
		classified := classifySourceBootstrapError(storageCfg, err)
		log.Error(
			"GCS shard source bootstrap failed",
			"mode", storageCfg.Mode,
			"mode_source", storageCfg.ModeSource(),
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", sourceBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return reader, nil
}

func classifySourceBootstrapError(storageCfg gcp.StorageConfig, err error) error {
	code := SourceBootstrapErrorConnectFailed
	var cfgErr *gcp.StorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.StorageConfigErrorInvalidMode:
			code = SourceBootstrapErrorInvalidMode
		case gcp.StorageConfigErrorMissingEmulatorHost:
			code = SourceBootstrapErrorMissingEmulatorHost
		case gcp.StorageConfigErrorInvalidEmulatorHost:
			code = SourceBootstrapErrorInvalidEmulatorHost
		}
	}
	return &SourceBootstrapError{
		Code:         code,
		Scheme:       "gs",
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func sourceBootstrapErrorCode(err error) SourceBootstrapErrorCode {
	var bootstrapErr *SourceBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return SourceBootstrapErrorConnectFailed
}
