package gcp

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type StorageMode string

const (
	StorageModeGCS         StorageMode = "gcs"
	StorageModeGCSEmulator StorageMode = "gcs_emulator"
)

type StorageConfig struct {
	Mode         StorageMode
	EmulatorHost string
	// Implied is set when the mode was inferred from GCS_EMULATOR_HOST alone.
	Implied bool
}

func (cfg StorageConfig) ModeSource() string {
	if cfg.Implied {
		return "emulator_host"
	}
	return "explicit_or_default"
}

type StorageConfigErrorCode string

const (
	StorageConfigErrorInvalidMode         StorageConfigErrorCode = "invalid_mode"
	StorageConfigErrorMissingEmulatorHost StorageConfigErrorCode = "missing_emulator_host"
	StorageConfigErrorInvalidEmulatorHost StorageConfigErrorCode = "invalid_emulator_host"
)

type StorageConfigError struct {
	Code         StorageConfigErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageConfigError) Error() string {
	if e == nil {
		return "invalid gcs config"
	}
	switch e.Code {
	case StorageConfigErrorInvalidMode:
		return fmt.Sprintf("invalid GCS_MODE=%q (allowed: %q, %q)", e.Mode, StorageModeGCS, StorageModeGCSEmulator)
	case StorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("GCS_MODE=%q requires GCS_EMULATOR_HOST to be set", StorageModeGCSEmulator)
	case StorageConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid GCS_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.EmulatorHost)
	default:
		return "invalid gcs config"
	}
}

func (e *StorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func ResolveStorageConfigFromEnv() (StorageConfig, error) {
	cfg := StorageConfig{
		EmulatorHost: strings.TrimSpace(os.Getenv("GCS_EMULATOR_HOST")),
	}

	rawMode := strings.TrimSpace(os.Getenv("GCS_MODE"))
	switch mode := StorageMode(strings.ToLower(rawMode)); mode {
	case "":
		if cfg.EmulatorHost != "" {
			cfg.Mode = StorageModeGCSEmulator
			cfg.Implied = true
		} else {
			cfg.Mode = StorageModeGCS
		}
	case StorageModeGCS, StorageModeGCSEmulator:
		cfg.Mode = mode
	default:
		return cfg, &StorageConfigError{Code: StorageConfigErrorInvalidMode, Mode: rawMode}
	}

	if err := ValidateStorageConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func ValidateStorageConfig(cfg StorageConfig) error {
	switch cfg.Mode {
	case StorageModeGCS:
		return nil
	case StorageModeGCSEmulator:
	default:
		return &StorageConfigError{Code: StorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}

	if cfg.EmulatorHost == "" {
		return &StorageConfigError{Code: StorageConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
	}
	u, err := url.Parse(cfg.EmulatorHost)
	if err != nil || strings.TrimSpace(u.Scheme) == "" || strings.TrimSpace(u.Host) == "" {
		return &StorageConfigError{
			Code:         StorageConfigErrorInvalidEmulatorHost,
			Mode:         string(cfg.Mode),
			EmulatorHost: cfg.EmulatorHost,
			Cause:        err,
		}
	}
	return nil
}
