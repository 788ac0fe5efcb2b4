package config

import (
	"errors"
	"os"
	"strconv"
)

// ArchiveConfig points at an S3-compatible bucket (AWS, Cloudflare R2, MinIO)
// that rendered invoice PDFs are copied to
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

func (a *ArchiveConfig) applyEnv() {
	if v := os.Getenv("ARCHIVE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			a.Enabled = b
		}
	}
	if v := os.Getenv("ARCHIVE_ENDPOINT"); v != "" {
		a.Endpoint = v
	}
	if v := os.Getenv("ARCHIVE_BUCKET"); v != "" {
		a.Bucket = v
	}
	if v := os.Getenv("ARCHIVE_ACCESS_KEY"); v != "" {
		a.AccessKey = v
	}
	if v := os.Getenv("ARCHIVE_SECRET_KEY"); v != "" {
		a.SecretKey = v
	}
}

// Validate reports missing settings when archiving is enabled
func (a ArchiveConfig) Validate() error {
	if !a.Enabled {
		return nil
	}
	if a.Bucket == "" {
		return errors.New("archive.bucket is required when archive is enabled")
	}
	if (a.AccessKey == "") != (a.SecretKey == "") {
		return errors.New("archive.access_key and archive.secret_key must be set together")
	}
	return nil
}
