// Package config assembles a runnable release service from defaults,
// programmatic options, and environment overrides.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-release/pkg/simplerelease"
	memoryrepo "github.com/tendant/simple-release/pkg/simplerelease/repo/memory"
	pgrepo "github.com/tendant/simple-release/pkg/simplerelease/repo/postgres"
	fsstorage "github.com/tendant/simple-release/pkg/simplerelease/storage/fs"
	s3storage "github.com/tendant/simple-release/pkg/simplerelease/storage/s3"
	"github.com/tendant/simple-release/pkg/simplerelease/urlresolver"
)

// Per-kind key prefixes the shared-bucket s3 backend writes under. fs
// storage keeps the kinds apart with separate directories and writes
// bare names.
const (
	coverArtKeyPrefix = "coverart"
	audioKeyPrefix    = "audio"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",

		StorageType: "fs",
		CoverArtDir: "uploads/coverart",
		AudioDir:    "uploads/audio",

		MediaBaseURL: "/media",

		MaxCoverArtSize:        5 * 1024 * 1024,
		MaxAudioSize:           100 * 1024 * 1024,
		AllowedImageExtensions: []string{".jpg", ".jpeg", ".png"},
		AllowedAudioExtensions: []string{".mp3", ".wav", ".flac"},

		// Coarse multipart body cap above the per-artifact limits.
		MaxRequestBodySize: 110 * 1000 * 1000,
	}
}

// ServerConfig represents server configuration for the release service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// Artifact storage configuration
	StorageType string // "fs", "s3"
	CoverArtDir string // fs: cover art root, created at startup
	AudioDir    string // fs: audio root, created at startup
	S3          S3Config

	// External URL prefix for stored artifacts
	MediaBaseURL string

	// Upload limits
	MaxCoverArtSize        int64
	MaxAudioSize           int64
	AllowedImageExtensions []string
	AllowedAudioExtensions []string
	MaxRequestBodySize     int64
}

// S3Config holds S3/MinIO settings used when StorageType is "s3".
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}
	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.StorageType {
	case "fs":
		if c.CoverArtDir == "" || c.AudioDir == "" {
			return errors.New("cover art and audio directories are required for fs storage")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required for s3 storage")
		}
	default:
		return errors.New("storage_type must be 'fs' or 's3'")
	}

	if c.MaxCoverArtSize <= 0 || c.MaxAudioSize <= 0 {
		return errors.New("upload size limits must be positive")
	}

	return nil
}

// UploadLimits returns the artifact limits portion of the configuration.
func (c *ServerConfig) UploadLimits() simplerelease.UploadLimits {
	return simplerelease.UploadLimits{
		MaxCoverArtSize:        c.MaxCoverArtSize,
		MaxAudioSize:           c.MaxAudioSize,
		AllowedImageExtensions: c.AllowedImageExtensions,
		AllowedAudioExtensions: c.AllowedAudioExtensions,
	}
}

// BuildService creates a Service instance from the server configuration.
// Storage directories are created here, before the service accepts any
// write.
func (c *ServerConfig) BuildService(ctx context.Context) (simplerelease.Service, error) {
	repo, err := c.BuildRepository(ctx)
	if err != nil {
		return nil, err
	}

	coverStore, audioStore, err := c.BuildBlobStores()
	if err != nil {
		return nil, err
	}

	coverResolver, audioResolver := c.BuildResolvers()

	return simplerelease.New(
		simplerelease.WithRepository(repo),
		simplerelease.WithBlobStore(simplerelease.ArtifactCoverArt, coverStore),
		simplerelease.WithBlobStore(simplerelease.ArtifactAudio, audioStore),
		simplerelease.WithURLResolver(simplerelease.ArtifactCoverArt, coverResolver),
		simplerelease.WithURLResolver(simplerelease.ArtifactAudio, audioResolver),
		simplerelease.WithUploadLimits(c.UploadLimits()),
	)
}

// BuildResolvers creates the per-kind URL resolvers. The backend's key
// prefix, if any, is stripped on the way out so resolved URLs take the
// same <MediaBaseURL>/<kind>/<name> shape on every backend.
func (c *ServerConfig) BuildResolvers() (cover, audio urlresolver.Resolver) {
	coverPrefix, audioPrefix := c.ArtifactKeyPrefixes()
	return urlresolver.NewStatic(c.MediaBaseURL+"/coverart", coverPrefix),
		urlresolver.NewStatic(c.MediaBaseURL+"/audio", audioPrefix)
}

// ArtifactKeyPrefixes returns the storage key prefixes the configured
// backend writes under, empty when keys are bare names.
func (c *ServerConfig) ArtifactKeyPrefixes() (cover, audio string) {
	if c.StorageType == "s3" {
		return coverArtKeyPrefix, audioKeyPrefix
	}
	return "", ""
}

// BuildRepository creates the catalog repository selected by DatabaseType.
func (c *ServerConfig) BuildRepository(ctx context.Context) (simplerelease.Repository, error) {
	switch c.DatabaseType {
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return pgrepo.NewWithPool(pool), nil
	default:
		return memoryrepo.New(), nil
	}
}

// BuildBlobStores creates the cover-art and audio blob stores. For fs
// storage this is where the directories get created.
func (c *ServerConfig) BuildBlobStores() (simplerelease.BlobStore, simplerelease.BlobStore, error) {
	if c.StorageType == "s3" {
		coverStore, err := s3storage.New(s3storage.Config{
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			KeyPrefix:       coverArtKeyPrefix,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Endpoint:        c.S3.Endpoint,
			UsePathStyle:    c.S3.UsePathStyle,
		})
		if err != nil {
			return nil, nil, err
		}
		audioStore, err := s3storage.New(s3storage.Config{
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			KeyPrefix:       audioKeyPrefix,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Endpoint:        c.S3.Endpoint,
			UsePathStyle:    c.S3.UsePathStyle,
		})
		if err != nil {
			return nil, nil, err
		}
		return coverStore, audioStore, nil
	}

	coverStore, err := fsstorage.New(fsstorage.Config{BaseDir: c.CoverArtDir})
	if err != nil {
		return nil, nil, err
	}
	audioStore, err := fsstorage.New(fsstorage.Config{BaseDir: c.AudioDir})
	if err != nil {
		return nil, nil, err
	}
	return coverStore, audioStore, nil
}
