package config

import (
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig is the environment surface, read with cleanenv.
//
//	PORT                     - server port (default "8080")
//	ENVIRONMENT              - runtime environment (default "development")
//	DATABASE_URL             - "memory" (default) or a postgres:// URL
//	STORAGE_TYPE             - "fs" (default) or "s3"
//	COVER_ART_DIR, AUDIO_DIR - fs storage roots
//	MEDIA_BASE_URL           - external URL prefix for artifacts
//	MAX_COVER_ART_SIZE       - bytes
//	MAX_AUDIO_SIZE           - bytes
//	ALLOWED_IMAGE_EXTENSIONS - comma separated, e.g. ".jpg,.jpeg,.png"
//	ALLOWED_AUDIO_EXTENSIONS - comma separated, e.g. ".mp3,.wav,.flac"
//	S3_* / AWS_REGION        - S3 settings when STORAGE_TYPE=s3
type envConfig struct {
	Port         string `env:"PORT" env-default:""`
	Environment  string `env:"ENVIRONMENT" env-default:""`
	DatabaseURL  string `env:"DATABASE_URL" env-default:""`
	StorageType  string `env:"STORAGE_TYPE" env-default:""`
	CoverArtDir  string `env:"COVER_ART_DIR" env-default:""`
	AudioDir     string `env:"AUDIO_DIR" env-default:""`
	MediaBaseURL string `env:"MEDIA_BASE_URL" env-default:""`

	MaxCoverArtSize int64  `env:"MAX_COVER_ART_SIZE" env-default:"0"`
	MaxAudioSize    int64  `env:"MAX_AUDIO_SIZE" env-default:"0"`
	ImageExts       string `env:"ALLOWED_IMAGE_EXTENSIONS" env-default:""`
	AudioExts       string `env:"ALLOWED_AUDIO_EXTENSIONS" env-default:""`

	S3Region       string `env:"AWS_REGION" env-default:""`
	S3Bucket       string `env:"S3_BUCKET" env-default:""`
	S3AccessKey    string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	S3SecretKey    string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	S3Endpoint     string `env:"S3_ENDPOINT" env-default:""`
	S3UsePathStyle bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
}

// WithEnv applies environment variable overrides on top of the defaults
// and any options applied before it.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return err
		}

		setString(&c.Port, env.Port)
		setString(&c.Environment, env.Environment)
		setString(&c.StorageType, env.StorageType)
		setString(&c.CoverArtDir, env.CoverArtDir)
		setString(&c.AudioDir, env.AudioDir)
		setString(&c.MediaBaseURL, env.MediaBaseURL)

		if env.DatabaseURL != "" && env.DatabaseURL != "memory" {
			c.DatabaseType = "postgres"
			c.DatabaseURL = env.DatabaseURL
		}

		if env.MaxCoverArtSize > 0 {
			c.MaxCoverArtSize = env.MaxCoverArtSize
		}
		if env.MaxAudioSize > 0 {
			c.MaxAudioSize = env.MaxAudioSize
		}
		if env.ImageExts != "" {
			c.AllowedImageExtensions = splitExts(env.ImageExts)
		}
		if env.AudioExts != "" {
			c.AllowedAudioExtensions = splitExts(env.AudioExts)
		}

		setString(&c.S3.Region, env.S3Region)
		setString(&c.S3.Bucket, env.S3Bucket)
		setString(&c.S3.AccessKeyID, env.S3AccessKey)
		setString(&c.S3.SecretAccessKey, env.S3SecretKey)
		setString(&c.S3.Endpoint, env.S3Endpoint)
		if env.S3UsePathStyle {
			c.S3.UsePathStyle = true
		}

		return nil
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitExts(raw string) []string {
	parts := strings.Split(raw, ",")
	exts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		exts = append(exts, p)
	}
	return exts
}
