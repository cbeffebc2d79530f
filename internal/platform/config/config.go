// Package config builds process configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"

	"docgate/internal/blob"
	"docgate/internal/email"
)

// Config is everything the process needs at startup. Optional backends
// (postgres, redis, s3, smtp) fall back to in-process implementations when
// their settings are absent.
type Config struct {
	Addr       string
	Production bool

	JWTSecret string
	AdminCode string

	DatabaseURL string
	RedisURL    string

	SMTP email.Config

	BlobDir string
	S3      blob.S3Config

	// CORSOrigins is the allowed browser origins. Development allows all.
	CORSOrigins []string
}

// FromEnv reads the recognized environment variables. Defaults favor a
// zero-configuration development setup.
func FromEnv() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	blobDir := os.Getenv("BLOB_DIR")
	if blobDir == "" {
		blobDir = "uploads"
	}

	cfg := Config{
		Addr:        ":" + port,
		Production:  strings.EqualFold(os.Getenv("ENV"), "production"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminCode:   os.Getenv("ADMIN_CODE"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		SMTP: email.Config{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
		},
		BlobDir: blobDir,
		S3: blob.S3Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	return cfg
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
