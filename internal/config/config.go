package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	ResumeStorageDisk     = "disk"
	ResumeStorageDatabase = "database"
)

type Config struct {
	Port            string
	Env             string // either prod or dev, dev binds localhost and pretty prints logs
	DatabaseURL     string
	JwtSigningKey   []byte
	TokenTTL        time.Duration // lifetime of issued bearer tokens
	SentryDSN       string        // empty disables error reporting
	LogLevel        string
	ResumeStorage   string // either disk or database
	UploadDir       string // root of the disk resume store
	MaxResumeSize   int64  // in bytes
	CORSOrigins     []string
	StrictOwnership bool // employers may only read/update applications of their own jobs
}

func LoadConfig() (Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		env = "dev"
	}
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL cannot be empty")
	}
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		return Config{}, fmt.Errorf("JWT_SIGNING_KEY cannot be empty")
	}
	jwtSigningKeyBytes, err := base64.StdEncoding.DecodeString(jwtSigningKey)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to decode jwt signing key to bytes")
	}
	tokenTTL := 30 * 24 * time.Hour
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		tokenTTL, err = time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "unable to parse TOKEN_TTL %q", v)
		}
	}
	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "info"
	}
	resumeStorage := strings.ToLower(os.Getenv("RESUME_STORAGE"))
	switch resumeStorage {
	case "":
		resumeStorage = ResumeStorageDisk
	case ResumeStorageDisk, ResumeStorageDatabase:
	default:
		return Config{}, fmt.Errorf("RESUME_STORAGE must be %q or %q, got %q", ResumeStorageDisk, ResumeStorageDatabase, resumeStorage)
	}
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads/resumes"
	}
	maxResumeSize := int64(5 * 1024 * 1024)
	if v := os.Getenv("MAX_RESUME_SIZE"); v != "" {
		maxResumeSize, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("could not convert ascii to int: %v", err)
		}
		if maxResumeSize <= 0 {
			return Config{}, errors.New("MAX_RESUME_SIZE must be positive")
		}
	}
	corsOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		corsOrigins = corsOrigins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}
	strictOwnership := true
	if v := os.Getenv("STRICT_OWNERSHIP"); v != "" {
		strictOwnership, err = strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "unable to parse STRICT_OWNERSHIP %q", v)
		}
	}

	return Config{
		Port:            port,
		Env:             env,
		DatabaseURL:     databaseURL,
		JwtSigningKey:   jwtSigningKeyBytes,
		TokenTTL:        tokenTTL,
		SentryDSN:       os.Getenv("SENTRY_DSN"),
		LogLevel:        logLevel,
		ResumeStorage:   resumeStorage,
		UploadDir:       uploadDir,
		MaxResumeSize:   maxResumeSize,
		CORSOrigins:     corsOrigins,
		StrictOwnership: strictOwnership,
	}, nil
}

func (c Config) IsDev() bool {
	return c.Env == "dev"
}
