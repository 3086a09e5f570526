package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caio-sobreiro/dicomsr/sr"
)

type Config struct {
	// Render service
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Dataset reading, a comma separated list of read flag names
	ReadFlagNames string
	ReadFlags     sr.ReadFlags

	// Navigator history
	HistoryFile string

	// Colour output: "auto", "always" or "never"
	Color string

	readFlagsErr error
}

func Load() Config {
	cfg := Config{
		Addr:         envOr("DSR_ADDR", ":8095"),
		ReadTimeout:  envDuration("DSR_READ_TIMEOUT", 30*time.Second),
		WriteTimeout: envDuration("DSR_WRITE_TIMEOUT", 30*time.Second),

		MaxUploadBytes: envInt64("DSR_MAX_UPLOAD_BYTES", 33554432), // 32MB

		ReadFlagNames: os.Getenv("DSR_READ_FLAGS"),

		HistoryFile: envOr("DSR_HISTORY_FILE", defaultHistoryFile()),

		Color: strings.ToLower(envOr("DSR_COLOR", "auto")),
	}

	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 33554432
	}
	cfg.ReadFlags, cfg.readFlagsErr = ParseReadFlags(cfg.ReadFlagNames)

	return cfg
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("DSR_ADDR is required")
	}
	if c.readFlagsErr != nil {
		return fmt.Errorf("DSR_READ_FLAGS: %w", c.readFlagsErr)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("DSR_COLOR must be auto, always or never, got %q", c.Color)
	}
	return nil
}

var readFlagNames = map[string]sr.ReadFlags{
	"signatures":           sr.ReadDigitalSignatures,
	"accept-unknown-rel":   sr.AcceptUnknownRelationshipType,
	"ignore-constraints":   sr.IgnoreRelationshipConstraints,
	"ignore-item-errors":   sr.IgnoreContentItemErrors,
	"skip-invalid-items":   sr.SkipInvalidContentItems,
	"show-processed-items": sr.ShowCurrentlyProcessedItem,
}

// ParseReadFlags combines a comma separated list of read flag names.
func ParseReadFlags(names string) (sr.ReadFlags, error) {
	var flags sr.ReadFlags
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		flag, ok := readFlagNames[name]
		if !ok {
			return flags, fmt.Errorf("unknown read flag %q", name)
		}
		flags |= flag
	}
	return flags, nil
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + string(os.PathSeparator) + ".dsrnav_history"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
