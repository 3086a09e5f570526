package config

import (
	"testing"
	"time"

	"github.com/caio-sobreiro/dicomsr/sr"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DSR_ADDR", "DSR_READ_TIMEOUT", "DSR_WRITE_TIMEOUT", "DSR_MAX_UPLOAD_BYTES", "DSR_READ_FLAGS", "DSR_COLOR"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Addr != ":8095" {
		t.Errorf("Addr = %q, want :8095", cfg.Addr)
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want 30s", cfg.ReadTimeout)
	}
	if cfg.MaxUploadBytes != 33554432 {
		t.Errorf("MaxUploadBytes = %d, want 33554432", cfg.MaxUploadBytes)
	}
	if cfg.ReadFlags != 0 {
		t.Errorf("ReadFlags = %d, want 0", cfg.ReadFlags)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DSR_ADDR", "127.0.0.1:9000")
	t.Setenv("DSR_READ_TIMEOUT", "5s")
	t.Setenv("DSR_WRITE_TIMEOUT", "-1s")
	t.Setenv("DSR_MAX_UPLOAD_BYTES", "1024")
	t.Setenv("DSR_READ_FLAGS", "skip-invalid-items, accept-unknown-rel")
	t.Setenv("DSR_COLOR", "ALWAYS")

	cfg := Load()
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Addr", cfg.Addr, "127.0.0.1:9000"},
		{"ReadTimeout", cfg.ReadTimeout, 5 * time.Second},
		{"WriteTimeout", cfg.WriteTimeout, 30 * time.Second},
		{"MaxUploadBytes", cfg.MaxUploadBytes, int64(1024)},
		{"ReadFlags", cfg.ReadFlags, sr.SkipInvalidContentItems | sr.AcceptUnknownRelationshipType},
		{"Color", cfg.Color, "always"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"unknown read flag", map[string]string{"DSR_READ_FLAGS": "fast"}, true},
		{"bad colour", map[string]string{"DSR_COLOR": "rainbow"}, true},
		{"valid", map[string]string{"DSR_READ_FLAGS": "signatures", "DSR_COLOR": "never"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DSR_READ_FLAGS", "")
			t.Setenv("DSR_COLOR", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			err := Load().Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
