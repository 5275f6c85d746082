package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_API_TOKEN", "token")
	t.Setenv("STORAGE_DRIVER", DriverMemory)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Env != "local" {
		t.Errorf("expected env %q, got %q", "local", cfg.Env)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Errorf("expected driver %q, got %q", DriverMemory, cfg.Storage.Driver)
	}
	if cfg.Writer.MaxRetries != 0 {
		t.Errorf("expected 0 write retries, got %d", cfg.Writer.MaxRetries)
	}
	if cfg.Writer.Timeout != 5*time.Second {
		t.Errorf("expected writer timeout 5s, got %v", cfg.Writer.Timeout)
	}
	if cfg.Content.MediaDir != "assets/signs" {
		t.Errorf("expected media dir %q, got %q", "assets/signs", cfg.Content.MediaDir)
	}
	if cfg.Leaderboard.Size != 10 {
		t.Errorf("expected leaderboard size 10, got %d", cfg.Leaderboard.Size)
	}
	if cfg.Sessions.IdleTimeout != 30*time.Minute {
		t.Errorf("expected session idle timeout 30m, got %v", cfg.Sessions.IdleTimeout)
	}
	if cfg.Sessions.SweepSchedule != "@every 5m" {
		t.Errorf("expected sweep schedule %q, got %q", "@every 5m", cfg.Sessions.SweepSchedule)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "missing token",
			env:     map[string]string{"STORAGE_DRIVER": DriverMemory},
			wantErr: ErrMissingEnvironmentVariables,
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"TELEGRAM_API_TOKEN": "token", "STORAGE_DRIVER": DriverPostgres},
			wantErr: ErrMissingEnvironmentVariables,
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"TELEGRAM_API_TOKEN": "token", "STORAGE_DRIVER": "mongo"},
			wantErr: ErrUnknownStorageDriver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("TELEGRAM_API_TOKEN", "")
			t.Setenv("DATABASE_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
