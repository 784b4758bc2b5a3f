package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, val string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, val)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost:5432/medbill")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "8100" {
		t.Errorf("Port = %q, want 8100", cfg.Port)
	}
	if cfg.AutoApproveConfidence != 90 {
		t.Errorf("AutoApproveConfidence = %d, want 90", cfg.AutoApproveConfidence)
	}
	if cfg.ReviewConfidence != 70 {
		t.Errorf("ReviewConfidence = %d, want 70", cfg.ReviewConfidence)
	}
	if cfg.FeeDefaultAmount != 75.00 {
		t.Errorf("FeeDefaultAmount = %v, want 75.00", cfg.FeeDefaultAmount)
	}
	if cfg.X12SenderID != "MEDBILL" {
		t.Errorf("X12SenderID = %q, want MEDBILL", cfg.X12SenderID)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without DATABASE_URL")
	}
}

func TestValidate_ProductionRequiresJWTSecret(t *testing.T) {
	cfg := &Config{
		Env:                   "production",
		AutoApproveConfidence: 90,
		ReviewConfidence:      70,
		FeeDefaultAmount:      75,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should require JWT_SECRET in production")
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	cfg := &Config{
		Env:                   "development",
		AutoApproveConfidence: 60,
		ReviewConfidence:      80,
		FeeDefaultAmount:      75,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject review threshold above auto-approve threshold")
	}
}

func TestValidate_ThresholdRange(t *testing.T) {
	cfg := &Config{
		Env:                   "development",
		AutoApproveConfidence: 150,
		ReviewConfidence:      70,
		FeeDefaultAmount:      75,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject confidence above 100")
	}
}
