package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	JWTSecret   string   `mapstructure:"JWT_SECRET"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// X12 envelope identity. Sender/receiver IDs go into ISA06/ISA08 and the
	// NM1 submitter/receiver loops.
	X12SenderID      string `mapstructure:"X12_SENDER_ID"`
	X12ReceiverID    string `mapstructure:"X12_RECEIVER_ID"`
	X12SenderName    string `mapstructure:"X12_SENDER_NAME"`
	X12ReceiverName  string `mapstructure:"X12_RECEIVER_NAME"`
	X12ProductionUse bool   `mapstructure:"X12_PRODUCTION_USE"`

	// Fee resolution.
	FeeDefaultAmount float64 `mapstructure:"FEE_DEFAULT_AMOUNT"`
	FeeTierTimeoutMS int     `mapstructure:"FEE_TIER_TIMEOUT_MS"`

	// External coding-suggestion collaborators.
	SuggestAIURL     string `mapstructure:"SUGGEST_AI_URL"`
	SuggestSDOHURL   string `mapstructure:"SUGGEST_SDOH_URL"`
	SuggestTimeoutMS int    `mapstructure:"SUGGEST_TIMEOUT_MS"`

	// Decision engine thresholds.
	AutoApproveConfidence int `mapstructure:"AUTO_APPROVE_CONFIDENCE"`
	ReviewConfidence      int `mapstructure:"REVIEW_CONFIDENCE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8100")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("X12_SENDER_ID", "MEDBILL")
	v.SetDefault("X12_RECEIVER_ID", "CLEARINGHOUSE")
	v.SetDefault("X12_SENDER_NAME", "MEDBILL BILLING")
	v.SetDefault("X12_RECEIVER_NAME", "CLEARINGHOUSE")
	v.SetDefault("X12_PRODUCTION_USE", false)
	v.SetDefault("FEE_DEFAULT_AMOUNT", 75.00)
	v.SetDefault("FEE_TIER_TIMEOUT_MS", 2000)
	v.SetDefault("SUGGEST_TIMEOUT_MS", 3000)
	v.SetDefault("AUTO_APPROVE_CONFIDENCE", 90)
	v.SetDefault("REVIEW_CONFIDENCE", 70)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("X12_SENDER_ID")
	v.BindEnv("X12_RECEIVER_ID")
	v.BindEnv("X12_SENDER_NAME")
	v.BindEnv("X12_RECEIVER_NAME")
	v.BindEnv("X12_PRODUCTION_USE")
	v.BindEnv("FEE_DEFAULT_AMOUNT")
	v.BindEnv("FEE_TIER_TIMEOUT_MS")
	v.BindEnv("SUGGEST_AI_URL")
	v.BindEnv("SUGGEST_SDOH_URL")
	v.BindEnv("SUGGEST_TIMEOUT_MS")
	v.BindEnv("AUTO_APPROVE_CONFIDENCE")
	v.BindEnv("REVIEW_CONFIDENCE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: All requests are granted the billing role without a token.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT secret is required so that real authentication is enforced, and the
// decision-engine thresholds must be sane percentages.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV is not development")
	}
	if c.AutoApproveConfidence < 0 || c.AutoApproveConfidence > 100 {
		return fmt.Errorf("AUTO_APPROVE_CONFIDENCE must be 0-100, got %d", c.AutoApproveConfidence)
	}
	if c.ReviewConfidence < 0 || c.ReviewConfidence > 100 {
		return fmt.Errorf("REVIEW_CONFIDENCE must be 0-100, got %d", c.ReviewConfidence)
	}
	if c.ReviewConfidence > c.AutoApproveConfidence {
		return fmt.Errorf("REVIEW_CONFIDENCE (%d) cannot exceed AUTO_APPROVE_CONFIDENCE (%d)",
			c.ReviewConfidence, c.AutoApproveConfidence)
	}
	if c.FeeDefaultAmount <= 0 {
		return fmt.Errorf("FEE_DEFAULT_AMOUNT must be positive, got %v", c.FeeDefaultAmount)
	}
	return nil
}
