package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	WorkspaceStorePostgres = "postgres"
	WorkspaceStoreSQLite   = "sqlite"
)

type Config struct {
	Port                string   `mapstructure:"PORT"`
	Env                 string   `mapstructure:"ENV"`
	DatabaseURL         string   `mapstructure:"DATABASE_URL"`
	DBMaxConns          int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32    `mapstructure:"DB_MIN_CONNS"`
	AuthJWTSecret       string   `mapstructure:"AUTH_JWT_SECRET"`
	AuthIssuer          string   `mapstructure:"AUTH_ISSUER"`
	AuthAudience        string   `mapstructure:"AUTH_AUDIENCE"`
	AllowedEmails       []string `mapstructure:"ALLOWED_EMAILS"`
	CORSOrigins         []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS        float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst      int      `mapstructure:"RATE_LIMIT_BURST"`
	AnthropicAPIKey     string   `mapstructure:"ANTHROPIC_API_KEY"`
	AIModel             string   `mapstructure:"AI_MODEL"`
	AIBaseURL           string   `mapstructure:"AI_BASE_URL"`
	WorkspaceStore      string   `mapstructure:"WORKSPACE_STORE"`
	WorkspaceSQLitePath string   `mapstructure:"WORKSPACE_SQLITE_PATH"`
	MigrationsDir       string   `mapstructure:"MIGRATIONS_DIR"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"AUTH_JWT_SECRET", "AUTH_ISSUER", "AUTH_AUDIENCE", "ALLOWED_EMAILS",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"ANTHROPIC_API_KEY", "AI_MODEL", "AI_BASE_URL",
	"WORKSPACE_STORE", "WORKSPACE_SQLITE_PATH", "MIGRATIONS_DIR",
}

// Load reads the environment, then an optional .env file in the working
// directory. DATABASE_URL is required.
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("WORKSPACE_STORE", WorkspaceStorePostgres)
	v.SetDefault("WORKSPACE_SQLITE_PATH", "workspace.db")

	// Unmarshal only sees keys viper knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.AllowedEmails = splitList(v.GetString("ALLOWED_EMAILS"))
	cfg.WorkspaceStore = strings.ToLower(strings.TrimSpace(cfg.WorkspaceStore))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// AIEnabled reports whether summaries and mail analysis can be served.
func (c *Config) AIEnabled() bool {
	return c.AnthropicAPIKey != ""
}

// Validate checks that the configuration is safe to run. Outside development
// bearer tokens must be verifiable, so AUTH_JWT_SECRET is required.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthJWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET must be set when ENV=%q; "+
			"refusing to start without token verification", c.Env)
	}
	if c.AuthJWTSecret != "" && len(c.AuthJWTSecret) < 32 {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least 32 characters, got %d", len(c.AuthJWTSecret))
	}

	switch c.WorkspaceStore {
	case WorkspaceStorePostgres:
	case WorkspaceStoreSQLite:
		if c.WorkspaceSQLitePath == "" {
			return fmt.Errorf("WORKSPACE_SQLITE_PATH is required when WORKSPACE_STORE is %q", WorkspaceStoreSQLite)
		}
	default:
		return fmt.Errorf("WORKSPACE_STORE must be %q or %q, got %q",
			WorkspaceStorePostgres, WorkspaceStoreSQLite, c.WorkspaceStore)
	}

	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	return nil
}
