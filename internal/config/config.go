package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Backend kinds.
const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Auth      AuthConfig        `yaml:"auth"`
	Backend   BackendConfig     `yaml:"backend"`
	Database  DatabaseConfig    `yaml:"database"`
	Tailscale TailscaleConfig   `yaml:"tailscale"`
	Import    ImportConfig      `yaml:"import"`
	Roles     map[string]string `yaml:"roles"`
	Bank      BankConfig        `yaml:"bank"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// BackendConfig selects the document backend: the hosted Firestore project
// (default) or the self-hosted Postgres store.
type BackendConfig struct {
	Kind string `yaml:"kind"`
	// Credentials is the service-account JSON path for the firestore
	// backend. The batch CLIs override it with -credentials.
	Credentials string `yaml:"credentials"`
}

type DatabaseConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Name           string `yaml:"name"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	SSLMode        string `yaml:"sslmode"`
	MigrationsPath string `yaml:"migrations_path"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// ImportConfig carries the migration-pipeline defaults that used to be inline
// literals in the one-off scripts.
type ImportConfig struct {
	// CSVPassword is the default account password for identities created
	// from Users.csv rows that carry no password.
	CSVPassword string `yaml:"csv_password"`
	// WorkbookPassword is the default account password for identities
	// provisioned during a workbook import.
	WorkbookPassword string `yaml:"workbook_password"`
	// PlaceholderDomain hosts synthesized emails for people with no real
	// address (slug-of-name@domain).
	PlaceholderDomain string `yaml:"placeholder_domain"`
	// RunLogPath is the directory holding the local import-run journal.
	RunLogPath string `yaml:"runlog_path"`
}

// BankConfig overrides the exercise-bank category rules. An empty rule list
// keeps the built-in defaults.
type BankConfig struct {
	Rules           []BankRule `yaml:"rules"`
	DefaultCategory string     `yaml:"default_category"`
}

type BankRule struct {
	Keywords []string `yaml:"keywords"`
	Category string   `yaml:"category"`
}

// DSN returns a PostgreSQL connection string for the postgres backend.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Default returns the configuration used when no config file is present —
// enough for the import CLIs to run against a firestore backend with just a
// service-account path.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix FIXFIT_ and underscore-separated paths:
//
//	FIXFIT_SERVER_HOST, FIXFIT_SERVER_PORT, FIXFIT_AUTH_API_KEY,
//	FIXFIT_BACKEND_KIND, FIXFIT_BACKEND_CREDENTIALS,
//	FIXFIT_DB_HOST, FIXFIT_DB_PORT, FIXFIT_DB_NAME,
//	FIXFIT_DB_USER, FIXFIT_DB_PASSWORD, FIXFIT_DB_SSLMODE
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads the file when it exists and falls back to Default()
// when it does not. The batch CLIs use this so a bare service-account path is
// enough to run an import.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	if c.Backend.Kind == "" {
		c.Backend.Kind = BackendFirestore
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Import.CSVPassword == "" {
		c.Import.CSVPassword = "123456"
	}
	if c.Import.WorkbookPassword == "" {
		c.Import.WorkbookPassword = "password123"
	}
	if c.Import.PlaceholderDomain == "" {
		c.Import.PlaceholderDomain = "fixfit.placeholder.com"
	}
	if c.Import.RunLogPath == "" {
		c.Import.RunLogPath = ".fixfit"
	}
	if c.Database.MigrationsPath == "" {
		c.Database.MigrationsPath = "migrations"
	}
	if c.Bank.DefaultCategory == "" {
		c.Bank.DefaultCategory = "כללי"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FIXFIT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FIXFIT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FIXFIT_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("FIXFIT_BACKEND_KIND"); v != "" {
		cfg.Backend.Kind = v
	}
	if v := os.Getenv("FIXFIT_BACKEND_CREDENTIALS"); v != "" {
		cfg.Backend.Credentials = v
	}
	if v := os.Getenv("FIXFIT_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("FIXFIT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("FIXFIT_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("FIXFIT_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("FIXFIT_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("FIXFIT_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
}

func (c *Config) validate() error {
	switch c.Backend.Kind {
	case BackendFirestore, BackendPostgres:
	default:
		return fmt.Errorf("backend.kind must be %q or %q", BackendFirestore, BackendPostgres)
	}
	if c.Backend.Kind == BackendPostgres {
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for the postgres backend")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required for the postgres backend")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required for the postgres backend")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required for the postgres backend")
		}
	}
	for email, role := range c.Roles {
		if role != "admin" && role != "trainee" {
			return fmt.Errorf("roles[%s]: unknown role %q", email, role)
		}
	}
	return nil
}

// ValidateServer checks the extra fields the API server needs.
func (c *Config) ValidateServer() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	return nil
}

// RoleFor returns the configured role for an email, defaulting to trainee.
func (c *Config) RoleFor(email string) string {
	if role, ok := c.Roles[email]; ok {
		return role
	}
	return "trainee"
}
