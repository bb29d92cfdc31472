package sqlscript

import (
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config represents the sqlscript configuration
type Config struct {
	Databases map[string]Database `yaml:"databases"`
	Script    ScriptConfig        `yaml:"script"`
	Pool      PoolConfig          `yaml:"pool"`
}

// Database represents database connection configuration
type Database struct {
	Driver     string `yaml:"driver"`
	Connection string `yaml:"connection"`
}

// ScriptConfig represents statement splitting and failure tolerance settings
type ScriptConfig struct {
	Separator         string `yaml:"separator"`
	CommentPrefix     string `yaml:"comment_prefix"`
	BlockCommentStart string `yaml:"block_comment_start"`
	BlockCommentEnd   string `yaml:"block_comment_end"`
	ContinueOnError   bool   `yaml:"continue_on_error"`
	IgnoreFailedDrops bool   `yaml:"ignore_failed_drops"`
}

// PoolConfig represents database connection pool settings
type PoolConfig struct {
	MaxOpenConns    int `yaml:"max_open_conns"`
	MaxIdleConns    int `yaml:"max_idle_conns"`
	ConnMaxLifetime int `yaml:"conn_max_lifetime"` // seconds
}

// LoadConfig loads configuration from the specified file path.
// If the file does not exist, the default configuration is returned.
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Check if config file exists
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate the configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Apply defaults for missing values
	applyDefaults(&config)

	// Expand environment variables
	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	validDrivers := map[string]bool{
		"postgres":   true,
		"postgresql": true,
		"pgx":        true,
		"mysql":      true,
		"mariadb":    true,
		"sqlite":     true,
		"sqlite3":    true,
	}
	for name, db := range config.Databases {
		if db.Driver != "" && !validDrivers[db.Driver] {
			return fmt.Errorf("%w: database '%s': invalid driver '%s': must be one of postgres, mysql, sqlite", ErrConfigValidation, name, db.Driver)
		}
		if db.Connection == "" {
			return fmt.Errorf("%w: database '%s': connection is required", ErrConfigValidation, name)
		}
	}

	if config.Script.BlockCommentStart == "" && config.Script.BlockCommentEnd != "" ||
		config.Script.BlockCommentStart != "" && config.Script.BlockCommentEnd == "" {
		return fmt.Errorf("%w: script.block_comment_start and script.block_comment_end must be set together", ErrConfigValidation)
	}

	if config.Pool.MaxOpenConns < 0 {
		return fmt.Errorf("%w: pool.max_open_conns must be non-negative, got %d", ErrConfigValidation, config.Pool.MaxOpenConns)
	}

	if config.Pool.MaxIdleConns < 0 {
		return fmt.Errorf("%w: pool.max_idle_conns must be non-negative, got %d", ErrConfigValidation, config.Pool.MaxIdleConns)
	}

	if config.Pool.ConnMaxLifetime < 0 {
		return fmt.Errorf("%w: pool.conn_max_lifetime must be non-negative, got %d", ErrConfigValidation, config.Pool.ConnMaxLifetime)
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Databases: make(map[string]Database),
		Script: ScriptConfig{
			Separator:         ";",
			CommentPrefix:     "--",
			BlockCommentStart: "/*",
			BlockCommentEnd:   "*/",
		},
		Pool: PoolConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 300, // 5 minutes
		},
	}
}

// applyDefaults fills in default values for missing configuration
func applyDefaults(config *Config) {
	defaults := getDefaultConfig()

	if config.Script.Separator == "" {
		config.Script.Separator = defaults.Script.Separator
	}
	if config.Script.CommentPrefix == "" {
		config.Script.CommentPrefix = defaults.Script.CommentPrefix
	}
	if config.Script.BlockCommentStart == "" {
		config.Script.BlockCommentStart = defaults.Script.BlockCommentStart
		config.Script.BlockCommentEnd = defaults.Script.BlockCommentEnd
	}
	if config.Pool.MaxOpenConns == 0 {
		config.Pool.MaxOpenConns = defaults.Pool.MaxOpenConns
	}
	if config.Pool.MaxIdleConns == 0 {
		config.Pool.MaxIdleConns = defaults.Pool.MaxIdleConns
	}
	if config.Pool.ConnMaxLifetime == 0 {
		config.Pool.ConnMaxLifetime = defaults.Pool.ConnMaxLifetime
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	// Pattern for ${VAR} format
	re1 := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re1.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		return os.Getenv(varName)
	})

	// Pattern for $VAR format (word boundaries)
	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		return os.Getenv(varName)
	})

	return s
}

// expandConfigEnvVars recursively expands environment variables in config
func expandConfigEnvVars(config *Config) {
	for name, db := range config.Databases {
		db.Connection = expandEnvVars(db.Connection)
		db.Driver = expandEnvVars(db.Driver)
		config.Databases[name] = db
	}
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
