// Package config loads cine-insights settings from defaults, an optional YAML
// file and the environment, in that order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

type Config struct {
	Data     DataConfig     `koanf:"data"`
	Logging  LoggingConfig  `koanf:"logging"`
	Report   ReportConfig   `koanf:"report"`
	Schedule ScheduleConfig `koanf:"schedule"`
	Email    EmailConfig    `koanf:"email"`
	Server   ServerConfig   `koanf:"server"`
}

type DataConfig struct {
	// Path is the directory holding the SQLite database
	Path string `koanf:"path" validate:"required"`
	// Source is the default dataset location for import, a file path or URL
	Source string `koanf:"source"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled off"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

type ReportConfig struct {
	Dimension string `koanf:"dimension" validate:"oneof=genre country cast director listed_in category"`
	Window    int    `koanf:"window" validate:"gte=1"`
	Limit     int    `koanf:"limit" validate:"gte=1"`
}

type ScheduleConfig struct {
	Enabled      bool     `koanf:"enabled"`
	Specs        []string `koanf:"specs" validate:"required_if=Enabled true"`
	RunAtStartup bool     `koanf:"run_at_startup"`
}

type EmailConfig struct {
	SMTPHost  string `koanf:"smtp_host"`
	SMTPPort  int    `koanf:"smtp_port" validate:"gte=1,lte=65535"`
	Username  string `koanf:"username"`
	Sender    string `koanf:"sender" validate:"omitempty,email"`
	Password  string `koanf:"password"`
	Recipient string `koanf:"recipient" validate:"omitempty,email"`
}

// Enabled reports whether enough is configured to send mail
func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != "" && e.Recipient != ""
}

type ServerConfig struct {
	Addr         string        `koanf:"addr" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Path: "./data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Report: ReportConfig{
			Dimension: "genre",
			Window:    3,
			Limit:     5,
		},
		Schedule: ScheduleConfig{
			Enabled: false,
			// 10am and 5pm every day, with seconds
			Specs: []string{"0 0 10 * * *", "0 0 17 * * *"},
		},
		Email: EmailConfig{
			SMTPPort: 587,
			// Mailtrap authenticates as "api" with the token as password
			Username: "api",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the config file if one exists
// and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps the environment variables cine-insights reads onto config
// paths. Anything else in the environment is ignored.
var envMappings = map[string]string{
	"data_path":          "data.path",
	"dataset_source":     "data.source",
	"log_level":          "logging.level",
	"log_format":         "logging.format",
	"log_caller":         "logging.caller",
	"report_dimension":   "report.dimension",
	"report_window":      "report.window",
	"report_limit":       "report.limit",
	"schedule_enabled":   "schedule.enabled",
	"schedule_specs":     "schedule.specs",
	"run_at_startup":     "schedule.run_at_startup",
	"email_smtp_host":    "email.smtp_host",
	"email_smtp_port":    "email.smtp_port",
	"email_username":     "email.username",
	"email_sender":       "email.sender",
	"email_password":     "email.password",
	"email_recipient":    "email.recipient",
	"http_addr":          "server.addr",
	"http_read_timeout":  "server.read_timeout",
	"http_write_timeout": "server.write_timeout",
}

// envTransformFunc returns "" for unknown variables, which koanf skips
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// sliceConfigPaths are given as ';'-separated strings in the environment,
// since cron specs themselves contain spaces and commas
var sliceConfigPaths = []string{"schedule.specs"}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ";") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation at once
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (%v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
