package config

import (
	"path/filepath"

	"github.com/rshade/adminboard/internal/logging"
)

const auditLogName = "audit.log"

// LoggingConfig is the logging section of the config file.
type LoggingConfig struct {
	Level  string      `yaml:"level"`
	Format string      `yaml:"format"`
	File   string      `yaml:"file,omitempty"`
	Audit  AuditConfig `yaml:"audit"`
}

// AuditConfig controls the audit trail of state-changing commands.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file,omitempty"`
}

// ToLoggingConfig converts the config section into logging.Config.
//
// The conversion applies these rules:
//   - Level, Format are copied directly
//   - If File is set, Output becomes "file" and File is passed through
//   - If File is empty, Output defaults to "stderr"
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// ToAuditConfig converts the audit subsection into logging.AuditLoggerConfig.
// An enabled audit log without a file goes to audit.log in the config dir.
func (lc *LoggingConfig) ToAuditConfig() logging.AuditLoggerConfig {
	cfg := logging.AuditLoggerConfig{Enabled: lc.Audit.Enabled, File: lc.Audit.File}
	if cfg.Enabled && cfg.File == "" {
		if dir, err := GetConfigDir(); err == nil {
			cfg.File = filepath.Join(dir, auditLogName)
		}
	}
	return cfg
}

// GetLoggingConfig returns the Logging section of the global configuration.
// Flag overrides such as --debug are applied by the caller.
func GetLoggingConfig() LoggingConfig {
	return GetGlobalConfig().Logging
}
