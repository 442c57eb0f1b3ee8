// Package config holds the resolved runtime settings of the nespan CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/FocuswithJustin/nespan/core/tokenize"
	"github.com/FocuswithJustin/nespan/core/xml"
	"github.com/FocuswithJustin/nespan/internal/logging"
	"github.com/FocuswithJustin/nespan/internal/validation"
)

// Config holds the settings shared by every command.
type Config struct {
	LogLevel  string // debug, info, warn or error
	LogFormat string // json or text
	LogFile   string // rotated log file; empty means stderr
	Segmenter string // tokenizer name, see tokenize.Names
	XPath     string // optional XML text selector
	MaxSize   int64  // input limit in bytes (0 = validation.MaxFileSize)
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "json",
		Segmenter: tokenize.NameWhitespace,
		MaxSize:   validation.MaxFileSize,
	}
}

// defaultDir returns ~/.config/nespan on Linux.
func defaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "nespan")
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return fmt.Errorf("log format: %w", err)
	}
	if _, err := tokenize.ByName(c.Segmenter); err != nil {
		return err
	}
	if c.XPath != "" {
		if err := xml.CompileXPath(c.XPath); err != nil {
			return err
		}
	}
	if c.LogFile != "" {
		if err := validation.ValidatePath(c.LogFile); err != nil {
			return fmt.Errorf("log file: %w", err)
		}
	}
	if c.MaxSize < 0 || c.MaxSize > validation.MaxFileSize {
		return fmt.Errorf("max size must be between 0 and %d bytes, got %d", validation.MaxFileSize, c.MaxSize)
	}
	return nil
}

// Tokenizer returns the configured tokenizer.
func (c Config) Tokenizer() (tokenize.Tokenizer, error) {
	return tokenize.ByName(c.Segmenter)
}

// ApplyLogging initializes the global logger from the configuration.
func (c Config) ApplyLogging() error {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return err
	}
	if c.LogFile == "" {
		logging.InitLogger(level, format)
		return nil
	}
	logging.InitLoggerTo(logging.OpenLogFile(c.LogFile), level, format)
	return nil
}
