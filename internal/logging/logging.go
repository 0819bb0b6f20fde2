// Package logging configures the router's logrus loggers. In LSP mode stdout
// carries the protocol, so logs must never reach it; the proxy logs to a file
// and the CLI logs to stderr.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"go.trai.ch/graphql-lsp-router/internal/config"
)

// New creates a logger writing to stderr with the level taken from the
// environment.
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	logger.SetLevel(config.GetLogLevel())
	return logger
}

// NewWithComponent creates a logger that stamps every entry with a component
// field.
func NewWithComponent(component string) *logrus.Logger {
	logger := New()
	logger.AddHook(&componentHook{component: component})
	return logger
}

// OpenLogFile opens (creating directories as needed) the file the LSP mode
// logs to, and points the logger at it.
func OpenLogFile(logger *logrus.Logger, path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), config.DefaultDirPerm); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, config.DefaultFilePerm)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(f)
	return f, nil
}

// DefaultLogPath returns the log file used when none is configured:
// ~/.config/graphql-lsp-router/router.log, falling back to the temp dir.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "graphql-lsp-router.log")
	}
	return filepath.Join(home, ".config", config.DefaultConfigDirName, "router.log")
}

type componentHook struct {
	component string
}

func (h *componentHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *componentHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["component"]; !ok {
		entry.Data["component"] = h.component
	}
	return nil
}
