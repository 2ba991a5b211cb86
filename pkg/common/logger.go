package common

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger logs to the file specified by `path`. If the file is unavailable, writes to the console.
// An empty path means the console only. `debug` switches to the human-readable development encoder.
func NewLogger(path string, debug bool) (*zap.SugaredLogger, error) {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	config.OutputPaths = []string{"stderr"}
	if path != "" {
		if fileWriterReady(path) {
			config.OutputPaths = []string{path}
		} else {
			fmt.Printf("Error: %s is not writable. Logging switched to console.\n", path)
		}
	}
	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func fileWriterReady(path string) bool {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false
		}
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false
	}
	_ = file.Close()
	return true
}
