package utils

import (
	"go.uber.org/zap"
)

var logger *zap.Logger

// InitLogger builds the production logger. Panics on failure since nothing
// can run without logging.
func InitLogger() {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
}

// GetLogger returns the shared logger, initializing it on first use.
func GetLogger() *zap.Logger {
	if logger == nil {
		InitLogger()
	}
	return logger
}
