package internal

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger returns a named logger for one component of the service.
func NewLogger(name string) (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if os.Getenv("ENVIRONMENT") == "development" {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	} else {
		logger, err = zap.NewProduction()
		if err != nil {
			return nil, err
		}
	}

	return logger.Named(name).Sugar(), nil
}
