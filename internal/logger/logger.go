package logger

import (
	"os"

	"go.uber.org/zap"
)

// New builds the process logger: production JSON encoding under GIN_MODE
// release, human-readable development output otherwise.
func New() (*zap.Logger, error) {
	if os.Getenv("GIN_MODE") == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
