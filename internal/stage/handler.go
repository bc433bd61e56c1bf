package stage

import (
	"context"
	"log/slog"
)

// Handler describes the contract the pipeline driver needs from each stage.
type Handler interface {
	// Name is the stable stage identifier stored in the manifest.
	Name() string
	// Artifact is the file whose presence marks the stage complete.
	Artifact() string
	Prepare(context.Context) error
	Execute(context.Context) error
	HealthCheck(context.Context) Health
}

// LoggerAware is implemented by handlers that accept a stage-scoped logger
// before execution.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
