package pipeline

import (
	"context"

	"buildmsa/internal/stage"
)

// HealthCheck reports the readiness of every stage.
func (d *Driver) HealthCheck(ctx context.Context) []stage.Health {
	steps := d.buildSteps()
	out := make([]stage.Health, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.HealthCheck(ctx))
	}
	return out
}
