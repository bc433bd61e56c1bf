package stage

// Health summarizes whether a stage could run right now. Tool stages report
// the resolved binary; in-process stages leave Tool empty.
type Health struct {
	Name   string
	Ready  bool
	Tool   string
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// HealthyTool constructs a ready Health record for a stage backed by tool.
func HealthyTool(name, tool string) Health {
	return Health{Name: name, Ready: true, Tool: tool}
}

// Unhealthy constructs a Health record explaining why name cannot run.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Detail: detail}
}
