package mcp

// GetInput defines the input for the tkgel_get tool.
type GetInput struct {
	Key string `json:"key" jsonschema:"description=Dotted configuration key (e.g. 'evokg.lr'),required"`
}

// GetOutput defines the output for the tkgel_get tool.
type GetOutput struct {
	Key   string `json:"key"`
	Value any    `json:"value" jsonschema:"description=The configured value"`
}

// ValidateInput defines the input for the tkgel_validate tool.
type ValidateInput struct{}

// ValidateOutput defines the output for the tkgel_validate tool.
type ValidateOutput struct {
	Valid       bool     `json:"valid" jsonschema:"description=Whether the configuration passed validation"`
	Problems    []string `json:"problems,omitempty" jsonschema:"description=Validation failures"`
	UnknownKeys []string `json:"unknown_keys,omitempty" jsonschema:"description=Keys not covered by any profile or extension point"`
}

// ResolveInput defines the input for the tkgel_resolve tool.
type ResolveInput struct{}

// ResolveOutput defines the output for the tkgel_resolve tool.
type ResolveOutput struct {
	YAML string `json:"yaml" jsonschema:"description=The resolved configuration serialized as YAML"`
}

// TraceBestInput defines the input for the tkgel_trace_best tool.
type TraceBestInput struct {
	JobDir string `json:"job_dir" jsonschema:"description=Job folder containing trace.db (relative to the project root),required"`
	JobID  string `json:"job_id" jsonschema:"description=Job ID to query,required"`
	Metric string `json:"metric,omitempty" jsonschema:"description=Metric name (default: the configured valid.metric)"`
}

// TraceBestOutput defines the output for the tkgel_trace_best tool.
type TraceBestOutput struct {
	Epoch  int     `json:"epoch" jsonschema:"description=Epoch with the best metric value"`
	Value  float64 `json:"value" jsonschema:"description=The best metric value"`
	Metric string  `json:"metric"`
}
