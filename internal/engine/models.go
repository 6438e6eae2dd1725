package engine

// Status marks the outcome of an operation in REST responses.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusHealthy Status = "healthy"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
	Status  Status `json:"status"`
}

// DeleteResponse confirms a hard delete.
type DeleteResponse struct {
	Message string `json:"message"`
}

// ConvertRequirementResponse reports a requirement conversion.
type ConvertRequirementResponse struct {
	Message        string `json:"message"`
	ConversionType string `json:"conversion_type"`
	CreatedItemID  int64  `json:"created_item_id"`
}

// ConvertToTestResponse reports a test case created from a config or
// WRICEF item.
type ConvertToTestResponse struct {
	Message string `json:"message"`
	TestID  int64  `json:"test_id"`
}

// RootResponse is the service metadata returned at /.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Health  string `json:"health"`
	Metrics string `json:"metrics"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
