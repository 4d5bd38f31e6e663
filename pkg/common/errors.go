package common

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// AnalysisError represents analysis-pipeline errors
type AnalysisError struct {
	Component string `json:"component"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Cause     error  `json:"-"`
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeConfiguration = "CONFIGURATION"
	ErrCodePrecondition  = "PRECONDITION"
	ErrCodeDevice        = "DEVICE"
)

// NewAnalysisError creates a new analysis error
func NewAnalysisError(component, code, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Component: component,
		Code:      code,
		Message:   message,
		Cause:     cause,
	}
}
