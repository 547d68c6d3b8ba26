package request

// CreateAPIKey holds the request body for creating an API key.
type CreateAPIKey struct {
	Name         string `json:"name" validate:"required,min=1,max=255"`
	Type         string `json:"type" validate:"required,oneof=dev live"`
	MonthlyLimit *int   `json:"monthlyLimit" validate:"omitnil,min=1"`
}

// UpdateAPIKey holds the request body for updating an API key. The key string
// itself is never part of the mutable set.
type UpdateAPIKey struct {
	Name         string `json:"name" validate:"required,min=1,max=255"`
	Type         string `json:"type" validate:"required,oneof=dev live"`
	MonthlyLimit *int   `json:"monthlyLimit" validate:"omitnil,min=1"`
}

// ValidateKey holds the request body for validating a presented key.
type ValidateKey struct {
	APIKey string `json:"apiKey" validate:"required"`
}

// Summarize holds the request body for the README summarization endpoint.
type Summarize struct {
	GitHubURL string `json:"githubUrl" validate:"required,url"`
}
