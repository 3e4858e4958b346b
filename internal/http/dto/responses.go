package dto

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type GraphQLError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// GraphQLResponse is the envelope for errors produced outside the executor (auth, bad body).
type GraphQLResponse struct {
	Errors []GraphQLError `json:"errors,omitempty"`
}
