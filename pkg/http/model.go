package http

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string `json:"message" example:"pair is required"`
	Code    string `json:"code" example:"ERR_REQUIRED"`
	Field   string `json:"field,omitempty" example:"pair"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"ok"`
}
