package handlers

// ForecastRequest is the path of a /forecast/{window}/{location} request.
type ForecastRequest struct {
	Location string `uri:"location" validate:"required,max=100,location"`
}

type HealthResponse struct {
	Status    string   `json:"status" validate:"required,oneof=ok alive ready unavailable"`
	Uptime    string   `json:"uptime" validate:"required"`
	Timestamp string   `json:"timestamp,omitempty"`
	Providers []string `json:"providers,omitempty"`
}
