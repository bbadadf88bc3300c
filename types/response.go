package types

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

type SentResponse struct {
	Sent bool   `json:"sent"`
	ID   string `json:"id,omitempty"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

type ProductsResponse struct {
	Products []AffiliateProduct `json:"products"`
}

type RecommendationsResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}

type LivenessResponse struct {
	Status  HealthStatus `json:"status"`
	Version string       `json:"version"`
	Uptime  string       `json:"uptime"`
}
