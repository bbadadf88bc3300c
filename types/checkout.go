package types

type CheckoutRequest struct {
	Tier   string `json:"tier" binding:"required"`
	Email  string `json:"email,omitempty"`
	ListID string `json:"listId,omitempty"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type TiersResponse struct {
	Tiers []string `json:"tiers"`
}
