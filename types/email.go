package types

type SendListEmailRequest struct {
	Email  string        `json:"email" binding:"required"`
	ListID string        `json:"listId,omitempty"`
	Items  []PackingItem `json:"items,omitempty"`
	Trip   TripContext   `json:"trip"`
}

type ContactMessage struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message" binding:"required"`
}

type SubscribeRequest struct {
	Email string `json:"email" binding:"required"`
}

type SubscribeResponse struct {
	Subscribed        bool `json:"subscribed"`
	AlreadySubscribed bool `json:"alreadySubscribed"`
}
