package types

type ExportRequest struct {
	ListID string        `json:"listId,omitempty"`
	Items  []PackingItem `json:"items,omitempty"`
	Trip   TripContext   `json:"trip"`
}

type ExportResponse struct {
	HTML     string `json:"html"`
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
}
