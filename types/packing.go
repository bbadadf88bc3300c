package types

import (
	"strings"
	"time"
)

const (
	DefaultItemCategory = "Miscellaneous"
	MaxListItems        = 200
	MaxItemNameLength   = 200
)

// TripContext describes the trip a packing list was generated for.
type TripContext struct {
	Destination   string   `json:"destination"`
	StartDate     string   `json:"startDate,omitempty"`
	EndDate       string   `json:"endDate,omitempty"`
	DurationDays  int      `json:"durationDays,omitempty"`
	Travelers     int      `json:"travelers,omitempty"`
	Purpose       string   `json:"purpose,omitempty"`
	Activities    []string `json:"activities,omitempty"`
	Accommodation string   `json:"accommodation,omitempty"`
	Climate       string   `json:"climate,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

type PackingItem struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
	Essential bool   `json:"essential"`
	Notes     string `json:"notes,omitempty"`
	Packed    bool   `json:"packed"`
}

// PackingList is a saved list. Views is incremented on every fetch.
type PackingList struct {
	ID        string        `json:"id"`
	Items     []PackingItem `json:"items"`
	Trip      TripContext   `json:"trip"`
	CreatedAt time.Time     `json:"createdAt"`
	Views     int64         `json:"views"`
}

type SaveListRequest struct {
	Items []PackingItem `json:"items" binding:"required"`
	Trip  TripContext   `json:"trip"`
}

type SaveListResponse struct {
	ID       string       `json:"id"`
	ShareURL string       `json:"shareUrl"`
	List     *PackingList `json:"list"`
}

type ShareLinks struct {
	URL   string            `json:"url"`
	Links map[string]string `json:"links"`
}

// NormalizeItems trims item fields, drops unnamed items and fills defaults.
// The input slice is not modified.
func NormalizeItems(items []PackingItem) []PackingItem {
	out := make([]PackingItem, 0, len(items))
	for _, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			continue
		}
		item.Category = strings.TrimSpace(item.Category)
		if item.Category == "" {
			item.Category = DefaultItemCategory
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		item.Notes = strings.TrimSpace(item.Notes)
		out = append(out, item)
	}
	return out
}

// GroupByCategory returns the categories in first-seen order and the items of each.
func GroupByCategory(items []PackingItem) ([]string, map[string][]PackingItem) {
	order := []string{}
	groups := make(map[string][]PackingItem)
	for _, item := range items {
		if _, ok := groups[item.Category]; !ok {
			order = append(order, item.Category)
		}
		groups[item.Category] = append(groups[item.Category], item)
	}
	return order, groups
}
