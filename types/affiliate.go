package types

import "github.com/shopspring/decimal"

const (
	DefaultRecommendationLimit = 6
	MaxRecommendationLimit     = 20
)

// AffiliateProduct is an upsell offered next to a packing list.
type AffiliateProduct struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Category string          `json:"category" yaml:"category"`
	Keywords []string        `json:"keywords,omitempty" yaml:"keywords"`
	Price    decimal.Decimal `json:"price" yaml:"-"`
	Currency string          `json:"currency" yaml:"currency"`
	URL      string          `json:"url" yaml:"url"`
	Tier     string          `json:"tier" yaml:"tier"`
}

type RecommendationRequest struct {
	Items []PackingItem `json:"items" binding:"required"`
	Limit int           `json:"limit,omitempty"`
}

type Recommendation struct {
	Product      AffiliateProduct `json:"product"`
	MatchedItems []string         `json:"matchedItems"`
}
