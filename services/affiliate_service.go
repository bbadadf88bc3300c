package services

import (
	_ "embed"
	"fmt"
	"net/url"
	"sort"
	"strings"

	apperrors "github.com/packwise/packwise-backend/errors"
	"github.com/packwise/packwise-backend/types"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed affiliate_catalog.yaml
var defaultAffiliateCatalog []byte

type catalogFile struct {
	Products []catalogEntry `yaml:"products"`
}

type catalogEntry struct {
	types.AffiliateProduct `yaml:",inline"`
	Price                  string `yaml:"price"`
}

// AffiliateService recommends affiliate products for a packing list.
type AffiliateService struct {
	products []types.AffiliateProduct
	tag      string
}

func NewAffiliateService(tag string) (*AffiliateService, error) {
	return NewAffiliateServiceFromYAML(defaultAffiliateCatalog, tag)
}

func NewAffiliateServiceFromYAML(data []byte, tag string) (*AffiliateService, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse affiliate catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Products))
	products := make([]types.AffiliateProduct, 0, len(file.Products))
	for i, entry := range file.Products {
		product := entry.AffiliateProduct
		if product.ID == "" || product.Name == "" || product.URL == "" {
			return nil, fmt.Errorf("affiliate product %d is missing id, name or url", i)
		}
		if seen[product.ID] {
			return nil, fmt.Errorf("duplicate affiliate product %q", product.ID)
		}
		seen[product.ID] = true

		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			return nil, fmt.Errorf("invalid price for affiliate product %q: %w", product.ID, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("negative price for affiliate product %q", product.ID)
		}
		product.Price = price
		product.Category = strings.ToLower(product.Category)
		for j, kw := range product.Keywords {
			product.Keywords[j] = strings.ToLower(strings.TrimSpace(kw))
		}

		link, err := withAffiliateTag(product.URL, tag)
		if err != nil {
			return nil, fmt.Errorf("invalid url for affiliate product %q: %w", product.ID, err)
		}
		product.URL = link
		products = append(products, product)
	}

	return &AffiliateService{products: products, tag: tag}, nil
}

// Products lists the catalog, optionally restricted to one category.
func (s *AffiliateService) Products(category string) []types.AffiliateProduct {
	category = strings.ToLower(strings.TrimSpace(category))
	out := make([]types.AffiliateProduct, 0, len(s.products))
	for _, p := range s.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Recommend ranks products by the number of list items they match, then by
// price ascending.
func (s *AffiliateService) Recommend(req types.RecommendationRequest) ([]types.Recommendation, error) {
	limit := req.Limit
	switch {
	case limit < 0 || limit > types.MaxRecommendationLimit:
		return nil, apperrors.ValidationFailed("Invalid limit",
			fmt.Sprintf("limit must be between 1 and %d", types.MaxRecommendationLimit))
	case limit == 0:
		limit = types.DefaultRecommendationLimit
	}

	items := types.NormalizeItems(req.Items)
	recs := []types.Recommendation{}
	for _, product := range s.products {
		var matched []string
		for _, item := range items {
			if productMatches(product, item) {
				matched = append(matched, item.Name)
			}
		}
		if len(matched) > 0 {
			recs = append(recs, types.Recommendation{Product: product, MatchedItems: matched})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if len(recs[i].MatchedItems) != len(recs[j].MatchedItems) {
			return len(recs[i].MatchedItems) > len(recs[j].MatchedItems)
		}
		return recs[i].Product.Price.LessThan(recs[j].Product.Price)
	})

	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func productMatches(product types.AffiliateProduct, item types.PackingItem) bool {
	name := strings.ToLower(item.Name)
	if strings.EqualFold(item.Category, product.Category) && product.Category != strings.ToLower(types.DefaultItemCategory) {
		return true
	}
	for _, kw := range product.Keywords {
		if kw != "" && strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func withAffiliateTag(raw, tag string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if tag == "" {
		return u.String(), nil
	}
	q := u.Query()
	q.Set("tag", tag)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
