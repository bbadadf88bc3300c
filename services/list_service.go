package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	apperrors "github.com/packwise/packwise-backend/errors"
	"github.com/packwise/packwise-backend/logger"
	"github.com/packwise/packwise-backend/store"
	"github.com/packwise/packwise-backend/types"
)

// ListService saves, fetches and shares packing lists.
type ListService struct {
	store       store.ListStore
	frontendURL string
	now         func() time.Time
}

func NewListService(listStore store.ListStore, frontendURL string) *ListService {
	return &ListService{
		store:       listStore,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

// ShareURL is the public page of a list.
func (s *ListService) ShareURL(id string) string {
	return fmt.Sprintf("%s/list/%s", s.frontendURL, url.PathEscape(id))
}

func (s *ListService) Save(ctx context.Context, req types.SaveListRequest) (*types.SaveListResponse, error) {
	items, err := validateItems(req.Items)
	if err != nil {
		return nil, err
	}

	list := &types.PackingList{
		ID:        uuid.NewString(),
		Items:     items,
		Trip:      req.Trip,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, list); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ServerError, "Failed to save packing list")
	}

	logger.GetLogger().Infow("Saved packing list", "listID", list.ID, "items", len(items))

	return &types.SaveListResponse{
		ID:       list.ID,
		ShareURL: s.ShareURL(list.ID),
		List:     list,
	}, nil
}

// Get returns a list and counts the fetch as a view.
func (s *ListService) Get(ctx context.Context, id string) (*types.PackingList, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ListNotFound(id)
	}

	views, err := s.store.IncrementViews(ctx, id)
	if err != nil {
		return nil, s.storeError(err, id)
	}
	list, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.storeError(err, id)
	}
	list.Views = views
	return list, nil
}

// Peek returns a list without counting a view.
func (s *ListService) Peek(ctx context.Context, id string) (*types.PackingList, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ListNotFound(id)
	}
	list, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.storeError(err, id)
	}
	return list, nil
}

func (s *ListService) ShareLinks(ctx context.Context, id string) (*types.ShareLinks, error) {
	list, err := s.Peek(ctx, id)
	if err != nil {
		return nil, err
	}

	shareURL := s.ShareURL(list.ID)
	text := "My packing list"
	if dest := strings.TrimSpace(list.Trip.Destination); dest != "" {
		text = fmt.Sprintf("My packing list for %s", dest)
	}
	u := url.QueryEscape(shareURL)
	t := url.QueryEscape(text)

	return &types.ShareLinks{
		URL: shareURL,
		Links: map[string]string{
			"twitter":  fmt.Sprintf("https://twitter.com/intent/tweet?text=%s&url=%s", t, u),
			"facebook": fmt.Sprintf("https://www.facebook.com/sharer/sharer.php?u=%s", u),
			"whatsapp": fmt.Sprintf("https://wa.me/?text=%s", url.QueryEscape(text+" "+shareURL)),
			"email":    fmt.Sprintf("mailto:?subject=%s&body=%s", url.PathEscape(text), url.PathEscape(shareURL)),
			"linkedin": fmt.Sprintf("https://www.linkedin.com/sharing/share-offsite/?url=%s", u),
		},
	}, nil
}

// ResolveItems returns the items and trip of a saved list when listID is
// set, otherwise the validated inline items.
func (s *ListService) ResolveItems(ctx context.Context, listID string, items []types.PackingItem, trip types.TripContext) ([]types.PackingItem, types.TripContext, error) {
	if listID != "" {
		list, err := s.Peek(ctx, listID)
		if err != nil {
			return nil, types.TripContext{}, err
		}
		return list.Items, list.Trip, nil
	}

	normalized, err := validateItems(items)
	if err != nil {
		return nil, types.TripContext{}, err
	}
	return normalized, trip, nil
}

func (s *ListService) storeError(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.ListNotFound(id)
	}
	return apperrors.Wrap(err, apperrors.ServerError, "Failed to load packing list")
}

func validateItems(items []types.PackingItem) ([]types.PackingItem, error) {
	normalized := types.NormalizeItems(items)
	if len(normalized) == 0 {
		return nil, apperrors.ValidationFailed("Packing list is empty", "at least one named item is required")
	}
	if len(normalized) > types.MaxListItems {
		return nil, apperrors.ValidationFailed("Packing list is too long",
			fmt.Sprintf("a list may contain at most %d items", types.MaxListItems))
	}
	for _, item := range normalized {
		if utf8.RuneCountInString(item.Name) > types.MaxItemNameLength {
			return nil, apperrors.ValidationFailed("Item name is too long",
				fmt.Sprintf("item names may be at most %d characters", types.MaxItemNameLength))
		}
	}
	return normalized, nil
}
