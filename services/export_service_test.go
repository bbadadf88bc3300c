package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/packwise/packwise-backend/errors"
	"github.com/packwise/packwise-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestExportService(uploader *mockUploader) *ExportService {
	var s *ExportService
	if uploader != nil {
		s = NewExportService(newTestListService(), uploader)
	} else {
		s = NewExportService(newTestListService(), nil)
	}
	s.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	return s
}

func exportRequest() types.ExportRequest {
	return types.ExportRequest{
		Items: []types.PackingItem{
			{Name: "Rain jacket", Category: "clothing", Quantity: 1, Essential: true},
			{Name: "T-shirt", Category: "clothing", Quantity: 4},
			{Name: "<script>alert(1)</script>", Category: "toiletries", Notes: "travel size"},
		},
		Trip: types.TripContext{Destination: "new york city", DurationDays: 5},
	}
}

func TestExportService_Render(t *testing.T) {
	s := newTestExportService(nil)

	resp, err := s.Export(context.Background(), exportRequest())
	require.NoError(t, err)

	assert.Equal(t, "packing-list-new-york-city.pdf", resp.Filename)
	assert.Empty(t, resp.URL)

	html := resp.HTML
	assert.Contains(t, html, "<title>Packing List for New York City</title>")
	assert.Contains(t, html, "<h2>Clothing</h2>")
	assert.Contains(t, html, "<h2>Toiletries</h2>")
	assert.Less(t, strings.Index(html, "Clothing"), strings.Index(html, "Toiletries"))
	assert.Contains(t, html, "T-shirt &times; 4")
	assert.Contains(t, html, "travel size")
	assert.Contains(t, html, "5 days")
	assert.Contains(t, html, "3 items")
	assert.Contains(t, html, "October 19, 2026")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestExportService_SavedList(t *testing.T) {
	s := newTestExportService(nil)
	lists := s.lists.(*ListService)

	saved, err := lists.Save(context.Background(), saveRequest())
	require.NoError(t, err)

	resp, err := s.Export(context.Background(), types.ExportRequest{ListID: saved.ID})
	require.NoError(t, err)
	assert.Equal(t, "packing-list-crete.pdf", resp.Filename)
	assert.Contains(t, resp.HTML, "Passport")

	_, err = s.Export(context.Background(), types.ExportRequest{ListID: "missing"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ListNotFoundError, appErr.Type)
}

func TestExportService_Upload(t *testing.T) {
	uploader := new(mockUploader)
	s := newTestExportService(uploader)

	uploader.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "exports/2026-10-19/") && strings.HasSuffix(key, ".html")
	}), mock.Anything).Return("text/html; charset=utf-8", nil)
	uploader.On("PresignGet", mock.Anything, mock.Anything, "packing-list-new-york-city.html").
		Return("https://r2.example/signed", nil)

	resp, err := s.Export(context.Background(), exportRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://r2.example/signed", resp.URL)
	uploader.AssertExpectations(t)
}

func TestExportService_UploadFailureOmitsURL(t *testing.T) {
	uploader := new(mockUploader)
	s := newTestExportService(uploader)

	uploader.On("Put", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("access denied"))

	resp, err := s.Export(context.Background(), exportRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.URL)
	assert.NotEmpty(t, resp.HTML)
	uploader.AssertNotCalled(t, "PresignGet", mock.Anything, mock.Anything, mock.Anything)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "packing-list-sao-paulo-brazil.pdf", exportFilename("  Sao Paulo, Brazil! ", "pdf"))
	assert.Equal(t, "packing-list.pdf", exportFilename("", "pdf"))
	assert.Equal(t, "packing-list.html", exportFilename("東京", "html"))
}
