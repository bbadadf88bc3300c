package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/packwise/packwise-backend/logger"
	"github.com/packwise/packwise-backend/pkg/objectstore"
	"github.com/packwise/packwise-backend/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ItemResolver turns an export or email request into the items to render.
type ItemResolver interface {
	ResolveItems(ctx context.Context, listID string, items []types.PackingItem, trip types.TripContext) ([]types.PackingItem, types.TripContext, error)
}

// ExportService renders packing lists as printable HTML and optionally
// publishes the document to object storage.
type ExportService struct {
	lists    ItemResolver
	uploader objectstore.Uploader
	tmpl     *template.Template
	now      func() time.Time
}

func NewExportService(lists ItemResolver, uploader objectstore.Uploader) *ExportService {
	return &ExportService{
		lists:    lists,
		uploader: uploader,
		tmpl:     template.Must(template.New("packing-list").Parse(packingListTemplate)),
		now:      time.Now,
	}
}

type exportCategory struct {
	Name  string
	Items []types.PackingItem
}

type exportView struct {
	Title      string
	Trip       types.TripContext
	Activities string
	Categories []exportCategory
	ItemCount  int
	Generated  string
}

func (s *ExportService) Export(ctx context.Context, req types.ExportRequest) (*types.ExportResponse, error) {
	items, trip, err := s.lists.ResolveItems(ctx, req.ListID, req.Items, req.Trip)
	if err != nil {
		return nil, err
	}

	html, err := s.Render(items, trip)
	if err != nil {
		return nil, err
	}

	resp := &types.ExportResponse{
		HTML:     html,
		Filename: exportFilename(trip.Destination, "pdf"),
	}
	if s.uploader != nil {
		resp.URL = s.publish(ctx, html, trip)
	}
	return resp, nil
}

// Render produces the printable HTML document. User text is escaped by the
// template engine.
func (s *ExportService) Render(items []types.PackingItem, trip types.TripContext) (string, error) {
	// Casers keep state and are not safe for concurrent use.
	caser := cases.Title(language.English)

	order, groups := types.GroupByCategory(items)
	view := exportView{
		Title:      "Packing List",
		Trip:       trip,
		Activities: strings.Join(trip.Activities, ", "),
		ItemCount:  len(items),
		Generated:  s.now().UTC().Format("January 2, 2006"),
	}
	if dest := strings.TrimSpace(trip.Destination); dest != "" {
		view.Title = "Packing List for " + caser.String(dest)
	}
	for _, category := range order {
		view.Categories = append(view.Categories, exportCategory{
			Name:  caser.String(category),
			Items: groups[category],
		})
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render packing list: %w", err)
	}
	return buf.String(), nil
}

// publish uploads the document and returns a presigned link. Failures are
// logged and yield an empty link.
func (s *ExportService) publish(ctx context.Context, html string, trip types.TripContext) string {
	log := logger.GetLogger()
	key := fmt.Sprintf("exports/%s/%s.html", s.now().UTC().Format("2006-01-02"), uuid.NewString())

	contentType, err := s.uploader.Put(ctx, key, []byte(html))
	if err != nil {
		log.Warnw("Failed to upload exported list", "key", key, "error", err)
		return ""
	}

	url, err := s.uploader.PresignGet(ctx, key, exportFilename(trip.Destination, "html"))
	if err != nil {
		log.Warnw("Failed to presign exported list", "key", key, "error", err)
		return ""
	}

	log.Infow("Published exported list", "key", key, "contentType", contentType)
	return url
}

func exportFilename(destination, ext string) string {
	if slug := slugify(destination); slug != "" {
		return fmt.Sprintf("packing-list-%s.%s", slug, ext)
	}
	return "packing-list." + ext
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

const packingListTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: sans-serif; color: #222222; margin: 32px; }
        h1 { color: #0F766E; font-size: 26px; margin-bottom: 4px; }
        .trip { color: #555555; font-size: 14px; margin-bottom: 24px; }
        .trip span { margin-right: 16px; }
        h2 { font-size: 18px; border-bottom: 1px solid #DDDDDD; padding-bottom: 4px; margin-top: 24px; }
        ul { list-style: none; padding: 0; margin: 0; }
        li { padding: 6px 0; font-size: 14px; }
        .box { display: inline-block; width: 12px; height: 12px; border: 1px solid #555555; margin-right: 8px; vertical-align: middle; }
        .essential { color: #B91C1C; font-size: 11px; margin-left: 6px; }
        .notes { color: #777777; font-size: 12px; margin-left: 22px; }
        footer { margin-top: 32px; color: #999999; font-size: 11px; }
        @media print { body { margin: 12mm; } }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <div class="trip">
        {{- with .Trip.StartDate}}<span>From {{.}}</span>{{end}}
        {{- with .Trip.EndDate}}<span>To {{.}}</span>{{end}}
        {{- with .Trip.DurationDays}}<span>{{.}} days</span>{{end}}
        {{- with .Trip.Travelers}}<span>{{.}} travelers</span>{{end}}
        {{- with .Trip.Climate}}<span>Climate: {{.}}</span>{{end}}
        {{- with .Activities}}<span>Activities: {{.}}</span>{{end}}
    </div>
    {{- range .Categories}}
    <h2>{{.Name}}</h2>
    <ul>
        {{- range .Items}}
        <li><span class="box"></span>{{.Name}}{{if gt .Quantity 1}} &times; {{.Quantity}}{{end}}{{if .Essential}}<span class="essential">essential</span>{{end}}
            {{- with .Notes}}<div class="notes">{{.}}</div>{{end}}</li>
        {{- end}}
    </ul>
    {{- end}}
    <footer>{{.ItemCount}} items &middot; Generated by Packwise on {{.Generated}}</footer>
</body>
</html>`
