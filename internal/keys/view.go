package keys

import (
	"strconv"

	"github.com/kiranshivaraju/keyconsole/internal/i18n"
	"github.com/kiranshivaraju/keyconsole/pkg/models"
)

// Renderer is the part of the localization runtime the table needs.
type Renderer interface {
	Language() i18n.Language
	Translate(key string, fallback ...string) string
	FormatNumber(n int64) string
	FormatDate(iso string) string
}

// Row is one rendered table line.
type Row struct {
	ID           string
	Name         string
	Secret       string
	Active       bool
	Status       string
	CreatedAt    string
	Requests     string
	InputTokens  string
	OutputTokens string
	EditLabel    string
	DeleteLabel  string
}

// Cell is one dashboard figure.
type Cell struct {
	Label string
	Value string
}

// TableView is the full management view derived from (language, snapshot).
type TableView struct {
	Language   i18n.Language
	Title      string
	Headers    []string
	Rows       []Row
	Dashboard  []Cell
	Loaded     bool
	Generation uint64
}

var headerKeys = []string{
	"table_name",
	"table_api_key",
	"table_status",
	"table_created_at",
	"table_requests",
	"table_input_tokens",
	"table_output_tokens",
	"table_actions",
}

// Render builds the view from scratch. Rows keep server order and every
// secret is masked.
func Render(r Renderer, keys []models.APIKey, summary models.DashboardSummary) TableView {
	v := TableView{
		Language: r.Language(),
		Title:    r.Translate("api_key_management"),
		Headers:  make([]string, len(headerKeys)),
		Rows:     make([]Row, 0, len(keys)),
	}
	for i, key := range headerKeys {
		v.Headers[i] = r.Translate(key)
	}

	active, inactive := r.Translate("active"), r.Translate("inactive")
	edit, del := r.Translate("edit"), r.Translate("delete")
	for _, k := range keys {
		status := inactive
		if k.IsActive {
			status = active
		}
		v.Rows = append(v.Rows, Row{
			ID:           k.ID,
			Name:         k.KeyName,
			Secret:       MaskSecret(k.APIKey),
			Active:       k.IsActive,
			Status:       status,
			CreatedAt:    r.FormatDate(k.CreatedAt),
			Requests:     r.FormatNumber(k.TotalRequests),
			InputTokens:  r.FormatNumber(k.TotalInputTokens),
			OutputTokens: r.FormatNumber(k.TotalOutputTokens),
			EditLabel:    edit,
			DeleteLabel:  del,
		})
	}

	v.Dashboard = []Cell{
		{Label: r.Translate("api_keys"), Value: strconv.FormatInt(summary.TotalAPIKeys, 10)},
		{Label: r.Translate("total_requests"), Value: r.FormatNumber(summary.TotalRequests)},
		{Label: r.Translate("total_tokens"), Value: r.FormatNumber(summary.TotalTokens)},
		{Label: r.Translate("active_keys"), Value: strconv.FormatInt(summary.ActiveKeys, 10)},
	}
	return v
}
