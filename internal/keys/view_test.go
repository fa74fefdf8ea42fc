package keys_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kiranshivaraju/keyconsole/internal/i18n"
	"github.com/kiranshivaraju/keyconsole/internal/keys"
	"github.com/kiranshivaraju/keyconsole/internal/prefs"
	"github.com/kiranshivaraju/keyconsole/pkg/models"
	"github.com/stretchr/testify/require"
)

var sampleKeys = []models.APIKey{
	{
		ID:                "k2",
		KeyName:           "batch",
		APIKey:            "sk-batchsecret-9999",
		IsActive:          false,
		CreatedAt:         "2024-03-05T14:07:09Z",
		TotalRequests:     999,
		TotalInputTokens:  1500,
		TotalOutputTokens: 12000,
	},
	{
		ID:        "k1",
		KeyName:   "ci",
		APIKey:    "short",
		IsActive:  true,
		CreatedAt: "2024-01-02T03:04:05Z",
	},
}

var sampleSummary = models.DashboardSummary{TotalAPIKeys: 2, TotalRequests: 2000000, TotalTokens: 13500, ActiveKeys: 1}

func TestRender_Chinese(t *testing.T) {
	rt, err := i18n.New(context.Background(), prefs.NewMemoryStore(), i18n.WithLocation(time.UTC))
	require.NoError(t, err)

	got := keys.Render(rt, sampleKeys, sampleSummary)
	want := keys.TableView{
		Language: i18n.Chinese,
		Title:    "API Keys 管理",
		Headers:  []string{"名称", "API Key", "状态", "创建时间", "请求数", "输入 Tokens", "输出 Tokens", "操作"},
		Rows: []keys.Row{
			{
				ID: "k2", Name: "batch", Secret: "sk-b****9999", Active: false, Status: "禁用",
				CreatedAt: "2024/3/5 14:07:09", Requests: "999", InputTokens: "1.5千", OutputTokens: "1.2万",
				EditLabel: "编辑", DeleteLabel: "删除",
			},
			{
				ID: "k1", Name: "ci", Secret: "short", Active: true, Status: "活跃",
				CreatedAt: "2024/1/2 03:04:05", Requests: "0", InputTokens: "0", OutputTokens: "0",
				EditLabel: "编辑", DeleteLabel: "删除",
			},
		},
		Dashboard: []keys.Cell{
			{Label: "API Keys", Value: "2"},
			{Label: "总请求数", Value: "200.0万"},
			{Label: "总 Token 数", Value: "1.4万"},
			{Label: "活跃 Keys", Value: "1"},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_English(t *testing.T) {
	rt, err := i18n.New(context.Background(), prefs.NewMemoryStore(),
		i18n.WithLocation(time.UTC), i18n.WithDefaultLanguage(i18n.English))
	require.NoError(t, err)

	got := keys.Render(rt, sampleKeys[:1], sampleSummary)
	want := keys.TableView{
		Language: i18n.English,
		Title:    "API Keys Management",
		Headers:  []string{"Name", "API Key", "Status", "Created At", "Requests", "Input Tokens", "Output Tokens", "Actions"},
		Rows: []keys.Row{{
			ID: "k2", Name: "batch", Secret: "sk-b****9999", Active: false, Status: "Inactive",
			CreatedAt: "3/5/2024 2:07:09 PM", Requests: "999", InputTokens: "1.5K", OutputTokens: "12.0K",
			EditLabel: "Edit", DeleteLabel: "Delete",
		}},
		Dashboard: []keys.Cell{
			{Label: "API Keys", Value: "2"},
			{Label: "Total Requests", Value: "2.0M"},
			{Label: "Total Tokens", Value: "13.5K"},
			{Label: "Active Keys", Value: "1"},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_Empty(t *testing.T) {
	rt, err := i18n.New(context.Background(), prefs.NewMemoryStore())
	require.NoError(t, err)

	got := keys.Render(rt, nil, models.DashboardSummary{})
	if diff := cmp.Diff([]keys.Row{}, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}
