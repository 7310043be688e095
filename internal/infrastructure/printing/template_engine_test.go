package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateEngine_FuncMap(t *testing.T) {
	engine := NewTemplateEngine()
	funcMap := engine.FuncMap()

	for _, name := range []string{"formatMoney", "formatMoneyRaw", "formatQty", "formatDateTime", "truncate", "title", "gt"} {
		assert.NotNil(t, funcMap[name], name)
	}
}

func TestTemplateEngine_RenderString(t *testing.T) {
	engine := NewTemplateEngine(WithCurrencySymbol("€"), WithLocation(time.UTC))
	ctx := context.Background()

	out, err := engine.RenderString(ctx, "greeting", `<p>{{.Name}} owes {{formatMoney .Amount}}</p>`, map[string]any{
		"Name":   "<Bob>",
		"Amount": decimal.RequireFromString("-1234.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>&lt;Bob&gt; owes -€1,234.50</p>", out)
}

func TestTemplateEngine_Errors(t *testing.T) {
	engine := NewTemplateEngine()
	ctx := context.Background()

	_, err := engine.RenderString(ctx, "empty", "", nil)
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidTemplate, renderErr.Code)

	_, err = engine.RenderString(ctx, "broken", "{{.Name", nil)
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidTemplate, renderErr.Code)

	_, err = engine.RenderString(ctx, "missing", "{{formatQty .A.B}}", map[string]any{"A": 1})
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeRenderFailed, renderErr.Code)
	assert.Error(t, renderErr.Unwrap())
}

func TestFormatMoneyRaw(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{decimal.Zero, "0.00"},
		{decimal.RequireFromString("22"), "22.00"},
		{decimal.RequireFromString("999.999"), "1,000.00"},
		{decimal.RequireFromString("1234567.891"), "1,234,567.89"},
		{decimal.RequireFromString("-1500"), "-1,500.00"},
		{"12.5", "12.50"},
		{7, "7.00"},
		{"not a number", "0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoneyRaw(tt.in))
	}
}

func TestStringHelpers(t *testing.T) {
	assert.Equal(t, "Ballpo...", truncate("Ballpoint Pen", 9))
	assert.Equal(t, "Pen", truncate("Pen", 9))
	assert.Equal(t, "..", truncate("Ballpoint", 2))
	assert.Equal(t, "Kaff~", truncate("Kaffeebohnen", 5, "~"))

	assert.Equal(t, "  7", padLeft("7", 3, " "))
	assert.Equal(t, "7..", padRight("7", 3, "."))
	assert.Equal(t, "long", padLeft("long", 2, " "))

	assert.Equal(t, "Mobile", titleCase("mobile"))
	assert.Equal(t, "2.5", formatQty(decimal.RequireFromString("2.500")))
	assert.Equal(t, "12.5%", formatPercent("12.5"))

	id := uuid.MustParse("4f1c2a9e-0000-4000-8000-000000000001")
	assert.Equal(t, "4f1c2a9e", shortUUID(id))
}

func TestTemplateEngine_Dates(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	engine := NewTemplateEngine(WithLocation(loc))
	at := time.Date(2026, 1, 31, 23, 15, 0, 0, time.UTC)

	assert.Equal(t, "2026-02-01", engine.formatDate(at))
	assert.Equal(t, "2026-02-01 01:15:00", engine.formatDateTime(at))
	assert.Equal(t, "", engine.formatDateTime(time.Time{}))
}
