package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders HTML templates with money and layout helpers
type TemplateEngine struct {
	currencySymbol string
	location       *time.Location
	funcMap        template.FuncMap
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithCurrencySymbol sets the prefix printed by formatMoney
func WithCurrencySymbol(symbol string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.currencySymbol = symbol
	}
}

// WithLocation sets the time zone used by the date helpers
func WithLocation(loc *time.Location) TemplateEngineOption {
	return func(e *TemplateEngine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// NewTemplateEngine creates a new template engine
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{location: time.Local}
	for _, opt := range opts {
		opt(e)
	}

	e.funcMap = template.FuncMap{
		// Money
		"formatMoney":    e.formatMoney,
		"formatMoneyRaw": formatMoneyRaw,
		"formatQty":      formatQty,
		"formatPercent":  formatPercent,

		// Dates
		"formatDate":     e.formatDate,
		"formatDateTime": e.formatDateTime,

		// Strings
		"truncate":  truncate,
		"padLeft":   padLeft,
		"padRight":  padRight,
		"title":     titleCase,
		"upper":     strings.ToUpper,
		"shortUUID": shortUUID,

		// Comparison on decimals
		"gt":     gtFunc,
		"isZero": isZero,
	}
	return e
}

// Parse compiles a named template with the engine's functions
func (e *TemplateEngine) Parse(name, content string) (*template.Template, error) {
	if content == "" {
		return nil, NewRenderError(ErrCodeInvalidTemplate, "template content is empty", nil)
	}
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidTemplate, "failed to parse template "+name, err)
	}
	return tmpl, nil
}

// Execute runs a parsed template against data
func (e *TemplateEngine) Execute(ctx context.Context, tmpl *template.Template, data any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to execute template "+tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

// RenderString parses and executes a template in one step
func (e *TemplateEngine) RenderString(ctx context.Context, name, content string, data any) (string, error) {
	tmpl, err := e.Parse(name, content)
	if err != nil {
		return "", err
	}
	out, err := e.Execute(ctx, tmpl, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// FuncMap returns a copy of the template function map
func (e *TemplateEngine) FuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// formatMoney formats an amount with the configured currency symbol
// Example: 1234.5 -> "$1,234.50"
func (e *TemplateEngine) formatMoney(v any) string {
	d := toDecimal(v)
	if d.IsNegative() {
		return "-" + e.currencySymbol + formatMoneyRaw(d.Abs())
	}
	return e.currencySymbol + formatMoneyRaw(d)
}

// formatMoneyRaw formats an amount with two places and thousand separators
// Example: 1234.5 -> "1,234.50"
func formatMoneyRaw(v any) string {
	d := toDecimal(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	intPart, decPart, _ := strings.Cut(d.StringFixed(2), ".")

	var result strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return sign + result.String() + "." + decPart
}

// formatQty prints a quantity without trailing zeros
// Example: 2.500 -> "2.5"
func formatQty(v any) string {
	return toDecimal(v).String()
}

// formatPercent prints a percentage value
// Example: 12.5 -> "12.5%"
func formatPercent(v any) string {
	return toDecimal(v).String() + "%"
}

func (e *TemplateEngine) formatDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.In(e.location).Format("2006-01-02")
}

func (e *TemplateEngine) formatDateTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.In(e.location).Format("2006-01-02 15:04:05")
}

// truncate shortens s to max runes, ending with suffix
func truncate(s string, max int, suffix ...string) string {
	suf := "..."
	if len(suffix) > 0 {
		suf = suffix[0]
	}
	runes := []rune(s)
	sufRunes := []rune(suf)
	if len(runes) <= max {
		return s
	}
	if max <= len(sufRunes) {
		return string(sufRunes[:max])
	}
	return string(runes[:max-len(sufRunes)]) + suf
}

func padLeft(s string, length int, pad string) string {
	n := len([]rune(s))
	if n >= length || pad == "" {
		return s
	}
	return strings.Repeat(pad, length-n)[:length-n] + s
}

func padRight(s string, length int, pad string) string {
	n := len([]rune(s))
	if n >= length || pad == "" {
		return s
	}
	return s + strings.Repeat(pad, length-n)[:length-n]
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func shortUUID(id uuid.UUID) string {
	return id.String()[:8]
}

func gtFunc(a, b any) bool {
	return toDecimal(a).GreaterThan(toDecimal(b))
}

func isZero(v any) bool {
	return toDecimal(v).IsZero()
}

// toDecimal converts template values to decimal.Decimal
func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// RenderError represents an error while rendering a document
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeInvalidTemplate  = "INVALID_TEMPLATE"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
