package printing

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

// PaperSize is the roll width of a thermal receipt printer
type PaperSize string

const (
	Paper58mm PaperSize = "58mm"
	Paper80mm PaperSize = "80mm"
)

// receiptTemplates maps each paper size to its embedded template
var receiptTemplates = map[PaperSize]string{
	Paper58mm: "templates/receipt_58mm.html",
	Paper80mm: "templates/receipt_80mm.html",
}

// ErrUnknownPaperSize is returned for a paper size without a template
var ErrUnknownPaperSize = shared.NewDomainError(ErrCodeInvalidPaperSize, "Unsupported receipt paper size")

// ParsePaperSize parses "58mm", "58" or "80mm". Empty returns "".
func ParsePaperSize(s string) (PaperSize, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	if !strings.HasSuffix(s, "mm") {
		s += "mm"
	}
	p := PaperSize(s)
	if _, ok := receiptTemplates[p]; !ok {
		return "", ErrUnknownPaperSize
	}
	return p, nil
}

// StoreInfo is printed in the receipt header and footer
type StoreInfo struct {
	Name    string
	Address string
	Phone   string
	Footer  string
}

// ReceiptConfig configures a ReceiptRenderer
type ReceiptConfig struct {
	Store          StoreInfo
	DefaultPaper   PaperSize
	CurrencySymbol string
	Location       *time.Location
}

// ReceiptDocument is the data bound to a receipt template
type ReceiptDocument struct {
	Store     StoreInfo
	Receipt   any
	PrintedAt time.Time
}

// ReceiptRenderer renders completed sales with the embedded receipt templates
type ReceiptRenderer struct {
	engine       *TemplateEngine
	store        StoreInfo
	defaultPaper PaperSize
	clock        func() time.Time
	templates    map[PaperSize]*template.Template
}

// NewReceiptRenderer loads and validates every receipt template
func NewReceiptRenderer(cfg ReceiptConfig) (*ReceiptRenderer, error) {
	if cfg.DefaultPaper == "" {
		cfg.DefaultPaper = Paper80mm
	}
	if _, ok := receiptTemplates[cfg.DefaultPaper]; !ok {
		return nil, fmt.Errorf("default paper %q: %w", cfg.DefaultPaper, ErrUnknownPaperSize)
	}

	r := &ReceiptRenderer{
		engine:       NewTemplateEngine(WithCurrencySymbol(cfg.CurrencySymbol), WithLocation(cfg.Location)),
		store:        cfg.Store,
		defaultPaper: cfg.DefaultPaper,
		clock:        time.Now,
		templates:    make(map[PaperSize]*template.Template, len(receiptTemplates)),
	}
	for paper, path := range receiptTemplates {
		content, err := templateFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template file %s: %w", path, err)
		}
		tmpl, err := r.engine.Parse(string(paper), string(content))
		if err != nil {
			return nil, err
		}
		r.templates[paper] = tmpl
	}
	return r, nil
}

// DefaultPaper returns the paper size used when none is requested
func (r *ReceiptRenderer) DefaultPaper() PaperSize {
	return r.defaultPaper
}

// Render produces the receipt as an HTML document. An empty paper size uses the default.
func (r *ReceiptRenderer) Render(ctx context.Context, receipt any, paper PaperSize) ([]byte, error) {
	if paper == "" {
		paper = r.defaultPaper
	}
	tmpl, ok := r.templates[paper]
	if !ok {
		return nil, ErrUnknownPaperSize
	}
	return r.engine.Execute(ctx, tmpl, ReceiptDocument{
		Store:     r.store,
		Receipt:   receipt,
		PrintedAt: r.clock(),
	})
}
