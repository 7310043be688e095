package printing

import (
	"context"
	"testing"
	"time"

	checkoutapp "github.com/erp/pos/internal/application/checkout"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt() *checkoutapp.Receipt {
	return &checkoutapp.Receipt{
		SaleID:      uuid.New(),
		SaleNumber:  "POS-000042",
		CompletedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		TerminalID:  "lane-2",
		SessionID:   uuid.MustParse("4f1c2a9e-0000-4000-8000-000000000001"),
		Customer:    &checkoutapp.CustomerView{ID: uuid.New(), FullName: "Ada Lovelace"},
		Lines: []checkoutapp.ReceiptLine{
			{
				ProductName:  "Ballpoint Pen <blue>",
				SKU:          "PEN-001",
				Quantity:     decimal.NewFromInt(2),
				UnitPrice:    decimal.RequireFromString("10.00"),
				LineDiscount: decimal.Zero,
				Amount:       decimal.RequireFromString("20.00"),
			},
			{
				ProductName:  "Notebook",
				Quantity:     decimal.RequireFromString("1.5"),
				UnitPrice:    decimal.RequireFromString("1000"),
				LineDiscount: decimal.RequireFromString("50"),
				Amount:       decimal.RequireFromString("1500"),
			},
		},
		Totals: checkoutapp.TotalsView{
			Subtotal: decimal.RequireFromString("1520"),
			Tax:      decimal.RequireFromString("2"),
			Discount: decimal.Zero,
			Total:    decimal.RequireFromString("1522"),
		},
		Tenders: []checkoutapp.TenderView{
			{Index: 0, Method: "card", Amount: decimal.RequireFromString("1500")},
			{Index: 1, Method: "cash", Amount: decimal.RequireFromString("25")},
		},
		Paid:   decimal.RequireFromString("1525"),
		Change: decimal.RequireFromString("3"),
		Notes:  "gift wrap",
	}
}

func newTestRenderer(t *testing.T) *ReceiptRenderer {
	t.Helper()
	r, err := NewReceiptRenderer(ReceiptConfig{
		Store:          StoreInfo{Name: "Corner Shop", Phone: "555-0100", Footer: "No refunds without receipt"},
		CurrencySymbol: "$",
		Location:       time.UTC,
	})
	require.NoError(t, err)
	r.clock = func() time.Time { return time.Date(2026, 3, 14, 9, 31, 0, 0, time.UTC) }
	return r
}

func TestNewReceiptRenderer(t *testing.T) {
	r := newTestRenderer(t)
	assert.Equal(t, Paper80mm, r.DefaultPaper())
	assert.Len(t, r.templates, len(receiptTemplates))

	_, err := NewReceiptRenderer(ReceiptConfig{DefaultPaper: "110mm"})
	assert.ErrorIs(t, err, ErrUnknownPaperSize)
}

func TestReceiptRenderer_Render80mm(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render(context.Background(), sampleReceipt(), "")
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "Corner Shop")
	assert.Contains(t, html, "Tel 555-0100")
	assert.Contains(t, html, "POS-000042")
	assert.Contains(t, html, "2026-03-14 09:30:00")
	assert.Contains(t, html, "4f1c2a9e")
	assert.Contains(t, html, "Ada Lovelace")
	assert.Contains(t, html, "Ballpoint Pen &lt;blue&gt;")
	assert.Contains(t, html, "1,500.00")
	assert.Contains(t, html, "-50.00")
	assert.Contains(t, html, "$1,522.00")
	assert.Contains(t, html, "Card")
	assert.Contains(t, html, "Cash")
	assert.Contains(t, html, "$3.00")
	assert.Contains(t, html, "gift wrap")
	assert.Contains(t, html, "No refunds without receipt")
	assert.Contains(t, html, "Printed 2026-03-14 09:31:00")
	assert.NotContains(t, html, "Bill discount")
}

func TestReceiptRenderer_Render58mm(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render(context.Background(), sampleReceipt(), Paper58mm)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "size: 58mm auto")
	assert.Contains(t, html, "2 x 10.00")
	assert.Contains(t, html, "1.5 x 1,000.00")
	assert.Contains(t, html, "$1,522.00")
}

func TestReceiptRenderer_Errors(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.Render(context.Background(), sampleReceipt(), "110mm")
	assert.ErrorIs(t, err, ErrUnknownPaperSize)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, sampleReceipt(), Paper58mm)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParsePaperSize(t *testing.T) {
	tests := []struct {
		in      string
		want    PaperSize
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "58mm", want: Paper58mm},
		{in: " 80MM ", want: Paper80mm},
		{in: "58", want: Paper58mm},
		{in: "a4", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePaperSize(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPaperSize)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
