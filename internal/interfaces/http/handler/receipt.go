package handler

import (
	"context"
	"net/http"

	checkoutapp "github.com/erp/pos/internal/application/checkout"
	"github.com/erp/pos/internal/infrastructure/printing"
	"github.com/gin-gonic/gin"
)

// ReceiptRenderer turns a receipt into a printable document
type ReceiptRenderer interface {
	Render(ctx context.Context, receipt any, paper printing.PaperSize) ([]byte, error)
}

// ReceiptHandler serves the last completed sale's receipt
type ReceiptHandler struct {
	BaseHandler
	svc      *checkoutapp.Service
	renderer ReceiptRenderer
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(svc *checkoutapp.Service, renderer ReceiptRenderer) *ReceiptHandler {
	return &ReceiptHandler{svc: svc, renderer: renderer}
}

// LastReceipt returns the receipt view model
func (h *ReceiptHandler) LastReceipt(c *gin.Context) {
	receipt, err := h.svc.LastReceipt()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// PrintReceipt renders the receipt as HTML for the printer driver.
// The paper query parameter selects the roll width (58mm or 80mm).
func (h *ReceiptHandler) PrintReceipt(c *gin.Context) {
	paper, err := printing.ParsePaperSize(c.Query("paper"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	receipt, err := h.svc.LastReceipt()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	doc, err := h.renderer.Render(c.Request.Context(), receipt, paper)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}
