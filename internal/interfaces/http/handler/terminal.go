package handler

import (
	"context"
	"strconv"
	"strings"

	checkoutapp "github.com/erp/pos/internal/application/checkout"
	"github.com/erp/pos/internal/domain/checkout"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TerminalHandler exposes the checkout orchestrator to the UI shell
type TerminalHandler struct {
	BaseHandler
	svc *checkoutapp.Service
}

// NewTerminalHandler creates a new TerminalHandler
func NewTerminalHandler(svc *checkoutapp.Service) *TerminalHandler {
	return &TerminalHandler{svc: svc}
}

// CompleteCheckoutResponse is returned once the backend confirms a sale
type CompleteCheckoutResponse struct {
	Receipt *checkoutapp.Receipt   `json:"receipt"`
	State   *checkoutapp.StateView `json:"state"`
}

// SuspendResponse is returned after a sale is parked as a draft
type SuspendResponse struct {
	DraftID string                 `json:"draft_id"`
	State   *checkoutapp.StateView `json:"state"`
}

// GetState returns everything the checkout screen renders
func (h *TerminalHandler) GetState(c *gin.Context) {
	h.Success(c, h.svc.State())
}

// OpenSession opens a cash-drawer session
func (h *TerminalHandler) OpenSession(c *gin.Context) {
	var req checkoutapp.OpenSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respondState(c)(h.svc.OpenSession(c.Request.Context(), req.OpeningCash))
}

// RefreshSession re-reads the current session from the backend
func (h *TerminalHandler) RefreshSession(c *gin.Context) {
	if err := h.svc.RefreshSession(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.svc.State())
}

// NewSale resets the screen for the next customer
func (h *TerminalHandler) NewSale(c *gin.Context) {
	h.respondState(c)(h.svc.NewSale(c.Request.Context()))
}

// AddItem adds a product picked from the last search, or one unit by code
func (h *TerminalHandler) AddItem(c *gin.Context) {
	var req checkoutapp.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	code := strings.TrimSpace(req.Code)

	switch {
	case req.ProductID != nil:
		qty := decimal.NewFromInt(1)
		if req.Quantity != nil {
			qty = *req.Quantity
		}
		h.respondState(c)(h.svc.AddSearchResult(ctx, *req.ProductID, qty))
	case code != "":
		if req.Quantity != nil && !req.Quantity.Equal(decimal.NewFromInt(1)) {
			h.BadRequest(c, "Items added by code are added one unit at a time")
			return
		}
		h.respondState(c)(h.svc.AddByBarcode(ctx, code))
	default:
		h.BadRequest(c, "product_id or code is required")
	}
}

// UpdateLine edits quantity, price, discount or tax rate of a line
func (h *TerminalHandler) UpdateLine(c *gin.Context) {
	productID, ok := h.uuidParam(c, "product_id")
	if !ok {
		return
	}
	var req checkoutapp.UpdateLineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respondState(c)(h.svc.UpdateLine(c.Request.Context(), productID, req))
}

// RemoveLine removes a line from the cart
func (h *TerminalHandler) RemoveLine(c *gin.Context) {
	productID, ok := h.uuidParam(c, "product_id")
	if !ok {
		return
	}
	h.respondState(c)(h.svc.RemoveLine(c.Request.Context(), productID))
}

// ClearCart empties the cart
func (h *TerminalHandler) ClearCart(c *gin.Context) {
	h.respondState(c)(h.svc.ClearCart(c.Request.Context()))
}

// SetBillDiscount sets the bill-level discount percentage
func (h *TerminalHandler) SetBillDiscount(c *gin.Context) {
	var req checkoutapp.BillDiscountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respondState(c)(h.svc.SetBillDiscount(c.Request.Context(), req.Percent))
}

// SetNotes sets the sale notes
func (h *TerminalHandler) SetNotes(c *gin.Context) {
	var req checkoutapp.NotesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respondState(c)(h.svc.SetNotes(c.Request.Context(), req.Notes))
}

// SetCustomer attaches a customer picked from search results, or detaches
func (h *TerminalHandler) SetCustomer(c *gin.Context) {
	var req checkoutapp.AttachCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var customer *checkout.Customer
	if req.CustomerID != nil {
		customer = &checkout.Customer{
			ID:        *req.CustomerID,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		}
	}
	h.respondState(c)(h.svc.SetCustomer(c.Request.Context(), customer))
}

// SearchProducts searches the catalog
func (h *TerminalHandler) SearchProducts(c *gin.Context) {
	products, err := h.svc.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, checkoutapp.ToProductViews(products))
}

// SearchCustomers searches customers by name or phone
func (h *TerminalHandler) SearchCustomers(c *gin.Context) {
	customers, err := h.svc.FindCustomers(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, checkoutapp.ToCustomerViews(customers))
}

// CreateCustomer registers a walk-in customer and attaches it to the sale
func (h *TerminalHandler) CreateCustomer(c *gin.Context) {
	var req checkoutapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.svc.CreateCustomer(c.Request.Context(), checkout.NewCustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, checkoutapp.ToCustomerView(customer))
}

// BeginCheckout freezes the cart and opens tender collection
func (h *TerminalHandler) BeginCheckout(c *gin.Context) {
	h.respondState(c)(h.svc.BeginCheckout(c.Request.Context()))
}

// AddTender applies a payment instrument
func (h *TerminalHandler) AddTender(c *gin.Context) {
	var req checkoutapp.AddTenderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	method, err := checkout.ParseTenderMethod(req.Method)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondState(c)(h.svc.AddTender(c.Request.Context(), method, req.Amount))
}

// RemoveTender removes a tender by its position
func (h *TerminalHandler) RemoveTender(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.BadRequest(c, "Invalid tender index")
		return
	}
	h.respondState(c)(h.svc.RemoveTender(c.Request.Context(), index))
}

// CancelCheckout returns to cart editing
func (h *TerminalHandler) CancelCheckout(c *gin.Context) {
	h.respondState(c)(h.svc.CancelCheckout(c.Request.Context()))
}

// CompleteCheckout submits the sale. On failure the cart and tenders are
// kept and the same request may be retried.
func (h *TerminalHandler) CompleteCheckout(c *gin.Context) {
	// the submission outlives a UI shell that gives up on the request
	ctx := context.WithoutCancel(c.Request.Context())
	receipt, err := h.svc.CompleteCheckout(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CompleteCheckoutResponse{Receipt: receipt, State: h.svc.State()})
}

// Suspend parks the current sale as a draft
func (h *TerminalHandler) Suspend(c *gin.Context) {
	draft, err := h.svc.Suspend(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, SuspendResponse{DraftID: draft.ID.String(), State: h.svc.State()})
}

// ListDrafts lists suspended sales
func (h *TerminalHandler) ListDrafts(c *gin.Context) {
	drafts, err := h.svc.ListDrafts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, checkoutapp.ToDraftViews(drafts))
}

// ResumeDraft loads a suspended sale into the cart
func (h *TerminalHandler) ResumeDraft(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req checkoutapp.ResumeDraftRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	h.respondState(c)(h.svc.Resume(c.Request.Context(), id, req.DiscardCurrent))
}

// ResolveRecovery accepts or discards the cart recovered after a crash
func (h *TerminalHandler) ResolveRecovery(c *gin.Context) {
	var req checkoutapp.ResolveRecoveryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respondState(c)(h.svc.ResolveRecovery(c.Request.Context(), req.Accept))
}

// respondState writes the state returned by a service call, or its error
func (h *TerminalHandler) respondState(c *gin.Context) func(*checkoutapp.StateView, error) {
	return func(state *checkoutapp.StateView, err error) {
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, state)
	}
}
