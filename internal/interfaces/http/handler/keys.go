package handler

import (
	"errors"
	"net/http"
	"sync"

	checkoutapp "github.com/erp/pos/internal/application/checkout"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/erp/pos/internal/interfaces/input"
	"github.com/gin-gonic/gin"
)

// KeysRequest carries key events in the order they were pressed. The UI
// shell batches a scanner burst so HTTP latency cannot split it.
type KeysRequest struct {
	Events []input.KeyEvent `json:"events" binding:"required,min=1,max=256"`
}

// KeyResult is what one event did
type KeyResult struct {
	input.Outcome
	Error *dto.ErrorInfo `json:"error,omitempty"`
}

// KeysResponse reports each event's outcome and the state after the batch
type KeysResponse struct {
	Results []KeyResult            `json:"results"`
	State   *checkoutapp.StateView `json:"state"`
}

// KeyHandler is the terminal's single key listener. It feeds the UI shell's
// key events into the input dispatcher one batch at a time.
type KeyHandler struct {
	BaseHandler
	dispatcher *input.Dispatcher
	svc        *checkoutapp.Service

	// held for a whole batch so concurrent requests never interleave bursts
	mu sync.Mutex
}

// NewKeyHandler creates a new KeyHandler
func NewKeyHandler(dispatcher *input.Dispatcher, svc *checkoutapp.Service) *KeyHandler {
	return &KeyHandler{dispatcher: dispatcher, svc: svc}
}

// Keys dispatches a batch of key events. A failing event does not stop
// the batch; its error is reported in its result.
func (h *KeyHandler) Keys(c *gin.Context) {
	var req KeysRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	requestID := middleware.RequestIDFrom(c)
	results := make([]KeyResult, 0, len(req.Events))

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ev := range req.Events {
		outcome, err := h.dispatcher.Dispatch(ctx, ev)
		if errors.Is(err, input.ErrDispatcherClosed) {
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
				"TERMINAL_CLOSED", "Terminal is shutting down", requestID))
			return
		}
		result := KeyResult{Outcome: outcome}
		if err != nil {
			_, resp := dto.ErrorBody(err, requestID)
			result.Error = resp.Error
		}
		results = append(results, result)
	}

	h.Success(c, KeysResponse{Results: results, State: h.svc.State()})
}

// Keymap lists the active shortcut bindings
func (h *KeyHandler) Keymap(c *gin.Context) {
	h.Success(c, h.dispatcher.Keymap().Bindings())
}
