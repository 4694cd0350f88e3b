package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/abcretailers/go-order-workflow/internal/orders"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	Engine *orders.Engine
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Put("/orders/{id}", h.replaceOrder)
	r.Delete("/orders/{id}", h.deleteOrder)
	r.Post("/orders/{id}/status", h.updateStatus)
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}/quote", h.productQuote)
	r.Get("/customers", h.listCustomers)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the workflow error taxonomy onto status codes. Partial
// failures get their own body shape so callers can tell "order stands, stock
// stale" apart from a clean failure.
func writeError(w http.ResponseWriter, err error) {
	var (
		ve *orders.ValidationError
		nf *orders.NotFoundError
		is *orders.InsufficientStockError
		pf *orders.PartialFailureError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Error()})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": nf.Error()})
	case errors.As(err, &is):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     is.Error(),
			"available": is.Available,
		})
	case errors.As(err, &pf):
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":           pf.Error(),
			"partial_failure": true,
			"order_id":        pf.OrderID,
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	order, err := h.Engine.PlaceOrder(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	os, err := h.Engine.ListOrders(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	o, err := h.Engine.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) replaceOrder(w http.ResponseWriter, r *http.Request) {
	var o orders.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	o.ID = chi.URLParam(r, "id")

	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	if err := h.Engine.ReplaceOrder(ctx, o); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Order updated successfully!"})
}

func (h *OrdersHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	if err := h.Engine.DeleteOrder(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Order deleted successfully!"})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	msg, err := h.Engine.UpdateOrderStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		var nf *orders.NotFoundError
		if errors.As(err, &nf) {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Order not found"})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	ps, err := h.Engine.ListProducts(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// productQuote keeps the response shape the order form's script expects;
// a missing product is a 200 with success=false, as it always was.
func (h *OrdersHandler) productQuote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	q, ok, err := h.Engine.GetProductQuote(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Product not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"price":       q.Price,
		"stock":       q.Stock,
		"productName": q.ProductName,
	})
}

func (h *OrdersHandler) listCustomers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	cs, err := h.Engine.ListCustomers(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func withTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}
