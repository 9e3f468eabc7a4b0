package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/api/responses"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/api/validators"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/cart"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
)

type cartItemPayload struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  *int      `json:"quantity"`
	VariantID string    `json:"variantId,omitempty" validate:"max=64"`
}

// quantityOr returns the requested quantity, or fallback when the field was
// omitted. An explicit zero or negative value is passed through.
func (p cartItemPayload) quantityOr(fallback int) int {
	if p.Quantity == nil {
		return fallback
	}
	return *p.Quantity
}

type cartRemovePayload struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	VariantID string    `json:"variantId,omitempty" validate:"max=64"`
}

func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "cart")
			return
		}
		email, ok := callerEmail(w, r, logg)
		if !ok {
			return
		}
		lines, err := svc.GetCart(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

// CartAdd adds quantity to an existing line or creates one.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "cart")
			return
		}
		email, ok := callerEmail(w, r, logg)
		if !ok {
			return
		}
		var payload cartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		line, err := svc.AddToCart(r.Context(), email, payload.ProductID, payload.quantityOr(1), payload.VariantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, line)
	}
}

// CartUpdate sets the absolute quantity of a line.
func CartUpdate(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "cart")
			return
		}
		email, ok := callerEmail(w, r, logg)
		if !ok {
			return
		}
		var payload cartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		line, err := svc.UpdateQuantity(r.Context(), email, payload.ProductID, payload.quantityOr(0), payload.VariantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, line)
	}
}

// CartRemove drops a line and returns the remaining cart.
func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "cart")
			return
		}
		email, ok := callerEmail(w, r, logg)
		if !ok {
			return
		}
		var payload cartRemovePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveItem(r.Context(), email, payload.ProductID, payload.VariantID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines, err := svc.GetCart(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}
