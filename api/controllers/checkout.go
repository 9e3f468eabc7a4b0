package controllers

import (
	"net/http"
	"strings"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/api/middleware"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/api/responses"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/api/validators"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/checkout"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/orders"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/payments"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
)

// CheckoutSaveSelection merges the address, delivery option and payment
// method into the caller's draft.
func CheckoutSaveSelection(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "checkout")
			return
		}
		email, ok := callerEmail(w, r, logg)
		if !ok {
			return
		}
		var input checkout.SelectionInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sel, err := svc.SaveSelection(r.Context(), email, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sel)
	}
}

func CheckoutReview(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "checkout")
			return
		}
		email, ok := callerEmail(w, r, logg)
		if !ok {
			return
		}
		review, err := svc.Review(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, review)
	}
}

// CheckoutPlaceOrder turns the cart and draft into an order.
func CheckoutPlaceOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "order")
			return
		}
		email, ok := callerEmail(w, r, logg)
		if !ok {
			return
		}
		order, err := svc.PlaceOrder(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// PaymentCreateOrder opens a Razorpay order for the caller's checkout total.
func PaymentCreateOrder(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "payment")
			return
		}
		email, ok := callerEmail(w, r, logg)
		if !ok {
			return
		}
		resp, err := svc.CreateOrder(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// PaymentVerify checks the gateway signature and places the paid order. The
// caller is resolved from the token or query first; a body email is only
// used when neither is present and must otherwise name the same account.
func PaymentVerify(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "payment")
			return
		}
		var input payments.VerifyInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		email, err := resolveVerifyEmail(r, strings.TrimSpace(input.Email))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Email = email
		resp, err := svc.Verify(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func resolveVerifyEmail(r *http.Request, bodyEmail string) (string, error) {
	email, err := middleware.RequestEmail(r)
	if err != nil {
		if bodyEmail != "" && pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			return bodyEmail, nil
		}
		return "", err
	}
	if bodyEmail != "" && !strings.EqualFold(bodyEmail, email) {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "email does not match the authenticated user")
	}
	return email, nil
}
