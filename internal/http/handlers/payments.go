package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"smartstudio/internal/domain"
	"smartstudio/internal/payments"
)

const (
	actionCreateCheckout = "create-checkout"
	actionWebhook        = "webhook"
)

// Payments dispatches on ?action=.
func (a *App) Payments(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case actionCreateCheckout:
		if r.Method != http.MethodPost {
			a.MethodNotAllowed(w, r)
			return
		}
		a.CreateCheckout(w, r)
	case actionWebhook:
		a.PaymentWebhook(w, r)
	default:
		a.json(w, http.StatusBadRequest, map[string]string{"error": msgInvalidAction})
	}
}

type checkoutResponse struct {
	Success    bool   `json:"success"`
	PaymentURL string `json:"paymentUrl"`
	OrderID    string `json:"orderId"`
}

func (a *App) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	ident, ok := a.requireIdentity(w, r)
	if !ok {
		return
	}
	var req payments.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, r, http.StatusBadRequest, msgInvalidPayload, err.Error())
		return
	}
	if domain.Plan(req.Plan) != domain.PlanPremium {
		a.error(w, r, http.StatusBadRequest, msgInvalidPlan, "")
		return
	}
	if a.Checkout == nil || !a.Checkout.Configured() {
		zerolog.Ctx(r.Context()).Error().Msg("payment gateway credentials not configured")
		a.error(w, r, http.StatusInternalServerError, msgPaymentsDisabled, "")
		return
	}

	res, err := a.Checkout.Create(r.Context(), ident, req)
	if err != nil {
		if gerr, ok := payments.IsGatewayRejection(err); ok {
			zerolog.Ctx(r.Context()).Warn().Str("status", gerr.Status).Str("details", gerr.Details).Msg("gateway rejected checkout")
			a.json(w, http.StatusBadRequest, map[string]string{
				"error":   localize(r.Context(), msgPaymentRejected),
				"details": gerr.Details,
			})
			return
		}
		if errors.Is(err, domain.ErrInvalidPlan) {
			a.error(w, r, http.StatusBadRequest, msgInvalidPlan, "")
			return
		}
		a.failure(w, r, msgCheckoutFailed, err)
		return
	}
	a.json(w, http.StatusOK, checkoutResponse{Success: true, PaymentURL: res.PaymentURL, OrderID: res.OrderID})
}

type webhookResponse struct {
	Received  bool   `json:"received"`
	Processed bool   `json:"processed"`
	UserID    string `json:"userId,omitempty"`
}

// PaymentWebhook settles gateway notifications. It always acknowledges with
// 200 so the gateway does not retry; failures are only logged.
func (a *App) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		a.MethodNotAllowed(w, r)
		return
	}
	data, err := notificationPayload(r)
	if err != nil {
		logger.Error().Err(err).Msg("decode payment notification")
		a.json(w, http.StatusOK, webhookResponse{Received: true})
		return
	}
	if a.Settler == nil {
		logger.Error().Msg("payment notification received without a settler")
		a.json(w, http.StatusOK, webhookResponse{Received: true})
		return
	}

	res, err := a.Settler.Settle(r.Context(), payments.NotificationFromMap(data))
	if err != nil {
		logger.Error().Err(err).Str("user_id", res.UserID).Msg("payment settlement failed")
		a.json(w, http.StatusOK, webhookResponse{Received: true, UserID: res.UserID})
		return
	}
	a.json(w, http.StatusOK, webhookResponse{Received: true, Processed: res.Processed, UserID: res.UserID})
}

// notificationPayload reads the query string for GET, and a JSON or form body
// for POST.
func notificationPayload(r *http.Request) (map[string]any, error) {
	if r.Method == http.MethodGet {
		return valuesToMap(r.URL.Query()), nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	trimmed := bytes.TrimSpace(body)

	if mediaType == "application/x-www-form-urlencoded" {
		form, err := url.ParseQuery(string(trimmed))
		if err != nil {
			return nil, err
		}
		return mergeQuery(valuesToMap(form), r.URL.Query()), nil
	}
	if len(trimmed) == 0 {
		return mergeQuery(map[string]any{}, r.URL.Query()), nil
	}
	var data map[string]any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return mergeQuery(data, r.URL.Query()), nil
}

func valuesToMap(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
		case 1:
			out[key] = vals[0]
		default:
			out[key] = vals
		}
	}
	return out
}

// mergeQuery fills fields missing from the body with query parameters,
// ignoring the routing parameter.
func mergeQuery(data map[string]any, query url.Values) map[string]any {
	for key, vals := range query {
		if key == "action" || len(vals) == 0 {
			continue
		}
		if _, ok := data[key]; !ok {
			data[key] = vals[0]
		}
	}
	return data
}
