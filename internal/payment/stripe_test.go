package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/iliyamo/hotel-reservation/internal/service"
)

func testBackends(url string) *stripe.Backends {
	b := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(url),
		MaxNetworkRetries: stripe.Int64(0),
	})
	return &stripe.Backends{API: b, Connect: b, Uploads: b}
}

func TestCreateCheckout(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.test/cs_test_1"}`))
	}))
	defer srv.Close()

	gw := NewStripeGateway("sk_test_123", "usd", testBackends(srv.URL))
	url, err := gw.CreateCheckout(context.Background(), service.CheckoutRequest{
		AmountMinor: 10000,
		Name:        "Reservation #7",
		Description: "Room: Deluxe",
		SuccessURL:  "https://hotel.test/v1/payments/success?session_id={CHECKOUT_SESSION_ID}&reservation_id=7",
		CancelURL:   "https://hotel.test/v1/client/reservations",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", url)

	assert.Equal(t, "payment", form["mode"])
	assert.Equal(t, "10000", form["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, "usd", form["line_items[0][price_data][currency]"])
	assert.Equal(t, "Reservation #7", form["line_items[0][price_data][product_data][name]"])
	assert.Equal(t, "1", form["line_items[0][quantity]"])
	assert.Contains(t, form["success_url"], "{CHECKOUT_SESSION_ID}")
}

func TestCreateCheckoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad amount"}}`))
	}))
	defer srv.Close()

	gw := NewStripeGateway("sk_test_123", "", testBackends(srv.URL))
	_, err := gw.CreateCheckout(context.Background(), service.CheckoutRequest{AmountMinor: 1})
	assert.Error(t, err)
}
