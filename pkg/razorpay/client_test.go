package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPayload(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test-secret"
	orderID := "order_abc123"
	paymentID := "pay_def456"

	valid := signPayload(orderID, paymentID, secret)

	assert.True(t, VerifySignature(orderID, paymentID, valid, secret))
	assert.False(t, VerifySignature(orderID, paymentID, valid, "wrong-secret"))
	assert.False(t, VerifySignature(orderID, "pay_other", valid, secret))
	assert.False(t, VerifySignature(orderID, paymentID, "deadbeef", secret))
	assert.False(t, VerifySignature(orderID, paymentID, "", secret))
}

func TestClientVerifySignature(t *testing.T) {
	client := NewClient("key", "client-secret", "")

	sig := signPayload("order_1", "pay_1", "client-secret")
	assert.True(t, client.VerifySignature("order_1", "pay_1", sig))
	assert.False(t, client.VerifySignature("order_1", "pay_1", sig+"00"))
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		username, password, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key-id", username)
		assert.Equal(t, "key-secret", password)

		var input CreateOrderInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, int64(5000), input.Amount)
		assert.Equal(t, "INR", input.Currency)

		json.NewEncoder(w).Encode(Order{
			ID:       "order_created",
			Amount:   input.Amount,
			Currency: input.Currency,
			Receipt:  input.Receipt,
			Status:   "created",
			Notes:    input.Notes,
		})
	}))
	defer server.Close()

	client := NewClient("key-id", "key-secret", server.URL)

	order, err := client.CreateOrder(context.Background(), CreateOrderInput{
		Amount:   5000,
		Currency: "INR",
		Receipt:  "rcpt_1",
		Notes:    map[string]string{"plan": "monthly"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_created", order.ID)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, "monthly", order.Notes["plan"])
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"description":"amount too small"}}`))
	}))
	defer server.Close()

	client := NewClient("key-id", "key-secret", server.URL)

	_, err := client.CreateOrder(context.Background(), CreateOrderInput{Amount: 1, Currency: "INR"})
	assert.Error(t, err)
}

func TestFetchOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/orders/order_xyz", r.URL.Path)

		json.NewEncoder(w).Encode(Order{
			ID:     "order_xyz",
			Amount: 50000,
			Status: "paid",
			Notes:  map[string]string{"plan": "yearly", "userId": "u-1"},
		})
	}))
	defer server.Close()

	client := NewClient("key-id", "key-secret", server.URL)

	order, err := client.FetchOrder(context.Background(), "order_xyz")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), order.Amount)
	assert.Equal(t, "yearly", order.Notes["plan"])
}
