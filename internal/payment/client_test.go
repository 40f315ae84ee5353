package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIntent_Success(t *testing.T) {
	var gotForm map[string][]string
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_abc","client_secret":"pi_abc_secret_xyz","status":"requires_payment_method"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_123", 5*time.Second)

	intent, err := client.CreateIntent(context.Background(), 3197, "usd", map[string]string{
		"subtotalCents": "2598",
		"shippingCents": "599",
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_abc", intent.ID)
	assert.Equal(t, "pi_abc_secret_xyz", intent.ClientSecret)

	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.Equal(t, []string{"3197"}, gotForm["amount"])
	assert.Equal(t, []string{"usd"}, gotForm["currency"])
	assert.Equal(t, []string{"true"}, gotForm["automatic_payment_methods[enabled]"])
	assert.Equal(t, []string{"2598"}, gotForm["metadata[subtotalCents]"])
	assert.Equal(t, []string{"599"}, gotForm["metadata[shippingCents]"])
}

func TestCreateIntent_GatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"amount_too_small","message":"Amount must be at least $0.50 usd"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_123", 5*time.Second)

	intent, err := client.CreateIntent(context.Background(), 1, "usd", nil)

	require.Error(t, err)
	assert.Nil(t, intent)
	assert.Contains(t, err.Error(), "amount_too_small")
	assert.Contains(t, err.Error(), "Amount must be at least")
}

func TestCreateIntent_MalformedErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream exploded`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_123", 5*time.Second)

	_, err := client.CreateIntent(context.Background(), 100, "usd", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestCreateIntent_MissingClientSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"pi_abc"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_123", 5*time.Second)

	_, err := client.CreateIntent(context.Background(), 100, "usd", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing intent id or client secret")
}

func TestCreateIntent_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_123", 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreateIntent(ctx, 100, "usd", nil)
	assert.Error(t, err)
}
