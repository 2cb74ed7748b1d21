package fx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticKey(k string) KeyFunc {
	return func(context.Context) (string, error) { return k, nil }
}

func TestClient_Rate(t *testing.T) {
	var gotKey, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("apikey")
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"success":true,"base":"USD","date":"2024-05-01","rates":{"ILS":3.72}}`))
	}))
	defer srv.Close()

	rate, err := NewClient(srv.URL, staticKey("k-123")).Rate(context.Background(), "usd", "ils")
	require.NoError(t, err)

	assert.Equal(t, "k-123", gotKey)
	assert.Equal(t, "base=USD&symbols=ILS", gotQuery)
	assert.Equal(t, "3.72", rate.Rate.String())
	assert.Equal(t, "2024-05-01", rate.Date.Format("2006-01-02"))
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":101,"info":"invalid key"}}`))
	}))
	defer srv.Close()

	t.Run("provider error", func(t *testing.T) {
		_, err := NewClient(srv.URL, staticKey("bad")).Rate(context.Background(), "USD", "EUR")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid key")
	})

	t.Run("no key", func(t *testing.T) {
		_, err := NewClient(srv.URL, staticKey("")).Rate(context.Background(), "USD", "EUR")
		assert.ErrorIs(t, err, ErrNoKey)
	})

	t.Run("key lookup fails", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := NewClient(srv.URL, func(context.Context) (string, error) { return "", boom }).Rate(context.Background(), "USD", "EUR")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("same currency needs no request", func(t *testing.T) {
		rate, err := NewClient(srv.URL, staticKey("")).Rate(context.Background(), "EUR", "eur")
		require.NoError(t, err)
		assert.Equal(t, "1", rate.Rate.String())
	})
}
