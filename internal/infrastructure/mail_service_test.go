package infrastructure

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****", MaskKey(""))
	assert.Equal(t, "****", MaskKey("short"))
	assert.Equal(t, "SG.a****wxyz", MaskKey("SG.abcdefghijklmnopqrstuvwxyz"))
}

func TestNoopMailer(t *testing.T) {
	assert.NoError(t, NoopMailer{}.SendWelcome(context.Background(), "a@b.c"))
}

func TestSendGridMailerSendWelcome(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewSendGridMailer("SG.test-key", "noreply@cryptopulse.io", discardLogger())
	m.client.BaseURL = srv.URL + "/v3/mail/send"

	require.NoError(t, m.SendWelcome(context.Background(), "a@b.c"))
	assert.Equal(t, welcomeSubject, got["subject"])
	assert.Equal(t, "noreply@cryptopulse.io", got["from"].(map[string]any)["email"])
	personalizations := got["personalizations"].([]any)
	require.Len(t, personalizations, 1)
	to := personalizations[0].(map[string]any)["to"].([]any)
	assert.Equal(t, "a@b.c", to[0].(map[string]any)["email"])
}

func TestSendGridMailerRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	m := NewSendGridMailer("SG.bad", "noreply@cryptopulse.io", discardLogger())
	m.client.BaseURL = srv.URL + "/v3/mail/send"

	assert.ErrorContains(t, m.SendWelcome(context.Background(), "a@b.c"), "status 401")
}

func TestResendMailerSendWelcome(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	m := NewResendMailer("re_test", "noreply@cryptopulse.io", discardLogger())
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	m.client.BaseURL = base

	require.NoError(t, m.SendWelcome(context.Background(), "a@b.c"))
	assert.Equal(t, welcomeSubject, got["subject"])
	assert.Equal(t, "noreply@cryptopulse.io", got["from"])
	assert.Equal(t, []any{"a@b.c"}, got["to"])
}
