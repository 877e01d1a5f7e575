package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firstscoop-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

var sender = Address{Email: "menu@example.edu", Name: "First Scoop"}

func TestMailjetSend(t *testing.T) {
	var got mailjetRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3.1/send", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "key", user)
		require.Equal(t, "secret", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"Messages":[{"Status":"success"}]}`))
	}))
	defer server.Close()

	provider := NewMailjetProvider(MailjetOptions{
		BaseUrl:   server.URL,
		ApiKey:    "key",
		SecretKey: "secret",
		From:      sender,
	}, &telemetry.Recorder{})

	err := provider.Send(context.Background(), Message{To: "a@x.com", Subject: "Daily Menu", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	require.Len(t, got.Messages, 1)
	require.Equal(t, "menu@example.edu", got.Messages[0].From.Email)
	require.Equal(t, "a@x.com", got.Messages[0].To[0].Email)
	require.Equal(t, "<p>hi</p>", got.Messages[0].HTMLPart)
	require.Equal(t, "Daily Menu", got.Messages[0].Subject)
}

func TestMailjetRejected(t *testing.T) {
	for _, tc := range []struct {
		name   string
		status int
		body   string
	}{
		{name: "status", status: http.StatusUnauthorized, body: `{"ErrorMessage":"bad key"}`},
		{name: "message status", status: http.StatusOK, body: `{"Messages":[{"Status":"error"}]}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("content-type", "application/json")
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			provider := NewMailjetProvider(MailjetOptions{BaseUrl: server.URL}, &telemetry.Recorder{})
			err := provider.Send(context.Background(), Message{To: "a@x.com"})

			var providerErr *ProviderError
			require.True(t, errors.As(err, &providerErr))
			require.Equal(t, "mailjet", providerErr.Provider)
			require.Equal(t, tc.status, providerErr.StatusCode)
			require.Equal(t, tc.body, providerErr.Body)
		})
	}
}

func TestSendGridSend(t *testing.T) {
	var got sendgridRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/mail/send", r.URL.Path)
		require.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	provider := NewSendGridProvider(SendGridOptions{
		BaseUrl: server.URL,
		ApiKey:  "sg-key",
		From:    sender,
	}, &telemetry.Recorder{})

	err := provider.Send(context.Background(), Message{To: "a@x.com", Subject: "Daily Menu", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	require.Len(t, got.Personalizations, 1)
	require.Equal(t, []sendgridAddress{{Email: "a@x.com"}}, got.Personalizations[0].To)
	require.Equal(t, sendgridAddress{Email: "menu@example.edu", Name: "First Scoop"}, got.From)
	require.Equal(t, []sendgridContent{{Type: "text/html", Value: "<p>hi</p>"}}, got.Content)
}

func TestSendGridRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("forbidden"))
	}))
	defer server.Close()

	provider := NewSendGridProvider(SendGridOptions{BaseUrl: server.URL}, &telemetry.Recorder{})
	err := provider.Send(context.Background(), Message{To: "a@x.com"})

	var providerErr *ProviderError
	require.True(t, errors.As(err, &providerErr))
	require.Equal(t, http.StatusForbidden, providerErr.StatusCode)
}

func TestSMTPCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewSMTPProvider(SmtpOptions{Server: "localhost", From: sender}).Send(ctx, Message{To: "a@x.com"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestAddressString(t *testing.T) {
	require.Equal(t, "First Scoop <menu@example.edu>", sender.String())
	require.Equal(t, "menu@example.edu", Address{Email: "menu@example.edu"}.String())
}
