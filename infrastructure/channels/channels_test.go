package channels

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moveline/leadgate/core/config"
	domainChannel "github.com/moveline/leadgate/domains/channel"
)

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "+123***7890", MaskPhone("+12345557890"))
	assert.Equal(t, "***", MaskPhone("12345"))
	assert.Equal(t, "***", MaskPhone(""))
	assert.Equal(t, "what***1234", MaskPhone("whatsapp:+15551234"))
}

func TestTelegramSenderSendsTextAndPhotos(t *testing.T) {
	var calls []string
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s := &telegramSender{baseURL: srv.URL}
	err := s.Send(context.Background(), domainChannel.Message{
		To:        "12345",
		Text:      "Заявка #7",
		MediaURLs: []string{"https://example.com/a.jpg"},
	}, domainChannel.Credentials{Token: "bot-token"})
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, "/botbot-token/sendMessage", calls[0])
	assert.Equal(t, "/botbot-token/sendPhoto", calls[1])
	assert.Equal(t, "Заявка #7", bodies[0]["text"])
	assert.Equal(t, "https://example.com/a.jpg", bodies[1]["photo"])
}

func TestTelegramSenderSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	s := &telegramSender{baseURL: srv.URL}
	err := s.Send(context.Background(), domainChannel.Message{To: "1", Text: "hi"},
		domainChannel.Credentials{Token: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestMetaSenderBuildsCloudAPIPayload(t *testing.T) {
	var path, auth string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := &metaSender{baseURL: srv.URL}
	err := s.Send(context.Background(), domainChannel.Message{
		To:   "whatsapp:+15551234567",
		Text: "hello",
	}, domainChannel.Credentials{Token: "tok", PhoneNumberID: "111222"})
	require.NoError(t, err)

	assert.Equal(t, "/v21.0/111222/messages", path)
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "whatsapp", body["messaging_product"])
	assert.Equal(t, "+15551234567", body["to"], "whatsapp: prefix stripped")
}

func TestTwilioSenderSendsForm(t *testing.T) {
	var form map[string][]string
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := &twilioSender{baseURL: srv.URL}
	err := s.Send(context.Background(), domainChannel.Message{
		To:        "+15550001111",
		Text:      "crew view",
		MediaURLs: []string{"https://example.com/1.jpg", "https://example.com/2.jpg"},
	}, domainChannel.Credentials{AccountID: "AC1", Token: "secret", PhoneNumberID: "+15559990000"})
	require.NoError(t, err)

	assert.Equal(t, []string{"whatsapp:+15559990000"}, form["From"])
	assert.Equal(t, []string{"whatsapp:+15550001111"}, form["To"])
	assert.Equal(t, []string{"crew view"}, form["Body"])
	assert.Len(t, form["MediaUrl"], 2)
	assert.Contains(t, auth, "Basic ")
}

func TestMediaFetcherTelegramTwoStep(t *testing.T) {
	fileBytes := []byte("jpeg-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bottok/getFile":
			assert.Equal(t, "file-77", r.URL.Query().Get("file_id"))
			_, _ = w.Write([]byte(`{"ok":true,"result":{"file_path":"photos/p.jpg"}}`))
		case "/file/bottok/photos/p.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write(fileBytes)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := &mediaFetcher{telegramBase: srv.URL, metaBase: srv.URL}
	data, contentType, err := f.Fetch(context.Background(), domainChannel.ProviderTelegram,
		"", "file-77", domainChannel.Credentials{Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, fileBytes, data)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestMediaFetcherTwilioDirectDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = io.WriteString(w, "png-bytes")
	}))
	defer srv.Close()

	f := &mediaFetcher{}
	data, contentType, err := f.Fetch(context.Background(), domainChannel.ProviderTwilio,
		srv.URL+"/media/1", "", domainChannel.Credentials{AccountID: "AC1", Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", contentType)
}

func TestRouterNormalizesWhatsappProvider(t *testing.T) {
	cfg := &config.Config{}
	r := NewRouter(cfg, nil).(*router)
	assert.Equal(t, domainChannel.ProviderMeta, r.normalizeProvider("whatsapp"))

	cfg.Channels.TwilioAccountSID = "AC1"
	assert.Equal(t, domainChannel.ProviderTwilio, r.normalizeProvider("whatsapp"))
	assert.Equal(t, domainChannel.ProviderTelegram, r.normalizeProvider("telegram"))
}

func TestRouterGlobalCredsFallback(t *testing.T) {
	cfg := &config.Config{}
	cfg.Channels.TelegramBotToken = "tg-token"
	cfg.Channels.TwilioAccountSID = "AC1"
	cfg.Channels.TwilioAuthToken = "tw-secret"
	cfg.Channels.TwilioFromNumber = "+1000"

	r := NewRouter(cfg, nil).(*router)
	assert.Equal(t, "tg-token", r.credsFor(context.Background(), "default", domainChannel.ProviderTelegram).Token)

	tw := r.credsFor(context.Background(), "default", domainChannel.ProviderTwilio)
	assert.Equal(t, "AC1", tw.AccountID)
	assert.Equal(t, "+1000", tw.PhoneNumberID)
}
