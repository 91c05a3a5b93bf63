package rest

import (
	"context"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moveline/leadgate/core/config"
	domainConversation "github.com/moveline/leadgate/domains/conversation"
	domainJob "github.com/moveline/leadgate/domains/job"
	"github.com/moveline/leadgate/ui/rest/middleware"
	"github.com/moveline/leadgate/usecase"
)

type fakeConversation struct {
	received []domainConversation.InboundMessage
	reply    string
}

func (f *fakeConversation) ProcessInbound(_ context.Context, msg domainConversation.InboundMessage) (domainConversation.Result, error) {
	f.received = append(f.received, msg)
	return domainConversation.Result{Reply: f.reply, Step: "cargo", LeadID: "lead-1"}, nil
}

func (f *fakeConversation) ResetChat(context.Context, string, string, string) error { return nil }
func (f *fakeConversation) SoftResetChat(context.Context, string, string) error     { return nil }
func (f *fakeConversation) CleanupExpired(context.Context) (int64, error)           { return 0, nil }

type webhookQueue struct {
	jobs []struct {
		jobType string
		payload map[string]any
		opts    domainJob.EnqueueOptions
	}
}

func (q *webhookQueue) Enqueue(_ context.Context, _, jobType string, payload map[string]any, opts domainJob.EnqueueOptions) (string, error) {
	q.jobs = append(q.jobs, struct {
		jobType string
		payload map[string]any
		opts    domainJob.EnqueueOptions
	}{jobType, payload, opts})
	return jobType, nil
}

func (q *webhookQueue) Claim(context.Context, []string, int) ([]domainJob.Job, error) {
	return nil, nil
}
func (q *webhookQueue) Complete(context.Context, string) error { return nil }
func (q *webhookQueue) Fail(context.Context, string, string, time.Duration) error {
	return nil
}
func (q *webhookQueue) FailPermanently(context.Context, string, string) error { return nil }
func (q *webhookQueue) CountByStatus(context.Context) (map[string]int64, error) { return nil, nil }
func (q *webhookQueue) GetRecent(context.Context, int) ([]domainJob.Job, error) { return nil, nil }
func (q *webhookQueue) CleanupCompleted(context.Context, time.Duration) (int64, error) {
	return 0, nil
}
func (q *webhookQueue) CleanupFailed(context.Context, time.Duration) (int64, error) {
	return 0, nil
}
func (q *webhookQueue) ResetStale(context.Context, time.Duration) (int64, error) { return 0, nil }

func webhookTestApp(conv *fakeConversation, queue *webhookQueue) *fiber.App {
	cfg := &config.Config{}
	cfg.App.TenantID = "default"
	cfg.Channels.MetaVerifyToken = "verify-me"

	app := fiber.New()
	app.Use(middleware.Recovery())
	InitRestWebhook(app, cfg, conv, queue, nil)
	return app
}

func TestMetaVerifyHandshake(t *testing.T) {
	app := webhookTestApp(&fakeConversation{}, &webhookQueue{})

	req := httptest.NewRequest("GET", "/webhook/meta?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "12345", string(body))

	req = httptest.NewRequest("GET", "/webhook/meta?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestTelegramWebhookEnqueuesReply(t *testing.T) {
	conv := &fakeConversation{reply: "Что везем?"}
	queue := &webhookQueue{}
	app := webhookTestApp(conv, queue)

	body := `{"update_id":1,"message":{"message_id":10,"from":{"first_name":"Anna","last_name":"K"},"chat":{"id":555},"text":"Привет"}}`
	req := httptest.NewRequest("POST", "/webhook/telegram", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	require.Len(t, conv.received, 1)
	assert.Equal(t, "555", conv.received[0].ChatID)
	assert.Equal(t, "10", conv.received[0].MessageID)
	assert.Equal(t, "Anna K", conv.received[0].SenderName)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, domainJob.TypeOutboundReply, queue.jobs[0].jobType)
	assert.Equal(t, "Что везем?", queue.jobs[0].payload["text"])
	assert.Equal(t, "telegram:10:reply", queue.jobs[0].opts.IdempotencyKey)
}

func TestTelegramWebhookIgnoresNonMessageUpdates(t *testing.T) {
	conv := &fakeConversation{reply: "ответ"}
	queue := &webhookQueue{}
	app := webhookTestApp(conv, queue)

	req := httptest.NewRequest("POST", "/webhook/telegram", strings.NewReader(`{"update_id":2}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Empty(t, conv.received)
	assert.Empty(t, queue.jobs)
}

func TestWebhookDuplicateReplyNotDelivered(t *testing.T) {
	conv := &fakeConversation{reply: usecase.DuplicateReply}
	queue := &webhookQueue{}
	app := webhookTestApp(conv, queue)

	body := `{"update_id":1,"message":{"message_id":10,"chat":{"id":555},"text":"Привет"}}`
	req := httptest.NewRequest("POST", "/webhook/telegram", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Empty(t, queue.jobs, "duplicate replies never reach the provider")
}

func TestTwilioWebhookMediaEnqueued(t *testing.T) {
	conv := &fakeConversation{reply: "Фото получил"}
	queue := &webhookQueue{}
	app := webhookTestApp(conv, queue)

	form := url.Values{}
	form.Set("From", "whatsapp:+972500000000")
	form.Set("MessageSid", "SM123")
	form.Set("NumMedia", "1")
	form.Set("MediaUrl0", "https://api.twilio.com/media/0")
	form.Set("MediaContentType0", "image/jpeg")

	req := httptest.NewRequest("POST", "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	require.Len(t, queue.jobs, 2)
	media := queue.jobs[1]
	assert.Equal(t, domainJob.TypeProcessMedia, media.jobType)
	assert.Equal(t, "lead-1", media.payload["lead_id"])
	assert.Equal(t, "twilio:SM123:media", media.opts.IdempotencyKey)

	items := media.payload["items"].([]map[string]any)
	require.Len(t, items, 1)
	assert.Equal(t, "https://api.twilio.com/media/0", items[0]["url"])
}
