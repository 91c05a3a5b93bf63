package channels

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	domainChannel "github.com/moveline/leadgate/domains/channel"
)

const twilioAPIBase = "https://api.twilio.com"

type twilioSender struct {
	baseURL string
}

// NewTwilioSender sends WhatsApp messages through the Twilio API.
func NewTwilioSender() domainChannel.ISender {
	return &twilioSender{baseURL: twilioAPIBase}
}

func (s *twilioSender) Send(ctx context.Context, msg domainChannel.Message, creds domainChannel.Credentials) error {
	if creds.AccountID == "" || creds.Token == "" {
		return fmt.Errorf("twilio sender: missing account sid or auth token")
	}
	from := creds.PhoneNumberID
	if from == "" {
		return fmt.Errorf("twilio sender: missing from number")
	}

	form := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(form)
	form.Set("From", whatsappAddr(from))
	form.Set("To", whatsappAddr(msg.To))
	form.Set("Body", msg.Text)
	for _, u := range msg.MediaURLs {
		form.Add("MediaUrl", u)
	}

	url := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, creds.AccountID)
	status, respBody, err := postForm(ctx, url, map[string]string{
		"Authorization": basicAuth(creds.AccountID, creds.Token),
	}, form)
	if err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}
	if status >= 300 {
		return statusError("twilio", status, respBody)
	}
	return nil
}

// whatsappAddr normalizes a number to Twilio's whatsapp: addressing.
func whatsappAddr(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}
