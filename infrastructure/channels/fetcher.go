package channels

import (
	"context"
	"encoding/json"
	"fmt"

	domainChannel "github.com/moveline/leadgate/domains/channel"
)

type mediaFetcher struct {
	telegramBase string
	metaBase     string
}

// NewMediaFetcher downloads inbound media from the provider APIs.
func NewMediaFetcher() domainChannel.IMediaFetcher {
	return &mediaFetcher{
		telegramBase: telegramAPIBase,
		metaBase:     metaAPIBase,
	}
}

func (f *mediaFetcher) Fetch(ctx context.Context, provider, url, providerID string, creds domainChannel.Credentials) ([]byte, string, error) {
	switch provider {
	case domainChannel.ProviderTelegram:
		return f.fetchTelegram(ctx, providerID, creds)
	case domainChannel.ProviderMeta:
		return f.fetchMeta(ctx, providerID, creds)
	case domainChannel.ProviderTwilio:
		return f.fetchTwilio(ctx, url, creds)
	default:
		return nil, "", fmt.Errorf("no media fetcher for provider %s", provider)
	}
}

// fetchTelegram resolves a file_id to a file path and downloads it.
func (f *mediaFetcher) fetchTelegram(ctx context.Context, fileID string, creds domainChannel.Credentials) ([]byte, string, error) {
	if creds.Token == "" {
		return nil, "", fmt.Errorf("telegram fetch: missing bot token")
	}
	infoURL := fmt.Sprintf("%s/bot%s/getFile?file_id=%s", f.telegramBase, creds.Token, fileID)
	status, body, _, err := getURL(ctx, infoURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("telegram getFile failed: %w", err)
	}
	if status >= 300 {
		return nil, "", statusError("telegram", status, body)
	}
	var info struct {
		OK     bool `json:"ok"`
		Result struct {
			FilePath string `json:"file_path"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &info); err != nil || !info.OK || info.Result.FilePath == "" {
		return nil, "", fmt.Errorf("telegram getFile: unexpected response")
	}

	fileURL := fmt.Sprintf("%s/file/bot%s/%s", f.telegramBase, creds.Token, info.Result.FilePath)
	status, data, contentType, err := getURL(ctx, fileURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("telegram download failed: %w", err)
	}
	if status >= 300 {
		return nil, "", statusError("telegram", status, data)
	}
	return data, contentType, nil
}

// fetchMeta resolves a media id to a short-lived URL and downloads it.
func (f *mediaFetcher) fetchMeta(ctx context.Context, mediaID string, creds domainChannel.Credentials) ([]byte, string, error) {
	if creds.Token == "" {
		return nil, "", fmt.Errorf("meta fetch: missing access token")
	}
	auth := map[string]string{"Authorization": "Bearer " + creds.Token}

	infoURL := fmt.Sprintf("%s/%s/%s", f.metaBase, metaAPIVersion, mediaID)
	status, body, _, err := getURL(ctx, infoURL, auth)
	if err != nil {
		return nil, "", fmt.Errorf("meta media lookup failed: %w", err)
	}
	if status >= 300 {
		return nil, "", statusError("meta", status, body)
	}
	var info struct {
		URL      string `json:"url"`
		MimeType string `json:"mime_type"`
	}
	if err := json.Unmarshal(body, &info); err != nil || info.URL == "" {
		return nil, "", fmt.Errorf("meta media lookup: unexpected response")
	}

	status, data, contentType, err := getURL(ctx, info.URL, auth)
	if err != nil {
		return nil, "", fmt.Errorf("meta download failed: %w", err)
	}
	if status >= 300 {
		return nil, "", statusError("meta", status, data)
	}
	if contentType == "" {
		contentType = info.MimeType
	}
	return data, contentType, nil
}

// fetchTwilio downloads directly from the webhook-provided media URL.
func (f *mediaFetcher) fetchTwilio(ctx context.Context, url string, creds domainChannel.Credentials) ([]byte, string, error) {
	if url == "" {
		return nil, "", fmt.Errorf("twilio fetch: missing media url")
	}
	headers := map[string]string{}
	if creds.AccountID != "" && creds.Token != "" {
		headers["Authorization"] = basicAuth(creds.AccountID, creds.Token)
	}
	status, data, contentType, err := getURL(ctx, url, headers)
	if err != nil {
		return nil, "", fmt.Errorf("twilio download failed: %w", err)
	}
	if status >= 300 {
		return nil, "", statusError("twilio", status, data)
	}
	return data, contentType, nil
}
