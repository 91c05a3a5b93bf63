package usecase

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/moveline/leadgate/core/config"
	domainMedia "github.com/moveline/leadgate/domains/media"
)

func TestSignMediaLinkRoundTrip(t *testing.T) {
	exp := time.Now().UTC().Add(time.Hour).Unix()
	sig := SignMediaLink("secret", "default", "image", "asset-1", exp)

	assert.True(t, VerifyMediaLink("secret", "default", "image", "asset-1", strconv.FormatInt(exp, 10), sig))
}

func TestVerifyMediaLinkRejections(t *testing.T) {
	exp := time.Now().UTC().Add(time.Hour).Unix()
	expStr := strconv.FormatInt(exp, 10)
	sig := SignMediaLink("secret", "default", "image", "asset-1", exp)

	assert.False(t, VerifyMediaLink("secret", "default", "image", "asset-1", expStr, sig+"00"), "tampered signature")
	assert.False(t, VerifyMediaLink("other", "default", "image", "asset-1", expStr, sig), "wrong secret")
	assert.False(t, VerifyMediaLink("secret", "tenant2", "image", "asset-1", expStr, sig), "wrong tenant")
	assert.False(t, VerifyMediaLink("secret", "default", "video", "asset-1", expStr, sig), "wrong kind")
	assert.False(t, VerifyMediaLink("secret", "default", "image", "asset-2", expStr, sig), "wrong asset")
	assert.False(t, VerifyMediaLink("secret", "default", "image", "asset-1", "not-a-number", sig), "bad expiry")

	past := time.Now().UTC().Add(-time.Minute).Unix()
	expiredSig := SignMediaLink("secret", "default", "image", "asset-1", past)
	assert.False(t, VerifyMediaLink("secret", "default", "image", "asset-1", strconv.FormatInt(past, 10), expiredSig), "expired link")
}

func TestSignedURLFormat(t *testing.T) {
	cfg := &config.Config{}
	cfg.Media.SigningSecret = "secret"
	svc := NewMediaService(cfg, nil, nil, nil, nil).(*mediaService)

	asset := domainMedia.Asset{ID: "asset-1", TenantID: "default", Kind: "image"}
	url := svc.SignedURL("https://leads.example.com/", asset, time.Hour)

	assert.Contains(t, url, "https://leads.example.com/media/asset-1?exp=")
	assert.Contains(t, url, "&sig=")
	assert.NotContains(t, url, "com//media", "trailing slash trimmed")
}

func TestMediaKindAndExt(t *testing.T) {
	assert.Equal(t, "image", mediaKind("image/png"))
	assert.Equal(t, "video", mediaKind("video/mp4"))
	assert.Equal(t, "", mediaKind("application/pdf"))

	assert.Equal(t, "jpg", extFor("image/jpeg"))
	assert.Equal(t, "webp", extFor("image/webp"))
	assert.Equal(t, "bin", extFor("application/octet-stream"))
}

func TestCheckSizeLimits(t *testing.T) {
	cfg := &config.Config{}
	cfg.Media.MaxImageBytes = 1024
	cfg.Media.MaxVideoBytes = 2048
	svc := NewMediaService(cfg, nil, nil, nil, nil).(*mediaService)

	assert.NoError(t, svc.checkSize("image", 1024))
	assert.Error(t, svc.checkSize("image", 1025))
	assert.NoError(t, svc.checkSize("video", 2048))
	assert.Error(t, svc.checkSize("video", 2049))
}

func TestCheckSizeDefaults(t *testing.T) {
	svc := NewMediaService(&config.Config{}, nil, nil, nil, nil).(*mediaService)

	assert.NoError(t, svc.checkSize("image", defaultMaxImageBytes))
	err := svc.checkSize("image", defaultMaxImageBytes+1)
	assert.Error(t, err)
	assert.Contains(t, fmt.Sprint(err), "too large")
}
