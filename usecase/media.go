package usecase

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"

	"github.com/moveline/leadgate/core/config"
	domainChannel "github.com/moveline/leadgate/domains/channel"
	domainMedia "github.com/moveline/leadgate/domains/media"
	domainTenant "github.com/moveline/leadgate/domains/tenant"
	pkgError "github.com/moveline/leadgate/pkg/error"
)

const (
	defaultMediaTTLDays   = 30
	defaultMaxImageBytes  = 10 * 1024 * 1024
	defaultMaxVideoBytes  = 50 * 1024 * 1024
	reencodedImageQuality = 85
)

type mediaService struct {
	cfg      *config.Config
	repo     domainMedia.IRepository
	objects  domainMedia.IObjectStorage
	fetcher  domainChannel.IMediaFetcher
	registry domainTenant.IRegistry
}

// NewMediaService downloads inbound media, re-encodes images to JPEG and
// stores them with a TTL. registry may be nil for single-tenant setups
// where the fetcher works with empty credentials.
func NewMediaService(
	cfg *config.Config,
	repo domainMedia.IRepository,
	objects domainMedia.IObjectStorage,
	fetcher domainChannel.IMediaFetcher,
	registry domainTenant.IRegistry,
) domainMedia.IUsecase {
	return &mediaService{
		cfg:      cfg,
		repo:     repo,
		objects:  objects,
		fetcher:  fetcher,
		registry: registry,
	}
}

func (s *mediaService) ProcessAndSave(ctx context.Context, item domainMedia.Item, tenantID, leadID, chatID, provider, messageID string) (*domainMedia.Asset, error) {
	if s.fetcher == nil {
		return nil, pkgError.InternalServerError("no media fetcher configured")
	}

	creds := s.credsFor(ctx, tenantID, provider)
	data, contentType, err := s.fetcher.Fetch(ctx, provider, item.URL, item.ProviderID, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media: %w", err)
	}
	if len(data) == 0 {
		return nil, pkgError.ValidationError("empty media payload")
	}
	if contentType == "" {
		contentType = item.ContentType
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	kind := mediaKind(contentType)
	if kind == "" {
		return nil, pkgError.ValidationError(fmt.Sprintf("unsupported media type %s", contentType))
	}
	if err := s.checkSize(kind, int64(len(data))); err != nil {
		return nil, err
	}

	assetID := uuid.NewString()
	width, height := 0, 0
	ext := extFor(contentType)

	if kind == "image" {
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, pkgError.ValidationError(fmt.Sprintf("failed to decode image: %v", err))
		}
		bounds := img.Bounds()
		width, height = bounds.Dx(), bounds.Dy()

		// Everything is stored as JPEG so operator links render anywhere.
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(reencodedImageQuality)); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}
		data = buf.Bytes()
		contentType = "image/jpeg"
		ext = "jpg"
	}

	key := fmt.Sprintf("media/%s/%s/%s.%s", tenantID, leadID, assetID, ext)
	if err := s.objects.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("failed to store media object: %w", err)
	}

	ttlDays := s.cfg.Media.TTLDays
	if ttlDays <= 0 {
		ttlDays = defaultMediaTTLDays
	}
	now := time.Now().UTC()
	asset := domainMedia.Asset{
		ID:          assetID,
		TenantID:    tenantID,
		LeadID:      leadID,
		ChatID:      chatID,
		Kind:        kind,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Width:       width,
		Height:      height,
		StorageKey:  key,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(ttlDays) * 24 * time.Hour),
	}
	if err := s.repo.Save(ctx, asset); err != nil {
		// Orphaned objects are picked up by the cleanup job.
		return nil, fmt.Errorf("failed to save media asset: %w", err)
	}

	logrus.Infof("[MEDIA] stored %s asset: tenant=%s lead=%s size=%s dims=%dx%d msg=%s",
		kind, tenantID, shortChat(leadID), humanize.Bytes(uint64(asset.SizeBytes)), width, height, messageID)
	return &asset, nil
}

// SignedURL builds a time-limited download link. The signature covers
// tenant, kind, asset id and expiry so a leaked link cannot be replayed
// for another asset.
func (s *mediaService) SignedURL(baseURL string, a domainMedia.Asset, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	exp := time.Now().UTC().Add(ttl).Unix()
	sig := SignMediaLink(s.cfg.Media.SigningSecret, a.TenantID, a.Kind, a.ID, exp)
	return fmt.Sprintf("%s/media/%s?exp=%d&sig=%s", strings.TrimRight(baseURL, "/"), a.ID, exp, sig)
}

// Cleanup removes expired asset rows and their stored objects.
func (s *mediaService) Cleanup(ctx context.Context) (int64, error) {
	expired, err := s.repo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	for _, a := range expired {
		if err := s.objects.Delete(ctx, a.StorageKey); err != nil {
			logrus.WithError(err).Warnf("[MEDIA] failed to delete object %s", a.StorageKey)
		}
	}
	if len(expired) > 0 {
		logrus.Infof("[MEDIA] cleanup removed %d expired assets", len(expired))
	}
	return int64(len(expired)), nil
}

func (s *mediaService) checkSize(kind string, size int64) error {
	maxImage := s.cfg.Media.MaxImageBytes
	if maxImage <= 0 {
		maxImage = defaultMaxImageBytes
	}
	maxVideo := s.cfg.Media.MaxVideoBytes
	if maxVideo <= 0 {
		maxVideo = defaultMaxVideoBytes
	}
	limit := maxImage
	if kind == "video" {
		limit = maxVideo
	}
	if size > limit {
		return pkgError.ValidationError(fmt.Sprintf("%s too large: %s exceeds limit %s",
			kind, humanize.Bytes(uint64(size)), humanize.Bytes(uint64(limit))))
	}
	return nil
}

func (s *mediaService) credsFor(ctx context.Context, tenantID, provider string) domainChannel.Credentials {
	if s.registry == nil {
		return domainChannel.Credentials{}
	}
	tc, err := s.registry.GetContext(ctx, tenantID)
	if err != nil || tc == nil {
		return domainChannel.Credentials{}
	}
	b, ok := tc.Channels[provider]
	if !ok {
		return domainChannel.Credentials{}
	}
	return domainChannel.Credentials{
		Token:         b.Credentials["token"],
		AccountID:     b.Credentials["account_id"],
		PhoneNumberID: b.Credentials["phone_number_id"],
	}
}

// SignMediaLink computes the hex HMAC-SHA256 over tenant:kind:asset_id:exp.
func SignMediaLink(secret, tenantID, kind, assetID string, exp int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s:%s:%s:%d", tenantID, kind, assetID, exp)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyMediaLink checks an exp/sig pair produced by SignMediaLink.
func VerifyMediaLink(secret, tenantID, kind, assetID, expStr, sig string) bool {
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil || time.Now().UTC().Unix() > exp {
		return false
	}
	want := SignMediaLink(secret, tenantID, kind, assetID, exp)
	return hmac.Equal([]byte(want), []byte(sig))
}

func mediaKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return ""
	}
}

func extFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "video/mp4":
		return "mp4"
	case "video/quicktime":
		return "mov"
	default:
		return "bin"
	}
}
