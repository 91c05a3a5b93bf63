package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moveline/leadgate/core/config"
	domainMedia "github.com/moveline/leadgate/domains/media"
	"github.com/moveline/leadgate/pkg/utils"
	"github.com/moveline/leadgate/usecase"
)

type Media struct {
	Cfg     *config.Config
	Repo    domainMedia.IRepository
	Objects domainMedia.IObjectStorage
}

// InitRestMedia registers the signed download endpoint. Access control is
// the link signature itself, so the route stays outside the API group.
func InitRestMedia(app fiber.Router, cfg *config.Config, repo domainMedia.IRepository, objects domainMedia.IObjectStorage) Media {
	handler := Media{Cfg: cfg, Repo: repo, Objects: objects}

	app.Get("/media/:asset_id", handler.Download)

	return handler
}

func (h *Media) Download(c *fiber.Ctx) error {
	assetID := c.Params("asset_id")
	exp := c.Query("exp")
	sig := c.Query("sig")

	asset, err := h.Repo.Get(c.UserContext(), assetID)
	utils.PanicIfNeeded(err)
	if asset == nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ResponseData{
			Status: 404, Code: "NOT_FOUND", Message: "media asset not found",
		})
	}

	if !usecase.VerifyMediaLink(h.Cfg.Media.SigningSecret, asset.TenantID, asset.Kind, asset.ID, exp, sig) {
		return c.Status(fiber.StatusForbidden).JSON(utils.ResponseData{
			Status: 403, Code: "FORBIDDEN", Message: "invalid or expired media link",
		})
	}

	data, err := h.Objects.Get(c.UserContext(), asset.StorageKey)
	utils.PanicIfNeeded(err)

	c.Set(fiber.HeaderContentType, asset.ContentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return c.Send(data)
}
