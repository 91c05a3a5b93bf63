package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/moveline/leadgate/core/config"
	domainConversation "github.com/moveline/leadgate/domains/conversation"
	domainJob "github.com/moveline/leadgate/domains/job"
	domainLead "github.com/moveline/leadgate/domains/lead"
	domainTenant "github.com/moveline/leadgate/domains/tenant"
	"github.com/moveline/leadgate/pkg/crypto"
	pkgError "github.com/moveline/leadgate/pkg/error"
	"github.com/moveline/leadgate/pkg/jobworker"
	"github.com/moveline/leadgate/pkg/utils"
	"github.com/moveline/leadgate/validations"
)

type Admin struct {
	Cfg          *config.Config
	Queue        domainJob.IQueue
	Leads        domainLead.IRepository
	Tenants      domainTenant.IRepository
	Registry     domainTenant.IRegistry
	Conversation domainConversation.IUsecase
	Pool         *jobworker.Pool
}

// InitRestAdmin registers the operations surface. The caller mounts it on
// the basic-auth protected API group.
func InitRestAdmin(
	app fiber.Router,
	cfg *config.Config,
	queue domainJob.IQueue,
	leads domainLead.IRepository,
	tenants domainTenant.IRepository,
	registry domainTenant.IRegistry,
	conversation domainConversation.IUsecase,
	workerPool *jobworker.Pool,
) Admin {
	handler := Admin{
		Cfg:          cfg,
		Queue:        queue,
		Leads:        leads,
		Tenants:      tenants,
		Registry:     registry,
		Conversation: conversation,
		Pool:         workerPool,
	}

	app.Get("/admin/jobs", handler.JobOverview)
	app.Get("/admin/worker", handler.WorkerStats)
	app.Get("/admin/leads", handler.RecentLeads)
	app.Get("/admin/tenants", handler.ListTenants)
	app.Post("/admin/tenants", handler.CreateTenant)
	app.Post("/admin/tenants/channels", handler.BindChannel)
	app.Delete("/admin/tenants/:tenant_id/channels/:provider", handler.DeactivateChannel)
	app.Post("/admin/registry/reload", handler.ReloadRegistry)
	app.Post("/admin/chats/reset", handler.ResetChat)
	app.Post("/admin/sessions/cleanup", handler.CleanupSessions)

	return handler
}

// JobOverview reports queue depth by status plus the latest jobs.
func (h *Admin) JobOverview(c *fiber.Ctx) error {
	ctx := c.UserContext()

	counts, err := h.Queue.CountByStatus(ctx)
	utils.PanicIfNeeded(err)

	limit := c.QueryInt("limit", 20)
	recent, err := h.Queue.GetRecent(ctx, limit)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status: 200, Code: "SUCCESS", Message: "Job overview",
		Results: fiber.Map{
			"counts": counts,
			"recent": recent,
		},
	})
}

func (h *Admin) WorkerStats(c *fiber.Ctx) error {
	if h.Pool == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ResponseData{
			Status: 503, Code: "WORKER_DISABLED", Message: "no worker pool runs in this process",
		})
	}
	return c.JSON(utils.ResponseData{
		Status: 200, Code: "SUCCESS", Message: "Worker pool stats", Results: h.Pool.Stats(),
	})
}

func (h *Admin) RecentLeads(c *fiber.Ctx) error {
	tenantID := c.Query("tenant_id", h.Cfg.App.TenantID)
	limit := c.QueryInt("limit", 20)

	leads, err := h.Leads.GetRecent(c.UserContext(), tenantID, limit)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status: 200, Code: "SUCCESS", Message: "Recent leads", Results: leads,
	})
}

func (h *Admin) ListTenants(c *fiber.Ctx) error {
	tenants, err := h.Tenants.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status: 200, Code: "SUCCESS", Message: "Tenant list", Results: tenants,
	})
}

func (h *Admin) CreateTenant(c *fiber.Ctx) error {
	var request domainTenant.CreateTenantRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	ctx := c.UserContext()
	utils.PanicIfNeeded(validations.ValidateCreateTenant(ctx, request))

	err = h.Tenants.Create(ctx, domainTenant.Tenant{
		TenantID:    request.TenantID,
		DisplayName: request.DisplayName,
		IsActive:    true,
		Config:      request.Config,
	})
	utils.PanicIfNeeded(err)

	h.reload(c)
	logrus.Infof("[ADMIN] tenant created: %s", request.TenantID)

	return c.JSON(utils.ResponseData{
		Status: 200, Code: "SUCCESS", Message: "Tenant created",
		Results: fiber.Map{"tenant_id": request.TenantID},
	})
}

// BindChannel links a provider account to a tenant. Credential values are
// sealed to the tenant and provider so a row moved between tenants cannot
// be decrypted.
func (h *Admin) BindChannel(c *fiber.Ctx) error {
	var request domainTenant.BindChannelRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	ctx := c.UserContext()
	utils.PanicIfNeeded(validations.ValidateBindChannel(ctx, request))

	encrypted := make(map[string]string, len(request.Credentials))
	for k, v := range request.Credentials {
		sealed, encErr := crypto.EncryptBound(v, request.TenantID+":"+request.Provider)
		if encErr != nil {
			utils.PanicIfNeeded(pkgError.InternalServerError(encErr.Error()))
		}
		encrypted[k] = sealed
	}

	err = h.Tenants.BindChannel(ctx, request.TenantID, domainTenant.ChannelBinding{
		Provider:          request.Provider,
		ProviderAccountID: request.ProviderAccountID,
		Credentials:       encrypted,
		Config:            request.Config,
		IsActive:          true,
	})
	utils.PanicIfNeeded(err)

	h.reload(c)
	logrus.Infof("[ADMIN] channel bound: tenant=%s provider=%s account=%s",
		request.TenantID, request.Provider, request.ProviderAccountID)

	return c.JSON(utils.ResponseData{
		Status: 200, Code: "SUCCESS", Message: "Channel bound",
	})
}

func (h *Admin) DeactivateChannel(c *fiber.Ctx) error {
	tenantID := c.Params("tenant_id")
	provider := c.Params("provider")

	err := h.Tenants.DeactivateChannel(c.UserContext(), tenantID, provider)
	utils.PanicIfNeeded(err)

	h.reload(c)
	logrus.Infof("[ADMIN] channel deactivated: tenant=%s provider=%s", tenantID, provider)

	return c.JSON(utils.ResponseData{
		Status: 200, Code: "SUCCESS", Message: "Channel deactivated",
	})
}

func (h *Admin) ReloadRegistry(c *fiber.Ctx) error {
	err := h.Registry.Reload(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status: 200, Code: "SUCCESS", Message: "Registry reloaded",
	})
}

type resetChatRequest struct {
	TenantID string `json:"tenant_id"`
	Provider string `json:"provider"`
	ChatID   string `json:"chat_id"`
	Soft     bool   `json:"soft"`
}

// ResetChat clears a conversation. A soft reset keeps the inbound dedup
// marks so replayed provider webhooks stay ignored.
func (h *Admin) ResetChat(c *fiber.Ctx) error {
	var request resetChatRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	if request.ChatID == "" {
		utils.PanicIfNeeded(pkgError.ValidationError("chat_id is required"))
	}
	if request.TenantID == "" {
		request.TenantID = h.Cfg.App.TenantID
	}

	ctx := c.UserContext()
	if request.Soft {
		err = h.Conversation.SoftResetChat(ctx, request.TenantID, request.ChatID)
	} else {
		err = h.Conversation.ResetChat(ctx, request.TenantID, request.Provider, request.ChatID)
	}
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status: 200, Code: "SUCCESS", Message: "Chat reset",
		Results: fiber.Map{"soft": strconv.FormatBool(request.Soft)},
	})
}

func (h *Admin) CleanupSessions(c *fiber.Ctx) error {
	removed, err := h.Conversation.CleanupExpired(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status: 200, Code: "SUCCESS", Message: "Expired sessions removed",
		Results: fiber.Map{"removed": removed},
	})
}

// reload refreshes the registry after a tenant mutation so webhooks pick
// up the change without waiting for the cache TTL.
func (h *Admin) reload(c *fiber.Ctx) {
	if h.Registry == nil {
		return
	}
	if err := h.Registry.Reload(c.UserContext()); err != nil {
		logrus.WithError(err).Warn("[ADMIN] registry reload after mutation failed")
	}
}
