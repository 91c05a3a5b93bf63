package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	domainJob "github.com/moveline/leadgate/domains/job"
	"github.com/moveline/leadgate/pkg/jobworker"
	"github.com/moveline/leadgate/ui/rest"
	"github.com/moveline/leadgate/ui/rest/middleware"
	"github.com/moveline/leadgate/ui/websocket"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Run the HTTP server",
	Long: `Serves the provider webhooks, the admin API and the signed media
links. With WORKER_EMBEDDED=true (default) it also runs the job worker.`,
	Run: restServer,
}

func init() {
	restCmd.Flags().String("basic-auth", "", "Basic auth for API (format: user:pass,user2:pass2)")
	rootCmd.AddCommand(restCmd)
}

func restServer(cmd *cobra.Command, _ []string) {
	// Override basic auth if flag is provided
	if baFlag, _ := cmd.Flags().GetString("basic-auth"); baFlag != "" {
		cfg.App.BasicAuth = strings.Split(baFlag, ",")
	}

	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		BodyLimit:               int(cfg.Media.MaxVideoBytes),
		Network:                 "tcp",
		AppName:                 "LeadGate",
		DisableStartupMessage:   false,
		ServerHeader:            "Hidden",
	}
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedHost
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())

	origins := strings.Join(cfg.App.CorsAllowedOrigins, ", ")
	if !strings.Contains(origins, cfg.App.BaseUrl) {
		origins += ", " + cfg.App.BaseUrl
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())

	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	if len(cfg.App.BasicAuth) == 0 {
		logrus.Fatalln("APP_BASIC_AUTH is required for the admin API; please set APP_BASIC_AUTH=<user>:<secret>[,<user2>:<secret2>] and restart.")
	}
	account := make(map[string]string)
	for _, basicAuth := range cfg.App.BasicAuth {
		ba := strings.Split(basicAuth, ":")
		if len(ba) != 2 {
			logrus.Fatalln("Basic auth is not valid, please use the following format <user>:<secret>")
		}
		account[ba[0]] = ba[1]
	}

	// Public surface: provider webhooks, signed media links, health probes.
	publicGroup := app.Group(cfg.App.BasePath)
	rest.InitRestWebhook(publicGroup, cfg, conversationUsecase, jobQueue, registry)
	rest.InitRestMedia(publicGroup, cfg, mediaRepo, objectStore)
	rest.InitRestHealth(publicGroup, healthUsecase)

	// Authenticated admin surface.
	apiGroup := app.Group(cfg.App.BasePath + "/api")
	apiGroup.Use(basicauth.New(basicauth.Config{
		Users: account,
		Next: func(c *fiber.Ctx) bool {
			// Allow CORS preflight without credentials.
			return c.Method() == fiber.MethodOptions
		},
	}))

	workerCtx, stopWorker := context.WithCancel(context.Background())
	var pool *jobworker.Pool
	if cfg.Worker.Enabled {
		pool = newWorkerPool()
		pool.Start(workerCtx)
	} else {
		logrus.Info("[REST] embedded worker disabled, run the worker command separately")
	}

	rest.InitRestAdmin(apiGroup, cfg, jobQueue, leadRepo, tenantRepo, registry, conversationUsecase, pool)

	// Websocket event feed for the admin UI.
	websocket.SetValkeyClient(vkClient, serverID)
	websocket.RegisterRoutes(apiGroup)
	go websocket.RunHub()

	startMaintenanceLoops(workerCtx)

	// 404 handler for the API group
	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Termination signal received, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
		stopWorker()
		if pool != nil {
			pool.Stop()
		}
		StopApp()
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}

// startMaintenanceLoops runs the periodic session cleanup and enqueues the
// daily media cleanup job.
func startMaintenanceLoops(ctx context.Context) {
	interval := time.Duration(cfg.Session.CleanupIntervalMn) * time.Minute
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed, err := conversationUsecase.CleanupExpired(ctx); err != nil {
					logrus.WithError(err).Warn("[REST] session cleanup failed")
				} else if removed > 0 {
					logrus.Infof("[REST] removed %d expired sessions", removed)
				}
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				opts := domainJob.EnqueueOptions{
					IdempotencyKey: "media_cleanup:" + time.Now().UTC().Format("2006-01-02"),
				}
				if _, err := jobQueue.Enqueue(ctx, cfg.App.TenantID, domainJob.TypeMediaCleanup, map[string]any{}, opts); err != nil {
					logrus.WithError(err).Warn("[REST] failed to enqueue media cleanup")
				}
			}
		}
	}()
}
