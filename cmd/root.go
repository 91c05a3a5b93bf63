package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/moveline/leadgate/botengine/moving"
	"github.com/moveline/leadgate/core/config"
	"github.com/moveline/leadgate/core/database"
	domainChannel "github.com/moveline/leadgate/domains/channel"
	domainConversation "github.com/moveline/leadgate/domains/conversation"
	domainHealth "github.com/moveline/leadgate/domains/health"
	domainInbound "github.com/moveline/leadgate/domains/inbound"
	domainJob "github.com/moveline/leadgate/domains/job"
	domainLead "github.com/moveline/leadgate/domains/lead"
	domainMedia "github.com/moveline/leadgate/domains/media"
	domainSession "github.com/moveline/leadgate/domains/session"
	domainTenant "github.com/moveline/leadgate/domains/tenant"
	"github.com/moveline/leadgate/infrastructure/channels"
	"github.com/moveline/leadgate/infrastructure/storage"
	"github.com/moveline/leadgate/infrastructure/valkey"
	"github.com/moveline/leadgate/integrations/translate"
	"github.com/moveline/leadgate/pkg/crypto"
	"github.com/moveline/leadgate/pkg/jobworker"
	"github.com/moveline/leadgate/pkg/utils"
	"github.com/moveline/leadgate/usecase"
)

var (
	cfg      *config.Config
	db       *gorm.DB
	vkClient *valkey.Client
	serverID string

	// Repositories
	sessionStore domainSession.IStore
	leadRepo     domainLead.IRepository
	inboundRepo  domainInbound.IRepository
	mediaRepo    domainMedia.IRepository
	tenantRepo   domainTenant.IRepository
	objectStore  domainMedia.IObjectStorage
	jobQueue     domainJob.IQueue

	// Usecases
	registry            domainTenant.IRegistry
	channelRouter       domainChannel.IRouter
	mediaFetcher        domainChannel.IMediaFetcher
	conversationUsecase domainConversation.IUsecase
	mediaUsecase        domainMedia.IUsecase
	notificationUsecase usecase.INotificationUsecase
	healthUsecase       domainHealth.IHealthUsecase
	jobHandlers         *usecase.JobHandlers
)

var rootCmd = &cobra.Command{
	Use:   "leadgate",
	Short: "Conversational lead capture for moving companies",
	Long: `LeadGate runs the inbound messaging bot, the durable job queue and
the operator notification pipeline behind one HTTP server.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()
	cobra.OnInitialize(initEnvConfig, initApp)
}

// initEnvConfig builds the structured config, then lets flags override it.
func initEnvConfig() {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	if envPort := viper.GetString("app_port"); envPort != "" {
		cfg.App.Port = envPort
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}
	envBasicAuth := viper.GetString("app_basic_auth")
	if envBasicAuth == "" {
		envBasicAuth = os.Getenv("APP_BASIC_AUTH")
	}
	if envBasicAuth != "" {
		cfg.App.BasicAuth = strings.Split(envBasicAuth, ",")
	}
	if envBasePath := viper.GetString("app_base_path"); envBasePath != "" {
		cfg.App.BasePath = envBasePath
	}
	if envRole := viper.GetString("worker_role"); envRole != "" {
		cfg.Worker.Role = envRole
	}
}

func initFlags() {
	rootCmd.PersistentFlags().StringP(
		"port", "p", "",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolP(
		"debug", "d", false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringSliceP(
		"basic-auth", "b", nil,
		"basic auth credential | -b=yourUsername:yourPassword",
	)
	rootCmd.PersistentFlags().String(
		"base-path", "",
		`base path for subpath deployment --base-path <string> | example: --base-path="/leadgate"`,
	)
	rootCmd.PersistentFlags().String(
		"worker-role", "",
		`job types this process claims --worker-role <core|dispatch|all>`,
	)

	_ = viper.BindPFlag("app_port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("app_debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("app_basic_auth", rootCmd.PersistentFlags().Lookup("basic-auth"))
	_ = viper.BindPFlag("app_base_path", rootCmd.PersistentFlags().Lookup("base-path"))
	_ = viper.BindPFlag("worker_role", rootCmd.PersistentFlags().Lookup("worker-role"))
}

func initApp() {
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := utils.CreateFolder(cfg.Paths.Storages, cfg.Media.StoragePath); err != nil {
		logrus.Errorln(err)
	}

	if cfg.Pricing.ConfigPath != "" {
		if err := moving.LoadTariffOverrides(cfg.Pricing.ConfigPath); err != nil {
			logrus.Fatalf("failed to load tariff overrides: %v", err)
		}
		logrus.Infof("[APP] tariff overrides loaded from %s", cfg.Pricing.ConfigPath)
	}

	if err := crypto.SetEncryptionKey(cfg.Security.EncryptionKey); err != nil {
		logrus.Fatalf("failed to set encryption key: %v", err)
	}
	if !crypto.Enabled() {
		logrus.Warn("[APP] APP_ENCRYPTION_KEY not set, tenant credentials are stored in plain text")
	}

	var err error
	db, err = database.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("failed to open database: %v", err)
	}
	if err := storage.AutoMigrate(db); err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}

	if cfg.Database.ValkeyEnabled {
		vkClient, err = valkey.NewClient(valkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.Warnf("[APP] valkey unavailable, continuing without cache: %v", err)
			vkClient = nil
		}
	}
	serverID = utils.GetPersistentServerID(os.Getenv("APP_SERVER_ID"), cfg.Paths.Storages)

	// Repositories
	sessionStore = storage.NewSessionStore(db)
	leadRepo = storage.NewLeadRepository(db)
	inboundRepo = storage.NewInboundRepository(db, vkClient)
	mediaRepo = storage.NewMediaRepository(db)
	tenantRepo = storage.NewTenantRepository(db)
	jobQueue = storage.NewJobQueue(db)

	objectStore, err = storage.NewLocalObjectStorage(cfg.Media.StoragePath)
	if err != nil {
		logrus.Fatalf("failed to init media storage: %v", err)
	}

	// Usecases, bottom up
	registry = usecase.NewTenantRegistry(cfg, tenantRepo, vkClient)
	if err := registry.Reload(context.Background()); err != nil {
		logrus.Warnf("[APP] initial tenant registry load failed: %v", err)
	}

	channelRouter = channels.NewRouter(cfg, registry)
	mediaFetcher = channels.NewMediaFetcher()

	mediaUsecase = usecase.NewMediaService(cfg, mediaRepo, objectStore, mediaFetcher, registry)
	translator := translate.NewTranslator(cfg)
	notificationUsecase = usecase.NewNotificationService(cfg, registry, channelRouter, mediaRepo, mediaUsecase, translator)

	finalizer := usecase.NewLeadFinalizer(cfg, leadRepo, sessionStore, jobQueue, registry)
	conversationUsecase = usecase.NewConversationService(cfg, sessionStore, leadRepo, inboundRepo, finalizer, registry)

	healthUsecase = usecase.NewHealthService(jobQueue, vkClient)
	jobHandlers = usecase.NewJobHandlers(channelRouter, mediaUsecase, notificationUsecase)
}

// newWorkerPool builds a pool for the configured role with handlers wired.
func newWorkerPool() *jobworker.Pool {
	p := jobworker.NewPool(jobQueue, cfg.Worker.Role, jobworker.Options{
		PollInterval:   time.Duration(cfg.Worker.PollIntervalMs) * time.Millisecond,
		BatchSize:      cfg.Worker.BatchSize,
		BaseRetryDelay: time.Duration(cfg.Worker.RetryBaseSeconds) * time.Second,
		MaxRetryDelay:  time.Duration(cfg.Worker.RetryCapSeconds) * time.Second,
		StaleTimeout:   time.Duration(cfg.Worker.StaleAfterSeconds) * time.Second,
	})
	jobHandlers.RegisterAll(p)
	return p
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of the shared infrastructure.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if vkClient != nil {
		vkClient.Close()
	}
	if sqlDB, err := database.GetSQLDB(); err == nil {
		_ = sqlDB.Close()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
