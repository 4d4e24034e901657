package bootstrap

import (
	"context"
	"log"
	"strings"

	"blog-autowriter-be/internal/config"
	"blog-autowriter-be/internal/controller"
	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/metrics"
	"blog-autowriter-be/internal/pkg/logger"
	"blog-autowriter-be/internal/pkg/mailer"
	"blog-autowriter-be/internal/pkg/serverutils"
	"blog-autowriter-be/internal/repository/memory"
	"blog-autowriter-be/internal/repository/unitofwork"
	"blog-autowriter-be/internal/service"
	"blog-autowriter-be/internal/websocket"
	"blog-autowriter-be/pkg/changefeed"
	"blog-autowriter-be/pkg/credential"
	"blog-autowriter-be/pkg/events"
	"blog-autowriter-be/pkg/generation"
	pktNats "blog-autowriter-be/pkg/nats"
	"blog-autowriter-be/pkg/naver"
	"blog-autowriter-be/pkg/sanitize"
	"blog-autowriter-be/pkg/storage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	BlogController     controller.IBlogController
	ProfileController  controller.IProfileController
	MessageController  controller.IMessageController
	AdminController    controller.IAdminController
	RealtimeController controller.IRealtimeController

	// Realtime
	WebSocketHub *websocket.Hub
	Feed         *changefeed.Feed

	Registry *prometheus.Registry
	Logger   logger.ILogger

	closers []func()
}

// NewContainer wires every dependency. db may be nil when DB_DRIVER=memory.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger}

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		log.Println("[INFO] Using in-memory store (DB_DRIVER=memory)")
		uowFactory = memory.NewRepositoryFactory(memory.NewStore())
	}

	sanitizer := sanitize.NewTextSanitizer()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(registry)
	c.Registry = registry

	// 2. Infrastructure
	rdb := connectRedis(cfg.App.RedisURL)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	feed := changefeed.New(rdb, watermill.NewStdLogger(false, false))
	c.Feed = feed
	c.closers = append(c.closers, func() { _ = feed.Close() })

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)
	notifier := service.NewMailNotifier(emailService, sysLogger)

	publisher := c.wireEvents(cfg.App.NatsURL, notifier)

	photoStorage, err := storage.NewStorage(storage.StorageConfig{
		Type:         storage.StorageType(cfg.Storage.Type),
		LocalPath:    cfg.Storage.LocalPath,
		S3Bucket:     cfg.Storage.Bucket,
		S3Region:     cfg.Storage.Region,
		AWSAccessKey: cfg.Storage.AccessKey,
		AWSSecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize storage: %v", err)
	}

	generator := c.wireGenerator(cfg, sanitizer)

	naverClient := naver.NewClient(naver.Config{
		ClientID:     cfg.Keys.NaverClientID,
		ClientSecret: cfg.Keys.NaverClientSecret,
		RedirectURL:  cfg.Keys.NaverRedirectURL,
	}, nil)

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set")
	}
	issuer := credential.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.CredentialTTL, cfg.Auth.SessionTTL)

	// 3. Services
	profileStore := service.NewProfileStore(uowFactory, feed, sysLogger)
	ledgerService := service.NewLedgerService(profileStore, uowFactory, publisher, sysLogger)
	generationService := service.NewGenerationService(
		uowFactory,
		profileStore,
		ledgerService,
		generator,
		photoStorage,
		publisher,
		recorder,
		sysLogger,
		cfg.Credits.CostPerBlog,
		cfg.Ai.CallTimeout,
	)
	identityService := service.NewIdentityService(
		uowFactory,
		profileStore,
		naverClient,
		issuer,
		publisher,
		recorder,
		sysLogger,
		cfg.Auth,
		cfg.Credits,
	)
	passwordService := service.NewPasswordIdentityService(uowFactory, issuer, publisher, recorder, sysLogger, cfg.Auth)
	sessionService := service.NewSessionService(profileStore, issuer, sysLogger, cfg.Auth, cfg.Credits)
	profileService := service.NewProfileService(profileStore, ledgerService, sanitizer, cfg.Credits.EmailVerifiedReward)
	messageService := service.NewMessageService(uowFactory, profileStore, feed, publisher, sanitizer, sysLogger)
	adminService := service.NewAdminService(profileStore, ledgerService, messageService, sysLogger)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.HubLogFilePath)
	wsHub := websocket.NewHub(profileStore, messageService, wsLogger)
	c.WebSocketHub = wsHub

	// 4. Middleware
	requireSession := serverutils.SessionMiddleware(sessionService)
	generateLimiter := serverutils.TokenBucket(serverutils.RateLimitConfig{
		Enabled:  cfg.RateLimit.Enabled,
		Prefix:   "ratelimit:generate",
		Capacity: cfg.RateLimit.Capacity,
		Refill:   cfg.RateLimit.Refill,
		Interval: cfg.RateLimit.Interval,
	}, rdb)

	// 5. Controllers
	c.AuthController = controller.NewAuthController(identityService, passwordService, sessionService, requireSession)
	c.BlogController = controller.NewBlogController(generationService, requireSession, generateLimiter)
	c.ProfileController = controller.NewProfileController(profileService, requireSession)
	c.MessageController = controller.NewMessageController(messageService, requireSession)
	c.AdminController = controller.NewAdminController(adminService, sessionService, requireSession)
	c.RealtimeController = controller.NewRealtimeController(wsHub, profileService, messageService, requireSession, wsLogger)

	return c
}

// Start runs the background loops until ctx ends.
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)
	go c.Feed.Run(ctx)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func connectRedis(url string) *redis.Client {
	if url == "" {
		log.Println("[INFO] REDIS_URL not set: rate limiting disabled, changefeed is local only")
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}

// wireEvents returns the publisher services emit on and attaches the mail
// notifier to the matching subscriber.
func (c *Container) wireEvents(natsURL string, notifier *service.MailNotifier) events.Publisher {
	if natsURL != "" {
		natsPub, err := pktNats.NewPublisher(natsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
		natsSub, err := pktNats.NewSubscriber(natsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		}

		if natsPub != nil && natsSub != nil {
			for _, eventType := range notifier.Subscriptions() {
				durable := "mail-notifier-" + strings.ReplaceAll(strings.ToLower(eventType), "_", "-")
				if err := natsSub.Subscribe(pktNats.SubjectPrefix+eventType, durable, notifier.Handle); err != nil {
					log.Printf("[WARN] Failed to subscribe %s: %v", eventType, err)
				}
			}
			c.closers = append(c.closers, natsPub.Close, natsSub.Close)
			log.Println("[INFO] Using NATS JetStream event bus")
			return natsPub
		}
		if natsPub != nil {
			natsPub.Close()
		}
		if natsSub != nil {
			natsSub.Close()
		}
	}

	bus := events.NewBus()
	for _, eventType := range notifier.Subscriptions() {
		bus.Subscribe(eventType, notifier.Handle)
	}
	c.closers = append(c.closers, bus.Wait)
	log.Println("[INFO] Using in-process event bus")
	return bus
}

func (c *Container) wireGenerator(cfg *config.Config, sanitizer sanitize.Sanitizer) service.Generator {
	client, model, err := generation.NewGeminiModel(context.Background(), cfg.Keys.GoogleGemini, cfg.Ai.Model)
	if err != nil {
		log.Printf("[WARN] Gemini is not available: %v. Generation requests will fail and be refunded", err)
		return unavailableGenerator{err: err}
	}
	c.closers = append(c.closers, func() { _ = client.Close() })
	log.Printf("[INFO] Using Gemini model: %s", cfg.Ai.Model)

	return generation.NewClient(model, sanitizer, generation.Options{
		Timeout:           cfg.Ai.CallTimeout,
		RequestsPerMinute: cfg.Ai.RequestsPerMinute,
		Burst:             cfg.Ai.Burst,
	})
}

type unavailableGenerator struct {
	err error
}

func (g unavailableGenerator) Generate(context.Context, entity.Brief, []entity.Photo) (*entity.GeneratedBlog, error) {
	return nil, g.err
}
