package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	membershipUsecases "guildpass/internal/application/membership/usecases"
	platformUsecases "guildpass/internal/application/platform/usecases"
	"guildpass/internal/domain/shared/events"
	"guildpass/internal/infrastructure/auth"
	"guildpass/internal/infrastructure/cache"
	"guildpass/internal/infrastructure/config"
	"guildpass/internal/infrastructure/discord"
	"guildpass/internal/infrastructure/email"
	"guildpass/internal/infrastructure/payment"
	"guildpass/internal/infrastructure/repository"
	"guildpass/internal/interfaces/http/handlers"
	"guildpass/internal/interfaces/http/middleware"
	"guildpass/internal/shared/logger"
)

// linkingStateTTL bounds how long an OAuth redirect may stay in flight.
const linkingStateTTL = 10 * time.Minute

// Router represents the HTTP router configuration
type Router struct {
	engine          *gin.Engine
	webhookHandler  *handlers.StripeWebhookHandler
	linkingHandler  *handlers.LinkingHandler
	platformHandler *handlers.PlatformHandler
	mappingHandler  *handlers.MappingHandler
	allowedOrigins  []string
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(db *gorm.DB, redisClient *redis.Client, publisher events.Publisher, cfg *config.Config, log logger.Interface) (*Router, error) {
	engine := gin.New()

	linkingRepo := repository.NewLinkingTokenRepository(db, log)
	memberRepo := repository.NewMemberRepository(db, log)
	mappingRepo := repository.NewPriceRoleMappingRepository(db, log)
	platformRepo := repository.NewPlatformSubscriptionRepository(db, log)

	emailService := email.NewSMTPEmailService(email.SMTPConfig{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPassword,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
	})

	stripeClient := payment.NewStripeClient(cfg.Stripe.APIKey, log)

	guildClient, err := discord.NewGuildClient(cfg.Discord.BotToken, log)
	if err != nil {
		return nil, err
	}

	oauthClient := auth.NewDiscordOAuthClient(auth.DiscordOAuthConfig{
		ClientID:     cfg.Discord.OAuth.ClientID,
		ClientSecret: cfg.Discord.OAuth.ClientSecret,
		RedirectURL:  cfg.Discord.OAuth.RedirectURL,
	})
	stateStore := cache.NewLinkingStateStore(redisClient, linkingStateTTL)

	createLinkingTokenUC := membershipUsecases.NewCreateLinkingTokenUseCase(linkingRepo, emailService, cfg.Server.BaseURL, log)
	linkSubscriptionUC := membershipUsecases.NewLinkSubscriptionUseCase(linkingRepo, memberRepo, mappingRepo, stripeClient, guildClient, log)
	saveMappingUC := membershipUsecases.NewSavePriceRoleMappingUseCase(mappingRepo, log)
	createPlatformSubUC := platformUsecases.NewCreatePlatformSubscriptionUseCase(platformRepo, publisher, log)
	redeemCouponUC := platformUsecases.NewRedeemCouponUseCase(platformRepo, log)

	webhookHandler := handlers.NewStripeWebhookHandler(cfg.Stripe.WebhookSecret, createLinkingTokenUC, createPlatformSubUC, stripeClient, log)
	linkingHandler := handlers.NewLinkingHandler(oauthClient, stateStore, linkSubscriptionUC, log)
	platformHandler := handlers.NewPlatformHandler(redeemCouponUC, log)
	mappingHandler := handlers.NewMappingHandler(saveMappingUC, mappingRepo, log)

	return &Router{
		engine:          engine,
		webhookHandler:  webhookHandler,
		linkingHandler:  linkingHandler,
		platformHandler: platformHandler,
		mappingHandler:  mappingHandler,
		allowedOrigins:  cfg.Server.AllowedOrigins,
	}, nil
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes(log logger.Interface) {
	r.engine.Use(middleware.Logger(log))
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.CORS(r.allowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.engine.POST("/webhooks/stripe", r.webhookHandler.HandleWebhook)

	link := r.engine.Group("/link")
	{
		link.GET("/callback", r.linkingHandler.Callback)
		link.GET("/:token", r.linkingHandler.StartLink)
	}

	platform := r.engine.Group("/platform")
	{
		platform.POST("/coupons/redeem", r.platformHandler.RedeemCoupon)
	}

	tenants := r.engine.Group("/tenants")
	{
		tenants.PUT("/:tenantID/guilds/:guildID/mapping", r.mappingHandler.SaveMapping)
		tenants.GET("/:tenantID/mappings", r.mappingHandler.ListMappings)
	}
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
