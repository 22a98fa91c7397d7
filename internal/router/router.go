package router

import (
	"fmt"
	"strings"

	"github.com/dropforge/internal/cache"
	"github.com/dropforge/internal/config"
	"github.com/dropforge/internal/constants"
	adminhandlers "github.com/dropforge/internal/http/handlers/admin"
	publichandlers "github.com/dropforge/internal/http/handlers/public"
	"github.com/dropforge/internal/logger"
	"github.com/dropforge/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires the HTTP surface.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()
	if len(cfg.Security.TrustedProxies) > 0 {
		if err := r.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			logger.Warnw("router_trusted_proxies_invalid", "error", err)
		}
	}

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	claimRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:claim", redisPrefix),
		WindowSeconds: cfg.Claim.RateLimitWindow,
		MaxRequests:   cfg.Claim.RateLimitRequests,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		public := apiV1.Group("/public")
		{
			public.GET("/collectibles", publicHandler.ListLiveCollectibles)
			public.GET("/collectibles/:id", publicHandler.GetCollectible)
			public.GET("/chips/:tag_uid", publicHandler.ResolveChipTag)
		}

		claims := apiV1.Group("/claims")
		{
			claims.POST("/check", publicHandler.CheckClaim)
			claims.POST("", RateLimitMiddleware(redisClient, claimRule, KeyByIP), publicHandler.InitiateClaim)
			claims.GET("/:code", publicHandler.VisitClaim)
		}

		apiV1.POST("/payments/webhook", publicHandler.PaymentWebhook)

		admin := apiV1.Group("/admin")
		admin.Use(AdminTokenMiddleware(cfg.Admin.Token))
		{
			admin.GET("/collections", adminHandler.ListCollections)
			admin.GET("/collections/:id", adminHandler.GetCollection)
			admin.POST("/collections", adminHandler.CreateCollection)
			admin.PUT("/collections/:id", adminHandler.UpdateCollection)
			admin.DELETE("/collections/:id", adminHandler.DeleteCollection)

			admin.GET("/batch-listings", adminHandler.ListBatchListings)
			admin.GET("/batch-listings/:id", adminHandler.GetBatchListing)
			admin.POST("/batch-listings", adminHandler.CreateBatchListing)
			admin.PUT("/batch-listings/:id", adminHandler.UpdateBatchListing)
			admin.DELETE("/batch-listings/:id", adminHandler.DeleteBatchListing)

			admin.GET("/collectibles", adminHandler.ListCollectibles)
			admin.GET("/collectibles/:id", adminHandler.GetCollectible)
			admin.POST("/collectibles", adminHandler.CreateCollectible)
			admin.PUT("/collectibles/:id", adminHandler.UpdateCollectible)
			admin.DELETE("/collectibles/:id", adminHandler.DeleteCollectible)

			admin.GET("/chip-links", adminHandler.ListChipLinks)
			admin.GET("/chip-links/:id", adminHandler.GetChipLink)
			admin.POST("/chip-links", adminHandler.CreateChipLink)
			admin.POST("/chip-links/:id/disconnect", adminHandler.DisconnectChipLink)
			admin.DELETE("/chip-links/:id", adminHandler.DeleteChipLink)

			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.PATCH("/orders/:id", adminHandler.UpdateOrderStatus)

			admin.POST("/scheduler/run", adminHandler.RunScheduler)
		}
	}

	return r
}
