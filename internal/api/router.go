package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"medreminder-backend/config"
	"medreminder-backend/internal/mw"
	"medreminder-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, cfg *config.Config, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	ttl := 30 * time.Second
	rateLimit, burst := rate.Limit(10), 5
	if cfg != nil {
		ttl = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
		rateLimit = rate.Limit(cfg.Server.RateLimitPerSec)
		burst = cfg.Server.RateLimitBurst
	}

	pageCache := cache.New(ttl, 2*ttl)
	handler := NewHandler(s, cfg, webpushOptions, pageCache)

	rateLimiter := mw.RateLimiter(rateLimit, burst)
	// Only static-ish endpoints go through the response cache; catalog and
	// ledger views must reflect writes immediately.
	caching := mw.Cache(pageCache, ttl)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/medications", handler.GetMedications)
		api.POST("/medications", handler.CreateMedication)
		api.GET("/medications/today", handler.GetTodayView)

		api.POST("/doses", handler.RecordDose)
		api.GET("/doses/today", handler.GetTodaysDoses)

		api.GET("/history", handler.GetHistory)

		api.GET("/frequencies", caching, handler.GetFrequencyOptions)

		api.POST("/reset/request", handler.RequestReset)
		api.POST("/reset/confirm", handler.ConfirmReset)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", caching, handler.GetVAPIDPublicKey)

		api.GET("/auth/prompt", caching, handler.GetAuthPrompt)
	}

	return r
}
