package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"complaint-tracker-backend/internal/mw"
)

// RouterConfig tunes the middleware wrapped around the API routes.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	if cfg.RateLimitPerSec <= 0 {
		cfg.RateLimitPerSec = 10
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 5
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}

	rateLimiter := mw.RateLimit(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/rooms", caching, h.ListRooms)
		api.POST("/rooms", h.CreateRoom)
		api.GET("/rooms/:id", h.GetRoom)
		api.PUT("/rooms/:id", h.UpdateRoom)
		api.DELETE("/rooms/:id", h.DeleteRoom)
		api.POST("/rooms/:id/status", h.UpdateRoomStatus)
		api.GET("/rooms/:id/qr", h.RoomQR)

		api.POST("/complaints", h.CreateComplaint)
		api.GET("/complaints", h.ListComplaints)
		api.GET("/complaints/by_status", h.ComplaintsByStatus)
		api.GET("/complaints/by_priority", h.ComplaintsByPriority)
		api.GET("/complaints/:ticket_id", h.GetComplaint)
		api.PATCH("/complaints/:ticket_id", h.UpdateComplaint)
		api.DELETE("/complaints/:ticket_id", h.DeleteComplaint)
		api.POST("/complaints/:ticket_id/status", h.TransitionComplaint)
		api.PUT("/complaints/:ticket_id/attachments", h.ReplaceAttachments)

		api.GET("/departments", caching, h.ListDepartments)
		api.POST("/departments", h.CreateDepartment)
		api.PUT("/departments/:id", h.UpdateDepartment)
		api.DELETE("/departments/:id", h.DeleteDepartment)

		api.GET("/issue-categories", caching, h.ListIssueCategories)
		api.POST("/issue-categories", h.CreateIssueCategory)
		api.PUT("/issue-categories/:id", h.UpdateIssueCategory)
		api.DELETE("/issue-categories/:id", h.DeleteIssueCategory)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
