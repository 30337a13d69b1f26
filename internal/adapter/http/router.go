package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"foodrescue-backend/internal/adapter/middleware"
	"foodrescue-backend/internal/domain/user"
)

type Handlers struct {
	Health    *Handler
	Auth      *AuthHandler
	Offers    *OfferHandler
	Dashboard *DashboardHandler
	Admin     *AdminHandler
	Profiles  *ProfileHandler
}

type RouterConfig struct {
	Sessions   middleware.SessionResolver
	Redis      *redis.Client
	IdempTTL   time.Duration
	StorageDir string
	Log        *zap.Logger
}

// Register mounts every route on e.
func Register(e *echo.Echo, h Handlers, cfg RouterConfig) {
	auth := middleware.Auth(cfg.Sessions)
	idem := middleware.Idempotency(cfg.Redis, cfg.IdempTTL, cfg.Log)

	e.GET("/health", h.Health.Health)
	if cfg.StorageDir != "" {
		e.Static("/storage", cfg.StorageDir)
	}

	a := e.Group("/auth")
	a.POST("/signup", h.Auth.SignUp)
	a.POST("/login", h.Auth.SignIn)
	a.POST("/refresh", h.Auth.Refresh, auth)
	a.POST("/logout", h.Auth.SignOut, auth)
	a.GET("/me", h.Auth.Me, auth)

	d := e.Group("/dashboard/donor", auth, middleware.RequireRole(user.RoleDonor))
	d.GET("", h.Dashboard.Donor)
	d.GET("/offers", h.Dashboard.DonorOffers)
	d.GET("/impact", h.Dashboard.DonorImpact)
	d.POST("/offers", h.Offers.Create, idem)
	d.POST("/offers/:offer_id/cancel", h.Offers.Cancel)
	d.DELETE("/offers/:offer_id", h.Offers.Delete)
	d.GET("/profile", h.Profiles.Get)
	d.PUT("/profile", h.Profiles.SaveDonor)

	p := e.Group("/dashboard/partner", auth, middleware.RequireRole(user.RolePartner))
	p.GET("/pending", h.Dashboard.PartnerStatus(user.ApprovalPending))
	p.GET("/rejected", h.Dashboard.PartnerStatus(user.ApprovalRejected))
	p.GET("/profile", h.Profiles.Get)
	p.PUT("/profile", h.Profiles.SavePartner)

	gated := p.Group("", middleware.PartnerGate())
	gated.GET("", h.Dashboard.Partner)
	gated.GET("/browse", h.Offers.Browse)
	gated.GET("/offers/:offer_id", h.Offers.Get)
	gated.POST("/offers/:offer_id/accept", h.Offers.Accept, idem)
	gated.GET("/pickups", h.Dashboard.PartnerPickups)
	gated.POST("/pickups/:assignment_id/start", h.Offers.StartPickup, idem)
	gated.POST("/pickups/:assignment_id/complete", h.Offers.Complete, idem)
	gated.POST("/pickups/:assignment_id/cancel", h.Offers.CancelPickup, idem)

	ad := e.Group("/dashboard/admin", auth, middleware.RequireRole(user.RoleAdmin))
	ad.GET("", h.Dashboard.Admin)
	ad.GET("/applications", h.Admin.Applications)
	ad.POST("/applications/:user_id/approve", h.Admin.Approve)
	ad.POST("/applications/:user_id/reject", h.Admin.Reject)
	ad.GET("/users", h.Admin.Users)
	ad.POST("/users/:user_id/ban", h.Admin.Ban)
	ad.POST("/users/:user_id/unban", h.Admin.Unban)
	ad.POST("/users/:user_id/role", h.Admin.ChangeRole)
	ad.GET("/offers", h.Dashboard.AdminOffers)
	ad.DELETE("/offers/:offer_id", h.Offers.Delete)
}
