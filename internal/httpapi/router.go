package httpapi

import (
	"net/http"

	"promo-eventserver/pkg/config"
	"promo-eventserver/pkg/health"
	"promo-eventserver/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("httpapi",
	fx.Provide(NewHandler),
	fx.Provide(NewRouter),
)

type RouterParams struct {
	fx.In
	Config  *config.Config
	Health  health.HealthService
	Handler *Handler
}

// NewRouter assembles the gin engine exposed by the HTTP server. The gateway
// in front of this service authenticates callers and forwards identity as
// the X-User-Id and X-User-Role headers.
func NewRouter(p RouterParams) http.Handler {
	if p.Config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Error())

	r.GET("/healthz", p.Health.Liveness)
	r.GET("/readyz", p.Health.Readiness)

	v1 := r.Group("/v1", identity(), requireUser())
	{
		v1.GET("/items", p.Handler.ListItems)

		v1.GET("/events", p.Handler.ListUserEvents)
		v1.GET("/events/:event_id", p.Handler.GetUserEvent)
		v1.POST("/events/:event_id/accept", p.Handler.AcceptEvent)
		v1.POST("/events/:event_id/refresh", p.Handler.RefreshEvent)
		v1.POST("/events/:event_id/rewards/:reward_key/claim", p.Handler.ClaimReward)

		v1.GET("/points", p.Handler.GetPoints)
		v1.GET("/points/history", p.Handler.GetPointHistory)
		v1.GET("/inventory", p.Handler.GetInventory)
		v1.GET("/data", p.Handler.GetUserData)
	}

	admin := r.Group("/admin/v1", identity(), requireAdmin())
	{
		admin.POST("/events", p.Handler.CreateEvent)
		admin.GET("/events", p.Handler.ListEvents)
		admin.GET("/events/:event_id", p.Handler.GetEvent)
		admin.PUT("/events/:event_id/enabled", p.Handler.SetEventEnabled)

		admin.PUT("/users/:user_id/data", p.Handler.SetUserData)
		admin.GET("/reward-logs", p.Handler.ListRewardLogs)
		admin.GET("/users/:user_id/reward-logs", p.Handler.ListUserRewardLogs)
	}

	return r
}
