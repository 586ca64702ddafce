package checkin

import (
	"github.com/gin-gonic/gin"

	"github.com/sengwoong/lecture-server/internal/middleware"
	"github.com/sengwoong/lecture-server/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	idempotency gin.HandlerFunc,
) {
	courses := r.Group("/courses")
	courses.Use(middleware.AuthMiddleware())
	{
		courses.POST("/:id/checkin-tokens", middleware.RBACAuthorize(rbacService, "checkin", "issue"), handler.Issue)
	}

	checkins := r.Group("/checkins")
	checkins.Use(middleware.AuthMiddleware())
	{
		checkins.POST("", middleware.RBACAuthorize(rbacService, "checkin", "redeem"), idempotency, handler.Redeem)
	}
}
