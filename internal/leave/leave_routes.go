package leave

import (
	"github.com/gin-gonic/gin"

	"github.com/sengwoong/lecture-server/internal/middleware"
	"github.com/sengwoong/lecture-server/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	leaves := r.Group("/leave-requests")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("", middleware.RBACAuthorize(rbacService, "leave", "file"), handler.File)
		leaves.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetMine)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetById)
		leaves.PATCH("/:id", middleware.RBACAuthorize(rbacService, "leave", "file"), handler.Edit)
		leaves.POST("/:id/decision", middleware.RBACAuthorize(rbacService, "leave", "decide"), handler.Decide)
		leaves.DELETE("/:id", middleware.RBACAuthorize(rbacService, "leave", "file"), handler.Withdraw)
	}
}
