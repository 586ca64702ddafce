package schedule

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
	courses := r.Group("/courses")
	courses.Use(middleware.AuthMiddleware())
	{
		courses.GET("/:id/occurrences/:date", middleware.RBACAuthorize(rbacService, "schedule", "read"), handler.GetOccurrence)
		courses.GET("/:id/occurrences", middleware.RBACAuthorize(rbacService, "schedule", "read"), handler.GenerateOccurrences)
		courses.POST("/:id/exceptions", middleware.RBACAuthorize(rbacService, "schedule", "manage"), handler.CreateException)
	}

	exceptions := r.Group("/exceptions")
	exceptions.Use(middleware.AuthMiddleware())
	{
		exceptions.DELETE("/:id", middleware.RBACAuthorize(rbacService, "schedule", "manage"), handler.DeleteException)
	}
}
