package course

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
		courses.GET("", middleware.RBACAuthorize(rbacService, "course", "read"), handler.GetAll)
		courses.GET("/:id", middleware.RBACAuthorize(rbacService, "course", "read"), handler.GetById)
		courses.POST("", middleware.RBACAuthorize(rbacService, "course", "create"), handler.Create)
		courses.POST("/:id/enrollments", middleware.RBACAuthorize(rbacService, "course", "enroll"), handler.Enroll)
	}
}
