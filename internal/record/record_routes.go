package record

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
	records := r.Group("/records")
	records.Use(middleware.AuthMiddleware())
	{
		records.GET("", middleware.RBACAuthorize(rbacService, "record", "read"), handler.List)
		records.GET("/:id", middleware.RBACAuthorize(rbacService, "record", "read"), handler.GetById)
		records.PUT("", middleware.RBACAuthorize(rbacService, "record", "write"), handler.Upsert)
		records.POST("/bulk", middleware.RBACAuthorize(rbacService, "record", "write"), handler.BulkUpsert)
	}

	courses := r.Group("/courses")
	courses.Use(middleware.AuthMiddleware())
	{
		courses.GET("/:id/attendance-summary", middleware.RBACAuthorize(rbacService, "record", "read"), handler.Summary)
	}
}
