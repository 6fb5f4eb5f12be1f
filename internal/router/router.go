package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/classware/classman-backend/internal/authz"
	"github.com/classware/classman-backend/internal/config"
	"github.com/classware/classman-backend/internal/handler"
	"github.com/classware/classman-backend/internal/middleware"
	"github.com/classware/classman-backend/internal/model"
	"github.com/classware/classman-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Permission *handler.PermissionHandler
	Class      *handler.ClassHandler
	Course     *handler.CourseHandler
	Student    *handler.StudentHandler
	Grade      *handler.GradeHandler
	Post       *handler.PostHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups. Every protected route
// declares its policy as data at registration; the gate validates each
// policy up front, so a malformed declaration is caught the first time the
// route is hit rather than silently allowing traffic.
func SetupRouter(gate *middleware.Gate, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the login route (30 requests per minute per IP).
	loginLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/refresh", handlers.Auth.Refresh)
		auth.GET("/me", gate.Require(authz.Authenticated()), handlers.Auth.Me)
	}

	// ─── 2. Public Announcement Board (Soft Auth) ──────────────────────
	// Anonymous callers see published posts; an authenticated author also
	// sees their own drafts. The board tolerates a minute of staleness.
	posts := router.Group("/api/v1/posts")
	posts.Use(gate.Optional(), middleware.CacheControl(60))
	{
		posts.GET("", handlers.Post.ListPosts)
		posts.GET("/:id", handlers.Post.GetPost)
	}

	// ─── 3. Domain API (JWT + Policy) ──────────────────────────────────
	api := router.Group("/api/v1")
	{
		// Classes
		api.GET("/classes",
			gate.Require(authz.Single(model.PermissionViewClasses)),
			handlers.Class.ListClasses,
		)
		api.GET("/classes/:id",
			gate.Require(authz.Single(model.PermissionViewClasses)),
			handlers.Class.GetClass,
		)
		api.GET("/classes/:id/students",
			gate.Require(authz.AnyOf(model.PermissionViewStudents, model.PermissionManageStudents)),
			handlers.Class.ListClassStudents,
		)
		api.POST("/classes",
			gate.Require(authz.Single(model.PermissionManageClasses)),
			handlers.Class.CreateClass,
		)
		api.PUT("/classes/:id",
			gate.Require(authz.Single(model.PermissionManageClasses)),
			handlers.Class.UpdateClass,
		)
		api.DELETE("/classes/:id",
			gate.Require(authz.Single(model.PermissionManageClasses)),
			handlers.Class.DeleteClass,
		)
		api.GET("/classes/:id/summary",
			gate.Require(authz.Single(model.PermissionViewGrades)),
			handlers.Grade.ClassSummary,
		)

		// Courses
		api.GET("/courses",
			gate.Require(authz.Single(model.PermissionViewCourses)),
			handlers.Course.ListCourses,
		)
		api.GET("/courses/:id",
			gate.Require(authz.Single(model.PermissionViewCourses)),
			handlers.Course.GetCourse,
		)
		api.POST("/courses",
			gate.Require(authz.Single(model.PermissionManageCourses)),
			handlers.Course.CreateCourse,
		)
		api.PUT("/courses/:id",
			gate.Require(authz.Single(model.PermissionManageCourses)),
			handlers.Course.UpdateCourse,
		)
		api.DELETE("/courses/:id",
			gate.Require(authz.Single(model.PermissionManageCourses)),
			handlers.Course.DeleteCourse,
		)

		// Students. Reads accept either student key: managers should not
		// need a separate view grant.
		api.GET("/students",
			gate.Require(authz.AnyOf(model.PermissionViewStudents, model.PermissionManageStudents)),
			handlers.Student.ListStudents,
		)
		api.GET("/students/:id",
			gate.Require(authz.AnyOf(model.PermissionViewStudents, model.PermissionManageStudents)),
			handlers.Student.GetStudent,
		)
		api.POST("/students",
			gate.Require(authz.Single(model.PermissionManageStudents)),
			handlers.Student.CreateStudent,
		)
		api.PUT("/students/:id",
			gate.Require(authz.Single(model.PermissionManageStudents)),
			handlers.Student.UpdateStudent,
		)

		// Grades
		api.POST("/grades",
			gate.Require(authz.Single(model.PermissionInputGrades)),
			handlers.Grade.RecordGrade,
		)
		api.GET("/me/grades",
			gate.Require(authz.Authenticated()),
			handlers.Grade.MyTranscript,
		)
		api.GET("/students/:id/grades",
			gate.Require(authz.Single(model.PermissionViewGrades)),
			handlers.Grade.StudentTranscript,
		)
		api.GET("/courses/:id/grades",
			gate.Require(authz.Single(model.PermissionViewGrades)),
			handlers.Grade.CourseGrades,
		)
		api.GET("/courses/:id/stats",
			gate.Require(authz.Single(model.PermissionViewGrades)),
			handlers.Grade.CourseStats,
		)
		api.GET("/courses/:id/grades/export",
			gate.Require(authz.AllOf(model.PermissionViewGrades, model.PermissionExportGrades)),
			handlers.Grade.ExportCourseGrades,
		)

		// Posts (writes)
		api.POST("/posts",
			gate.Require(authz.Single(model.PermissionManagePosts)),
			handlers.Post.CreatePost,
		)
		api.PUT("/posts/:id",
			gate.Require(authz.Single(model.PermissionManagePosts)),
			handlers.Post.UpdatePost,
		)
		api.POST("/posts/:id/publish",
			gate.Require(authz.Single(model.PermissionManagePosts)),
			handlers.Post.PublishPost,
		)
		api.DELETE("/posts/:id",
			gate.Require(authz.Single(model.PermissionManagePosts)),
			handlers.Post.DeletePost,
		)
	}

	// ─── 4. Admin Group (User Type, Not Grants) ────────────────────────
	// Account and grant administration is keyed to the admin user type so a
	// revoked grant can never lock admins out of grant management itself.
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(gate.Require(authz.UserType(model.UserTypeAdmin)))
	{
		adminAPI.GET("/users", handlers.User.ListUsers)
		adminAPI.POST("/users", handlers.User.CreateUser)
		adminAPI.PUT("/users/:id", handlers.User.UpdateUser)
		adminAPI.POST("/users/:id/disable", handlers.User.DisableUser)
		adminAPI.POST("/users/:id/enable", handlers.User.EnableUser)

		adminAPI.GET("/permissions", handlers.Permission.ListCatalog)
		adminAPI.GET("/users/:id/permissions", handlers.Permission.ListUserGrants)
		adminAPI.POST("/users/:id/permissions", handlers.Permission.GrantPermission)
		adminAPI.DELETE("/grants/:id", handlers.Permission.RevokePermission)
	}

	// ─── 5. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(gate.Require(authz.Authenticated()))
	{
		ws.GET("/posts/stream", handlers.WS.AnnouncementStream)
	}

	return router
}
