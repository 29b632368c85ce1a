// Package router wires the HTTP surface: every endpoint, its
// middleware chain and its role restrictions, in one place.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ozgekaya/student-info-api/internal/handler"
	"github.com/ozgekaya/student-info-api/internal/middleware"
	"github.com/ozgekaya/student-info-api/internal/model"
)

// Handlers collects the handler groups the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Students *handler.StudentHandler
	Teachers *handler.TeacherHandler
	Courses  *handler.CourseHandler
}

// Register mounts all routes on e. jwtSecret feeds the auth middleware
// on the protected groups; the liveness endpoints stay open.
func Register(e *echo.Echo, h Handlers, jwtSecret string) {
	e.GET("/", handler.Root)
	e.GET("/health", handler.Health)

	api := e.Group("/api")
	authed := middleware.JWTAuth(jwtSecret)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// Identity
	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/logout", h.Auth.Logout, authed)
	authGroup.GET("/me", h.Auth.Me, authed)

	// Accounts
	users := api.Group("/users", authed)
	users.GET("", h.Users.List, adminOnly)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id", h.Users.Update)
	users.DELETE("/:id", h.Users.Delete, adminOnly)

	// Student profiles
	students := api.Group("/students", authed)
	students.POST("", h.Students.Create, adminOnly)
	students.GET("", h.Students.List)
	students.GET("/by-department/:department", h.Students.ByDepartment)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete, adminOnly)

	// Teacher profiles
	teachers := api.Group("/teachers", authed)
	teachers.POST("", h.Teachers.Create, adminOnly)
	teachers.GET("", h.Teachers.List)
	teachers.GET("/by-department/:department", h.Teachers.ByDepartment)
	teachers.GET("/by-title/:title", h.Teachers.ByTitle)
	teachers.GET("/:id", h.Teachers.Get)
	teachers.PUT("/:id", h.Teachers.Update)
	teachers.DELETE("/:id", h.Teachers.Delete, adminOnly)

	// Courses and enrollment
	courses := api.Group("/courses", authed)
	courses.GET("", h.Courses.List)
	courses.POST("", h.Courses.Create, middleware.RequireRole(model.RoleTeacher, model.RoleAdmin))
	courses.GET("/:id", h.Courses.Get)
	courses.PUT("/:id", h.Courses.Update, middleware.RequireRole(model.RoleTeacher, model.RoleAdmin))
	courses.DELETE("/:id", h.Courses.Delete, adminOnly)
	courses.POST("/:id/enroll", h.Courses.Enroll)
	courses.DELETE("/:id/enroll/:studentId", h.Courses.Unenroll)
}
