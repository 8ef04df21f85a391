// Package httpserver exposes the course marketplace HTTP API.
package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/coursemart/internal/errs"
	"github.com/and161185/coursemart/internal/model"
	"github.com/and161185/coursemart/internal/service"
)

const msgInternal = "internal"

// Server wires services into gin handlers.
type Server struct {
	auth    service.AuthService
	courses service.CourseService
	tokens  TokenVerifier
	log     *zap.Logger
}

// New constructs an HTTP server with injected services.
func New(auth service.AuthService, courses service.CourseService, tokens TokenVerifier, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{auth: auth, courses: courses, tokens: tokens, log: log}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := s.engine()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	admin := r.Group("/admin")
	admin.POST("/signup", s.signup(model.RoleAdmin))
	admin.POST("/login", s.login(model.RoleAdmin))

	adminCourses := admin.Group("/courses", RequireRole(s.tokens, model.RoleAdmin, s.log))
	adminCourses.POST("", s.createCourse)
	adminCourses.PUT("/:courseId", s.updateCourse)
	adminCourses.GET("", s.listAllCourses)

	users := r.Group("/users")
	users.POST("/signup", s.signup(model.RoleUser))
	users.POST("/login", s.login(model.RoleUser))

	authed := users.Group("", RequireRole(s.tokens, model.RoleUser, s.log))
	authed.GET("/courses", s.listPublishedCourses)
	authed.POST("/courses/:courseId", s.purchaseCourse)
	authed.GET("/purchasedCourses", s.listPurchasedCourses)

	return r
}

// engine returns a bare gin engine with the shared middleware chain.
func (s *Server) engine() *gin.Engine {
	r := gin.New()
	// logging wraps recovery so panics still get an access line
	r.Use(LoggingMiddleware(s.log), RecoverMiddleware(s.log))
	return r
}

// --- Auth ---

func (s *Server) signup(role model.Role) gin.HandlerFunc {
	register, msg := s.auth.RegisterUser, "User created successfully"
	if role == model.RoleAdmin {
		register, msg = s.auth.RegisterAdmin, "Admin created successfully"
	}
	return func(c *gin.Context) {
		var in service.Credentials
		if err := c.ShouldBindJSON(&in); err != nil {
			s.fail(c, errs.ErrValidation)
			return
		}
		tok, err := register(c.Request.Context(), in)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": msg, "token": tok.AccessToken})
	}
}

func (s *Server) login(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in service.Credentials
		if err := c.ShouldBindJSON(&in); err != nil {
			s.fail(c, errs.ErrValidation)
			return
		}
		tok, err := s.auth.LoginWithIP(c.Request.Context(), role, in, c.ClientIP())
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged in successfully", "token": tok.AccessToken})
	}
}

// --- Admin catalog ---

func (s *Server) createCourse(c *gin.Context) {
	var in service.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, errs.ErrValidation)
		return
	}
	id, err := s.courses.Create(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Course created successfully", "courseId": id})
}

func (s *Server) updateCourse(c *gin.Context) {
	var in service.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, errs.ErrValidation)
		return
	}
	// malformed ids pass as Nil so the body is still validated first
	id := courseID(c)
	if err := s.courses.Update(c.Request.Context(), id, in); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course updated successfully"})
}

func (s *Server) listAllCourses(c *gin.Context) {
	list, err := s.courses.ListAll(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// --- User catalog ---

func (s *Server) listPublishedCourses(c *gin.Context) {
	list, err := s.courses.ListPublished(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) purchaseCourse(c *gin.Context) {
	id := courseID(c)
	if id == uuid.Nil {
		s.fail(c, errs.ErrNotFound)
		return
	}
	username, _ := UsernameFromCtx(c.Request.Context())
	if err := s.courses.Purchase(c.Request.Context(), id, username); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course purchased successfully"})
}

func (s *Server) listPurchasedCourses(c *gin.Context) {
	username, _ := UsernameFromCtx(c.Request.Context())
	list, err := s.courses.ListPurchased(c.Request.Context(), username)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchasedCourses": list})
}

func courseID(c *gin.Context) uuid.UUID {
	id, err := uuid.FromString(c.Param("courseId"))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// fail maps domain errors to HTTP statuses and a short message.
func (s *Server) fail(c *gin.Context, err error) {
	status, msg := statusOf(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, "Bad Request"
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusBadRequest, "Username taken"
	case errors.Is(err, errs.ErrDuplicateTitle):
		return http.StatusBadRequest, "Course title exists"
	case errors.Is(err, errs.ErrAlreadyPurchased):
		return http.StatusBadRequest, "Course already purchased"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many login attempts"
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
