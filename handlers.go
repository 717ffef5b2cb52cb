package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prodapi/models"
	"prodapi/pkg/session"
)

var (
	cfg      *Config
	logger   *zap.Logger
	registry *session.Registry
	issuer   *session.Issuer
	resolver *session.Resolver
	users    session.UserSource
)

// setupAuth wires the session components. The registry is built here once
// and handed to the issuer and resolver; nothing else holds it.
func setupAuth(c *Config, source session.UserSource) {
	registry = session.NewRegistry()
	issuer = session.NewIssuer([]byte(c.Auth.Secret), c.tokenTTL(), registry)
	resolver = session.NewResolver(registry, issuer, source)
	users = source
}

func setupRoutes(r *gin.Engine) {
	r.Use(cors.Default())
	r.GET("/", rootHandler)
	r.GET("/healthz", healthHandler)

	api := r.Group("/api/v1")
	api.POST("/auth/login", loginHandler)

	protected := api.Group("")
	protected.Use(authMiddleware())
	protected.POST("/auth/logout", logoutHandler)
	protected.GET("/auth/me", meHandler)

	protected.GET("/users", listUsersHandler)
	protected.GET("/users/:id", getUserHandler)
	protected.POST("/users", createUserHandler)
	protected.PUT("/users/:id", updateUserHandler)
	protected.DELETE("/users/:id", deleteUserHandler)

	protected.GET("/roles", listRolesHandler)
	protected.GET("/roles/:id", getRoleHandler)
	protected.POST("/roles", createRoleHandler)
	protected.PUT("/roles/:id", updateRoleHandler)
	protected.DELETE("/roles/:id", deleteRoleHandler)

	protected.GET("/categories", listCategoriesHandler)
	protected.POST("/categories", createCategoryHandler)

	protected.GET("/products", listProductsHandler)
	protected.GET("/products/:id", getProductHandler)
	protected.POST("/products", createProductHandler)
	protected.PUT("/products/:id", updateProductHandler)
	protected.DELETE("/products/:id", deleteProductHandler)

	protected.GET("/books", listBooksHandler)
	protected.GET("/books/:id", getBookHandler)
	protected.POST("/books", createBookHandler)
	protected.PUT("/books/:id", updateBookHandler)
	protected.DELETE("/books/:id", deleteBookHandler)
}

// abortAuthError is the single error-kind to HTTP-status table for the auth
// taxonomy. Unauthorized and bad credentials are indistinguishable on the
// wire; inactive accounts are a business-state signal, not a security one.
func abortAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidCredentials), errors.Is(err, session.ErrUnauthorized):
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
	case errors.Is(err, session.ErrInactiveAccount):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "inactive user"})
	default:
		logger.Error("auth internal error", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// authMiddleware gates every protected route: bearer extraction, identity
// resolution and the active-account check.
func authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortAuthError(c, session.ErrUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		user, err := resolver.Resolve(c.Request.Context(), tokenString)
		if err != nil {
			abortAuthError(c, err)
			return
		}
		if err := session.RequireActive(user); err != nil {
			abortAuthError(c, err)
			return
		}
		c.Set("user", user)
		c.Set("token", tokenString)
		c.Next()
	}
}

// currentUser fetches the user stored by authMiddleware.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet("user").(*models.User)
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := session.VerifyCredentials(c.Request.Context(), users, req.Username, req.Password)
	if err != nil {
		abortAuthError(c, err)
		return
	}
	token, err := issuer.Issue(user.Username)
	if err != nil {
		logger.Error("token issuance failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "token_type": "bearer"})
}

// logoutHandler revokes exactly the token the request presented.
func logoutHandler(c *gin.Context) {
	token := c.MustGet("token").(string)
	registry.Revoke(token)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to " + cfg.App.Name,
		"version": cfg.App.Version,
	})
}

func healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if db != nil {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
	}
	if mongoClient != nil {
		if err := mongoClient.Ping(ctx, nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongodb": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": cfg.App.Name, "version": cfg.App.Version})
}

// pagination reads skip/limit query params, clamping limit to 1..100.
func pagination(c *gin.Context) (skip, limit int) {
	skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	if skip < 0 {
		skip = 0
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return skip, limit
}
