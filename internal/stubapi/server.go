// Package stubapi is an in-memory stand-in for the CampHub notification
// endpoints. It backs the client tests and `camphub stub-server`.
package stubapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/camphub/internal/auth"
	"github.com/nhle/camphub/internal/model"
)

// Server holds notifications for every user in memory.
type Server struct {
	jwt    *auth.Manager
	logger *zap.Logger

	mu            sync.Mutex
	notifications map[string]model.Notification
	failRead      map[string]bool
	readCalls     int
}

// New creates a Server that authenticates requests with m.
func New(m *auth.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		jwt:           m,
		logger:        logger,
		notifications: make(map[string]model.Notification),
		failRead:      make(map[string]bool),
	}
}

// Router builds the gin engine serving the notification endpoints.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/notifications", s.authMiddleware())
	api.GET("/mine", s.listMine)
	api.POST("/:id/read", s.markRead)
	api.DELETE("/:id", s.deleteNotification)
	api.POST("", s.adminOnly(), s.createNotification)

	return r
}

// Seed stores notifications as-is, assigning ids and timestamps where empty.
func (s *Server) Seed(list ...model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range list {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now().UTC()
		}
		s.notifications[n.ID] = n
	}
}

// FailRead makes mark-read on the given ids answer 500.
func (s *Server) FailRead(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		s.failRead[id] = true
	}
}

// Get returns the stored notification with the given id.
func (s *Server) Get(id string) (model.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	return n, ok
}

// ReadCalls returns how many mark-read requests reached the server.
func (s *Server) ReadCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readCalls
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required",
			})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			return
		}

		claims, err := s.jwt.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set("user_id", claims.Principal())
		c.Set("is_admin", claims.IsAdmin())
		c.Next()
	}
}

func (s *Server) adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_admin") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("stub request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) listMine(c *gin.Context) {
	userID := c.GetString("user_id")

	s.mu.Lock()
	list := make([]model.Notification, 0)
	for _, n := range s.notifications {
		if n.RecipientID == userID {
			list = append(list, n)
		}
	}
	s.mu.Unlock()

	model.SortNewestFirst(list)
	c.JSON(http.StatusOK, list)
}

func (s *Server) markRead(c *gin.Context) {
	id := c.Param("id")
	userID := c.GetString("user_id")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.readCalls++
	n, ok := s.notifications[id]
	if !ok || n.RecipientID != userID {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Notification not found or access denied",
		})
		return
	}
	if s.failRead[id] {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error marking notification as read",
		})
		return
	}

	n.IsRead = true
	s.notifications[id] = n
	c.JSON(http.StatusOK, gin.H{
		"message": "Notification marked as read",
	})
}

func (s *Server) deleteNotification(c *gin.Context) {
	id := c.Param("id")
	userID := c.GetString("user_id")

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.RecipientID != userID {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Notification not found or access denied",
		})
		return
	}

	delete(s.notifications, id)
	c.Status(http.StatusNoContent)
}

// createRequest is the body of the admin-only create endpoint.
type createRequest struct {
	RecipientID   string                 `json:"recipientId" binding:"required"`
	Type          model.NotificationType `json:"type" binding:"required"`
	ReferenceType model.ReferenceType    `json:"referenceType"`
	ReferenceID   string                 `json:"referenceId"`
	Title         string                 `json:"title" binding:"required,max=200"`
	Content       string                 `json:"content" binding:"max=2000"`
}

func (s *Server) createNotification(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	n := model.Notification{
		ID:            uuid.NewString(),
		RecipientID:   req.RecipientID,
		SenderID:      c.GetString("user_id"),
		Type:          req.Type,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Title:         req.Title,
		Content:       req.Content,
		CreatedAt:     time.Now().UTC(),
	}
	s.Seed(n)

	c.JSON(http.StatusCreated, n)
}
