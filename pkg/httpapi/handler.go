package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/auth"
	"github.com/bookclub/roster-admin/pkg/db"
)

// Store is every record-store operation the API serves
type Store interface {
	db.ParticipantStore
	db.MeetingStore
	db.LeaderStore
	db.AdministratorStore
	db.AuthUserStore
}

// SignInProvider runs the browser OAuth flow
type SignInProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
}

// HealthCheck reports whether one dependency is reachable
type HealthCheck func(ctx context.Context) bool

// Config holds the HTTP-facing settings
type Config struct {
	PublicBaseURL   string
	DefaultPageSize int
	SecureCookies   bool
}

// Handler serves the roster API
type Handler struct {
	store    Store
	sessions *auth.Manager
	signIn   SignInProvider
	metrics  *Metrics
	logger   *zap.Logger
	cfg      Config
	health   map[string]HealthCheck
	now      func() time.Time
}

func New(store Store, sessions *auth.Manager, signIn SignInProvider, metrics *Metrics, logger *zap.Logger, cfg Config) *Handler {
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Handler{
		store:    store,
		sessions: sessions,
		signIn:   signIn,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		health:   make(map[string]HealthCheck),
		now:      time.Now,
	}
}

// AddHealthCheck includes a dependency in /healthz
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.health[name] = check
}

// Routes builds the gin engine with every route registered
func (h *Handler) Routes() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(requestLogger(h.logger, "/healthz", "/metrics"))
	r.Use(h.metrics.Middleware())
	r.Use(corsMiddleware(h.cfg.PublicBaseURL))
	r.Use(securityHeaders())

	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	r.GET("/healthz", h.healthz)

	r.POST("/api/auth/role", h.resolveRole)
	r.GET("/auth/login", h.login)
	r.GET("/auth/callback", h.callback)

	authed := r.Group("", auth.RequireSession(h.sessions), h.requireViewer())
	authed.POST("/auth/logout", h.logout)
	authed.GET("/auth/session", h.session)
	authed.GET("/auth/events", h.events)
	authed.GET("/api/participants", h.searchParticipants)
	authed.GET("/api/meetings", h.listMeetings)
	authed.GET("/api/leaders/me", h.currentLeader)

	admin := authed.Group("/api", requireAdmin())
	admin.POST("/participants", h.createParticipant)
	admin.GET("/participants/export", h.exportParticipants)
	admin.POST("/participants/import", h.importParticipants)
	admin.GET("/participants/:id", h.getParticipant)
	admin.PATCH("/participants/:id", h.updateParticipant)
	admin.DELETE("/participants/:id", h.deleteParticipant)

	admin.POST("/meetings", h.createMeeting)
	admin.PATCH("/meetings/:id", h.updateMeeting)
	admin.DELETE("/meetings/:id", h.deleteMeeting)

	admin.GET("/leaders", h.listLeaders)
	admin.POST("/leaders", h.createLeader)
	admin.PATCH("/leaders/:id", h.updateLeader)
	admin.DELETE("/leaders/:id", h.deleteLeader)

	return r
}

func (h *Handler) healthz(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	for name, check := range h.health {
		healthy := check(c.Request.Context())
		body[name] = healthy
		if !healthy {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}
