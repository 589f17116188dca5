package http

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vardhanngg/socket-v/internal/adapters/media"
	"github.com/vardhanngg/socket-v/internal/adapters/signal"
	"github.com/vardhanngg/socket-v/internal/app/orch"
	"github.com/vardhanngg/socket-v/internal/config"
)

const sessionCookie = "socketv"

// Deps are the services the HTTP surface talks to.
type Deps struct {
	Orch    *orch.Orchestrator
	Store   media.Store
	Limiter *signal.RateLimiter
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		token, _ := s.Get(signal.ClientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			s.Set(signal.ClientTokenKey, token)
			if err := s.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save client token")
			}
		}
		c.Set(signal.ClientTokenKey, token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionCookie, store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(cfg.StaticPath, "index.html"))
	})
	if local, ok := deps.Store.(*media.LocalStore); ok {
		r.Static(local.PublicPath, local.Dir)
	}

	r.GET("/health", healthHandler(deps.Orch))

	uploads := &uploadHandler{store: deps.Store, maxSize: cfg.Media.MaxSize, limiter: deps.Limiter}
	r.POST("/upload", uploads.handle)

	api := r.Group("/api")
	api.GET("/sessions", listSessions(deps.Orch))
	api.GET("/sessions/:code", getSession(deps.Orch))

	ctrl := signal.NewSignalWSController(deps.Orch, deps.Limiter, signal.Options{
		ReadLimit:      cfg.ReadLimit,
		PingPeriod:     cfg.PingPeriod,
		SendBuffer:     cfg.SendBuffer,
		AllowedOrigins: cfg.AllowedOrigins(),
	})
	r.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Strs("origins", cfg.AllowedOrigins()).Msg("router setup")
	return r
}

// Handler is the router behind the CORS allow-list.
func Handler(ctx context.Context, cfg *config.Config, deps Deps) http.Handler {
	return cors.Handler(corsOptions(cfg.AllowedOrigins()))(SetupRouter(ctx, cfg, deps))
}

// corsOptions maps a "*" allow-list to echoing the request origin.
// Credentialed responses never carry a literal "*".
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	for _, o := range origins {
		if o == "*" {
			opts.AllowedOrigins = nil
			opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
			break
		}
	}
	return opts
}
