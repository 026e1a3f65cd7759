package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"tutorlink/internal/domain/user"
	"tutorlink/internal/handler/api"
	"tutorlink/internal/handler/middleware"
	"tutorlink/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type RouterParams struct {
	fx.In

	Engine         *gin.Engine
	Config         config.Config
	Logger         *slog.Logger
	AuthMiddleware *middleware.AuthMiddleware
	Auth           *api.AuthHandler
	Booking        *api.BookingHandler
	Review         *api.ReviewHandler
	Chat           *api.ChatHandler
}

func NewRouter(p RouterParams) {
	setupMiddleware(p.Engine, p.Config, p.Logger)
	setupRoutes(p)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(logger))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(p RouterParams) {
	engine, authMw := p.Engine, p.AuthMiddleware
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	tutorOnly := []gin.HandlerFunc{authMw.RequireRole(user.RoleTutor)}
	studentOnly := []gin.HandlerFunc{authMw.RequireRole(user.RoleStudent)}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/register", Handler: p.Auth.Register},
				{Method: http.MethodPost, Path: "/login", Handler: p.Auth.Login},
				{Method: http.MethodPost, Path: "/refresh", Handler: p.Auth.Refresh},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMw.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: p.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: p.Auth.Me},
			})
		}

		bookings := apiGroup.Group("/booking")
		bookings.Use(authMw.RequireAuth())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "/availability", Handler: p.Booking.CreateAvailability, Mw: tutorOnly},
				{Method: http.MethodGet, Path: "/availability", Handler: p.Booking.ListAvailability, Mw: tutorOnly},
				{Method: http.MethodPatch, Path: "/availability/:id", Handler: p.Booking.UpdateAvailability, Mw: tutorOnly},
				{Method: http.MethodPatch, Path: "/availability/:id/cancel", Handler: p.Booking.CancelAsTutor, Mw: tutorOnly},
				{Method: http.MethodDelete, Path: "/availability/:id", Handler: p.Booking.DeleteAvailability, Mw: tutorOnly},

				{Method: http.MethodGet, Path: "/open", Handler: p.Booking.ListOpen},

				{Method: http.MethodGet, Path: "/", Handler: p.Booking.ListMine, Mw: studentOnly},
				{Method: http.MethodGet, Path: "/:id", Handler: p.Booking.Get, Mw: studentOnly},
				{Method: http.MethodPost, Path: "/:id", Handler: p.Booking.Claim, Mw: studentOnly},
				{Method: http.MethodPatch, Path: "/:id", Handler: p.Booking.UpdateAsStudent, Mw: studentOnly},
				{Method: http.MethodPatch, Path: "/:id/cancel", Handler: p.Booking.CancelAsStudent, Mw: studentOnly},
			})
		}

		sessions := apiGroup.Group("/sessions")
		sessions.Use(authMw.RequireAuth())
		{
			addRoutes(sessions, []route{
				{Method: http.MethodPost, Path: "/:id/start", Handler: p.Booking.StartSession, Mw: tutorOnly},
				{Method: http.MethodPost, Path: "/:id/end", Handler: p.Booking.EndSession, Mw: tutorOnly},
			})
		}

		chat := apiGroup.Group("/chat")
		chat.Use(authMw.RequireAuth())
		addRoutes(chat, []route{
			{Method: http.MethodGet, Path: "/token", Handler: p.Chat.Token},
		})

		reviews := apiGroup.Group("/reviews")
		reviews.Use(authMw.RequireAuth())
		addRoutes(reviews, []route{
			{Method: http.MethodPost, Path: "", Handler: p.Review.Create, Mw: studentOnly},
		})

		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/tutors/:id/reviews", Handler: p.Review.ListByTutor},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
