package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authservice "github.com/zixuanzhao/chat-relay/internal/auth"
	authHandler "github.com/zixuanzhao/chat-relay/internal/handler/auth"
	chatHandler "github.com/zixuanzhao/chat-relay/internal/handler/chat"
	"github.com/zixuanzhao/chat-relay/internal/handler/ws"
	middlewarePkg "github.com/zixuanzhao/chat-relay/internal/middleware"
	chatservice "github.com/zixuanzhao/chat-relay/internal/service/chat"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(authSvc *authservice.Service, chatSvc *chatservice.Service, registry *ws.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	credentials := authHandler.New(authSvc)
	history := chatHandler.New(chatSvc)
	relay := ws.New(registry, authSvc, chatSvc)

	r.Route("/api", func(api chi.Router) {
		credentials.RegisterRoutes(api)

		api.Group(func(protected chi.Router) {
			protected.Use(middlewarePkg.RequireAuth(authSvc))
			history.RegisterRoutes(protected)
		})

		relay.RegisterRoutes(api)
	})

	return r
}
