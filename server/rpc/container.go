package rpc

import (
	"github.com/asaskevich/EventBus"
	"github.com/go-chi/chi/v5"

	"github.com/vidextract/vidextract/server/config"
	middlewares "github.com/vidextract/vidextract/server/middleware"
	"github.com/vidextract/vidextract/server/openid"
)

func ApplyRouter(bus EventBus.Bus) func(chi.Router) {
	return func(r chi.Router) {
		if config.Instance().Authentication.RequireAuth {
			r.Use(middlewares.Authenticated)
		}
		if config.Instance().OpenId.UseOpenId {
			r.Use(openid.Middleware)
		}
		r.Get("/ws", Stream(bus))
	}
}
