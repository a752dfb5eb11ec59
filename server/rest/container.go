package rest

import (
	"github.com/go-chi/chi/v5"
	middlewares "github.com/vidextract/vidextract/server/middleware"
)

func ApplyRouter(args *ContainerArgs) func(chi.Router) {
	var (
		service = ProvideService(args)
		handler = ProvideHandler(service)
	)

	return func(r chi.Router) {
		r.Use(middlewares.ApplyAuthenticationByConfig)

		r.Post("/download", handler.Exec)
		r.Delete("/download", handler.Cancel)
		r.Get("/download/status", handler.Status)

		r.Post("/probe", handler.Probe)
		r.Get("/thumbnail", handler.Thumbnail)

		r.Get("/settings", handler.GetSettings)
		r.Patch("/settings", handler.PatchSettings)

		r.Get("/ffmpeg", handler.FFmpegStatus)
		r.Post("/ffmpeg", handler.InstallFFmpeg)

		r.Post("/updater", handler.UpdateDownloader)
		r.Get("/archive", handler.Archived)
	}
}
