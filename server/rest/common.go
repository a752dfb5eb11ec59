package rest

import (
	"github.com/vidextract/vidextract/server/internal/archive"
	"github.com/vidextract/vidextract/server/internal/orchestrator"
	"github.com/vidextract/vidextract/server/settings"
)

type ContainerArgs struct {
	Orchestrator *orchestrator.Orchestrator
	Settings     *settings.Store
	Archive      *archive.Store
}
