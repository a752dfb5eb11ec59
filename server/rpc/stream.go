// Package rpc streams worker events to connected UI clients over a
// websocket. Every orchestrator topic is forwarded as a tagged
// envelope so one socket carries download and installer traffic alike.
package rpc

import (
	"log/slog"
	"net/http"

	"github.com/asaskevich/EventBus"
	"github.com/gorilla/websocket"

	"github.com/vidextract/vidextract/server/internal/downloaders"
	"github.com/vidextract/vidextract/server/internal/ffmpeg"
	"github.com/vidextract/vidextract/server/internal/orchestrator"
	"github.com/vidextract/vidextract/server/internal/progress"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Envelope tags every streamed event with its topic so the client can
// demultiplex without guessing at payload shapes.
type Envelope struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// Stream upgrades the request and forwards bus events until the client
// disconnects. A slow client drops events rather than stalling the
// workers.
func Stream(bus EventBus.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", slog.Any("err", err))
			return
		}
		defer conn.Close()

		out := make(chan Envelope, 64)

		push := func(topic string) func(any) {
			return func(payload any) {
				select {
				case out <- Envelope{Topic: topic, Payload: payload}:
				default:
				}
			}
		}

		var (
			onProgress = func(n progress.Normalized) { push(orchestrator.TopicDownloadProgress)(n) }
			onOutcome  = func(o downloaders.Outcome) { push(orchestrator.TopicDownloadOutcome)(o) }
			onInstall  = func(p ffmpeg.InstallProgress) { push(orchestrator.TopicInstallProgress)(p) }
			onResult   = func(r ffmpeg.InstallResult) { push(orchestrator.TopicInstallResult)(r) }
		)

		bus.Subscribe(orchestrator.TopicDownloadProgress, onProgress)
		bus.Subscribe(orchestrator.TopicDownloadOutcome, onOutcome)
		bus.Subscribe(orchestrator.TopicInstallProgress, onInstall)
		bus.Subscribe(orchestrator.TopicInstallResult, onResult)

		defer func() {
			bus.Unsubscribe(orchestrator.TopicDownloadProgress, onProgress)
			bus.Unsubscribe(orchestrator.TopicDownloadOutcome, onOutcome)
			bus.Unsubscribe(orchestrator.TopicInstallProgress, onInstall)
			bus.Unsubscribe(orchestrator.TopicInstallResult, onResult)
		}()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case env := <-out:
				if err := conn.WriteJSON(env); err != nil {
					slog.Debug("websocket write failed", slog.Any("err", err))
					return
				}
			}
		}
	}
}
