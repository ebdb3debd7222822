package api

import (
	"log/slog"
	"net/http"

	"github.com/starford/chroniclelens/internal/sse"
)

// Effects handles GET /api/effects.
//
// The connection becomes the single active effect observer. Each effect is
// written once as an SSE frame whose event name is the effect kind. A newer
// connection takes over and this stream ends.
//
//	@Summary		Stream one-shot effects
//	@Tags			effects
//	@Produce		text/event-stream
//	@Success		200	"Event stream"
//	@Router			/effects [get]
func (h *Handler) Effects(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sse.WriteHeaders(w)
	flusher.Flush()

	ch, detach := h.store.Observe()
	defer detach()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			frame, err := sse.Frame(sse.Event{ID: e.ID, Type: string(e.Kind), Data: e})
			if err != nil {
				slog.Error("effect encode failed", slog.String("error", err.Error()))
				continue
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
