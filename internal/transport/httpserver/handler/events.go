package handler

import (
	"fmt"
	"net/http"
)

// Events streams catalog change notifications as server-sent events. The
// stream lives until the client disconnects or the bus shuts down; a slow
// consumer that lets its buffer fill simply misses events rather than
// stalling publishers.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	sub := h.bus.Subscribe()
	defer h.bus.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-sub.C:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg.Serialize())
			flusher.Flush()
		}
	}
}
