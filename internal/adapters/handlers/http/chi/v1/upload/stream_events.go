package upload

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const keepAliveEvery = 15 * time.Second

// StreamEventsV1 streams job snapshots as server-sent events until the job terminates
// or the client goes away
func (h *HandlerV1) StreamEventsV1(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	snapshots, err := h.uploadService.Watch(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Error().Err(err).Msg("response does not support streaming")
		return
	}

	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			_ = rc.Flush()
		case snapshot, open := <-snapshots:
			if !open {
				_, _ = fmt.Fprint(w, "event: end\ndata: {}\n\n")
				_ = rc.Flush()
				return
			}
			data, err := json.Marshal(snapshot)
			if err != nil {
				h.logger.Error().Err(err).Msg("error encoding snapshot")
				return
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
				return
			}
			_ = rc.Flush()
		}
	}
}
