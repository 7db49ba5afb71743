package streamevents

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shipledger/ledger/internal/events"
	"github.com/shipledger/ledger/internal/transport/http/respond"
)

type service interface {
	Bus() *events.Bus
}

// StreamEvents streams lifecycle events to the client over SSE. The optional
// comma-repeatable "kind" query parameter narrows the subscription; without
// it the client receives every kind. The stream ends when the client
// disconnects or the bus shuts down.
func StreamEvents(w http.ResponseWriter, r *http.Request, service service) {
	kinds := make([]events.Kind, 0, len(events.AllKinds()))
	for _, raw := range r.URL.Query()["kind"] {
		kind, err := events.ParseKind(raw)
		if err != nil {
			respond.Error(w, err)

			return
		}
		kinds = append(kinds, kind)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)

		return
	}

	sub := service.Bus().Subscribe(kinds...)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.C:
			if !ok {
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				continue
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, data)
			flusher.Flush()
		}
	}
}
