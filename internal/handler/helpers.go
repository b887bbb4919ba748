package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"kotoba-tutor/internal/llm"
	"kotoba-tutor/internal/observability"
)

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// streamText relays completion fragments to the client as plain text,
// flushing after each fragment so the first byte goes out before the
// completion finishes. A mid-stream upstream failure truncates the body; the
// 200 status is already on the wire by then, so the partial output stands
// and the failure is only logged. Client disconnects stop the relay and
// release the upstream connection.
func streamText(w http.ResponseWriter, r *http.Request, stream llm.TextStream, kind string) {
	defer stream.Close()

	logger := observability.FromContext(r.Context())
	streamID := uuid.New().String()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			logger.Info("client disconnected mid-stream", "stream_id", streamID, "kind", kind)
			return
		default:
		}

		fragment, err := stream.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			logger.Error("completion stream truncated", "stream_id", streamID, "kind", kind, "error", err)
			return
		}

		if _, err := io.WriteString(w, fragment); err != nil {
			logger.Info("client write failed mid-stream", "stream_id", streamID, "kind", kind)
			return
		}
		observability.LLMStreamFragments.WithLabelValues(kind).Inc()
		if flusher != nil {
			flusher.Flush()
		}
	}
}
