package httpapi

import (
	"net/http"
	"time"
)

// NewMux wires the route table.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	jh := JobsHandler{Store: d.Store}
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))
	mux.HandleFunc("/jobs/", methodMux(map[string]http.HandlerFunc{
		http.MethodPatch: jh.UpdateStatusByPath,
	}))

	bh := BatchHandler{Runner: d.Runner, Orgs: d.Orgs}
	mux.HandleFunc("/batch/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: bh.Run,
	}))
	mux.HandleFunc("/batch/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: bh.Status,
	}))

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"ok":   true,
				"time": time.Now().UTC().Format(time.RFC3339),
			})
		},
	}))

	return mux
}

// Handler returns the mux wrapped in the standard middleware chain.
func Handler(d Deps) http.Handler {
	return Chain(NewMux(d),
		RequestID,
		AccessLog(d.Logger),
		Recover(d.Logger),
	)
}
