package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/events"
	"jobsearch-engine/internal/search"
	"jobsearch-engine/internal/upstream"
)

type SearchHandler struct {
	Searcher Searcher
	Hub      *events.Hub
}

// Run answers with the first page; later pages stream out on /events as
// search_progress / search_done.
func (h SearchHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidJSON, "invalid JSON: "+err.Error())
		return
	}

	key := req.Key()
	onProgress := func(p domain.SearchProgress) {
		typ := events.TypeSearchProgress
		if p.Final {
			typ = events.TypeSearchDone
		}
		h.Hub.Publish(events.MakeEvent(key, typ, map[string]any{
			"jobs":  p.JobsSoFar,
			"count": len(p.JobsSoFar),
			"final": p.Final,
		}))
	}

	res, err := h.Searcher.Search(r.Context(), req, onProgress)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrInvalidRequest):
			WriteError(w, r, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		case errors.Is(err, search.ErrUpstreamTimeout):
			WriteError(w, r, http.StatusGatewayTimeout, CodeUpstreamTimeout, err.Error())
		case errors.Is(err, upstream.ErrStatus):
			WriteError(w, r, http.StatusBadGateway, CodeUpstreamError, err.Error())
		default:
			WriteError(w, r, http.StatusBadGateway, CodeUpstreamError, err.Error())
		}
		return
	}

	writeJSON(w, res)
}

type cancelReq struct {
	Key string `json:"key"`
}

func (h SearchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidRequest, "key is required")
		return
	}
	h.Searcher.Cancel(req.Key)
	writeJSON(w, map[string]any{"ok": true, "key": req.Key})
}

func (h SearchHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Searcher.Stats())
}
