package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setUpstreamKeyReq struct {
	APIKey string `json:"api_key"`
}

func (h SecretsHandler) SetUpstreamKey(w http.ResponseWriter, r *http.Request) {
	var req setUpstreamKeyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidJSON, "invalid json")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	account := secrets.UpstreamKeyringAccount(cfg.Upstream.BaseURL)
	if err := secrets.SetUpstreamKey(account, req.APIKey); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeKeyringFailed, "failed to store key: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
