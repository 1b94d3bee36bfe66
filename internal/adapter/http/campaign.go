package httpadapter

import (
	"errors"
	"net/http"

	"reward-ledger/internal/core/domain"
)

// handleInitialize sets the ledger admin. The caller must authenticate as
// that admin.
func (h *Handler) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if !decode(w, r, &req) {
		return
	}
	admin := domain.ParseAddress(req.Admin)
	if err := h.svc.Initialize(r.Context(), admin); err != nil {
		h.fail(w, r, "initialize", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"admin": admin.String()})
}

func (h *Handler) handleGetAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.svc.GetAdmin(r.Context())
	if err != nil {
		h.fail(w, r, "get admin", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"admin": admin.String()})
}

// handleCreateCampaign funds and registers a campaign. Amount strings that
// are not integers are reported as ErrInvalidAmount.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if !decode(w, r, &req) {
		return
	}
	daily, ok := parseAmount(req.DailyRewardAmount)
	if !ok {
		writeError(w, r, http.StatusUnprocessableEntity, domain.ErrInvalidAmount)
		return
	}
	creator := domain.ParseAddress(req.Creator)
	if creator.IsZero() {
		creator, _ = domain.CallerFrom(r.Context())
	}
	id, err := h.svc.CreateCampaign(r.Context(), domain.CampaignParams{
		Pool:              domain.ParseAddress(req.Pool),
		Asset:             domain.ParseAddress(req.Asset),
		RewardToken:       domain.ParseAddress(req.RewardToken),
		DailyRewardAmount: daily,
		DurationDays:      req.DurationDays,
		Creator:           creator,
	})
	if err != nil {
		h.fail(w, r, "create campaign", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint32{"campaign_id": id})
}

func (h *Handler) handleActiveCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.svc.GetActiveCampaigns(r.Context())
	if err != nil {
		h.fail(w, r, "active campaigns", err)
		return
	}
	out := make([]campaignResponse, 0, len(campaigns))
	for i := range campaigns {
		out = append(out, toCampaignResponse(&campaigns[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"campaigns": out})
}

func (h *Handler) handleCampaignCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.GetCampaignCount(r.Context())
	if err != nil {
		h.fail(w, r, "campaign count", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint32{"count": count})
}

func (h *Handler) handleLookupCampaign(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pool, asset := domain.ParseAddress(q.Get("pool")), domain.ParseAddress(q.Get("asset"))
	if pool.IsZero() || asset.IsZero() {
		writeError(w, r, http.StatusBadRequest, errors.New("pool and asset are required"))
		return
	}
	id, found, err := h.svc.GetCampaignByPoolAsset(r.Context(), pool, asset)
	if err != nil {
		h.fail(w, r, "lookup campaign", err)
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, domain.ErrCampaignNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint32{"campaign_id": id})
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	c, err := h.svc.GetCampaign(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get campaign", err)
		return
	}
	if c == nil {
		writeError(w, r, http.StatusNotFound, domain.ErrCampaignNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toCampaignResponse(c))
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		writeError(w, r, http.StatusBadRequest, errors.New("is_active is required"))
		return
	}
	if err := h.svc.UpdateCampaignStatus(r.Context(), id, *req.IsActive); err != nil {
		h.fail(w, r, "update status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleShutdown(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	returned, err := h.svc.ShutdownCampaign(r.Context(), id)
	if err != nil {
		h.fail(w, r, "shutdown", err)
		return
	}
	writeJSON(w, http.StatusOK, rewardResponse{CampaignID: id, Amount: formatAmount(returned)})
}
