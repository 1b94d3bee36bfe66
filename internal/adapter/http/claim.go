package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"reward-ledger/internal/core/domain"
)

// handleClaim pays the caller's unclaimed balance in one campaign.
func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	user, _ := domain.CallerFrom(r.Context())
	amount, err := h.svc.ClaimRewards(r.Context(), user, id)
	if err != nil {
		h.fail(w, r, "claim", err)
		return
	}
	writeJSON(w, http.StatusOK, rewardResponse{CampaignID: id, Amount: formatAmount(amount)})
}

// handleClaimAll claims every campaign of {user}. Whatever the failure, the
// error response still lists the claims that were paid.
func (h *Handler) handleClaimAll(w http.ResponseWriter, r *http.Request) {
	user := domain.ParseAddress(chi.URLParam(r, "user"))
	claims, err := h.svc.ClaimAllRewards(r.Context(), user)
	if err != nil {
		resp := errorResponse{
			Error:  err.Error(),
			Code:   domain.Code(err),
			Claims: toRewardResponses(claims),
		}
		status := statusFor(r, err)
		if status == http.StatusInternalServerError {
			h.logger.Error("claim all error", slog.Any("error", err), slog.Int("claimed", len(claims)))
			resp.Error = "internal error"
		}
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claims": toRewardResponses(claims)})
}

func (h *Handler) handleUserRewards(w http.ResponseWriter, r *http.Request) {
	user := domain.ParseAddress(chi.URLParam(r, "user"))
	rewards, err := h.svc.GetUserAllRewards(r.Context(), user)
	if err != nil {
		h.fail(w, r, "user rewards", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rewards": toRewardResponses(rewards)})
}

func (h *Handler) handleUserReward(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	user := domain.ParseAddress(chi.URLParam(r, "user"))
	amount, err := h.svc.GetUserRewards(r.Context(), user, id)
	if err != nil {
		h.fail(w, r, "user reward", err)
		return
	}
	writeJSON(w, http.StatusOK, rewardResponse{CampaignID: id, Amount: formatAmount(amount)})
}
