package httpadapter

import (
	"math/big"
	"net/http"

	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
)

// handleDistribute runs one distribution round from an oracle snapshot.
// Balances that are not base-10 integers fail the whole request with
// ErrInvalidUserBalances; an unparsable total fails with ErrInvalidAmount.
func (h *Handler) handleDistribute(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	var body distributeRequest
	if !decode(w, r, &body) {
		return
	}
	total, ok := parseAmount(body.TotalPoolDeposits)
	if !ok {
		writeError(w, r, http.StatusUnprocessableEntity, domain.ErrInvalidAmount)
		return
	}
	req := port.DistributionRequest{
		CampaignID:        id,
		Users:             make([]domain.Address, 0, len(body.Users)),
		Balances:          make([]*big.Int, 0, len(body.Balances)),
		TotalPoolDeposits: total,
	}
	for _, u := range body.Users {
		req.Users = append(req.Users, domain.ParseAddress(u))
	}
	for _, b := range body.Balances {
		balance, ok := parseAmount(b)
		if !ok {
			writeError(w, r, http.StatusUnprocessableEntity, domain.ErrInvalidUserBalances)
			return
		}
		req.Balances = append(req.Balances, balance)
	}

	report, err := h.svc.DistributeRewards(r.Context(), req)
	if err != nil {
		h.fail(w, r, "distribute", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(report))
}
