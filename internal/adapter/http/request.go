package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
)

// Amounts travel as base-10 strings so that values beyond 2^53 survive
// JSON clients.

type initializeRequest struct {
	Admin string `json:"admin"`
}

type createCampaignRequest struct {
	Pool              string `json:"pool_address"`
	Asset             string `json:"asset"`
	RewardToken       string `json:"reward_token"`
	DailyRewardAmount string `json:"daily_reward_amount"`
	DurationDays      uint32 `json:"duration_days"`
	// Creator defaults to the authenticated caller.
	Creator string `json:"creator,omitempty"`
}

type statusRequest struct {
	IsActive *bool `json:"is_active"`
}

type distributeRequest struct {
	Users             []string `json:"user_addresses"`
	Balances          []string `json:"user_balances"`
	TotalPoolDeposits string   `json:"total_pool_deposits"`
}

type campaignResponse struct {
	ID                uint32 `json:"campaign_id"`
	PoolAddress       string `json:"pool_address"`
	Asset             string `json:"asset"`
	RewardToken       string `json:"reward_token"`
	DailyRewardAmount string `json:"daily_reward_amount"`
	TotalFundedAmount string `json:"total_funded_amount"`
	RemainingFunds    string `json:"remaining_funds"`
	ReturnedFunds     string `json:"returned_funds"`
	DurationDays      uint32 `json:"duration_days"`
	StartTime         uint64 `json:"start_time"`
	EndTime           uint64 `json:"end_time"`
	IsActive          bool   `json:"is_active"`
	Creator           string `json:"creator"`
}

func toCampaignResponse(c *domain.Campaign) campaignResponse {
	return campaignResponse{
		ID:                c.ID,
		PoolAddress:       c.PoolAddress.String(),
		Asset:             c.Asset.String(),
		RewardToken:       c.RewardToken.String(),
		DailyRewardAmount: formatAmount(c.DailyRewardAmount),
		TotalFundedAmount: formatAmount(c.TotalFundedAmount),
		RemainingFunds:    formatAmount(c.RemainingFunds),
		ReturnedFunds:     formatAmount(c.ReturnedFunds),
		DurationDays:      c.DurationDays,
		StartTime:         c.StartTime,
		EndTime:           c.EndTime,
		IsActive:          c.IsActive,
		Creator:           c.Creator.String(),
	}
}

type allocationResponse struct {
	User    string `json:"user"`
	Balance string `json:"balance"`
	Reward  string `json:"reward"`
}

type reportResponse struct {
	CampaignID       uint32               `json:"campaign_id"`
	Allocations      []allocationResponse `json:"allocations"`
	Skipped          int                  `json:"skipped"`
	TotalDistributed string               `json:"total_distributed"`
	Dust             string               `json:"dust"`
	NoOp             string               `json:"no_op,omitempty"`
}

func toReportResponse(r domain.DistributionReport) reportResponse {
	out := reportResponse{
		CampaignID:       r.CampaignID,
		Allocations:      make([]allocationResponse, 0, len(r.Allocations)),
		Skipped:          r.Skipped,
		TotalDistributed: formatAmount(r.TotalDistributed),
		Dust:             formatAmount(r.Dust),
		NoOp:             r.NoOp,
	}
	for _, a := range r.Allocations {
		out.Allocations = append(out.Allocations, allocationResponse{
			User:    a.User.String(),
			Balance: formatAmount(a.Balance),
			Reward:  formatAmount(a.Reward),
		})
	}
	return out
}

type rewardResponse struct {
	CampaignID uint32 `json:"campaign_id"`
	Amount     string `json:"amount"`
}

func toRewardResponses(rewards []domain.CampaignReward) []rewardResponse {
	out := make([]rewardResponse, 0, len(rewards))
	for _, r := range rewards {
		out = append(out, rewardResponse{CampaignID: r.CampaignID, Amount: formatAmount(r.Amount)})
	}
	return out
}

type errorResponse struct {
	Error  string           `json:"error"`
	Code   uint32           `json:"code,omitempty"`
	Claims []rewardResponse `json:"claims,omitempty"`
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseAmount(s string) (*big.Int, bool) {
	return new(big.Int).SetString(s, 10)
}

func campaignID(r *http.Request) (uint32, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid campaign id %q", chi.URLParam(r, "id"))
	}
	return uint32(id), nil
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.New("invalid JSON"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, _ *http.Request, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: domain.Code(err)})
}

// statusFor maps ledger errors to HTTP status codes.
func statusFor(r *http.Request, err error) int {
	switch {
	case errors.Is(err, domain.ErrNotAuthorized):
		if _, ok := domain.CallerFrom(r.Context()); !ok {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case errors.Is(err, domain.ErrCampaignNotFound), errors.Is(err, domain.ErrNotInitialized):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrInvalidUserBalances):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAlreadyInitialized),
		errors.Is(err, domain.ErrCampaignAlreadyExists),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrCampaignEnded),
		errors.Is(err, domain.ErrCampaignNotActive):
		return http.StatusConflict
	case errors.Is(err, port.ErrPaymentRejected):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the ledger error err. Unexpected errors are logged and hidden
// from the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(r, err)
	if status == http.StatusInternalServerError {
		h.logger.Error(op+" error", slog.Any("error", err))
		writeError(w, r, status, errors.New("internal error"))
		return
	}
	writeError(w, r, status, err)
}
