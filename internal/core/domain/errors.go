package domain

import "errors"

// Ledger error kinds. Every failed operation returns one of these (possibly
// wrapped) and leaves the ledger untouched.
var (
	ErrNotAuthorized         = errors.New("not authorized")
	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrAlreadyInitialized    = errors.New("already initialized")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrCampaignEnded         = errors.New("campaign ended")
	ErrCampaignNotActive     = errors.New("campaign not active")
	ErrInvalidDuration       = errors.New("invalid duration")
	ErrCampaignAlreadyExists = errors.New("campaign already exists")
	ErrInvalidUserBalances   = errors.New("invalid user balances")

	ErrNotInitialized = errors.New("ledger not initialized")
)

var errorCodes = []struct {
	err  error
	code uint32
}{
	{ErrNotAuthorized, 1},
	{ErrCampaignNotFound, 2},
	{ErrInsufficientFunds, 3},
	{ErrAlreadyInitialized, 4},
	{ErrInvalidAmount, 5},
	{ErrCampaignEnded, 6},
	{ErrCampaignNotActive, 7},
	{ErrInvalidDuration, 8},
	{ErrCampaignAlreadyExists, 9},
	{ErrInvalidUserBalances, 10},
}

// Code returns the stable numeric code of a ledger error kind, or 0 when err
// is not one of them.
func Code(err error) uint32 {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return 0
}
