package usecase

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reward-ledger/internal/adapter/bank"
	"reward-ledger/internal/adapter/memory"
	"reward-ledger/internal/adapter/store"
	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
	"reward-ledger/internal/core/port/mocks"
)

const (
	admin   domain.Address = "GADMIN"
	creator domain.Address = "GCREATOR"
	alice   domain.Address = "GALICE"
	bob     domain.Address = "GBOB"
	carol   domain.Address = "GCAROL"
	custody domain.Address = "GCUSTODY"

	pool   domain.Address = "CPOOL"
	asset  domain.Address = "CASSET"
	token  domain.Address = "CTOKEN"
	day                   = 24 * time.Hour
)

type fixture struct {
	ledger *Ledger
	bank   *bank.Bank
	clock  *clockwork.FakeClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	kv := memory.NewKVStore()
	b := bank.New(kv, clock, nil)
	opts = append([]Option{WithClock(clock)}, opts...)
	return &fixture{
		ledger: NewLedger(kv, b, custody, opts...),
		bank:   b,
		clock:  clock,
	}
}

func as(who domain.Address) context.Context {
	return domain.WithCaller(context.Background(), who)
}

func amount(v int64) *big.Int { return big.NewInt(v) }

func bigEq(v int64) any {
	return mock.MatchedBy(func(x *big.Int) bool { return x != nil && x.Cmp(big.NewInt(v)) == 0 })
}

func (f *fixture) init(t *testing.T) {
	t.Helper()
	require.NoError(t, f.ledger.Initialize(as(admin), admin))
}

func (f *fixture) mint(t *testing.T, tok, holder domain.Address, v int64) {
	t.Helper()
	require.NoError(t, f.bank.Mint(context.Background(), tok, holder, amount(v)))
}

func (f *fixture) create(t *testing.T, p domain.CampaignParams) uint32 {
	t.Helper()
	id, err := f.ledger.CreateCampaign(as(p.Creator), p)
	require.NoError(t, err)
	return id
}

func (f *fixture) balance(t *testing.T, tok, holder domain.Address) string {
	t.Helper()
	b, err := f.bank.Balance(context.Background(), tok, holder)
	require.NoError(t, err)
	return b.String()
}

func params(daily int64, days uint32) domain.CampaignParams {
	return domain.CampaignParams{
		Pool:              pool,
		Asset:             asset,
		RewardToken:       token,
		DailyRewardAmount: amount(daily),
		DurationDays:      days,
		Creator:           creator,
	}
}

func distribution(id uint32, total int64, entries ...any) port.DistributionRequest {
	req := port.DistributionRequest{CampaignID: id, TotalPoolDeposits: amount(total)}
	for i := 0; i+1 < len(entries); i += 2 {
		req.Users = append(req.Users, entries[i].(domain.Address))
		req.Balances = append(req.Balances, amount(int64(entries[i+1].(int))))
	}
	return req
}

// TestLifecycle walks a campaign from creation through distribution, claim
// and shutdown.
func TestLifecycle(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.mint(t, token, admin, 1000)

	p := params(1000, 1)
	p.Creator = admin
	id, err := f.ledger.CreateCampaign(as(admin), p)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)

	c, err := f.ledger.GetCampaign(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "1000", c.RemainingFunds.String())
	assert.Equal(t, "1000", f.balance(t, token, custody))
	assert.Equal(t, "0", f.balance(t, token, admin))

	report, err := f.ledger.DistributeRewards(as(admin), distribution(id, 1000, alice, 1000))
	require.NoError(t, err)
	assert.Equal(t, "1000", report.TotalDistributed.String())
	assert.Equal(t, "0", report.Dust.String())

	got, err := f.ledger.GetUserRewards(context.Background(), alice, id)
	require.NoError(t, err)
	assert.Equal(t, "1000", got.String())
	c, err = f.ledger.GetCampaign(context.Background(), id)
	require.NoError(t, err)
	assert.Zero(t, c.RemainingFunds.Sign())

	claimed, err := f.ledger.ClaimRewards(as(alice), alice, id)
	require.NoError(t, err)
	assert.Equal(t, "1000", claimed.String())
	assert.Equal(t, "1000", f.balance(t, token, alice))

	got, err = f.ledger.GetUserRewards(context.Background(), alice, id)
	require.NoError(t, err)
	assert.Zero(t, got.Sign())

	_, err = f.ledger.ClaimRewards(as(alice), alice, id)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestCreateCampaignValidation(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.mint(t, token, creator, 1000)

	_, err := f.ledger.CreateCampaign(as(creator), params(0, 1))
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.ledger.CreateCampaign(as(creator), params(-5, 1))
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.ledger.CreateCampaign(as(creator), params(10, 0))
	require.ErrorIs(t, err, domain.ErrInvalidDuration)

	count, err := f.ledger.GetCampaignCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateCampaignFundingFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.mint(t, token, creator, 99)

	_, err := f.ledger.CreateCampaign(as(creator), params(10, 10))
	require.ErrorIs(t, err, bank.ErrInsufficientBalance)

	count, err := f.ledger.GetCampaignCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	_, found, err := f.ledger.GetCampaignByPoolAsset(context.Background(), pool, asset)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDistributeAfterEndTime(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.mint(t, token, creator, 3000)
	id := f.create(t, params(1000, 3))

	f.clock.Advance(3*day + time.Second)

	_, err := f.ledger.DistributeRewards(as(admin), distribution(id, 100, alice, 100))
	require.ErrorIs(t, err, domain.ErrCampaignEnded)
}

func TestDistributeAtEndTimeIsAllowed(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.mint(t, token, creator, 1000)
	id := f.create(t, params(1000, 1))

	f.clock.Advance(day)

	_, err := f.ledger.DistributeRewards(as(admin), distribution(id, 100, alice, 100))
	require.NoError(t, err)
}

func TestDistributePreconditions(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.mint(t, token, creator, 2000)
	id := f.create(t, params(1000, 2))

	_, err := f.ledger.DistributeRewards(as(admin), distribution(42, 100, alice, 100))
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)

	report, err := f.ledger.DistributeRewards(as(admin), distribution(id, 0, alice, 100))
	require.NoError(t, err)
	assert.Equal(t, domain.NoOpEmptyPool, report.NoOp)

	req := distribution(id, 100, alice, 100)
	req.Balances = append(req.Balances, amount(5))
	report, err = f.ledger.DistributeRewards(as(admin), req)
	require.NoError(t, err)
	assert.Equal(t, domain.NoOpNoParticipants, report.NoOp)

	report, err = f.ledger.DistributeRewards(as(admin), distribution(id, 100))
	require.NoError(t, err)
	assert.Equal(t, domain.NoOpNoParticipants, report.NoOp)

	c, err := f.ledger.GetCampaign(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "2000", c.RemainingFunds.String())

	_, err = f.ledger.DistributeRewards(as(admin), distribution(id, 100, alice, 100))
	require.NoError(t, err)
	_, err = f.ledger.DistributeRewards(as(admin), distribution(id, 100, alice, 100))
	require.NoError(t, err)
	_, err = f.ledger.DistributeRewards(as(admin), distribution(id, 100, alice, 100))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	require.NoError(t, f.ledger.UpdateCampaignStatus(as(creator), id, false))
	_, err = f.ledger.DistributeRewards(as(admin), distribution(id, 0))
	require.ErrorIs(t, err, domain.ErrCampaignNotActive)
}

func TestDistributeRounding(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.mint(t, token, creator, 100)
	id := f.create(t, params(10, 10))

	report, err := f.ledger.DistributeRewards(as(admin),
		distribution(id, 4, alice, 1, bob, 1, carol, 1, domain.Address("GZERO"), 0))
	require.NoError(t, err)
	assert.Len(t, report.Allocations, 3)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, "6", report.TotalDistributed.String())
	assert.Equal(t, "4", report.Dust.String())

	c, err := f.ledger.GetCampaign(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "94", c.RemainingFunds.String())

	// 1 * 10 / 1000 floors to zero.
	report, err = f.ledger.DistributeRewards(as(admin), distribution(id, 1000, alice, 1))
	require.NoError(t, err)
	assert.Empty(t, report.Allocations)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.TotalDistributed.Sign())
}

// TestConservation checks remaining + unclaimed + claimed == funded across
// rounds, claims and shutdown.
func TestConservation(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.mint(t, token, creator, 7*997)
	id := f.create(t, params(997, 7))
	users := []domain.Address{alice, bob, carol}

	check := func() {
		t.Helper()
		c, err := f.ledger.GetCampaign(context.Background(), id)
		require.NoError(t, err)
		sum := new(big.Int).Add(c.RemainingFunds, c.ReturnedFunds)
		require.NoError(t, f.ledger.view(context.Background(), func(s *store.Stores) error {
			for _, u := range users {
				r, found, err := s.Rewards.Get(context.Background(), u, id)
				if err != nil {
					return err
				}
				if found {
					require.GreaterOrEqual(t, r.UnclaimedAmount.Sign(), 0)
					sum.Add(sum, r.UnclaimedAmount).Add(sum, r.TotalClaimed)
				}
			}
			return nil
		}))
		assert.Equal(t, c.TotalFundedAmount.String(), sum.String())
		assert.Equal(t, c.TotalFundedAmount.String(),
			sumBalances(t, f, append([]domain.Address{custody}, users...)).String())
	}

	rounds := [][]any{
		{alice, 3, bob, 5, carol, 11},
		{alice, 7, bob, 0, carol, 1},
		{alice, 13, bob, 17, carol, 19},
	}
	for i, r := range rounds {
		_, err := f.ledger.DistributeRewards(as(admin), distribution(id, 61, r...))
		require.NoError(t, err)
		check()
		if i == 1 {
			_, err := f.ledger.ClaimRewards(as(bob), bob, id)
			require.NoError(t, err)
			check()
		}
	}

	_, err := f.ledger.ClaimAllRewards(as(alice), alice)
	require.NoError(t, err)
	check()

	f.clock.Advance(8 * day)
	returned, err := f.ledger.ShutdownCampaign(as(creator), id)
	require.NoError(t, err)
	c, err := f.ledger.GetCampaign(context.Background(), id)
	require.NoError(t, err)
	assert.Zero(t, c.RemainingFunds.Sign())
	assert.Positive(t, returned.Sign())
	assert.Equal(t, returned.String(), c.ReturnedFunds.String())
	assert.Equal(t, returned.String(), mustBalance(t, f, creator).String())
	check()
}

func mustBalance(t *testing.T, f *fixture, holder domain.Address) *big.Int {
	t.Helper()
	b, err := f.bank.Balance(context.Background(), token, holder)
	require.NoError(t, err)
	return b
}

// sumBalances adds the users' paid out rewards and the creator's returned
// funds.
func sumBalances(t *testing.T, f *fixture, users []domain.Address) *big.Int {
	t.Helper()
	sum := new(big.Int).Set(mustBalance(t, f, creator))
	for _, u := range users {
		sum.Add(sum, mustBalance(t, f, u))
	}
	return sum
}

func TestShutdown(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.mint(t, token, creator, 1000)
	id := f.create(t, params(500, 2))

	_, err := f.ledger.DistributeRewards(as(admin), distribution(id, 10, alice, 10))
	require.NoError(t, err)

	_, err = f.ledger.ShutdownCampaign(as(creator), id)
	require.ErrorIs(t, err, domain.ErrCampaignNotActive)

	f.clock.Advance(2*day + time.Second)

	_, err = f.ledger.ShutdownCampaign(as(admin), id)
	require.ErrorIs(t, err, domain.ErrNotAuthorized)

	returned, err := f.ledger.ShutdownCampaign(as(creator), id)
	require.NoError(t, err)
	assert.Equal(t, "500", returned.String())
	assert.Equal(t, "500", f.balance(t, token, creator))

	_, err = f.ledger.ShutdownCampaign(as(creator), id)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, err = f.ledger.ShutdownCampaign(as(creator), 9)
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)

	// accrued rewards remain claimable after shutdown
	claimed, err := f.ledger.ClaimRewards(as(alice), alice, id)
	require.NoError(t, err)
	assert.Equal(t, "500", claimed.String())
}

func TestPoolAssetUniqueness(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.mint(t, token, creator, 100)
	id := f.create(t, params(10, 1))

	got, found, err := f.ledger.GetCampaignByPoolAsset(context.Background(), pool, asset)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id, got)

	f.clock.Advance(2 * day)
	_, err = f.ledger.ShutdownCampaign(as(creator), id)
	require.NoError(t, err)

	_, err = f.ledger.CreateCampaign(as(creator), params(10, 1))
	require.ErrorIs(t, err, domain.ErrCampaignAlreadyExists)

	other := params(10, 1)
	other.Asset = "COTHER"
	id2 := f.create(t, other)
	assert.Equal(t, uint32(2), id2)
}

func TestAuthorization(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.DistributeRewards(as(admin), distribution(1, 1, alice, 1))
	require.ErrorIs(t, err, domain.ErrNotAuthorized)
	_, err = f.ledger.GetAdmin(context.Background())
	require.ErrorIs(t, err, domain.ErrNotInitialized)

	require.ErrorIs(t, f.ledger.Initialize(as(alice), admin), domain.ErrNotAuthorized)
	require.ErrorIs(t, f.ledger.Initialize(context.Background(), admin), domain.ErrNotAuthorized)
	f.init(t)
	require.ErrorIs(t, f.ledger.Initialize(as(admin), admin), domain.ErrAlreadyInitialized)

	got, err := f.ledger.GetAdmin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, admin, got)

	f.mint(t, token, creator, 1000)
	_, err = f.ledger.CreateCampaign(as(alice), params(10, 1))
	require.ErrorIs(t, err, domain.ErrNotAuthorized)
	id := f.create(t, params(10, 1))

	_, err = f.ledger.DistributeRewards(as(creator), distribution(id, 1, alice, 1))
	require.ErrorIs(t, err, domain.ErrNotAuthorized)
	_, err = f.ledger.DistributeRewards(as(admin), distribution(id, 1, alice, 1))
	require.NoError(t, err)

	require.ErrorIs(t, f.ledger.UpdateCampaignStatus(as(alice), id, false), domain.ErrNotAuthorized)
	require.ErrorIs(t, f.ledger.UpdateCampaignStatus(as(alice), 77, false), domain.ErrCampaignNotFound)
	require.NoError(t, f.ledger.UpdateCampaignStatus(as(creator), id, false))
	require.NoError(t, f.ledger.UpdateCampaignStatus(as(admin), id, true))

	_, err = f.ledger.ClaimRewards(as(bob), alice, id)
	require.ErrorIs(t, err, domain.ErrNotAuthorized)
	_, err = f.ledger.ClaimAllRewards(as(bob), alice)
	require.ErrorIs(t, err, domain.ErrNotAuthorized)

	rewards, err := f.ledger.GetUserAllRewards(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	assert.Equal(t, "10", rewards[0].Amount.String())
}

func TestClaimErrors(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.mint(t, token, creator, 100)
	id := f.create(t, params(10, 10))

	_, err := f.ledger.ClaimRewards(as(alice), alice, 5)
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)

	_, err = f.ledger.ClaimRewards(as(alice), alice, id)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	claims, err := f.ledger.ClaimAllRewards(as(alice), alice)
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestActiveCampaigns(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.mint(t, token, creator, 1000)

	first := f.create(t, params(10, 1))
	second := params(10, 1)
	second.Pool = "CPOOL2"
	secondID := f.create(t, second)

	require.NoError(t, f.ledger.UpdateCampaignStatus(as(admin), first, false))
	f.clock.Advance(5 * day)

	active, err := f.ledger.GetActiveCampaigns(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, secondID, active[0].ID)

	c, err := f.ledger.GetCampaign(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, c)
}

// TestClaimAllStopsAtFailedPayout keeps the claims made before the failure
// and leaves the failed campaign claimable.
func TestClaimAllStopsAtFailedPayout(t *testing.T) {
	payments := mocks.NewMockPayment(t)
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	l := NewLedger(memory.NewKVStore(), payments, custody, WithClock(clock))
	require.NoError(t, l.Initialize(as(admin), admin))

	tokens := []domain.Address{"T1", "T2", "T3"}
	for i, tok := range tokens {
		payments.EXPECT().Transfer(mock.Anything, tok, creator, custody, bigEq(100)).Return(nil).Once()
		p := params(100, 1)
		p.Pool = domain.Address("POOL-" + tok)
		p.RewardToken = tok
		id, err := l.CreateCampaign(as(creator), p)
		require.NoError(t, err)
		require.Equal(t, uint32(i+1), id)
		_, err = l.DistributeRewards(as(admin), distribution(id, 2, alice, 1))
		require.NoError(t, err)
	}

	payments.EXPECT().Transfer(mock.Anything, domain.Address("T1"), custody, alice, bigEq(50)).Return(nil).Once()
	payments.EXPECT().Transfer(mock.Anything, domain.Address("T2"), custody, alice, bigEq(50)).
		Return(errors.New("payout rejected")).Once()

	claims, err := l.ClaimAllRewards(as(alice), alice)
	require.Error(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, uint32(1), claims[0].CampaignID)
	assert.Equal(t, "50", claims[0].Amount.String())

	pending, err := l.GetUserAllRewards(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, uint32(2), pending[0].CampaignID)
	assert.Equal(t, "50", pending[0].Amount.String())
	assert.Equal(t, uint32(3), pending[1].CampaignID)
}

func TestClaimAllOrdersByCampaign(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.mint(t, token, creator, 1000)

	var ids []uint32
	for _, p := range []domain.Address{"P1", "P2", "P3"} {
		cp := params(30, 1)
		cp.Pool = p
		ids = append(ids, f.create(t, cp))
	}
	for _, id := range []uint32{ids[2], ids[0]} {
		_, err := f.ledger.DistributeRewards(as(admin), distribution(id, 3, alice, 1, bob, 2))
		require.NoError(t, err)
	}

	claims, err := f.ledger.ClaimAllRewards(as(alice), alice)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, ids[0], claims[0].CampaignID)
	assert.Equal(t, ids[2], claims[1].CampaignID)
	assert.Equal(t, "20", f.balance(t, token, alice))

	claims, err = f.ledger.ClaimAllRewards(as(alice), alice)
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	events := mocks.NewMockEventPublisher(t)
	f := newFixture(t, WithEventPublisher(events))
	f.init(t)
	f.mint(t, token, creator, 100)

	var got []domain.Event
	events.EXPECT().Publish(mock.Anything, mock.Anything).
		Run(func(_ context.Context, evt domain.Event) { got = append(got, evt) }).
		Return(errors.New("broker down"))

	id := f.create(t, params(10, 10))
	_, err := f.ledger.DistributeRewards(as(admin), distribution(id, 1, alice, 1))
	require.NoError(t, err)
	_, err = f.ledger.ClaimRewards(as(alice), alice, id)
	require.NoError(t, err)

	_, err = f.ledger.ClaimRewards(as(alice), alice, id)
	require.Error(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, domain.EventCampaignCreated, got[0].Type)
	assert.Equal(t, domain.EventRewardsDistributed, got[1].Type)
	assert.Equal(t, "10", got[1].Attr("total"))
	assert.Equal(t, domain.EventRewardsClaimed, got[2].Type)
	assert.Equal(t, alice.String(), got[2].Attr("user"))
	assert.NotEmpty(t, got[2].ID)
}

// stagedPayment stages bank transfers in the ledger transaction and then
// runs after, which may fail the unit or cancel the request.
type stagedPayment struct {
	*bank.Bank
	after func() error
}

func (p stagedPayment) TransferTx(ctx context.Context, tx port.KVTx, tok, from, to domain.Address, v *big.Int) error {
	if err := p.Bank.TransferTx(ctx, tx, tok, from, to, v); err != nil {
		return err
	}
	return p.after()
}

// TestPayoutCommitsWithLedger checks that a payout and the ledger writes that
// cause it are one unit: a failure after the transfer was staged leaves both
// untouched, and a request cancelled after the transfer cannot be replayed
// into a second payout.
func TestPayoutCommitsWithLedger(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	kv := memory.NewKVStore()
	b := bank.New(kv, clock, nil)
	after := func() error { return nil }
	payments := stagedPayment{Bank: b, after: func() error { return after() }}
	f := &fixture{ledger: NewLedger(kv, payments, custody, WithClock(clock)), bank: b, clock: clock}

	f.init(t)
	f.mint(t, token, creator, 2000)
	id := f.create(t, params(1000, 1))
	other := params(1000, 1)
	other.Pool = "CPOOL2"
	f.create(t, other)
	_, err := f.ledger.DistributeRewards(as(admin), distribution(id, 10, alice, 10))
	require.NoError(t, err)
	require.Equal(t, "2000", f.balance(t, token, custody))

	boom := errors.New("commit conflict")
	after = func() error { return boom }
	_, err = f.ledger.ClaimRewards(as(alice), alice, id)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "0", f.balance(t, token, alice))
	assert.Equal(t, "2000", f.balance(t, token, custody))
	unclaimed, err := f.ledger.GetUserRewards(context.Background(), alice, id)
	require.NoError(t, err)
	assert.Equal(t, "1000", unclaimed.String())

	ctx, cancel := context.WithCancel(as(alice))
	after = func() error { cancel(); return nil }
	claimed, err := f.ledger.ClaimRewards(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, "1000", claimed.String())

	after = func() error { return nil }
	_, err = f.ledger.ClaimRewards(as(alice), alice, id)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, "1000", f.balance(t, token, alice))
	assert.Equal(t, "1000", f.balance(t, token, custody))

	journal, err := b.Journal(context.Background())
	require.NoError(t, err)
	payouts := 0
	for _, e := range journal {
		if e.To == alice {
			payouts++
		}
	}
	assert.Equal(t, 1, payouts)
}

func TestClaimPayoutFailureKeepsBalance(t *testing.T) {
	payments := mocks.NewMockPayment(t)
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	l := NewLedger(memory.NewKVStore(), payments, custody, WithClock(clock))
	require.NoError(t, l.Initialize(as(admin), admin))

	payments.EXPECT().Transfer(mock.Anything, token, creator, custody, bigEq(100)).Return(nil).Once()
	id, err := l.CreateCampaign(as(creator), params(100, 1))
	require.NoError(t, err)
	_, err = l.DistributeRewards(as(admin), distribution(id, 4, alice, 1, bob, 3))
	require.NoError(t, err)

	rejected := errors.New("payout rejected")
	payments.EXPECT().Transfer(mock.Anything, token, custody, alice, bigEq(25)).Return(rejected).Once()
	_, err = l.ClaimRewards(as(alice), alice, id)
	require.ErrorIs(t, err, rejected)

	require.NoError(t, l.view(context.Background(), func(s *store.Stores) error {
		r, found, err := s.Rewards.Get(context.Background(), alice, id)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "25", r.UnclaimedAmount.String())
		assert.Zero(t, r.TotalClaimed.Sign())
		return nil
	}))

	payments.EXPECT().Transfer(mock.Anything, token, custody, alice, bigEq(25)).Return(nil).Once()
	claimed, err := l.ClaimRewards(as(alice), alice, id)
	require.NoError(t, err)
	assert.Equal(t, "25", claimed.String())
}

func TestShutdownPayoutFailureKeepsFunds(t *testing.T) {
	payments := mocks.NewMockPayment(t)
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	l := NewLedger(memory.NewKVStore(), payments, custody, WithClock(clock))
	require.NoError(t, l.Initialize(as(admin), admin))

	payments.EXPECT().Transfer(mock.Anything, token, creator, custody, bigEq(300)).Return(nil).Once()
	id, err := l.CreateCampaign(as(creator), params(100, 3))
	require.NoError(t, err)
	_, err = l.DistributeRewards(as(admin), distribution(id, 1, alice, 1))
	require.NoError(t, err)
	clock.Advance(3*day + time.Second)

	rejected := errors.New("payout rejected")
	payments.EXPECT().Transfer(mock.Anything, token, custody, creator, bigEq(200)).Return(rejected).Once()
	_, err = l.ShutdownCampaign(as(creator), id)
	require.ErrorIs(t, err, rejected)

	c, err := l.GetCampaign(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "200", c.RemainingFunds.String())
	assert.Zero(t, c.ReturnedFunds.Sign())

	payments.EXPECT().Transfer(mock.Anything, token, custody, creator, bigEq(200)).Return(nil).Once()
	returned, err := l.ShutdownCampaign(as(creator), id)
	require.NoError(t, err)
	assert.Equal(t, "200", returned.String())

	c, err = l.GetCampaign(context.Background(), id)
	require.NoError(t, err)
	assert.Zero(t, c.RemainingFunds.Sign())
	assert.Equal(t, "200", c.ReturnedFunds.String())
}
