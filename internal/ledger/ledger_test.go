package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/common"
	"fenrir/internal/ledger"
)

func TestCreateUserSeedsStartingBalance(t *testing.T) {
	l := ledger.New()

	user, err := l.CreateUser("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.ID)
	assert.EqualValues(t, ledger.StartingBalance, user.Balance)
	assert.Empty(t, user.Holdings)
}

func TestCreateUserRejectsDuplicate(t *testing.T) {
	l := ledger.New()
	_, err := l.CreateUser("alice")
	require.NoError(t, err)

	_, err = l.CreateUser("alice")
	assert.ErrorIs(t, err, ledger.ErrUserExists)
}

func TestGetUnknownUser(t *testing.T) {
	l := ledger.New()
	_, ok := l.Get("nobody")
	assert.False(t, ok)
}

func TestApplyTradeAdjustsBuyerAndSeller(t *testing.T) {
	l := ledger.New()
	_, err := l.CreateUser("bob")
	require.NoError(t, err)
	_, err = l.CreateUser("alice")
	require.NoError(t, err)

	l.ApplyTrade(common.TradeEvent{Buyer: "bob", Seller: "alice", Symbol: "AAPL", Quantity: 10, Price: 100})

	buyer, _ := l.Get("bob")
	seller, _ := l.Get("alice")

	assert.EqualValues(t, ledger.StartingBalance-1000, buyer.Balance)
	assert.EqualValues(t, 10, buyer.Holdings["AAPL"])
	assert.EqualValues(t, ledger.StartingBalance+1000, seller.Balance)
	assert.EqualValues(t, 0, seller.Holdings["AAPL"])
}

func TestApplyTradeHoldingsSaturateAtZero(t *testing.T) {
	l := ledger.New()
	_, err := l.CreateUser("alice")
	require.NoError(t, err)
	_, err = l.CreateUser("bob")
	require.NoError(t, err)

	// Alice sells 10 she does not hold; a holding she never acquired should
	// clamp at zero rather than go negative.
	l.ApplyTrade(common.TradeEvent{Buyer: "bob", Seller: "alice", Symbol: "AAPL", Quantity: 10, Price: 50})

	seller, _ := l.Get("alice")
	assert.EqualValues(t, 0, seller.Holdings["AAPL"])
}

func TestApplyTradeIgnoresUnknownParties(t *testing.T) {
	l := ledger.New()
	assert.NotPanics(t, func() {
		l.ApplyTrade(common.TradeEvent{Buyer: "ghost-buyer", Seller: "ghost-seller", Symbol: "AAPL", Quantity: 5, Price: 10})
	})
}

func TestAllReturnsSnapshot(t *testing.T) {
	l := ledger.New()
	_, err := l.CreateUser("alice")
	require.NoError(t, err)

	users := l.All()
	require.Len(t, users, 1)

	// Mutating the returned snapshot must not affect the ledger's internal state.
	users[0].Balance = 0
	fresh, _ := l.Get("alice")
	assert.EqualValues(t, ledger.StartingBalance, fresh.Balance)
}
