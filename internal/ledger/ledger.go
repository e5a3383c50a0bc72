package ledger

import (
	"errors"
	"sync"

	"fenrir/internal/common"
)

// StartingBalance is the balance a newly created user is seeded with,
// matching original_source/src/main.rs's create_user.
const StartingBalance int64 = 500000

// ErrUserExists is returned when creating a user id that is already taken.
var ErrUserExists = errors.New("user already exists")

// User is an account in the downstream bookkeeping store. It is not part
// of the matching core's contract -- it is the external collaborator the
// core's trade events are applied to.
type User struct {
	ID       string           `json:"id"`
	Balance  int64            `json:"balance"`
	Holdings map[string]uint64 `json:"holdings"`
}

func newUser(id string) *User {
	return &User{ID: id, Balance: StartingBalance, Holdings: make(map[string]uint64)}
}

func (u *User) snapshot() *User {
	holdings := make(map[string]uint64, len(u.Holdings))
	for symbol, qty := range u.Holdings {
		holdings[symbol] = qty
	}
	return &User{ID: u.ID, Balance: u.Balance, Holdings: holdings}
}

// Ledger is an in-memory key/value map of users, guarded by a single mutex.
type Ledger struct {
	mu    sync.Mutex
	users map[string]*User
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{users: make(map[string]*User)}
}

// CreateUser adds a new user seeded with StartingBalance.
func (l *Ledger) CreateUser(id string) (*User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.users[id]; exists {
		return nil, ErrUserExists
	}
	user := newUser(id)
	l.users[id] = user
	return user.snapshot(), nil
}

// Get returns a copy of a user's current state.
func (l *Ledger) Get(id string) (*User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	user, ok := l.users[id]
	if !ok {
		return nil, false
	}
	return user.snapshot(), true
}

// All returns a copy of every user's current state.
func (l *Ledger) All() []*User {
	l.mu.Lock()
	defer l.mu.Unlock()

	users := make([]*User, 0, len(l.users))
	for _, user := range l.users {
		users = append(users, user.snapshot())
	}
	return users
}

// ApplyTrade adjusts the buyer's and seller's balance and holdings for one
// trade event: buyer balance decreases by price*quantity and holdings
// increase by quantity; seller balance increases by the same notional and
// holdings decrease, saturating at zero. Unknown parties (never created
// through the ledger) are silently skipped -- the core has no knowledge of
// accounts and neither does this adjustment step police it.
func (l *Ledger) ApplyTrade(event common.TradeEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	notional := event.Price * int64(event.Quantity)

	if buyer, ok := l.users[event.Buyer]; ok {
		buyer.Balance -= notional
		buyer.Holdings[event.Symbol] += event.Quantity
	}

	if seller, ok := l.users[event.Seller]; ok {
		seller.Balance += notional
		current := seller.Holdings[event.Symbol]
		if current <= event.Quantity {
			seller.Holdings[event.Symbol] = 0
		} else {
			seller.Holdings[event.Symbol] = current - event.Quantity
		}
	}
}
