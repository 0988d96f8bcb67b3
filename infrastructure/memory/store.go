package memory

import (
	"sync"

	"stakepool/domain"

	"github.com/tonkeeper/tongo"
)

// Store keeps pool state in process memory. It hands out copies, so callers
// never share state with the store.
type Store struct {
	mu       sync.Mutex
	writer   sync.Mutex
	pool     *domain.PoolState
	accounts map[tongo.AccountID]*domain.AccountState
	events   []domain.Event
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[tongo.AccountID]*domain.AccountState),
	}
}

func (s *Store) InsertPool(pool *domain.PoolState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		return domain.ErrorPoolExists
	}
	s.pool = pool.Clone()
	return nil
}

func (s *Store) FindPool() (*domain.PoolState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool == nil {
		return nil, domain.ErrorPoolNotFound
	}
	return s.pool.Clone(), nil
}

func (s *Store) FindAccount(accid tongo.AccountID) (*domain.AccountState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exist := s.accounts[accid]
	if !exist {
		return nil, nil
	}
	return account.Clone(), nil
}

func (s *Store) Save(pool *domain.PoolState, accounts []*domain.AccountState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool == nil {
		return domain.ErrorPoolNotFound
	}
	s.pool = pool.Clone()
	for _, account := range accounts {
		s.accounts[account.Account] = account.Clone()
	}
	return nil
}

func (s *Store) InsertEvents(events []domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, events...)
	return nil
}

func (s *Store) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.Event(nil), s.events...)
}

func (s *Store) Accounts() []*domain.AccountState {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]*domain.AccountState, 0, len(s.accounts))
	for _, account := range s.accounts {
		res = append(res, account.Clone())
	}
	return res
}

// Begin opens a session that holds the store exclusively until it ends, the
// way row locks hold a database pool.
func (s *Store) Begin() (domain.StateSession, error) {
	s.writer.Lock()
	return &session{store: s}, nil
}

type session struct {
	store    *Store
	pool     *domain.PoolState
	accounts []*domain.AccountState
	saved    bool
	done     bool
}

func (ss *session) FindPool() (*domain.PoolState, error) {
	return ss.store.FindPool()
}

func (ss *session) FindAccount(accid tongo.AccountID) (*domain.AccountState, error) {
	return ss.store.FindAccount(accid)
}

func (ss *session) Save(pool *domain.PoolState, accounts []*domain.AccountState) error {
	ss.pool = pool.Clone()
	ss.accounts = make([]*domain.AccountState, 0, len(accounts))
	for _, account := range accounts {
		ss.accounts = append(ss.accounts, account.Clone())
	}
	ss.saved = true
	return nil
}

// Join opens a separate transaction: an in-memory ledger keeps no state in the
// store.
func (ss *session) Join(ledger domain.AssetLedger) (domain.AssetTx, bool, error) {
	tx, err := ledger.Begin()
	return tx, false, err
}

func (ss *session) Commit() error {
	if ss.done {
		return nil
	}
	defer ss.end()

	if !ss.saved {
		return nil
	}
	return ss.store.Save(ss.pool, ss.accounts)
}

func (ss *session) Rollback() error {
	if ss.done {
		return nil
	}
	ss.end()
	return nil
}

func (ss *session) end() {
	ss.done = true
	ss.store.writer.Unlock()
}
