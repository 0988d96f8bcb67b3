package memory

import (
	"sync"

	"stakepool/domain"
)

type MemoStore struct {
	mu    sync.Mutex
	memos map[string]string
}

func NewMemoStore() *MemoStore {
	return &MemoStore{memos: make(map[string]string)}
}

func (s *MemoStore) Upsert(key string, memo domain.Memorable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memos[key] = memo.ToJson()
	return nil
}

func (s *MemoStore) Find(key string) (*domain.Memo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	memo, exist := s.memos[key]
	if !exist {
		return nil, nil
	}
	return &domain.Memo{Key: key, Memo: memo}, nil
}
