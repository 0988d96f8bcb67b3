package usecase

import (
	"stakepool/domain"
)

const (
	MonitorMemoKey = "treasury_monitor"
)

type MemoRepository interface {
	Upsert(key string, memo domain.Memorable) error
	Find(key string) (*domain.Memo, error)
}

type MemoInteractor struct {
	memoRepository MemoRepository
}

func NewMemoInteractor(memoRepository MemoRepository) *MemoInteractor {
	interactor := &MemoInteractor{
		memoRepository: memoRepository,
	}
	return interactor
}

// GetMonitorMemo returns nil if the monitor has never run.
func (interactor *MemoInteractor) GetMonitorMemo() (*domain.MonitorMemo, error) {
	memo, err := interactor.memoRepository.Find(MonitorMemoKey)
	if err != nil || memo == nil {
		return nil, err
	}

	var monitorMemo domain.MonitorMemo
	if err = monitorMemo.FromJson(memo.Memo); err != nil {
		return nil, err
	}
	return &monitorMemo, nil
}

func (interactor *MemoInteractor) SetMonitorMemo(memo *domain.MonitorMemo) error {
	return interactor.memoRepository.Upsert(MonitorMemoKey, memo)
}
