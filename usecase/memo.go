package usecase

import (
	"haven/domain"
)

const (
	HarvestMemoKey = "harvest"
)

type MemoStore interface {
	Upsert(key string, memo domain.Memorable) (*domain.Memo, error)
	Find(key string) (*domain.Memo, error)
}

type MemoInteractor struct {
	memoRepository MemoStore
}

func NewMemoInteractor(memoRepository MemoStore) *MemoInteractor {
	interactor := &MemoInteractor{
		memoRepository: memoRepository,
	}
	return interactor
}

// GetHarvestMemo returns the stored harvest memo, or an empty one if the bot never ran.
func (interactor *MemoInteractor) GetHarvestMemo() (*domain.HarvestMemo, error) {
	memo, err := interactor.memoRepository.Find(HarvestMemoKey)
	if err != nil {
		return nil, err
	}

	var harvestMemo domain.HarvestMemo
	if memo != nil {
		if err := harvestMemo.FromJson(memo.Memo); err != nil {
			return nil, err
		}
	}
	return &harvestMemo, nil
}

func (interactor *MemoInteractor) SetHarvestMemo(harvestMemo *domain.HarvestMemo) error {
	_, err := interactor.memoRepository.Upsert(HarvestMemoKey, harvestMemo)
	return err
}
