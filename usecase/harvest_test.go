package usecase

import (
	"fmt"
	"haven/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMemoStore struct {
	memos map[string]string
	err   error
}

func newFakeMemoStore() *fakeMemoStore {
	return &fakeMemoStore{memos: make(map[string]string)}
}

func (f *fakeMemoStore) Upsert(key string, memo domain.Memorable) (*domain.Memo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.memos[key] = memo.ToJson()
	return &domain.Memo{Key: key, Memo: f.memos[key]}, nil
}

func (f *fakeMemoStore) Find(key string) (*domain.Memo, error) {
	if f.err != nil {
		return nil, f.err
	}
	memo, ok := f.memos[key]
	if !ok {
		return nil, nil
	}
	return &domain.Memo{Key: key, Memo: memo}, nil
}

func TestMemoInteractor_HarvestMemo(t *testing.T) {
	store := newFakeMemoStore()
	interactor := NewMemoInteractor(store)

	memo, err := interactor.GetHarvestMemo()
	require.NoError(t, err)
	assert.Zero(t, memo.Cycles)
	assert.Nil(t, memo.LastResult)

	memo.Cycles = 3
	memo.LastResult = &domain.HarvestResult{TotalRewards: 10, Fee: 1, Net: 9}
	require.NoError(t, interactor.SetHarvestMemo(memo))

	loaded, err := interactor.GetHarvestMemo()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), loaded.Cycles)
	assert.Equal(t, uint64(9), loaded.LastResult.Net)

	store.memos[HarvestMemoKey] = "{broken"
	_, err = interactor.GetHarvestMemo()
	assert.Error(t, err)
}

func TestHarvestInteractor_RunCycle(t *testing.T) {
	ledgerInteractor, _, clock := newTestInteractor(t)
	memoStore := newFakeMemoStore()
	memoInteractor := NewMemoInteractor(memoStore)
	bot := NewHarvestInteractor(ledgerInteractor, memoInteractor, operator, zap.NewNop())
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	bot.now = func() time.Time { return now }

	_, err := ledgerInteractor.Deposit(alice, 10_000_000, spread)
	require.NoError(t, err)

	result, err := bot.RunCycle()
	require.NoError(t, err)
	assert.Nil(t, result)

	memo, err := memoInteractor.GetHarvestMemo()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), memo.Cycles)
	assert.True(t, now.Equal(memo.LastCheckTime))
	assert.Nil(t, memo.LastHarvestTime)

	clock.Mine(144)
	now = now.Add(time.Hour)
	result, err = bot.RunCycle()
	require.NoError(t, err)
	require.NotNil(t, result)
	// A and B are due, C is not
	assert.Equal(t, uint64(266_640+216_645), result.TotalRewards)

	memo, err = memoInteractor.GetHarvestMemo()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), memo.Cycles)
	require.NotNil(t, memo.LastHarvestTime)
	assert.True(t, now.Equal(*memo.LastHarvestTime))
	assert.Equal(t, result.Net, memo.LastResult.Net)
}

func TestHarvestInteractor_Failures(t *testing.T) {
	ledgerInteractor, _, clock := newTestInteractor(t)
	memoStore := newFakeMemoStore()
	bot := NewHarvestInteractor(ledgerInteractor, NewMemoInteractor(memoStore), "mallory", zap.NewNop())

	clock.Mine(72)
	_, err := bot.RunCycle()
	assert.ErrorIs(t, err, domain.ErrorUnauthorized)
	assert.Contains(t, memoStore.memos[HarvestMemoKey], `"cycles":1`)

	memoStore.err = fmt.Errorf("memo table missing")
	_, err = bot.RunCycle()
	assert.EqualError(t, err, "memo table missing")
}
