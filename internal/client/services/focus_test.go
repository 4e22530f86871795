package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/oriontask/internal/client/models"
	"github.com/stretchr/testify/require"
)

func focusClient(now, next []models.Task) *fakeClient {
	return &fakeClient{
		ListByUserFn: func(uid string, st models.TaskStatus, p models.PageRequest) (*models.Page[models.Task], error) {
			if p.Page != 0 || p.Size != models.DefaultPageSize {
				return nil, errors.New("unexpected page request")
			}
			if st == models.StatusNow {
				return page(now...), nil
			}
			return page(next...), nil
		},
		ChangeStatusFn: func(id int64, st models.TaskStatus) (*models.Task, error) {
			tk := task(id, dharma(1, false), st)
			return &tk, nil
		},
	}
}

func ids(ts []models.Task) []int64 {
	out := make([]int64, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestFocusPolicy_PromotesHeadOfNext(t *testing.T) {
	d := dharma(1, false)
	now := []models.Task{task(1, d, models.StatusNow), task(2, d, models.StatusNow)}
	next := []models.Task{
		task(11, d, models.StatusNext), task(12, d, models.StatusNext),
		task(13, d, models.StatusNext), task(14, d, models.StatusNext),
	}
	fc := focusClient(now, next)

	got, err := NewFocusPolicy(fc, quiet).Replenish(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 11, 12, 13}, ids(got))
	require.Equal(t, []int64{11, 12, 13}, fc.StatusChanges)

	for _, tk := range got {
		require.Equal(t, models.StatusNow, tk.Status)
	}
}

func TestFocusPolicy_AtCapacityMakesNoPromotion(t *testing.T) {
	d := dharma(1, false)
	var now []models.Task
	for i := int64(1); i <= FocusCapacity; i++ {
		now = append(now, task(i, d, models.StatusNow))
	}
	fc := focusClient(now, []models.Task{task(20, d, models.StatusNext)})

	got, err := NewFocusPolicy(fc, quiet).Replenish(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, FocusCapacity)
	require.Equal(t, 0, fc.count("ChangeTaskStatus"))
}

func TestFocusPolicy_ShortNextPromotesAll(t *testing.T) {
	d := dharma(1, false)
	fc := focusClient(nil, []models.Task{task(11, d, models.StatusNext)})

	got, err := NewFocusPolicy(fc, quiet).Replenish(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, []int64{11}, ids(got))
}

func TestFocusPolicy_PartialFailureKeepsEarlierPromotions(t *testing.T) {
	d := dharma(1, false)
	next := []models.Task{task(11, d, models.StatusNext), task(12, d, models.StatusNext), task(13, d, models.StatusNext)}
	fc := focusClient([]models.Task{task(1, d, models.StatusNow)}, next)
	boom := errors.New("boom")
	fc.ChangeStatusFn = func(id int64, st models.TaskStatus) (*models.Task, error) {
		if id == 12 {
			return nil, boom
		}
		tk := task(id, d, st)
		return &tk, nil
	}

	got, err := NewFocusPolicy(fc, quiet).Replenish(context.Background(), userID)
	require.ErrorIs(t, err, boom)

	var perr *PromotionError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, []int64{11}, ids(perr.Promoted))
	require.Equal(t, []int64{1, 11}, ids(got))
	require.Equal(t, []int64{11, 12}, fc.StatusChanges, "no promotion after the failure")
}

func TestFocusPolicy_ListingFailureMakesNoPromotion(t *testing.T) {
	fc := &fakeClient{
		ListByUserFn: func(string, models.TaskStatus, models.PageRequest) (*models.Page[models.Task], error) {
			return nil, errors.New("offline")
		},
	}

	got, err := NewFocusPolicy(fc, quiet).Replenish(context.Background(), userID)
	require.Error(t, err)
	require.Nil(t, got)
	require.Equal(t, 0, fc.count("ChangeTaskStatus"))
}
