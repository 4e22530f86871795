package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/oriontask/internal/client/client"
	"github.com/dmitrijs2005/oriontask/internal/client/models"
	"github.com/dmitrijs2005/oriontask/internal/logging"
)

// FocusCapacity is the number of tasks the NOW list is topped up to.
const FocusCapacity = 5

// PromotionError is returned when a NEXT→NOW promotion fails part way.
// Promoted holds the tasks that were moved before the failure; they stay
// in NOW.
type PromotionError struct {
	Promoted []models.Task
	Err      error
}

func (e *PromotionError) Error() string {
	return fmt.Sprintf("promotion stopped after %d task(s): %v", len(e.Promoted), e.Err)
}

func (e *PromotionError) Unwrap() error {
	return e.Err
}

// FocusPolicy tops up a user's NOW list from the head of their NEXT list.
type FocusPolicy struct {
	client client.Client
	log    logging.Logger
}

func NewFocusPolicy(c client.Client, log logging.Logger) *FocusPolicy {
	return &FocusPolicy{client: c, log: log}
}

// Replenish returns the user's NOW tasks followed by any NEXT tasks it
// promoted. Only the first page of each list is considered. Promotions run
// one after another and are not rolled back.
func (p *FocusPolicy) Replenish(ctx context.Context, userID string) ([]models.Task, error) {
	first := models.PageRequest{Page: 0, Size: models.DefaultPageSize}

	nowPage, err := p.client.ListTasksByUserAndStatus(ctx, userID, models.StatusNow, first)
	if err != nil {
		return nil, fmt.Errorf("list NOW tasks: %w", err)
	}
	nextPage, err := p.client.ListTasksByUserAndStatus(ctx, userID, models.StatusNext, first)
	if err != nil {
		return nil, fmt.Errorf("list NEXT tasks: %w", err)
	}

	now := pageContent(nowPage)
	next := pageContent(nextPage)

	if len(now) >= FocusCapacity {
		return now, nil
	}

	slots := FocusCapacity - len(now)
	if slots > len(next) {
		slots = len(next)
	}

	promoted := make([]models.Task, 0, slots)
	for _, t := range next[:slots] {
		updated, err := p.client.ChangeTaskStatus(ctx, t.ID, models.StatusNow)
		if err == nil && updated == nil {
			err = ErrEmptyResult
		}
		if err != nil {
			p.log.Error(ctx, "task promotion failed", "task_id", t.ID, "promoted", len(promoted), "error", err)
			return append(now, promoted...), &PromotionError{Promoted: promoted, Err: err}
		}
		promoted = append(promoted, *updated)
	}

	if len(promoted) > 0 {
		p.log.Info(ctx, "focus list replenished", "user_id", userID, "promoted", len(promoted))
	}
	return append(now, promoted...), nil
}

func pageContent(p *models.Page[models.Task]) []models.Task {
	if p == nil {
		return nil
	}
	return p.Content
}
