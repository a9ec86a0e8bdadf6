package client

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"fight-manager-api/packages/core/models"
	"fight-manager-api/packages/core/schedule"
)

// Board is a local copy of the fight card. Refreshes overwrite it whole, so
// the last refresh to finish wins. Every successful mutation refreshes it.
type Board struct {
	client *Client

	mu          sync.RWMutex
	fights      []models.Fight
	refreshedAt time.Time
	onChange    func([]models.Fight)
}

func NewBoard(c *Client) *Board {
	return &Board{client: c}
}

// OnChange registers a callback run after every change of the local card.
func (b *Board) OnChange(fn func([]models.Fight)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

func (b *Board) Refresh(ctx context.Context) error {
	fights, err := b.client.Fights(ctx)
	if err != nil {
		return err
	}
	b.replace(fights)
	return nil
}

// Poll refreshes the board every interval once the poller is started.
func (b *Board) Poll(interval time.Duration) *Poller {
	return NewPoller(interval, b.Refresh)
}

func (b *Board) Fights() []models.Fight {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneFights(b.fights)
}

func (b *Board) RefreshedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.refreshedAt
}

func (b *Board) Status() schedule.Status {
	return schedule.Evaluate(b.Fights())
}

// Snapshot derives the per-fight flags the way the server does.
func (b *Board) Snapshot(now time.Time) models.Board {
	return schedule.BuildBoard(b.Fights(), now)
}

func (b *Board) Begin() *Tx {
	return &Tx{board: b, snapshot: b.Fights()}
}

// Renumber moves a fight locally right away, then asks the server. The
// server's card replaces the local one on success; on failure the card before
// the move is restored.
func (b *Board) Renumber(ctx context.Context, id string, number int) error {
	tx := b.Begin()

	// Nothing has been applied yet, so a local failure leaves the card as is.
	moved, err := schedule.Renumber(tx.Snapshot(), id, number)
	if err != nil {
		return err
	}
	if err := tx.Apply(moved); err != nil {
		return err
	}

	fights, err := b.client.ChangeNumber(ctx, id, number)
	if err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit(fights)
}

func (b *Board) Start(ctx context.Context, id string) error {
	return b.mutate(ctx, func() error {
		_, err := b.client.Start(ctx, id)
		return err
	})
}

func (b *Board) End(ctx context.Context, id string) error {
	return b.mutate(ctx, func() error {
		_, err := b.client.End(ctx, id)
		return err
	})
}

func (b *Board) Cancel(ctx context.Context, id string) error {
	return b.mutate(ctx, func() error {
		_, err := b.client.Cancel(ctx, id)
		return err
	})
}

func (b *Board) Reset(ctx context.Context, id string) error {
	return b.mutate(ctx, func() error {
		_, err := b.client.Reset(ctx, id)
		return err
	})
}

func (b *Board) Add(ctx context.Context, req models.CreateFightRequest) error {
	return b.mutate(ctx, func() error {
		_, err := b.client.Add(ctx, req)
		return err
	})
}

func (b *Board) Update(ctx context.Context, id string, req models.UpdateFightRequest) error {
	return b.mutate(ctx, func() error {
		_, err := b.client.Update(ctx, id, req)
		return err
	})
}

func (b *Board) Delete(ctx context.Context, id string) error {
	return b.mutate(ctx, func() error {
		return b.client.Delete(ctx, id)
	})
}

func (b *Board) Clear(ctx context.Context) error {
	return b.mutate(ctx, func() error {
		_, err := b.client.Clear(ctx)
		return err
	})
}

func (b *Board) SetStartTime(ctx context.Context, clock string) error {
	return b.mutate(ctx, func() error {
		_, err := b.client.SetStartTime(ctx, clock)
		return err
	})
}

func (b *Board) Import(ctx context.Context, filename string, r io.Reader) (*models.ImportResult, error) {
	var result *models.ImportResult
	err := b.mutate(ctx, func() error {
		var err error
		result, err = b.client.Import(ctx, filename, r)
		return err
	})
	return result, err
}

func (b *Board) mutate(ctx context.Context, action func() error) error {
	if err := action(); err != nil {
		return err
	}
	return b.Refresh(ctx)
}

func (b *Board) replace(fights []models.Fight) {
	sorted := schedule.SortByNumber(fights)
	b.mu.Lock()
	b.fights = sorted
	b.refreshedAt = time.Now()
	onChange := b.onChange
	b.mu.Unlock()

	if onChange != nil {
		onChange(cloneFights(sorted))
	}
}
