package client

import (
	"errors"

	"fight-manager-api/packages/core/models"
)

var ErrTxDone = errors.New("transaction already committed or rolled back")

// Tx applies a tentative change to a Board and either commits the server's
// answer or restores the snapshot taken at Begin.
type Tx struct {
	board    *Board
	snapshot []models.Fight
	done     bool
}

func (tx *Tx) Snapshot() []models.Fight {
	return cloneFights(tx.snapshot)
}

// Apply shows fights on the board until Commit or Rollback.
func (tx *Tx) Apply(fights []models.Fight) error {
	if tx.done {
		return ErrTxDone
	}
	tx.board.replace(fights)
	return nil
}

func (tx *Tx) Commit(fights []models.Fight) error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	tx.board.replace(fights)
	return nil
}

func (tx *Tx) Rollback() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	tx.board.replace(tx.snapshot)
	return nil
}

func cloneFights(fights []models.Fight) []models.Fight {
	if fights == nil {
		return nil
	}
	out := make([]models.Fight, len(fights))
	copy(out, fights)
	return out
}
