package postgres

import (
	"context"
	"fmt"

	"gestock/internal/domain/sequence"
)

// SequenceStore is the PostgreSQL implementation of sequence.Store.
// The UPSERT makes the increment atomic: two concurrent validations of the
// same counter serialize on the row and never see the same value.
type SequenceStore struct {
	txManager *TxManager
}

var _ sequence.Store = (*SequenceStore)(nil)

func NewSequenceStore(txManager *TxManager) *SequenceStore {
	return &SequenceStore{txManager: txManager}
}

func (s *SequenceStore) NextValue(ctx context.Context, key string) (int64, error) {
	sql := `INSERT INTO stock_sequences (key, current_val)
	        VALUES ($1, 1)
	        ON CONFLICT (key)
	        DO UPDATE SET current_val = stock_sequences.current_val + 1
	        RETURNING current_val`

	var val int64
	if err := s.txManager.GetQuerier(ctx).QueryRow(ctx, sql, key).Scan(&val); err != nil {
		return 0, fmt.Errorf("next sequence value for %s: %w", key, err)
	}
	return val, nil
}
