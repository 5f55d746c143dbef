package valkey

import (
	"context"
	"errors"

	"github.com/pickmyelective/electives/internal/db"
)

// delBatch bounds the number of keys per DEL.
const delBatch = 500

// DropIndex removes an FT index. valkey-search has no DD flag, so deleteDocs
// removes the documents under the index prefix with SCAN + DEL. Documents are
// removed even when the index is already gone.
func (s *Store) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	var dropErr error
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if !isNotFound(err) {
			return &db.Error{Op: db.OpDropIndex, Err: err}
		}
		dropErr = db.ErrIndexNotFound
	}

	if deleteDocs {
		if err := s.deletePrefix(ctx, indexToKeyPrefix(name)); err != nil {
			return err
		}
	}
	return dropErr
}

func (s *Store) deletePrefix(ctx context.Context, prefix string) error {
	keys, err := s.Scan(ctx, prefix+"*")
	if err != nil {
		return err
	}
	for start := 0; start < len(keys); start += delBatch {
		end := min(start+delBatch, len(keys))
		cmd := s.b().Del().Key(keys[start:end]...).Build()
		if err := s.do(ctx, cmd).Error(); err != nil {
			return &db.Error{Op: db.OpDel, Err: err}
		}
	}
	return nil
}

// SupportsAliases returns false: valkey-search has no FT.ALIAS* commands.
func (s *Store) SupportsAliases(_ context.Context) bool { return false }

// UpdateAlias is not available on valkey-search; callers resolve aliases themselves.
func (s *Store) UpdateAlias(_ context.Context, _, _ string) error {
	return &db.Error{Op: db.OpAliasUpdate, Err: errors.ErrUnsupported}
}
