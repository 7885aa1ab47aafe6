package snapshot

import (
	"context"
)

// Flush writes pending changes now. It returns the backend error, which is
// also logged; the in-memory state is kept either way.
func (s *Store) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if !s.dirty || s.backend == nil {
		s.dirty = false
		s.mu.Unlock()
		return nil
	}
	payload, err := encodeItems(s.items)
	backend := s.backend
	count := len(s.items)
	s.dirty = false
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("encoding snapshots failed", "error", err)
		return err
	}

	if batch, ok := backend.(batchBackend); ok {
		err = batch.SetItems(ctx, map[string]string{
			DataKey:    string(payload),
			VersionKey: Version,
		})
	} else {
		err = backend.SetItem(ctx, DataKey, string(payload))
		if err == nil {
			err = backend.SetItem(ctx, VersionKey, Version)
		}
	}
	if err != nil {
		s.logger.Warn("saving snapshots failed", "error", err)
		return err
	}
	s.logger.Debug("saved snapshots", "count", count)
	return nil
}

// Run writes pending changes whenever the store is mutated, coalescing
// bursts into a single write. It flushes once more and returns nil when ctx
// is done.
func (s *Store) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = s.Flush(context.WithoutCancel(ctx))
			return nil
		case <-s.signal:
			_ = s.Flush(ctx)
		}
	}
}
