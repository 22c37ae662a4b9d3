package pipeline

import (
	"github.com/kbukum/livecoll/diff"
	"github.com/kbukum/livecoll/logger"
)

// keyedStrategy places elements in an output ordered or grouped by a
// derived key. H identifies a tracked element once located.
type keyedStrategy[T, H any] interface {
	// locate finds the tracked element for a source element.
	locate(item T) (H, bool)
	// remove drops a located element from the output and disposes it.
	remove(h H) error
	// insert tracks and places newly added elements.
	insert(items []T) error
}

// applyKeyed applies a structural diff to a keyed output. Moves leave the
// output untouched. Every deletion is applied before any addition so keys
// freed by the diff are available to the elements it adds.
func applyKeyed[T, H any](b *base, s keyedStrategy[T, H], script diff.Script[T]) error {
	added, deleted := script.Partition()
	for _, entry := range deleted {
		h, ok := s.locate(entry.Value)
		if !ok {
			b.log.Debug("deleted element is not tracked", logger.Fields(logger.FieldOperation, "remove"))
			continue
		}
		if err := s.remove(h); err != nil {
			return err
		}
	}
	if len(added) == 0 {
		return nil
	}
	items := make([]T, len(added))
	for i, entry := range added {
		items[i] = entry.Value
	}
	return s.insert(items)
}
