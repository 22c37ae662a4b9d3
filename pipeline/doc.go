// Package pipeline maintains derived collections incrementally.
//
// A transformation subscribes to the edit script of its source and keeps
// its output consistent by touching only the elements an edit affects.
// Each element's projection runs inside a reactive.Computed, so when a
// value the projection read changes, only that element is re-evaluated.
//
// # Transformations
//
//   - Map, MapFunc, FilterMap: projection in source order
//   - Filter: the elements satisfying a predicate, in source order
//   - SortBy, SortByFunc: the source elements ordered by a key tuple
//   - IndexBy, IndexByFunc: key to bucket of elements
//   - UniqueIndexBy, UniqueIndexByFunc: key to one element
//
// Map, Filter and SortBy return a *Collection, which is itself a Source and
// chains further transformations. Index outputs are terminal.
//
// Every output mutates inside a WillMutate/HasMutated bracket, so one
// source change produces exactly one output notification however many
// elements it touched.
//
// # Resources
//
// MappingWithDispose and DisposeItem release what a projection allocated.
// Each runs once per projection: when the projection is replaced by a
// re-evaluation, when its element is removed from the source (not when it
// moves), or when the output is disposed.
//
// # Errors
//
// Option conflicts fail construction with errors.ErrCodeConfiguration. A
// duplicate key in a unique index fails the triggering mutation with
// errors.ErrCodeDuplicateKey and is not rolled back.
//
// # Usage
//
//	rt := reactive.NewRuntime()
//	src := reactive.NewArray(rt, 5, 3, 1, 4)
//	sorted, err := pipeline.SortByFunc(src, func(v int) pipeline.Keys {
//	    return pipeline.By(v)
//	})
//	if err != nil {
//	    return err
//	}
//	_ = src.Push(2) // sorted.Peek() == [1 2 3 4 5]
package pipeline
