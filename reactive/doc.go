// Package reactive is the small observable substrate the pipeline engines
// run on.
//
// Every value belongs to a Runtime, an explicit context object that owns
// dependency tracking, the scheduler used for throttled publication, and
// the logger, metrics and tracer handed to engines. There is no
// package-level reactive state.
//
// # Values
//
//   - Observable: a settable value; Get inside a Computed records a dependency
//   - Computed: a derived value that re-evaluates synchronously when a
//     dependency notifies, and notifies only when its result changes
//   - Array: a mutable sequence that publishes a diff.Script per change,
//     with WillMutate/HasMutated brackets coalescing nested edits
//
// # Threading
//
// Propagation is single-threaded and synchronous on the goroutine that
// performs the mutation. Timer callbacks of the default scheduler run under
// Runtime.Do; host code that mutates values while throttles are pending
// must do so inside Do as well.
//
// # Usage
//
//	rt := reactive.NewRuntime()
//	items := reactive.NewArray(rt, 1, 2, 3)
//	total := reactive.NewComputed(rt, func() int {
//	    sum := 0
//	    for _, v := range items.Get() {
//	        sum += v
//	    }
//	    return sum
//	})
//	_ = items.Push(4) // total.Peek() == 10
package reactive
