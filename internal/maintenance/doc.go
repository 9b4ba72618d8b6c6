// Package maintenance is the forecasting and scheduling engine.
//
// It is pure, synchronous computation over in-memory records: callers hand in
// vehicle facts, a baseline interval catalog, and the current task list, and
// get back the next task list and classifications. Every entry point takes the
// current time (and, where relevant, a resolver policy) explicitly so tests
// can inject fixed clocks and fixture catalogs.
//
// The engine does no I/O and holds no state. Invocations for different
// vehicles are independent; invocations for the same vehicle must be
// serialized by the caller.
package maintenance
