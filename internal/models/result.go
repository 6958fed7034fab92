package models

// Status is the outcome of a resolution step
type Status int

const (
	Resolved Status = iota
	Deferred
	Failed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Deferred:
		return "deferred"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the three-valued outcome of a resolution step. A deferred result
// lists the types that were not yet available.
type Result[T any] struct {
	Value   T
	Status  Status
	Pending []string
	Err     error
}

// Ok returns a resolved result
func Ok[T any](value T) Result[T] {
	return Result[T]{Value: value, Status: Resolved}
}

// Defer returns a deferred result waiting on the given types
func Defer[T any](pending ...string) Result[T] {
	return Result[T]{Status: Deferred, Pending: pending}
}

// Fail returns a failed result
func Fail[T any](err error) Result[T] {
	return Result[T]{Status: Failed, Err: err}
}

// IsResolved reports whether the result holds a value
func (r Result[T]) IsResolved() bool {
	return r.Status == Resolved
}

// IsDeferred reports whether the result is waiting on a later round
func (r Result[T]) IsDeferred() bool {
	return r.Status == Deferred
}

// Propagate converts a non-resolved result to another value type
func Propagate[T, U any](r Result[T]) Result[U] {
	return Result[U]{Status: r.Status, Pending: r.Pending, Err: r.Err}
}

// PendingSet accumulates the pending types of several deferred results
type PendingSet struct {
	seen  map[string]bool
	order []string
}

// Add records the pending types of a deferred result
func (p *PendingSet) Add(names ...string) {
	if p.seen == nil {
		p.seen = make(map[string]bool)
	}
	for _, n := range names {
		if !p.seen[n] {
			p.seen[n] = true
			p.order = append(p.order, n)
		}
	}
}

// Empty reports whether nothing is pending
func (p *PendingSet) Empty() bool {
	return len(p.order) == 0
}

// List returns the pending types in first-seen order
func (p *PendingSet) List() []string {
	return append([]string(nil), p.order...)
}
