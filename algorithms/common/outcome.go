package common

// Outcome carries the result of a stage that may substitute a documented default
// instead of failing. FellBack reports which path produced Value.
type Outcome[T any] struct {
	Value    T      `json:"value"`
	FellBack bool   `json:"fell_back"`
	Reason   string `json:"reason,omitempty"`
}

// Ok wraps a value computed the normal way
func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{Value: value}
}

// Fallback wraps a substituted default together with why it was needed
func Fallback[T any](value T, reason string) Outcome[T] {
	return Outcome[T]{Value: value, FellBack: true, Reason: reason}
}
