// Package stages implements the five cognitive agents of the deck
// pipeline (Strategist, Analyst, Storyteller, Designer, Reviewer),
// grounded on the teacher's agent-composition style and on
// original_source/mckinsey-ppt-generator/app/agents/*.py for per-stage
// substep sequencing and fallback rules.
package stages

// Outcome classifies how a stage's run concluded (spec.md §9: "stage
// return type is a sum of {Ok(value), Degraded(value, reason),
// Fatal(error)}").
type Outcome int

const (
	Ok Outcome = iota
	Degraded
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case Degraded:
		return "degraded"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

// StageResult[T] carries a stage's output value together with its
// outcome. A Fatal result's Value is the zero value of T; callers must
// check Outcome before reading Value.
type StageResult[T any] struct {
	Outcome Outcome
	Value   T
	Reason  string // populated for Degraded
	Err     error  // populated for Fatal
}

// OkResult builds a successful StageResult.
func OkResult[T any](value T) StageResult[T] {
	return StageResult[T]{Outcome: Ok, Value: value}
}

// DegradedResult builds a StageResult whose value was produced by a
// fallback path rather than the primary one.
func DegradedResult[T any](value T, reason string) StageResult[T] {
	return StageResult[T]{Outcome: Degraded, Value: value, Reason: reason}
}

// FatalResult builds a StageResult carrying an unrecoverable error.
func FatalResult[T any](err error) StageResult[T] {
	var zero T
	return StageResult[T]{Outcome: Fatal, Value: zero, Err: err}
}

// IsDegraded reports whether r was produced by a fallback path.
func (r StageResult[T]) IsDegraded() bool { return r.Outcome == Degraded }

// IsFatal reports whether r carries an unrecoverable error.
func (r StageResult[T]) IsFatal() bool { return r.Outcome == Fatal }
