package until

// conditionKind identifies a condition variant.
type conditionKind int

const (
	kindMatch conditionKind = iota
	kindEquality
	kindTruthy
	kindNull
	kindNaN
	kindUndefined
	kindContains
	kindChangeCount
	kindNegation
)

// String returns the condition name used in signals.
func (k conditionKind) String() string {
	switch k {
	case kindMatch:
		return "match"
	case kindEquality:
		return "equality"
	case kindTruthy:
		return "truthy"
	case kindNull:
		return "null"
	case kindNaN:
		return "nan"
	case kindUndefined:
		return "undefined"
	case kindContains:
		return "contains"
	case kindChangeCount:
		return "change_count"
	case kindNegation:
		return "negation"
	default:
		return "unknown"
	}
}

// condition is a predicate over a value transition. Conditions are
// immutable once built; change counting state lives in the waiter.
type condition[T any] struct {
	kind conditionKind
	deep bool

	// kindMatch
	predicate func(T) bool

	// kindEquality
	target Source[T]

	// kindContains
	contains func(T, bool) bool

	// kindChangeCount
	times int

	// kindNegation
	base *condition[T]
}

// evaluate reports whether the transition satisfies the condition and the
// payload to settle with. Every variant settles with the new value.
func (c *condition[T]) evaluate(value, old T) (T, bool) {
	return value, c.test(value, old)
}

func (c *condition[T]) test(value, old T) bool {
	switch c.kind {
	case kindMatch:
		return c.predicate(value)
	case kindEquality:
		return equal(value, c.target.Get(), c.deep)
	case kindTruthy:
		return isTruthy(value)
	case kindNull:
		return isNil(value)
	case kindNaN:
		return isNaN(value)
	case kindUndefined:
		return isZero(value)
	case kindContains:
		return c.contains(value, c.deep)
	case kindNegation:
		return !c.base.test(value, old)
	default:
		return false
	}
}

// counting reports whether the condition counts change events instead of
// inspecting values.
func (c *condition[T]) counting() bool {
	if c.kind == kindNegation {
		return c.base.counting()
	}
	return c.kind == kindChangeCount
}

// changeTarget returns the number of events a counting condition waits for.
func (c *condition[T]) changeTarget() int {
	if c.kind == kindNegation {
		return c.base.changeTarget()
	}
	return c.times
}

// name returns the outermost variant name, prefixed with "not_" for
// negations.
func (c *condition[T]) name() string {
	if c.kind == kindNegation {
		return "not_" + c.base.name()
	}
	return c.kind.String()
}

// negate wraps c so that its outcome is inverted.
func negate[T any](c *condition[T]) *condition[T] {
	return &condition[T]{kind: kindNegation, base: c}
}

// constant is a Source that always reports the same value.
type constant[T any] struct{ value T }

func (c constant[T]) Get() T { return c.value }

// sliceContains reports whether elem occurs in values.
func sliceContains[E any](values []E, elem E, deep bool) bool {
	for _, v := range values {
		if equal(v, elem, deep) {
			return true
		}
	}
	return false
}

// dependency returns the watchable equality target, if any, so the waiter
// can re-evaluate when the target changes.
func (c *condition[T]) dependency() (Watchable[T], bool) {
	switch c.kind {
	case kindNegation:
		return c.base.dependency()
	case kindEquality:
		w, ok := c.target.(Watchable[T])
		return w, ok
	}
	return nil, false
}
