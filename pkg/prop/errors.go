package prop

import "errors"

// ErrDuplicateProperty is returned by NewManager when two properties
// share a name. Property identity is by name; the second declaration is
// a configuration error, not an override.
var ErrDuplicateProperty = errors.New("prop: duplicate property name")

// ErrUnknownProperty is returned when an operation or a declared
// dependency refers to a name that is not part of the managed set.
var ErrUnknownProperty = errors.New("prop: unknown property")

// ErrCyclicDependency is returned by NewManager when the prerequisite
// graph contains a cycle. Cycles are rejected at construction rather
// than mis-tiered or looped over.
var ErrCyclicDependency = errors.New("prop: cyclic dependency")

// ErrNilProperty is returned by NewManager when the property list
// contains a nil entry.
var ErrNilProperty = errors.New("prop: nil property")
