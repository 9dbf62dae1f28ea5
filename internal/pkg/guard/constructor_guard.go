// Package guard provides ConstructorGuard, a marker embedded in value objects,
// entities and commands so that zero values created with a struct literal are
// rejected by their Validate methods.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether the enclosing object was built by its constructor.
//
// Example:
//
//	var ErrDecisionNotConstructed = errors.New("Decision must be created via NewDecision")
//
//	type Decision struct {
//	    action Action
//	    guard  guard.ConstructorGuard
//	}
//
//	func NewDecision(action Action) Decision {
//	    return Decision{action: action, guard: guard.NewConstructorGuard()}
//	}
//
//	func (d Decision) Validate() error {
//	    return d.guard.Validate(ErrDecisionNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard marks an object as properly constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
