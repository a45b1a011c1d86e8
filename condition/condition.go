/*
   Copyright 2026 The skiros-go Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package condition implements the declarative predicate algebra skills use
// to describe pre-/post-conditions over the world graph: nine variants
// sharing a common Evaluate/SetTrue/Revert/SetDesiredState/ToElement/
// IsEqual/HasConflict contract.
package condition

import (
	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/worldmodel"
)

// Operator is a comparison operator for Property conditions.
type Operator string

const (
	Eq Operator = "="
	Ne Operator = "!="
	Lt Operator = "<"
	Le Operator = "<="
	Gt Operator = ">"
	Ge Operator = ">="
)

// Snapshot is the opaque rollback state returned by SetTrue and consumed by
// Revert. It replaces the Python source's mutable _cache/_has_cache side
// channel (see SPEC_FULL.md DESIGN NOTES) with an explicit value: a
// Condition that never calls SetTrue has no Snapshot to misuse, and a
// second Revert with a nil Snapshot is a type-checked no-op rather than a
// silently-wrong read of stale cache state.
type Snapshot struct {
	element    *worldmodel.Element
	newElement *worldmodel.Element
	relations  []worldmodel.Relation
	or         *orSnapshot
}

// Condition is the shared contract every variant implements.
type Condition interface {
	// Keys returns the parameter keys this condition is over, in subject
	// (then object, for relations) order.
	Keys() []string
	// Description renders a human-readable rendition of the condition,
	// refreshed by the most recent Evaluate call.
	Description() string
	// Remap rewrites oldKey to newKey wherever it appears in Keys().
	Remap(oldKey, newKey string)
	// Evaluate is pure w.r.t. the world model, except that it may refresh
	// its own cached Description.
	Evaluate(ph *param.Handler, wm worldmodel.Model) (bool, error)
	// SetTrue mutates ph/wm so Evaluate would return true, returning a
	// Snapshot to later Revert, or ok=false if the precondition for
	// mutation is unmet (e.g. the subject is still abstract).
	SetTrue(ph *param.Handler, wm worldmodel.Model) (snap *Snapshot, ok bool, err error)
	// Revert restores the state captured by snap. A nil snap (no prior
	// successful SetTrue) is a no-op that returns ok=false. Revert does not
	// mark snap as consumed: calling it again with the same snap repeats
	// the restore.
	Revert(ph *param.Handler, wm worldmodel.Model, snap *Snapshot) (ok bool, err error)
	// SetDesiredState imprints the desired outcome onto the parameter
	// value's element when it is still abstract, without touching the
	// world model; used by the planner to propagate constraints.
	SetDesiredState(ph *param.Handler) error
	// ToElement serialises the condition as a world-model element.
	ToElement() worldmodel.Element
	// IsEqual is structural equality: same variant, same subjects, same
	// operator/value/desired state.
	IsEqual(other Condition) bool
	// HasConflict reports whether other contradicts this condition: same
	// subjects, same property/relation, opposite desired state.
	HasConflict(other Condition) bool
}

func cloneElement(e worldmodel.Element) *worldmodel.Element {
	c := e.Clone()
	return &c
}

// resolveElement fetches the bound value for key as a worldmodel.Element,
// erroring if the parameter is unbound or not an Element.
func resolveElement(ph *param.Handler, key string) (worldmodel.Element, error) {
	v, err := ph.GetParamValue(key)
	if err != nil {
		return worldmodel.Element{}, err
	}
	e, ok := v.(worldmodel.Element)
	if !ok {
		return worldmodel.Element{}, &NotAnElementError{Key: key}
	}
	return e, nil
}

// NotAnElementError is returned when a condition expects a parameter's
// bound value to be a worldmodel.Element but finds a scalar instead.
type NotAnElementError struct{ Key string }

func (e *NotAnElementError) Error() string {
	return "condition: parameter " + e.Key + " is not bound to an Element"
}
