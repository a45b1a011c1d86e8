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

// Package worldmodel defines the contract-level interface to the shared
// world graph: elements, their properties, typed relations, and the
// subclass/ontology lookups the condition and PDDL-compiler packages need.
//
// This package intentionally stops at the interface: the concrete triple
// store is an external collaborator (see SPEC_FULL.md §1). A small
// reference implementation lives in worldmodel/memory, used only by tests
// and the demo command.
package worldmodel

import "fmt"

// Element is an identified node in the world graph. An Element with an
// empty ID is abstract (a template); with a non-empty ID it is grounded.
type Element struct {
	ID         string
	Type       string
	Label      string
	Properties map[string][]any
	Relations  []Relation
}

// Relation is a typed edge between two elements, or between an element and
// an abstract parameter key when Abstract is true.
type Relation struct {
	Src       string
	Predicate string
	Dst       string
	Truth     bool
	Abstract  bool
}

// Clone returns a deep copy of e, safe to mutate independently of e.
func (e Element) Clone() Element {
	c := e
	if e.Properties != nil {
		c.Properties = make(map[string][]any, len(e.Properties))
		for k, v := range e.Properties {
			vv := make([]any, len(v))
			copy(vv, v)
			c.Properties[k] = vv
		}
	}
	if e.Relations != nil {
		c.Relations = make([]Relation, len(e.Relations))
		copy(c.Relations, e.Relations)
	}
	return c
}

// GetIdNumber yields 1 for every grounded element (the ID is not parsed;
// callers only rely on sign), and -1 for abstract (unbound) elements.
func (e Element) GetIdNumber() int {
	if e.ID == "" {
		return -1
	}
	return 1
}

// HasProperty reports whether the element carries prop, optionally
// requiring one of its values to equal value (when len(value) == 1).
func (e Element) HasProperty(prop string, value ...any) bool {
	vs, ok := e.Properties[prop]
	if !ok {
		return false
	}
	if len(value) == 0 {
		return true
	}
	for _, v := range vs {
		if v == value[0] {
			return true
		}
	}
	return false
}

// GetProperty returns the first value stored for prop, or nil, false if
// absent.
func (e Element) GetProperty(prop string) (any, bool) {
	vs, ok := e.Properties[prop]
	if !ok || len(vs) == 0 {
		return nil, false
	}
	return vs[0], true
}

// AppendProperty appends value to prop's value list, creating it if absent.
func (e *Element) AppendProperty(prop string, value any) {
	if e.Properties == nil {
		e.Properties = map[string][]any{}
	}
	e.Properties[prop] = append(e.Properties[prop], value)
}

// SetProperty replaces prop's value list with a single value.
func (e *Element) SetProperty(prop string, value any) {
	if e.Properties == nil {
		e.Properties = map[string][]any{}
	}
	e.Properties[prop] = []any{value}
}

// RemoveProperty deletes prop entirely.
func (e *Element) RemoveProperty(prop string) {
	delete(e.Properties, prop)
}

// RemovePropertyValue removes a single matching value from prop, leaving
// the rest; deletes the key if no values remain.
func (e *Element) RemovePropertyValue(prop string, value any) {
	vs, ok := e.Properties[prop]
	if !ok {
		return
	}
	out := vs[:0]
	for _, v := range vs {
		if v != value {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		delete(e.Properties, prop)
	} else {
		e.Properties[prop] = out
	}
}

// Binding is one row of a queryOntology result set.
type Binding map[string]string

// Model is the WorldModel facade contract. Implementations must be
// synchronous and safe for concurrent use. Lookup methods return
// empty/false for absence, never an error; mutations fail only on
// transport error.
type Model interface {
	ResolveElement(template Element) (Element, bool, error)
	Instantiate(templateID string, recursive bool, relations []Relation) (Element, error)
	GetElement(id string) (Element, bool, error)
	UpdateElement(e Element) error
	AddElement(e Element, parentID, predicate string) (Element, error)
	RemoveElement(id string) error
	GetRelations(src, predicate, dst string) ([]Relation, error)
	SetRelation(src, predicate, dst string, truth bool) (bool, error)
	QueryOntology(sparql string) ([]Binding, error)
	GetSubClasses(typ string) ([]string, error)
	GetType(iri string) (string, bool, error)
	AddClass(iri, parent string) error
}

// ErrNotFound is never returned by lookup methods (which use the zero
// value + false / nil slice), only usable by callers that want a sentinel
// for GetElement-style helpers layered on top of Model.
var ErrNotFound = fmt.Errorf("worldmodel: not found")
