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

// Package param implements the ParamHandler: an ordered, keyed map of
// typed parameters bound to world-model elements or scalars.
package param

import (
	"fmt"

	"github.com/skiros2/skiros-go/skierr"
)

// Type classifies why a parameter exists and whether it must be bound
// before a skill may execute.
type Type int

const (
	Required Type = iota
	Optional
	Inferred
	Config
	System
)

func (t Type) String() string {
	switch t {
	case Required:
		return "Required"
	case Optional:
		return "Optional"
	case Inferred:
		return "Inferred"
	case Config:
		return "Config"
	case System:
		return "System"
	default:
		return "Unknown"
	}
}

// Parameter is one entry of a Handler.
type Parameter struct {
	Key       string
	Type      Type
	ValueType string // iri of the expected value's type
	Value     any    // worldmodel.Element or a scalar
	Specified bool
}

// UnknownParamError is returned when a Handler operation references a key
// that was never declared with AddParam. It wraps skierr.ErrUnknownParam,
// so callers that only care about the kind can match with errors.Is and
// ignore the Key field entirely.
type UnknownParamError struct{ Key string }

func (e *UnknownParamError) Error() string {
	return fmt.Sprintf("param: unknown key %q: %s", e.Key, skierr.ErrUnknownParam)
}

func (e *UnknownParamError) Unwrap() error {
	return skierr.ErrUnknownParam
}

func unknownParam(key string) error {
	return &UnknownParamError{Key: key}
}

// Handler is an ordered key->Parameter map: insertion order is preserved
// for PrintState and for deterministic PDDL object enumeration.
type Handler struct {
	order  []string
	params map[string]*Parameter
}

// NewHandler returns an empty Handler.
func NewHandler() *Handler {
	return &Handler{params: map[string]*Parameter{}}
}

// AddParam declares a new parameter. Re-declaring an existing key resets
// its value and Specified flag.
func (h *Handler) AddParam(key string, value any, typ Type) {
	if _, ok := h.params[key]; !ok {
		h.order = append(h.order, key)
	}
	h.params[key] = &Parameter{Key: key, Type: typ, Value: value}
}

// AddTypedParam declares a new parameter with an explicit value-type iri.
func (h *Handler) AddTypedParam(key string, value any, typ Type, valueType string) {
	h.AddParam(key, value, typ)
	h.params[key].ValueType = valueType
}

// HasParam reports whether key was declared.
func (h *Handler) HasParam(key string) bool {
	_, ok := h.params[key]
	return ok
}

// GetParam returns the full Parameter record for key.
func (h *Handler) GetParam(key string) (*Parameter, error) {
	p, ok := h.params[key]
	if !ok {
		return nil, unknownParam(key)
	}
	return p, nil
}

// Specify binds value to key, overwriting silently if already specified.
func (h *Handler) Specify(key string, value any) error {
	p, ok := h.params[key]
	if !ok {
		return unknownParam(key)
	}
	p.Value = value
	p.Specified = true
	return nil
}

// GetParamValue returns the bound value for key (an Element or scalar).
func (h *Handler) GetParamValue(key string) (any, error) {
	p, ok := h.params[key]
	if !ok {
		return nil, unknownParam(key)
	}
	return p.Value, nil
}

// Reset re-binds a batch of parameters in one call, e.g. when a task is
// re-parameterised for a fresh run.
func (h *Handler) Reset(values map[string]any) error {
	for k, v := range values {
		if err := h.Specify(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Remap renames a parameter key in place (keeping its position, value,
// type, and Specified flag), used when a child node's parameters are
// folded into a parent's keyspace during tree assembly.
func (h *Handler) Remap(oldKey, newKey string) error {
	p, ok := h.params[oldKey]
	if !ok {
		return unknownParam(oldKey)
	}
	if oldKey == newKey {
		return nil
	}
	delete(h.params, oldKey)
	p.Key = newKey
	h.params[newKey] = p
	for i, k := range h.order {
		if k == oldKey {
			h.order[i] = newKey
			break
		}
	}
	return nil
}

// Keys returns every declared key, in declaration order.
func (h *Handler) Keys() []string {
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// GetParamMap returns the ordered key->Parameter mapping. Callers must not
// mutate the returned Parameter values in place; copy first.
func (h *Handler) GetParamMap() []*Parameter {
	out := make([]*Parameter, 0, len(h.order))
	for _, k := range h.order {
		out = append(out, h.params[k])
	}
	return out
}

// PrintState renders every parameter's key, type, and value for debugging
// and the Print visitor.
func (h *Handler) PrintState() string {
	s := ""
	for _, k := range h.order {
		p := h.params[k]
		s += fmt.Sprintf("%s(%s)=%v[specified=%t] ", p.Key, p.Type, p.Value, p.Specified)
	}
	return s
}

// Copy deep-copies parameter values (not any world-model elements they may
// reference) into a new Handler with the same declaration order.
func (h *Handler) Copy() *Handler {
	out := NewHandler()
	for _, k := range h.order {
		p := h.params[k]
		out.order = append(out.order, k)
		cp := *p
		out.params[k] = &cp
	}
	return out
}
