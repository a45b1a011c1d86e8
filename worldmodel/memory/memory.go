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

// Package memory is a reference, in-process implementation of
// worldmodel.Model, used by tests and cmd/skiros-monitor's demo scenario.
// It is not a triple store: its SPARQL-ish queryOntology only understands
// the handful of patterns the condition package emits, and its subclass
// closure is a plain adjacency walk, not an OWL reasoner.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/skiros2/skiros-go/worldmodel"
)

// Model is a mutex-guarded, map-backed worldmodel.Model.
type Model struct {
	mu        sync.RWMutex
	elements  map[string]worldmodel.Element
	templates map[string]worldmodel.Element
	relations []worldmodel.Relation
	subclass  map[string][]string // type -> direct parents
	nextID    int
}

// New returns an empty Model.
func New() *Model {
	return &Model{
		elements:  map[string]worldmodel.Element{},
		templates: map[string]worldmodel.Element{},
		subclass:  map[string][]string{},
	}
}

// AddTemplate registers e (keyed by e.Type) as resolvable/instantiable by
// ResolveElement/Instantiate. Demo/test helper, not part of the Model
// interface.
func (m *Model) AddTemplate(e worldmodel.Element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[e.Type] = e.Clone()
}

func (m *Model) allocID() string {
	m.nextID++
	return fmt.Sprintf("elem-%d", m.nextID)
}

func (m *Model) ResolveElement(template worldmodel.Element) (worldmodel.Element, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.elements {
		if e.Type != template.Type {
			continue
		}
		if template.Label != "" && e.Label != template.Label {
			continue
		}
		match := true
		for k, vs := range template.Properties {
			if !e.HasProperty(k, vs[0]) {
				match = false
				break
			}
		}
		if match {
			return e.Clone(), true, nil
		}
	}
	return worldmodel.Element{}, false, nil
}

func (m *Model) Instantiate(templateID string, recursive bool, relations []worldmodel.Relation) (worldmodel.Element, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tpl, ok := m.templates[templateID]
	if !ok {
		if e, ok := m.elements[templateID]; ok {
			tpl = e
		} else {
			return worldmodel.Element{}, fmt.Errorf("worldmodel/memory: unknown template %q", templateID)
		}
	}
	out := tpl.Clone()
	out.ID = m.allocID()
	m.elements[out.ID] = out
	for _, r := range relations {
		r.Src = out.ID
		m.relations = append(m.relations, r)
	}
	if recursive {
		for _, r := range tpl.Relations {
			if r.Predicate != "hasA" {
				continue
			}
			child, err := m.instantiateLocked(r.Dst, true)
			if err != nil {
				continue
			}
			m.relations = append(m.relations, worldmodel.Relation{Src: out.ID, Predicate: "hasA", Dst: child.ID, Truth: true})
		}
	}
	return out.Clone(), nil
}

func (m *Model) instantiateLocked(templateID string, recursive bool) (worldmodel.Element, error) {
	tpl, ok := m.templates[templateID]
	if !ok {
		return worldmodel.Element{}, fmt.Errorf("worldmodel/memory: unknown template %q", templateID)
	}
	out := tpl.Clone()
	out.ID = m.allocID()
	m.elements[out.ID] = out
	return out, nil
}

func (m *Model) GetElement(id string) (worldmodel.Element, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.elements[id]
	if !ok {
		return worldmodel.Element{}, false, nil
	}
	return e.Clone(), true, nil
}

func (m *Model) UpdateElement(e worldmodel.Element) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		return fmt.Errorf("worldmodel/memory: cannot update abstract element")
	}
	m.elements[e.ID] = e.Clone()
	return nil
}

func (m *Model) AddElement(e worldmodel.Element, parentID, predicate string) (worldmodel.Element, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = m.allocID()
	}
	m.elements[e.ID] = e.Clone()
	if parentID != "" {
		m.relations = append(m.relations, worldmodel.Relation{Src: parentID, Predicate: predicate, Dst: e.ID, Truth: true})
	}
	return e.Clone(), nil
}

func (m *Model) RemoveElement(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.elements, id)
	out := m.relations[:0]
	for _, r := range m.relations {
		if r.Src == id || r.Dst == id {
			continue
		}
		out = append(out, r)
	}
	m.relations = out
	return nil
}

func (m *Model) GetRelations(src, predicate, dst string) ([]worldmodel.Relation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []worldmodel.Relation
	for _, r := range m.relations {
		if src != "" && src != "-1" && r.Src != src {
			continue
		}
		if predicate != "" && predicate != "-1" && r.Predicate != predicate {
			continue
		}
		if dst != "" && dst != "-1" && r.Dst != dst {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Model) SetRelation(src, predicate, dst string, truth bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.relations {
		if r.Src == src && r.Predicate == predicate && r.Dst == dst {
			if !truth {
				m.relations = append(m.relations[:i], m.relations[i+1:]...)
				return true, nil
			}
			m.relations[i].Truth = true
			return true, nil
		}
	}
	if truth {
		m.relations = append(m.relations, worldmodel.Relation{Src: src, Predicate: predicate, Dst: dst, Truth: true})
	}
	return true, nil
}

// QueryOntology understands one shape emitted by the condition package:
// an unbound-endpoint relation lookup ("?x rdf:type <type>"). An
// AbstractRelation restriction probe (owl:onProperty) always returns no
// bindings. Anything else returns no bindings rather than an error,
// matching the "absence, never an error" lookup contract.
func (m *Model) QueryOntology(sparql string) ([]worldmodel.Binding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if strings.Contains(sparql, "owl:onProperty") {
		return m.queryAbstractRelationLocked(sparql)
	}
	return m.queryTypedRelationLocked(sparql)
}

func (m *Model) queryTypedRelationLocked(sparql string) ([]worldmodel.Binding, error) {
	// Pattern: "SELECT * WHERE {<subj> <pred> <obj>. ?x rdf:type <T>. ?y rdf:type <U>.}"
	// where exactly one of subj/obj is a bound id and the other is a ?var.
	fields := strings.Fields(sparql)
	var subj, pred, obj string
	for i, f := range fields {
		if f == "WHERE" && i+1 < len(fields) {
			rest := strings.Join(fields[i+1:], " ")
			rest = strings.TrimPrefix(strings.TrimSpace(rest), "{")
			parts := strings.SplitN(rest, ".", 2)
			triple := strings.Fields(parts[0])
			if len(triple) >= 3 {
				subj, pred, obj = triple[0], triple[1], triple[2]
			}
			break
		}
	}
	var typeConstraint, boundSide, varName string
	for _, clause := range strings.Split(sparql, ".") {
		clause = strings.TrimSpace(clause)
		if strings.HasPrefix(clause, "?x rdf:type") {
			typeConstraint = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(clause, "?x rdf:type"), "}"))
			varName = "x"
		} else if strings.HasPrefix(clause, "?y rdf:type") {
			typeConstraint = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(clause, "?y rdf:type"), "}"))
			varName = "y"
		}
	}
	if subj == "?x" {
		boundSide = obj
	} else if obj == "?y" {
		boundSide = subj
	}
	var out []worldmodel.Binding
	for _, r := range m.relations {
		if r.Predicate != pred {
			continue
		}
		switch {
		case subj == "?x" && r.Dst == boundSide:
			if typeConstraint != "" && !m.hasTypeLocked(r.Src, typeConstraint) {
				continue
			}
			out = append(out, worldmodel.Binding{varName: r.Src})
		case obj == "?y" && r.Src == boundSide:
			if typeConstraint != "" && !m.hasTypeLocked(r.Dst, typeConstraint) {
				continue
			}
			out = append(out, worldmodel.Binding{varName: r.Dst})
		case subj != "?x" && obj != "?y" && r.Src == subj && r.Dst == obj:
			out = append(out, worldmodel.Binding{})
		}
	}
	return out, nil
}

func (m *Model) queryAbstractRelationLocked(string) ([]worldmodel.Binding, error) {
	// The in-memory double has no OWL restriction store, so an
	// AbstractRelation probe never matches: no bindings are returned.
	return nil, nil
}

func (m *Model) hasTypeLocked(id, typ string) bool {
	e, ok := m.elements[id]
	if !ok {
		return false
	}
	if e.Type == typ {
		return true
	}
	for _, t := range m.subClassesLocked(typ) {
		if t == e.Type {
			return true
		}
	}
	return false
}

func (m *Model) GetSubClasses(typ string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.subClassesLocked(typ), nil
}

// subClassesLocked returns every type that has typ as an ancestor in the
// parent graph (i.e. every registered subclass of typ).
func (m *Model) subClassesLocked(typ string) []string {
	var out []string
	seen := map[string]bool{}
	var walk func(string)
	walk = func(t string) {
		for child, parents := range m.subclass {
			for _, p := range parents {
				if p == t && !seen[child] {
					seen[child] = true
					out = append(out, child)
					walk(child)
				}
			}
		}
	}
	walk(typ)
	sort.Strings(out)
	return out
}

func (m *Model) GetType(iri string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if parents, ok := m.subclass[iri]; ok && len(parents) > 0 {
		return parents[0], true, nil
	}
	return "", false, nil
}

func (m *Model) AddClass(iri, parent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.subclass[iri] {
		if p == parent {
			return nil
		}
	}
	m.subclass[iri] = append(m.subclass[iri], parent)
	return nil
}

// Elements returns a snapshot of every grounded element, sorted by ID, for
// test assertions.
func (m *Model) Elements() []worldmodel.Element {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]worldmodel.Element, 0, len(m.elements))
	for _, e := range m.elements {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Relations returns a snapshot of every relation, for test assertions
// (e.g. the reversible-simulation round-trip invariant).
func (m *Model) Relations() []worldmodel.Relation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]worldmodel.Relation, len(m.relations))
	copy(out, m.relations)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Src != out[j].Src {
			return out[i].Src < out[j].Src
		}
		if out[i].Predicate != out[j].Predicate {
			return out[i].Predicate < out[j].Predicate
		}
		return out[i].Dst < out[j].Dst
	})
	return out
}
