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

// Package pddl compiles world-model goals into a PDDL domain/problem pair
// and invokes an external planner, grounded line-for-line on
// original_source/skiros2_task/.../pddl_interface.py's PddlTypes,
// Predicate, GroundPredicate, Action, and PddlInterface.
package pddl

import (
	"fmt"
	"strings"
)

// Types accumulates a PDDL (:types ...) block: a supertype to its
// declared subtypes, preserving first-seen order so output is
// deterministic, the way PddlTypes._types does in practice (Python dict
// insertion order since 3.7).
type Types struct {
	order      []string
	subtypesOf map[string][]string
}

func NewTypes() *Types {
	return &Types{subtypesOf: make(map[string][]string)}
}

// AddType records that name is a subtype of supertype. A name never
// needs declaring against itself.
func (t *Types) AddType(name, supertype string) {
	if name == supertype {
		return
	}
	subs, ok := t.subtypesOf[supertype]
	if !ok {
		t.order = append(t.order, supertype)
	}
	for _, s := range subs {
		if s == name {
			return
		}
	}
	t.subtypesOf[supertype] = append(subs, name)
}

func (t *Types) ToPDDL() string {
	var b strings.Builder
	b.WriteString("(:types \n")
	for _, supertype := range t.order {
		b.WriteByte('\t')
		b.WriteString(strings.Join(t.subtypesOf[supertype], " "))
		b.WriteString(fmt.Sprintf(" - %s\n", supertype))
	}
	b.WriteString(")")
	return b.String()
}

// Param is one parameter slot of an ungrounded Predicate: x is the
// subject, y the (optional) object, per conditions.py's
// hasSubject/hasObject pair.
type Param struct {
	ParamType string // "x" or "y"
	Key       string
	ValueType string
}

// Predicate is an ungrounded condition as it appears in an action's
// precondition/effect list or the domain's (:predicates ...)/
// (:functions ...) blocks.
type Predicate struct {
	Name      string
	Params    []Param
	Negated   bool
	Operator  string
	Value     any
	Abstracts bool
}

// IsFunction reports whether this predicate is really a PDDL numeric
// fluent (an operator compares against a non-string desired value).
func (p *Predicate) IsFunction() bool {
	if p.Operator == "" {
		return false
	}
	_, isStr := p.Value.(string)
	return !isStr
}

// Equal compares predicates the way Predicate.__eq__ does: by name only,
// so two uses of the same predicate name with different parameter types
// collide and trigger addSuperTypes rather than being added twice.
func (p *Predicate) Equal(other *Predicate) bool {
	return p.Name == other.Name
}

func (p *Predicate) valueToken() string {
	if s, ok := p.Value.(string); ok {
		return s
	}
	return p.Name
}

// ToActionPDDL renders the predicate as it appears inside an action's
// (at start ...)/(at end ...) clause.
func (p *Predicate) ToActionPDDL() string {
	var b strings.Builder
	if p.Negated {
		b.WriteString("(not ")
	}
	if p.IsFunction() {
		b.WriteString(fmt.Sprintf("(%s ", p.Operator))
	}
	b.WriteString(fmt.Sprintf("(%s", p.valueToken()))
	for _, pm := range p.Params {
		b.WriteString(fmt.Sprintf(" ?%s", pm.Key))
	}
	b.WriteString(")")
	if p.IsFunction() {
		b.WriteString(fmt.Sprintf(" %v)", p.Value))
	}
	if p.Negated {
		b.WriteString(")")
	}
	return b.String()
}

// ToUngroundPDDL renders the predicate's declaration inside
// (:predicates ...)/(:functions ...).
func (p *Predicate) ToUngroundPDDL() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("(%s", p.valueToken()))
	for _, pm := range p.Params {
		b.WriteString(fmt.Sprintf(" ?%s - %s ", pm.ParamType, pm.ValueType))
	}
	b.WriteString(")")
	return b.String()
}

// GroundPredicate is a fully-bound predicate as it appears in the
// problem's (:init ...) block or a task's (:goal ...) block.
type GroundPredicate struct {
	Name     string
	Params   []string
	Operator string
	Value    any
}

func (g *GroundPredicate) IsFunction() bool {
	if g.Operator == "" {
		return false
	}
	_, isStr := g.Value.(string)
	return !isStr
}

func (g *GroundPredicate) ToPDDL() string {
	var b strings.Builder
	if g.IsFunction() {
		b.WriteString(fmt.Sprintf("(%s ", g.Operator))
	}
	token := g.Name
	if s, ok := g.Value.(string); ok {
		token = s
	}
	b.WriteString(fmt.Sprintf("(%s", token))
	for _, p := range g.Params {
		b.WriteString(fmt.Sprintf(" %s", p))
	}
	b.WriteString(")")
	if g.IsFunction() {
		b.WriteString(fmt.Sprintf(" %v)", g.Value))
	}
	return b.String()
}

// Action is one durative-action with duration fixed at 1, matching
// Action.toPddl's `:duration (= ?duration 1)` — the distilled spec
// treats skill execution time as a planning abstraction, not a
// scheduling input.
type Action struct {
	Name          string
	Params        map[string]string
	ParamOrder    []string
	Preconditions []*Predicate
	Effects       []*Predicate
}

func (a *Action) Equal(other *Action) bool {
	return a.Name == other.Name
}

func (a *Action) ToPDDL() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("(:durative-action %s\n", a.Name))
	b.WriteString("\t:parameters (")
	for _, key := range a.ParamOrder {
		b.WriteString(fmt.Sprintf("?%s - %s ", key, a.Params[key]))
	}
	b.WriteString(")\n")
	b.WriteString("\t:duration (= ?duration 1)\n")
	b.WriteString("\t:condition (and\n")
	for _, p := range a.Preconditions {
		b.WriteString(fmt.Sprintf("\t\t(at start %s)\n", p.ToActionPDDL()))
	}
	b.WriteString("\t)\n")
	b.WriteString("\t:effect (and\n")
	for _, e := range a.Effects {
		b.WriteString(fmt.Sprintf("\t\t(at end %s)\n", e.ToActionPDDL()))
	}
	b.WriteString("\t)\n")
	b.WriteString(")\n")
	return b.String()
}
