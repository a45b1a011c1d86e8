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

package condition

import (
	"fmt"

	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/worldmodel"
)

// AbstractRelation matches an OWL restriction via rdfs:subClassOf* on both
// endpoints' declared types, rather than a grounded relation instance.
// SetTrue/Revert are unsupported (always false) - there is no grounded
// state to mutate for a class-level restriction match.
type AbstractRelation struct {
	Label       string
	Subject     string
	Object      string
	Predicate   string
	Desired     bool
	description string
}

var _ Condition = (*AbstractRelation)(nil)

func NewAbstractRelation(label, subject, object, predicate string, desired bool) *AbstractRelation {
	c := &AbstractRelation{Label: label, Subject: subject, Object: object, Predicate: predicate, Desired: desired}
	c.setDescription(subject, object)
	return c
}

func (c *AbstractRelation) setDescription(subjDisplay, objDisplay any) {
	c.description = fmt.Sprintf("[%s] %v-%s-%v (%t)", c.Label, subjDisplay, c.Predicate, objDisplay, c.Desired)
}

func (c *AbstractRelation) Keys() []string      { return []string{c.Subject, c.Object} }
func (c *AbstractRelation) Description() string { return c.description }

func (c *AbstractRelation) Remap(oldKey, newKey string) {
	if c.Subject == oldKey {
		c.Subject = newKey
	}
	if c.Object == oldKey {
		c.Object = newKey
	}
	c.setDescription(c.Subject, c.Object)
}

func (c *AbstractRelation) Evaluate(ph *param.Handler, wm worldmodel.Model) (bool, error) {
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return false, err
	}
	obj, err := resolveElement(ph, c.Object)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`SELECT ?ytypes WHERE {
		{ ?xtypes rdfs:subClassOf* %s. } UNION { %s rdfs:subClassOf* ?xtypes. }
		{ ?ytypes rdfs:subClassOf* %s. } UNION { %s rdfs:subClassOf* ?ytypes. }
		?xtypes rdfs:subClassOf ?restriction . ?restriction owl:onProperty %s. ?restriction ?quantity ?ytypes.
	}`, subj.Type, subj.Type, obj.Type, obj.Type, c.Predicate)
	bindings, err := wm.QueryOntology(query)
	if err != nil {
		return false, err
	}
	c.setDescription(subj.Type, obj.Type)
	if len(bindings) > 0 {
		return c.Desired, nil
	}
	return !c.Desired, nil
}

func (c *AbstractRelation) SetTrue(*param.Handler, worldmodel.Model) (*Snapshot, bool, error) {
	return nil, false, nil
}

func (c *AbstractRelation) Revert(*param.Handler, worldmodel.Model, *Snapshot) (bool, error) {
	return false, nil
}

func (c *AbstractRelation) SetDesiredState(ph *param.Handler) error {
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return err
	}
	obj, err := resolveElement(ph, c.Object)
	if err != nil {
		return err
	}
	if subj.GetIdNumber() < 0 {
		subj.Relations = appendRelationIfAbsent(subj.Relations, worldmodel.Relation{Src: "-1", Predicate: c.Predicate, Dst: c.Object, Truth: c.Desired, Abstract: true})
		if err := ph.Specify(c.Subject, subj); err != nil {
			return err
		}
	}
	if obj.GetIdNumber() < 0 {
		obj.Relations = appendRelationIfAbsent(obj.Relations, worldmodel.Relation{Src: c.Subject, Predicate: c.Predicate, Dst: "-1", Truth: c.Desired, Abstract: true})
		if err := ph.Specify(c.Object, obj); err != nil {
			return err
		}
	}
	return nil
}

func (c *AbstractRelation) ToElement() worldmodel.Element {
	e := worldmodel.Element{Type: "skiros:AbstractRelation", Label: c.Label}
	e.SetProperty("skiros:hasSubject", c.Subject)
	e.SetProperty("skiros:hasObject", c.Object)
	e.SetProperty("skiros:appliedOnType", c.Predicate)
	e.SetProperty("skiros:desiredState", c.Desired)
	return e
}

// IsEqual only matches another *AbstractRelation: the Python source
// compares against the concrete Relation variant instead, almost
// certainly a bug. This is the fixed, variant-exact behavior.
func (c *AbstractRelation) IsEqual(other Condition) bool {
	o, ok := other.(*AbstractRelation)
	return ok && c.Subject == o.Subject && c.Predicate == o.Predicate && c.Object == o.Object && c.Desired == o.Desired
}

func (c *AbstractRelation) HasConflict(other Condition) bool {
	o, ok := other.(*AbstractRelation)
	if !ok {
		return false
	}
	return c.Predicate == o.Predicate && c.Desired != o.Desired && c.Subject == o.Subject && c.Object == o.Object
}
