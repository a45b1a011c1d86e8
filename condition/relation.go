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
	"strings"

	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/worldmodel"
)

// Relation is a grounded-relation condition between two elements. When
// either endpoint is unbound, Evaluate falls back to an ontology query
// restricted by the unbound endpoint's declared type.
type Relation struct {
	Label       string
	Subject     string
	Object      string
	Predicate   string
	Desired     bool
	description string
}

var _ Condition = (*Relation)(nil)

func NewRelation(label, subject, object, predicate string, desired bool) *Relation {
	c := &Relation{Label: label, Subject: subject, Object: object, Predicate: predicate, Desired: desired}
	c.setDescription(subject, object)
	return c
}

func (c *Relation) setDescription(subjDisplay, objDisplay any) {
	c.description = fmt.Sprintf("[%s] %v-%s-%v (%t)", c.Label, subjDisplay, c.Predicate, objDisplay, c.Desired)
}

func (c *Relation) Keys() []string      { return []string{c.Subject, c.Object} }
func (c *Relation) Description() string { return c.description }

func (c *Relation) Remap(oldKey, newKey string) {
	if c.Subject == oldKey {
		c.Subject = newKey
	}
	if c.Object == oldKey {
		c.Object = newKey
	}
	c.setDescription(c.Subject, c.Object)
}

func (c *Relation) Evaluate(ph *param.Handler, wm worldmodel.Model) (bool, error) {
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return false, err
	}
	obj, err := resolveElement(ph, c.Object)
	if err != nil {
		return false, err
	}
	var (
		subjID, objID string
		unbound       bool
	)
	if subj.GetIdNumber() < 0 {
		unbound = true
		subjID = "?x"
	} else {
		subjID = subj.ID
	}
	if obj.GetIdNumber() < 0 {
		unbound = true
		objID = "?y"
	} else {
		objID = obj.ID
	}

	var (
		found bool
	)
	if !unbound {
		rels, err := wm.GetRelations(subjID, c.Predicate, objID)
		if err != nil {
			return false, err
		}
		found = len(rels) > 0
	} else {
		var b strings.Builder
		b.WriteString("SELECT * WHERE {")
		fmt.Fprintf(&b, "%s %s %s", subjID, c.Predicate, objID)
		if subjID == "?x" {
			fmt.Fprintf(&b, ". ?x rdf:type %s", subj.Type)
		}
		if objID == "?y" {
			fmt.Fprintf(&b, ". ?y rdf:type %s", obj.Type)
		}
		b.WriteString(".}")
		bindings, err := wm.QueryOntology(b.String())
		if err != nil {
			return false, err
		}
		found = len(bindings) > 0
	}
	c.setDescription(fmt.Sprintf("%s(%s)", c.Subject, subjID), fmt.Sprintf("%s(%s)", c.Object, objID))
	if found {
		return c.Desired, nil
	}
	return !c.Desired, nil
}

func (c *Relation) SetTrue(ph *param.Handler, wm worldmodel.Model) (*Snapshot, bool, error) {
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return nil, false, err
	}
	obj, err := resolveElement(ph, c.Object)
	if err != nil {
		return nil, false, err
	}
	if subj.GetIdNumber() < 0 || obj.GetIdNumber() < 0 {
		return nil, false, nil
	}
	cache, err := wm.GetRelations("-1", "", obj.ID)
	if err != nil {
		return nil, false, err
	}
	ok, err := wm.SetRelation(subj.ID, c.Predicate, obj.ID, c.Desired)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return &Snapshot{relations: cache}, true, nil
}

func (c *Relation) Revert(ph *param.Handler, wm worldmodel.Model, snap *Snapshot) (bool, error) {
	if snap == nil {
		return false, nil
	}
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return false, err
	}
	obj, err := resolveElement(ph, c.Object)
	if err != nil {
		return false, err
	}
	if _, err := wm.SetRelation(subj.ID, c.Predicate, obj.ID, !c.Desired); err != nil {
		return false, err
	}
	for _, r := range snap.relations {
		if _, err := wm.SetRelation(r.Src, r.Predicate, r.Dst, true); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (c *Relation) SetDesiredState(ph *param.Handler) error {
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return err
	}
	obj, err := resolveElement(ph, c.Object)
	if err != nil {
		return err
	}
	if subj.GetIdNumber() < 0 {
		subj.Relations = appendRelationIfAbsent(subj.Relations, worldmodel.Relation{Src: "-1", Predicate: c.Predicate, Dst: c.Object, Truth: c.Desired})
		return ph.Specify(c.Subject, subj)
	}
	if obj.GetIdNumber() < 0 {
		obj.Relations = appendRelationIfAbsent(obj.Relations, worldmodel.Relation{Src: c.Subject, Predicate: c.Predicate, Dst: "-1", Truth: c.Desired})
		return ph.Specify(c.Object, obj)
	}
	return nil
}

func appendRelationIfAbsent(rs []worldmodel.Relation, r worldmodel.Relation) []worldmodel.Relation {
	for _, e := range rs {
		if e == r {
			return rs
		}
	}
	return append(rs, r)
}

func (c *Relation) ToElement() worldmodel.Element {
	e := worldmodel.Element{Type: "skiros:Relation", Label: c.Label}
	e.SetProperty("skiros:hasSubject", c.Subject)
	e.SetProperty("skiros:hasObject", c.Object)
	e.SetProperty("skiros:appliedOnType", c.Predicate)
	e.SetProperty("skiros:desiredState", c.Desired)
	return e
}

func (c *Relation) IsEqual(other Condition) bool {
	o, ok := other.(*Relation)
	return ok && c.Subject == o.Subject && c.Predicate == o.Predicate && c.Object == o.Object && c.Desired == o.Desired
}

func (c *Relation) HasConflict(other Condition) bool {
	o, ok := other.(*Relation)
	if !ok {
		return false
	}
	return c.Predicate == o.Predicate && c.Desired != o.Desired && c.Subject == o.Subject && c.Object == o.Object
}
