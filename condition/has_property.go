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

// HasProperty tests the existence (or absence) of a property on an
// element. On an unbound subject it evaluates true iff the parameter is
// Optional, matching the source's rationale that an as-yet-unbound
// optional slot trivially satisfies "doesn't need this property".
type HasProperty struct {
	Label       string
	Subject     string
	Prop        string
	Desired     bool
	description string
}

var _ Condition = (*HasProperty)(nil)

func NewHasProperty(label, subject, prop string, desired bool) *HasProperty {
	c := &HasProperty{Label: label, Subject: subject, Prop: prop, Desired: desired}
	c.setDescription()
	return c
}

func (c *HasProperty) setDescription() {
	c.description = fmt.Sprintf("[%s] %s-%s (%t)", c.Label, c.Subject, c.Prop, c.Desired)
}

func (c *HasProperty) Keys() []string      { return []string{c.Subject} }
func (c *HasProperty) Description() string { return c.description }
func (c *HasProperty) Remap(oldKey, newKey string) {
	if c.Subject == oldKey {
		c.Subject = newKey
		c.setDescription()
	}
}

func (c *HasProperty) Evaluate(ph *param.Handler, wm worldmodel.Model) (bool, error) {
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return false, err
	}
	if subj.GetIdNumber() < 0 {
		p, err := ph.GetParam(c.Subject)
		if err != nil {
			return false, err
		}
		return p.Type == param.Optional, nil
	}
	if !subj.HasProperty(c.Prop) {
		return !c.Desired, nil
	}
	return c.Desired, nil
}

func (c *HasProperty) SetTrue(ph *param.Handler, wm worldmodel.Model) (*Snapshot, bool, error) {
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return nil, false, err
	}
	if subj.GetIdNumber() < 0 {
		return nil, false, nil
	}
	snap := &Snapshot{element: cloneElement(subj)}
	if c.Desired {
		if !subj.HasProperty(c.Prop) {
			subj.SetProperty(c.Prop, "")
		}
	} else if subj.HasProperty(c.Prop) {
		subj.RemoveProperty(c.Prop)
	}
	if err := ph.Specify(c.Subject, subj); err != nil {
		return nil, false, err
	}
	if err := wm.UpdateElement(subj); err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

func (c *HasProperty) Revert(ph *param.Handler, wm worldmodel.Model, snap *Snapshot) (bool, error) {
	if snap == nil {
		return false, nil
	}
	if err := ph.Specify(c.Subject, *snap.element); err != nil {
		return false, err
	}
	if err := wm.UpdateElement(*snap.element); err != nil {
		return false, err
	}
	return true, nil
}

func (c *HasProperty) SetDesiredState(ph *param.Handler) error {
	e, err := resolveElement(ph, c.Subject)
	if err != nil {
		return err
	}
	if e.GetIdNumber() >= 0 {
		return nil
	}
	if c.Desired {
		if !e.HasProperty(c.Prop) {
			e.SetProperty(c.Prop, "")
		}
	} else if e.HasProperty(c.Prop) {
		e.RemoveProperty(c.Prop)
	}
	return ph.Specify(c.Subject, e)
}

func (c *HasProperty) ToElement() worldmodel.Element {
	e := worldmodel.Element{Type: "skiros:HasProperty", Label: c.Label}
	e.SetProperty("skiros:hasSubject", c.Subject)
	e.SetProperty("skiros:appliedOnType", c.Prop)
	e.SetProperty("skiros:desiredState", c.Desired)
	return e
}

func (c *HasProperty) IsEqual(other Condition) bool {
	o, ok := other.(*HasProperty)
	return ok && c.Subject == o.Subject && c.Prop == o.Prop && c.Desired == o.Desired
}

func (c *HasProperty) HasConflict(other Condition) bool {
	o, ok := other.(*HasProperty)
	return ok && c.Prop == o.Prop && c.Desired != o.Desired && c.Subject == o.Subject
}
