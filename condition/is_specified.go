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

// IsSpecified is a binding-state condition: desired=true requires the
// subject to be grounded, desired=false requires it to remain abstract.
type IsSpecified struct {
	Label       string
	Subject     string
	Desired     bool
	description string
}

var _ Condition = (*IsSpecified)(nil)

func NewIsSpecified(label, subject string, desired bool) *IsSpecified {
	c := &IsSpecified{Label: label, Subject: subject, Desired: desired}
	c.setDescription()
	return c
}

func (c *IsSpecified) setDescription() {
	c.description = fmt.Sprintf("[%s] %s (%t)", c.Label, c.Subject, c.Desired)
}

func (c *IsSpecified) Keys() []string      { return []string{c.Subject} }
func (c *IsSpecified) Description() string { return c.description }
func (c *IsSpecified) Remap(oldKey, newKey string) {
	if c.Subject == oldKey {
		c.Subject = newKey
		c.setDescription()
	}
}

func (c *IsSpecified) Evaluate(ph *param.Handler, wm worldmodel.Model) (bool, error) {
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return false, err
	}
	if subj.GetIdNumber() >= 0 && c.Desired {
		return true, nil
	}
	if subj.GetIdNumber() < 0 && !c.Desired {
		return true, nil
	}
	return false, nil
}

func (c *IsSpecified) SetTrue(ph *param.Handler, wm worldmodel.Model) (*Snapshot, bool, error) {
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return nil, false, err
	}
	snap := &Snapshot{element: cloneElement(subj)}
	switch {
	case subj.GetIdNumber() < 0 && c.Desired:
		fake := worldmodel.Element{Type: subj.Type, Label: "==FAKE=="}
		if err := ph.Specify(c.Subject, fake); err != nil {
			return nil, false, err
		}
	case subj.GetIdNumber() >= 0 && !c.Desired:
		subj.ID = ""
		if err := ph.Specify(c.Subject, subj); err != nil {
			return nil, false, err
		}
	}
	return snap, true, nil
}

func (c *IsSpecified) Revert(ph *param.Handler, wm worldmodel.Model, snap *Snapshot) (bool, error) {
	if snap == nil {
		return false, nil
	}
	if err := ph.Specify(c.Subject, *snap.element); err != nil {
		return false, err
	}
	return true, nil
}

func (c *IsSpecified) SetDesiredState(*param.Handler) error { return nil }

func (c *IsSpecified) ToElement() worldmodel.Element {
	e := worldmodel.Element{Type: "skiros:IsSpecified", Label: c.Label}
	e.SetProperty("skiros:hasSubject", c.Subject)
	e.SetProperty("skiros:desiredState", c.Desired)
	return e
}

func (c *IsSpecified) IsEqual(other Condition) bool {
	o, ok := other.(*IsSpecified)
	return ok && c.Subject == o.Subject && c.Desired == o.Desired
}

func (c *IsSpecified) HasConflict(other Condition) bool {
	o, ok := other.(*IsSpecified)
	return ok && c.Subject == o.Subject && c.Desired != o.Desired
}
