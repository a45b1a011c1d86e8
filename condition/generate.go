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

// SceneRoot is the world-model id new elements are parented under by
// Generate.SetTrue, mirroring the Python source's hardcoded ":Scene-0".
const SceneRoot = ":Scene-0"

// Generate is IsSpecified's binding-state evaluate/revert plus an actual
// world-model mutation: desired=true creates a new grounded element on
// SetTrue (removed on Revert), desired=false removes one. See
// DESIGN.md "Open Questions resolved" for why this is kept distinct from
// IsSpecified rather than merged.
type Generate struct {
	Label       string
	Subject     string
	Desired     bool
	description string
}

var _ Condition = (*Generate)(nil)

func NewGenerate(label, subject string, desired bool) *Generate {
	c := &Generate{Label: label, Subject: subject, Desired: desired}
	c.setDescription()
	return c
}

func (c *Generate) setDescription() {
	c.description = fmt.Sprintf("[%s] %s (%t)", c.Label, c.Subject, c.Desired)
}

func (c *Generate) Keys() []string      { return []string{c.Subject} }
func (c *Generate) Description() string { return c.description }
func (c *Generate) Remap(oldKey, newKey string) {
	if c.Subject == oldKey {
		c.Subject = newKey
		c.setDescription()
	}
}

func (c *Generate) Evaluate(ph *param.Handler, wm worldmodel.Model) (bool, error) {
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

func (c *Generate) SetTrue(ph *param.Handler, wm worldmodel.Model) (*Snapshot, bool, error) {
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return nil, false, err
	}
	snap := &Snapshot{element: cloneElement(subj)}
	switch {
	case subj.GetIdNumber() < 0 && c.Desired:
		fresh, err := wm.AddElement(worldmodel.Element{Type: subj.Type, Label: "==FAKE=="}, SceneRoot, "contain")
		if err != nil {
			return nil, false, err
		}
		if err := ph.Specify(c.Subject, fresh); err != nil {
			return nil, false, err
		}
		snap.newElement = cloneElement(fresh)
	case subj.GetIdNumber() >= 0 && !c.Desired:
		if err := wm.RemoveElement(subj.ID); err != nil {
			return nil, false, err
		}
		subj.ID = ""
		if err := ph.Specify(c.Subject, subj); err != nil {
			return nil, false, err
		}
		snap.newElement = cloneElement(subj)
	default:
		snap.newElement = cloneElement(subj)
	}
	return snap, true, nil
}

func (c *Generate) Revert(ph *param.Handler, wm worldmodel.Model, snap *Snapshot) (bool, error) {
	if snap == nil {
		return false, nil
	}
	if snap.newElement.GetIdNumber() >= 0 && snap.element.GetIdNumber() < 0 {
		if err := wm.RemoveElement(snap.newElement.ID); err != nil {
			return false, err
		}
	} else if snap.newElement.GetIdNumber() < 0 && snap.element.GetIdNumber() >= 0 {
		if _, err := wm.AddElement(*snap.element, SceneRoot, "contain"); err != nil {
			return false, err
		}
	}
	if err := ph.Specify(c.Subject, *snap.element); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Generate) SetDesiredState(*param.Handler) error { return nil }

func (c *Generate) ToElement() worldmodel.Element {
	e := worldmodel.Element{Type: "skiros:Generate", Label: c.Label}
	e.SetProperty("skiros:hasSubject", c.Subject)
	e.SetProperty("skiros:desiredState", c.Desired)
	return e
}

func (c *Generate) IsEqual(other Condition) bool {
	o, ok := other.(*Generate)
	return ok && c.Subject == o.Subject && c.Desired == o.Desired
}

func (c *Generate) HasConflict(other Condition) bool {
	o, ok := other.(*Generate)
	return ok && c.Subject == o.Subject && c.Desired != o.Desired
}
