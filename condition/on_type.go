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

// OnType is a class-membership condition, with subclass expansion: it
// matches if the subject's type equals Value or is a registered subclass
// of it.
type OnType struct {
	Label       string
	Subject     string
	Value       string
	description string
}

var _ Condition = (*OnType)(nil)

func NewOnType(label, subject, value string) *OnType {
	c := &OnType{Label: label, Subject: subject, Value: value}
	c.setDescription()
	return c
}

func (c *OnType) setDescription() {
	c.description = fmt.Sprintf("[%s] %s is of type %s", c.Label, c.Subject, c.Value)
}

func (c *OnType) Keys() []string      { return []string{c.Subject} }
func (c *OnType) Description() string { return c.description }
func (c *OnType) Remap(oldKey, newKey string) {
	if c.Subject == oldKey {
		c.Subject = newKey
		c.setDescription()
	}
}

func (c *OnType) Evaluate(ph *param.Handler, wm worldmodel.Model) (bool, error) {
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return false, err
	}
	if subj.Type == c.Value {
		return true, nil
	}
	types, err := wm.GetSubClasses(c.Value)
	if err != nil {
		return false, err
	}
	for _, t := range types {
		if t == subj.Type {
			return true, nil
		}
	}
	return false, nil
}

func (c *OnType) SetTrue(*param.Handler, worldmodel.Model) (*Snapshot, bool, error) {
	return &Snapshot{}, true, nil
}
func (c *OnType) Revert(_ *param.Handler, _ worldmodel.Model, snap *Snapshot) (bool, error) {
	return snap != nil, nil
}

func (c *OnType) SetDesiredState(ph *param.Handler) error {
	e, err := resolveElement(ph, c.Subject)
	if err != nil {
		return err
	}
	if e.GetIdNumber() >= 0 {
		return nil
	}
	e.Type = c.Value
	return ph.Specify(c.Subject, e)
}

func (c *OnType) ToElement() worldmodel.Element {
	e := worldmodel.Element{Type: "skiros:OnType", Label: c.Label}
	e.SetProperty("skiros:hasSubject", c.Subject)
	e.SetProperty("skiros:desiredValue", c.Value)
	return e
}

func (c *OnType) IsEqual(other Condition) bool {
	o, ok := other.(*OnType)
	return ok && c.Subject == o.Subject && c.Value == o.Value
}

func (c *OnType) HasConflict(other Condition) bool {
	o, ok := other.(*OnType)
	return ok && c.Subject == o.Subject && c.Value != o.Value
}
