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

// Property is a predicate on an element property: Operator "=" tests
// multi-valued membership, other operators read a single property value
// (false if absent).
type Property struct {
	Label       string
	Subject     string
	Prop        string
	Op          Operator
	Value       any
	Desired     bool
	description string
}

var _ Condition = (*Property)(nil)

func NewProperty(label, subject, prop string, op Operator, value any, desired bool) *Property {
	c := &Property{Label: label, Subject: subject, Prop: prop, Op: op, Value: value, Desired: desired}
	c.setDescription(subject)
	return c
}

func (c *Property) setDescription(subjDisplay any) {
	c.description = fmt.Sprintf("[%s] %v-%s-%s%v (%t)", c.Label, subjDisplay, c.Prop, c.Op, c.Value, c.Desired)
}

func (c *Property) Keys() []string      { return []string{c.Subject} }
func (c *Property) Description() string { return c.description }

func (c *Property) Remap(oldKey, newKey string) {
	if c.Subject == oldKey {
		c.Subject = newKey
		c.setDescription(c.Subject)
	}
}

func compare(op Operator, a, b any) (bool, error) {
	switch op {
	case Eq:
		return a == b, nil
	case Ne:
		return a != b, nil
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return false, fmt.Errorf("condition: operator %s requires numeric operands, got %T/%T", op, a, b)
	}
	switch op {
	case Lt:
		return af < bf, nil
	case Le:
		return af <= bf, nil
	case Gt:
		return af > bf, nil
	case Ge:
		return af >= bf, nil
	default:
		return false, fmt.Errorf("condition: unknown operator %q", op)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func (c *Property) Evaluate(ph *param.Handler, wm worldmodel.Model) (bool, error) {
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return false, err
	}
	c.setDescription(subj.ID)
	if c.Op == Eq {
		return subj.HasProperty(c.Prop, c.Value) == c.Desired, nil
	}
	v, ok := subj.GetProperty(c.Prop)
	if !ok {
		return false, nil
	}
	match, err := compare(c.Op, v, c.Value)
	if err != nil {
		return false, err
	}
	return match == c.Desired, nil
}

func (c *Property) SetTrue(ph *param.Handler, wm worldmodel.Model) (*Snapshot, bool, error) {
	subj, err := resolveElement(ph, c.Subject)
	if err != nil {
		return nil, false, err
	}
	if subj.GetIdNumber() < 0 {
		return nil, false, nil
	}
	snap := &Snapshot{element: cloneElement(subj)}
	if c.Desired {
		if !subj.HasProperty(c.Prop, c.Value) {
			subj.AppendProperty(c.Prop, c.Value)
		}
	} else {
		for subj.HasProperty(c.Prop, c.Value) {
			subj.RemovePropertyValue(c.Prop, c.Value)
		}
	}
	if err := ph.Specify(c.Subject, subj); err != nil {
		return nil, false, err
	}
	if err := wm.UpdateElement(subj); err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

func (c *Property) Revert(ph *param.Handler, wm worldmodel.Model, snap *Snapshot) (bool, error) {
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

func (c *Property) SetDesiredState(ph *param.Handler) error {
	e, err := resolveElement(ph, c.Subject)
	if err != nil {
		return err
	}
	if e.GetIdNumber() >= 0 {
		return nil
	}
	if c.Desired {
		if !e.HasProperty(c.Prop, c.Value) {
			e.AppendProperty(c.Prop, c.Value)
		}
	} else {
		if e.HasProperty(c.Prop, c.Value) {
			e.RemovePropertyValue(c.Prop, c.Value)
		}
	}
	return ph.Specify(c.Subject, e)
}

func (c *Property) ToElement() worldmodel.Element {
	e := worldmodel.Element{Type: "skiros:Property", Label: c.Label}
	e.SetProperty("skiros:hasSubject", c.Subject)
	e.SetProperty("skiros:appliedOnType", c.Prop)
	e.SetProperty("skiros:operator", string(c.Op))
	e.SetProperty("skiros:desiredValue", c.Value)
	e.SetProperty("skiros:desiredState", c.Desired)
	return e
}

func (c *Property) IsEqual(other Condition) bool {
	o, ok := other.(*Property)
	if !ok {
		return false
	}
	return c.Subject == o.Subject && c.Op == o.Op && c.Prop == o.Prop && c.Value == o.Value && c.Desired == o.Desired
}

func (c *Property) HasConflict(other Condition) bool {
	o, ok := other.(*Property)
	if !ok {
		return false
	}
	return c.Prop == o.Prop && c.Value == o.Value && c.Desired != o.Desired && c.Subject == o.Subject
}
