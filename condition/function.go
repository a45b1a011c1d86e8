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

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/worldmodel"
)

// Function evaluates an arbitrary boolean expression over the bound
// elements referenced by Keys, using github.com/expr-lang/expr in place
// of the Python source's arbitrary callable (ConditionFunction,
// conditions.py lines 766-823). The expression sees each key's bound
// Element under its own name plus a "properties" map of each element's
// property values, and must evaluate to a bool.
type Function struct {
	Label       string
	Params      []string
	Expr        string
	Desired     bool
	description string

	program *vm.Program
}

var _ Condition = (*Function)(nil)

func NewFunction(label string, params []string, expression string, desired bool) (*Function, error) {
	prog, err := expr.Compile(expression, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("condition: compiling function expression %q: %w", expression, err)
	}
	c := &Function{Label: label, Params: params, Expr: expression, Desired: desired, program: prog}
	c.setDescription()
	return c, nil
}

func (c *Function) setDescription() {
	c.description = fmt.Sprintf("[%s] %s (%t)", c.Label, c.Expr, c.Desired)
}

func (c *Function) Keys() []string      { return c.Params }
func (c *Function) Description() string { return c.description }

func (c *Function) Remap(oldKey, newKey string) {
	for i, k := range c.Params {
		if k == oldKey {
			c.Params[i] = newKey
		}
	}
}

func (c *Function) env(ph *param.Handler) (map[string]any, error) {
	env := make(map[string]any, len(c.Params)+1)
	props := make(map[string]any, len(c.Params))
	for _, k := range c.Params {
		e, err := resolveElement(ph, k)
		if err != nil {
			return nil, err
		}
		env[k] = e
		props[k] = e.Properties
	}
	env["properties"] = props
	return env, nil
}

func (c *Function) Evaluate(ph *param.Handler, wm worldmodel.Model) (bool, error) {
	env, err := c.env(ph)
	if err != nil {
		return false, err
	}
	out, err := expr.Run(c.program, env)
	if err != nil {
		return false, fmt.Errorf("condition: running function expression: %w", err)
	}
	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition: function expression %q did not evaluate to bool", c.Expr)
	}
	if result {
		return c.Desired, nil
	}
	return !c.Desired, nil
}

func (c *Function) SetTrue(*param.Handler, worldmodel.Model) (*Snapshot, bool, error) {
	return nil, false, nil
}

func (c *Function) Revert(*param.Handler, worldmodel.Model, *Snapshot) (bool, error) {
	return false, nil
}

func (c *Function) SetDesiredState(*param.Handler) error { return nil }

func (c *Function) ToElement() worldmodel.Element {
	e := worldmodel.Element{Type: "skiros:Function", Label: c.Label}
	e.SetProperty("skiros:hasExpression", c.Expr)
	e.SetProperty("skiros:desiredState", c.Desired)
	return e
}

func (c *Function) IsEqual(other Condition) bool {
	o, ok := other.(*Function)
	return ok && c.Expr == o.Expr && c.Desired == o.Desired
}

func (c *Function) HasConflict(other Condition) bool {
	o, ok := other.(*Function)
	return ok && c.Expr == o.Expr && c.Desired != o.Desired
}
