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

package visitor

import (
	"github.com/skiros2/skiros-go/behaviortree"
	"github.com/skiros2/skiros-go/skill"
)

// Optimizer is an alternative expansion strategy that may substitute
// sub-trees for more efficient variants, while preserving externally
// observable tree semantics; this is the identity pass-through (delegates
// every node to Execute's combination rules without rewriting the tree),
// giving callers a stable extension point without committing to an
// undefined rewrite heuristic.
type Optimizer struct {
	inner *Execute
}

var _ Visitor = (*Optimizer)(nil)

func NewOptimizer(inner *Execute) *Optimizer {
	return &Optimizer{inner: inner}
}

func (o *Optimizer) Traverse(n *behaviortree.Node) (skill.State, error) {
	return o.inner.Traverse(n)
}
