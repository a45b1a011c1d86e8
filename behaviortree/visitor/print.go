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
	"fmt"
	"strings"

	"github.com/skiros2/skiros-go/behaviortree"
	"github.com/skiros2/skiros-go/skill"
)

// Print renders the tree with parameter state to a string. It is
// side-effect-free: it never mutates node State.
type Print struct {
	b strings.Builder
}

var _ Visitor = (*Print)(nil)

// Traverse renders n and its subtree, returning n's (unmodified) State.
func (p *Print) Traverse(n *behaviortree.Node) (skill.State, error) {
	p.b.Reset()
	p.render(n, 0)
	return n.State, nil
}

// String returns the most recently rendered tree.
func (p *Print) String() string { return p.b.String() }

func (p *Print) render(n *behaviortree.Node, depth int) {
	fmt.Fprintf(&p.b, "%s%s[%s] state=%s", strings.Repeat("  ", depth), n.Kind, n.Label, n.State)
	switch n.Kind {
	case behaviortree.KindParallel:
		fmt.Fprintf(&p.b, " k=%d", n.ParallelK)
	case behaviortree.KindDecorator:
		fmt.Fprintf(&p.b, " kind=%s", n.DecoratorKind)
	}
	if n.Params != nil {
		fmt.Fprintf(&p.b, " params={%s}", n.Params.PrintState())
	}
	p.b.WriteByte('\n')
	for _, c := range n.Children() {
		p.render(c, depth+1)
	}
}
