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

// Package visitor implements the standard tree-traversal strategies: Print,
// Execute, Simulate/ReversibleSimulator, Optimizer, and Progress. Each
// shares the traverse(node) -> State shape with per-Kind dispatch
// (processRoot/processSequence/processSelector/processParallel/
// processDecorator/processSkill), referenced in skiros2_skill/ros's
// skill_manager.py as VisitorPrint/VisitorExecutor/
// VisitorReversibleSimulator/VisitorOptimizer/VisitorProgress call sites
// (the Python source itself doesn't ship the visitor internals, only
// these names, so the dispatch implementation below is new).
package visitor

import (
	"github.com/skiros2/skiros-go/behaviortree"
	"github.com/skiros2/skiros-go/skill"
)

// Visitor is the shared traversal contract every strategy implements.
type Visitor interface {
	Traverse(n *behaviortree.Node) (skill.State, error)
}
