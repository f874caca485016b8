// Package passes implements the optimization pipeline: dead-code
// elimination and constant folding, each expressed purely in terms of
// the ir.Builder cursor so neither pass needs to know how blocks or
// instructions are stored.
package passes

import "github.com/acd1034/tryrustc/internal/ir"

// Pass transforms a function in place.
type Pass interface {
	Name() string
	Run(fn *ir.Function)
}

// Pipeline runs a fixed sequence of passes over every function in a
// module, in order.
type Pipeline struct {
	passes []Pass
}

// NewPipeline builds a pipeline from the given passes, run in order.
func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

// Run applies every pass in the pipeline to every defined function in m.
func (p *Pipeline) Run(m *ir.Module) {
	for id := ir.FunctionID(1); int(id) <= m.Functions.Len(); id++ {
		if !m.Functions.Live(id) {
			continue
		}
		fn := m.Function(id)
		if fn.IsDeclaration() {
			continue
		}
		for _, pass := range p.passes {
			pass.Run(fn)
		}
	}
}
