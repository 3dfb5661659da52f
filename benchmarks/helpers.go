// Package benchmarks holds microbenchmarks for the interpreter's transition,
// memory, throughput, and tick-batching behavior.
//
// Grounded on the teacher's benchmarks/helpers.go config generators, rebuilt
// against builder.Build/document.Document instead of the old
// primitives.MachineConfig tree.
package benchmarks

import (
	"fmt"

	"github.com/comalice/scxmlgo/builder"
	"github.com/comalice/scxmlgo/internal/document"
)

// GenFlatConfig builds a document with n atomic states cycling via "tick".
func GenFlatConfig(n int) *document.Document {
	if n < 1 {
		n = 1
	}
	nodes := make([]*builder.Node, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("s%d", i)
		target := fmt.Sprintf("s%d", (i+1)%n)
		nodes[i] = builder.Atomic(id, builder.On("tick", []string{target}))
	}
	doc, res, err := builder.Build(fmt.Sprintf("flat_%d", n), "s0", nil, nodes...)
	if err != nil {
		panic(fmt.Sprintf("GenFlatConfig: %v, diagnostics: %v", err, res.Diagnostics))
	}
	return doc
}

// GenDeepConfig nests depth compound states, each containing only the next
// level, with a toggling leaf1/leaf2 pair at the bottom.
func GenDeepConfig(depth int) *document.Document {
	if depth < 1 {
		depth = 1
	}
	leaf1 := builder.Atomic("leaf1", builder.On("tick", []string{"leaf2"}))
	leaf2 := builder.Atomic("leaf2", builder.On("tick", []string{"leaf1"}))
	inner := builder.Compound(fmt.Sprintf("c%d", depth-1), "leaf1", []*builder.Node{leaf1, leaf2})
	for i := depth - 2; i >= 0; i-- {
		inner = builder.Compound(fmt.Sprintf("c%d", i), fmt.Sprintf("c%d", i+1), []*builder.Node{inner})
	}
	doc, res, err := builder.Build(fmt.Sprintf("deep_%d", depth), "c0", nil, inner)
	if err != nil {
		panic(fmt.Sprintf("GenDeepConfig: %v, diagnostics: %v", err, res.Diagnostics))
	}
	return doc
}

// GenWideTransitions builds one "main" state with numTransitions outgoing
// "tick" transitions. Only the first (highest document-order priority) is
// ever eligible; the rest carry an always-false guard. Selection stops at
// the first enabled transition in document order, so those guards are
// never evaluated.
func GenWideTransitions(numTransitions int) *document.Document {
	if numTransitions < 1 {
		numTransitions = 1
	}
	var mainOpts []builder.Option
	children := []*builder.Node{}
	for i := 0; i < numTransitions; i++ {
		target := fmt.Sprintf("target%d", i)
		var topts []builder.TransOption
		if i > 0 {
			topts = append(topts, builder.Cond("false"))
		}
		mainOpts = append(mainOpts, builder.On("tick", []string{target}, topts...))
		children = append(children, builder.Atomic(target, builder.On("tick", []string{"main"})))
	}
	main := builder.Atomic("main", mainOpts...)
	doc, res, err := builder.Build(fmt.Sprintf("wide_%d", numTransitions), "main", nil,
		append([]*builder.Node{main}, children...)...)
	if err != nil {
		panic(fmt.Sprintf("GenWideTransitions: %v, diagnostics: %v", err, res.Diagnostics))
	}
	return doc
}
