/*
Package provenance implements the history engine of a drawing session.

A Graph records every mutator invocation as an immutable node tagged ephemeral
or durable. A Resolver derives the application state at any node by replaying
the chain of invocations from the root. A Navigator provides undo and redo that
skip ephemeral runs and never rewrite history. Export and Import move a graph
in and out of its transport shape.

# Usage

	reg := registry.New[domain.DrawingState]()
	g := provenance.NewGraph[domain.DrawingState]()
	_, _ = g.CreateRoot(domain.NewDrawingState(domain.ToolPen, "#000000", 4))

	res := provenance.NewResolver(g, reg)
	nav, _ := provenance.NewNavigator(res)

	inv, _ := clearHandle.Invoke(nil)
	_, _ = nav.Apply(inv, domain.KindDurable)
	state, _ := res.ResolveCurrent()
*/
package provenance
