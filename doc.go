/*
Package sketchtrail is a provenance engine for interactive drawing surfaces.

Every mutation of a drawing (stroke start, stroke extension, stroke end, clear,
undo, redo) is recorded as an immutable node in a history graph. The state at
any node is reconstructed by replaying the recorded invocations from the root,
so a session can be inspected, replayed and resumed exactly where it left off.

# Concept

Pointer moves arrive at high frequency and are recorded as ephemeral nodes.
Completed strokes and clears are durable. Undo and redo step over durable
nodes only and never rewrite history: they append a node carrying the target
state. The graph travels as a domain.SerializedGraph, which is what hosts
persist.

# Usage

	sess, err := sketchtrail.New(
		sketchtrail.WithCommitHandler(func(ctx context.Context, c *domain.Commit) {
			save(c.Provenance)
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	_ = sess.PointerDown(ctx, domain.Point{X: 1, Y: 1})
	_, _ = sess.PointerMove(ctx, domain.Point{X: 2, Y: 2})
	_, _ = sess.PointerUp(ctx)

	strokes, _ := sess.CurrentStrokes()

For persisted, multi-session use, wrap a session.Manager with NewService.
*/
package sketchtrail
