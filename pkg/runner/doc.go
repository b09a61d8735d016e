/*
Package runner drives drawing sessions from a stream of input events.

It is the bridge between an input surface and a persisted session: each event
is applied inside a Service transaction and the resulting session view is
written back. The same dispatch is used by the HTTP adapter and by the
JSON-Lines loop behind `sketchtrail play`.

# Usage

	r := runner.New(service, runner.WithLogger(logger))
	h := runner.NewJSONHandler(os.Stdin, os.Stdout)
	if err := r.Run(ctx, "sketch-1", h); err != nil {
		log.Fatal(err)
	}

Input lines look like:

	{"type":"pointer_down","x":10,"y":10}
	{"type":"pointer_move","x":20,"y":15}
	{"type":"pointer_up"}
	{"type":"stroke","points":[{"x":1,"y":1},{"x":5,"y":5}]}
	{"type":"undo"}
*/
package runner
