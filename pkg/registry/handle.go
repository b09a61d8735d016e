package registry

import (
	"fmt"

	"github.com/aretw0/sketchtrail/pkg/domain"
)

// Handle is a registered mutator name. Invoking it builds an Invocation;
// it never touches a graph, so callers can decide afterwards whether to
// commit the invocation as ephemeral or durable.
type Handle struct {
	name string
}

// Name returns the mutator name.
func (h Handle) Name() string {
	return h.name
}

// Invoke builds an invocation from a parameter map.
func (h Handle) Invoke(params domain.Parameters) (domain.Invocation, error) {
	canonical, err := CanonicalParameters(params)
	if err != nil {
		return domain.Invocation{}, fmt.Errorf("action %q: %w", h.name, err)
	}
	return domain.Invocation{MutatorName: h.name, Parameters: canonical}, nil
}

// InvokeWith builds an invocation from a parameter struct, using its json tags.
func (h Handle) InvokeWith(v any) (domain.Invocation, error) {
	canonical, err := CanonicalParameters(v)
	if err != nil {
		return domain.Invocation{}, fmt.Errorf("action %q: %w", h.name, err)
	}
	return domain.Invocation{MutatorName: h.name, Parameters: canonical}, nil
}
