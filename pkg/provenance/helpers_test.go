package provenance_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/provenance"
	"github.com/aretw0/sketchtrail/pkg/registry"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Value int   `json:"value"`
	Log   []int `json:"log"`
}

func add(prior counter, params domain.Parameters) (counter, error) {
	var p struct {
		By int `json:"by"`
	}
	if err := registry.Decode(params, &p); err != nil {
		return prior, err
	}
	next := counter{Value: prior.Value + p.By}
	next.Log = append(append([]int{}, prior.Log...), p.By)
	return next, nil
}

// fixture wires a counter graph with deterministic IDs and timestamps.
type fixture struct {
	reg      *registry.Registry[counter]
	graph    *provenance.Graph[counter]
	resolver *provenance.Resolver[counter]
	nav      *provenance.Navigator[counter]
	add      registry.Handle
	root     domain.HistoryNode
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("n%03d", n)
	}
}

func steppingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func newFixture(t *testing.T, opts ...provenance.ResolverOption) *fixture {
	t.Helper()

	reg := registry.New[counter]()
	h := reg.MustRegister("add", add)

	g := provenance.NewGraph[counter](
		provenance.WithIDGenerator(sequentialIDs()),
		provenance.WithClock(steppingClock()),
	)
	root, err := g.CreateRoot(counter{Log: []int{}})
	require.NoError(t, err)

	res := provenance.NewResolver(g, reg, opts...)
	nav, err := provenance.NewNavigator(res)
	require.NoError(t, err)

	return &fixture{reg: reg, graph: g, resolver: res, nav: nav, add: h, root: root}
}

func (f *fixture) apply(t *testing.T, by int, kind domain.NodeKind) domain.HistoryNode {
	t.Helper()
	inv, err := f.add.Invoke(domain.Parameters{"by": by})
	require.NoError(t, err)
	node, err := f.nav.Apply(inv, kind)
	require.NoError(t, err)
	return node
}

func (f *fixture) value(t *testing.T) int {
	t.Helper()
	state, err := f.resolver.ResolveCurrent()
	require.NoError(t, err)
	return state.Value
}
