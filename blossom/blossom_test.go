// SPDX-License-Identifier: MIT
package blossom_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pairing/blossom"
	"github.com/katalvlaran/pairing/core"
)

func edges(raw ...[3]int64) []blossom.Edge {
	out := make([]blossom.Edge, len(raw))
	for i, r := range raw {
		out[i] = blossom.Edge{I: int(r[0]), J: int(r[1]), W: r[2]}
	}
	return out
}

func TestMaxWeightMatching_Small(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		edges   []blossom.Edge
		maxCard bool
		want    []int
	}{
		{"empty", 3, nil, false, []int{-1, -1, -1}},
		{"single", 2, edges([3]int64{0, 1, 1}), false, []int{1, 0}},
		{"heavier middle", 4, edges([3]int64{1, 2, 10}, [3]int64{2, 3, 11}), false, []int{-1, -1, 3, 2}},
		{"path weight", 5, edges([3]int64{1, 2, 5}, [3]int64{2, 3, 11}, [3]int64{3, 4, 5}), false, []int{-1, -1, 3, 2, -1}},
		{"path cardinality", 5, edges([3]int64{1, 2, 5}, [3]int64{2, 3, 11}, [3]int64{3, 4, 5}), true, []int{-1, 2, 1, 4, 3}},
		{"negative weights", 5, edges([3]int64{1, 2, 2}, [3]int64{1, 3, -2}, [3]int64{2, 3, 1}, [3]int64{2, 4, -1}, [3]int64{3, 4, -6}), false, []int{-1, 2, 1, -1, -1}},
		{"negative weights cardinality", 5, edges([3]int64{1, 2, 2}, [3]int64{1, 3, -2}, [3]int64{2, 3, 1}, [3]int64{2, 4, -1}, [3]int64{3, 4, -6}), true, []int{-1, 3, 4, 1, 2}},
		{"s-blossom", 5, edges([3]int64{1, 2, 8}, [3]int64{1, 3, 9}, [3]int64{2, 3, 10}, [3]int64{3, 4, 7}), false, []int{-1, 2, 1, 4, 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mate, err := blossom.MaxWeightMatching(tc.n, tc.edges, tc.maxCard)
			require.NoError(t, err)
			assert.Equal(t, tc.want, mate)
		})
	}
}

func TestMaxWeightMatching_Errors(t *testing.T) {
	_, err := blossom.MaxWeightMatching(2, edges([3]int64{0, 2, 1}), false)
	assert.ErrorIs(t, err, blossom.ErrBadVertex)
	_, err = blossom.MaxWeightMatching(2, edges([3]int64{1, 1, 1}), false)
	assert.ErrorIs(t, err, blossom.ErrSelfLoop)
	_, err = blossom.MinWeightMaxCardinality(nil)
	assert.ErrorIs(t, err, blossom.ErrNilGraph)
	_, err = blossom.MaxWeightMatching(2, edges([3]int64{0, 1, blossom.MaxAbsWeight}), false)
	assert.ErrorIs(t, err, blossom.ErrWeightRange)
	_, err = blossom.MaxWeightMatching(2, edges([3]int64{0, 1, -blossom.MaxAbsWeight}), false)
	assert.ErrorIs(t, err, blossom.ErrWeightRange)
}

func TestMinWeightMaxCardinality_WeightRange(t *testing.T) {
	g := core.NewGraph()
	require.NoError(t, g.AddEdge("a", "b", blossom.MaxAbsWeight-1))
	_, err := blossom.MinWeightMaxCardinality(g)
	assert.ErrorIs(t, err, blossom.ErrWeightRange, "max+1 reaches the bound")

	g = core.NewGraph()
	require.NoError(t, g.AddEdge("a", "b", 10))
	require.NoError(t, g.AddEdge("c", "d", -blossom.MaxAbsWeight+5))
	_, err = blossom.MinWeightMaxCardinality(g)
	assert.ErrorIs(t, err, blossom.ErrWeightRange, "the transform of the lightest edge overflows")

	g = core.NewGraph()
	require.NoError(t, g.AddEdge("a", "b", blossom.MaxAbsWeight/2))
	require.NoError(t, g.AddEdge("c", "d", 1))
	got, err := blossom.MinWeightMaxCardinality(g)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

// bruteForce returns the best (cardinality, weight) over all matchings:
// maximum cardinality first when maxCard, then maximum weight.
func bruteForce(n int, es []blossom.Edge, maxCard bool) (int, int64) {
	w := make(map[[2]int]int64, len(es))
	for _, e := range es {
		w[[2]int{e.I, e.J}] = e.W
		w[[2]int{e.J, e.I}] = e.W
	}
	used := make([]bool, n)
	bestCard, bestW := 0, int64(0)
	better := func(c int, s int64) bool {
		if maxCard && c != bestCard {
			return c > bestCard
		}
		return s > bestW
	}
	var rec func(v, card int, sum int64)
	rec = func(v, card int, sum int64) {
		for v < n && used[v] {
			v++
		}
		if v == n {
			if better(card, sum) {
				bestCard, bestW = card, sum
			}
			return
		}
		used[v] = true
		rec(v+1, card, sum) // leave v single
		for u := v + 1; u < n; u++ {
			if x, ok := w[[2]int{v, u}]; ok && !used[u] {
				used[u] = true
				rec(v+1, card+1, sum+x)
				used[u] = false
			}
		}
		used[v] = false
	}
	rec(0, 0, 0)
	return bestCard, bestW
}

func score(mate []int, es []blossom.Edge) (int, int64) {
	var card int
	var sum int64
	for _, e := range es {
		if mate[e.I] == e.J {
			card++
			sum += e.W
		}
	}
	return card, sum
}

func randomGraph(rng *rand.Rand, n int, density float64, maxW int64) []blossom.Edge {
	var es []blossom.Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < density {
				es = append(es, blossom.Edge{I: i, J: j, W: rng.Int63n(maxW) + 1})
			}
		}
	}
	return es
}

func TestMaxWeightMatching_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 300; trial++ {
		n := 2 + rng.Intn(8)
		es := randomGraph(rng, n, 0.3+0.6*rng.Float64(), 30)
		for _, maxCard := range []bool{false, true} {
			mate, err := blossom.MaxWeightMatching(n, es, maxCard)
			require.NoError(t, err)
			for v, u := range mate {
				if u >= 0 {
					require.Equal(t, v, mate[u], "trial %d: asymmetric mate", trial)
				}
			}
			gotCard, gotW := score(mate, es)
			wantCard, wantW := bruteForce(n, es, maxCard)
			if maxCard {
				assert.Equal(t, wantCard, gotCard, "trial %d cardinality", trial)
			}
			assert.Equal(t, wantW, gotW, "trial %d maxCard=%v weight", trial, maxCard)
		}
	}
}

func TestMinWeightMaxCardinality_DummyAbsorbsOddVertex(t *testing.T) {
	// Five people in a complete pool plus a dummy connected to all of them
	// with a weight above every real edge: two real pairs, one dummy pair.
	g := core.NewGraph()
	ids := []string{"a", "b", "c", "d", "e"}
	weights := map[[2]string]int64{
		{"a", "b"}: 1, {"a", "c"}: 9, {"a", "d"}: 9, {"a", "e"}: 9,
		{"b", "c"}: 9, {"b", "d"}: 9, {"b", "e"}: 9,
		{"c", "d"}: 2, {"c", "e"}: 9,
		{"d", "e"}: 9,
	}
	for k, w := range weights {
		require.NoError(t, g.AddEdge(k[0], k[1], w))
	}
	for _, id := range ids {
		require.NoError(t, g.AddEdge(id, "~dummy", 10))
	}

	got, err := blossom.MinWeightMaxCardinality(g)
	require.NoError(t, err)
	assert.Equal(t, []core.Edge{
		{From: "a", To: "b", Weight: 1},
		{From: "c", To: "d", Weight: 2},
		{From: "e", To: "~dummy", Weight: 10},
	}, got)
	assert.Equal(t, int64(13), blossom.TotalWeight(got))
}

func TestMinWeightMaxCardinality_PrefersCardinality(t *testing.T) {
	// Path a–b–c–d: the cheap middle edge alone is smaller, but two edges win.
	g := core.NewGraph()
	require.NoError(t, g.AddEdge("a", "b", 5))
	require.NoError(t, g.AddEdge("b", "c", 1))
	require.NoError(t, g.AddEdge("c", "d", 5))

	got, err := blossom.MinWeightMaxCardinality(g)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(10), blossom.TotalWeight(got))
}

func TestMinWeightMaxCardinality_Empty(t *testing.T) {
	g := core.NewGraph()
	require.NoError(t, g.AddVertex("lonely"))
	got, err := blossom.MinWeightMaxCardinality(g)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func ExampleMinWeightMaxCardinality() {
	g := core.NewGraph()
	_ = g.AddEdge("a", "b", 3)
	_ = g.AddEdge("a", "c", 1)
	_ = g.AddEdge("b", "d", 1)
	_ = g.AddEdge("c", "d", 3)
	m, _ := blossom.MinWeightMaxCardinality(g)
	for _, e := range m {
		fmt.Println(e.From, e.To, e.Weight)
	}
	// Output:
	// a c 1
	// b d 1
}

var sinkMate []int

func BenchmarkMaxWeightMatching(b *testing.B) {
	for _, n := range []int{32, 96} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			es := randomGraph(rand.New(rand.NewSource(1337)), n, 0.5, 1000)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				mate, err := blossom.MaxWeightMatching(n, es, true)
				if err != nil {
					b.Fatal(err)
				}
				sinkMate = mate
			}
		})
	}
}
