package solver

import (
	"testing"

	"github.com/spreadlabs/spread-engine/internal/domain"
)

func testPools() []*domain.Pool {
	return []*domain.Pool{
		tpool("amm_1", "A", "C", "1000", "1000"),
		tpool("amm_2", "A", "B1", "1000", "1000"),
		tpool("amm_3", "B1", "C", "1000", "1000"),
		tpool("amm_4", "A", "B2", "1000", "1000"),
		tpool("amm_5", "B2", "C", "1000", "1000"),
		tpool("amm_6", "C", "D", "1000", "1000"),
		tpool("amm_7", "E", "F", "1000", "1000"),
	}
}

func TestFindPathsDirectAndTwoHop(t *testing.T) {
	g := NewGraph(testPools())
	paths := g.FindPaths("A", "C", 2)

	ids := make([]string, len(paths))
	for i, p := range paths {
		ids[i] = p.ID()
	}
	want := []string{"amm_1", "amm_2/amm_3", "amm_4/amm_5"}
	if len(ids) != len(want) {
		t.Fatalf("got paths %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("path %d = %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestFindPathsHopLimit(t *testing.T) {
	g := NewGraph(testPools())
	paths := g.FindPaths("A", "C", 1)
	if len(paths) != 1 || paths[0].ID() != "amm_1" {
		t.Errorf("hop limit 1 should yield only the direct pool, got %d paths", len(paths))
	}
}

func TestFindPathsNoRoute(t *testing.T) {
	g := NewGraph(testPools())
	// E/F form their own island, unreachable from the A-side cluster
	if paths := g.FindPaths("A", "E", 2); len(paths) != 0 {
		t.Errorf("expected no route from A to E within 2 hops, got %d", len(paths))
	}
	if paths := g.FindPaths("A", "X", 2); len(paths) != 0 {
		t.Errorf("expected no route to unknown token, got %d", len(paths))
	}
	// B1 reaches D through C, so the hop limit is the only barrier
	if paths := g.FindPaths("B1", "D", 2); len(paths) != 1 || paths[0].ID() != "amm_3/amm_6" {
		t.Errorf("expected exactly the amm_3/amm_6 route from B1 to D, got %d", len(paths))
	}
}

func TestFindPathsSameToken(t *testing.T) {
	g := NewGraph(testPools())
	if paths := g.FindPaths("A", "A", 2); len(paths) != 0 {
		t.Errorf("same-token query should yield no paths, got %d", len(paths))
	}
}

// TestFindPathsDeterministic feeds the catalogue in different orders and
// expects identical enumeration.
func TestFindPathsDeterministic(t *testing.T) {
	pools := testPools()
	reversed := make([]*domain.Pool, len(pools))
	for i, p := range pools {
		reversed[len(pools)-1-i] = p
	}

	a := NewGraph(pools).FindPaths("A", "C", 2)
	b := NewGraph(reversed).FindPaths("A", "C", 2)
	if len(a) != len(b) {
		t.Fatalf("path counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID() != b[i].ID() {
			t.Errorf("path %d differs: %s vs %s", i, a[i].ID(), b[i].ID())
		}
	}
}

func TestGraphSkipsUnusablePools(t *testing.T) {
	pools := testPools()
	pools = append(pools, tpool("amm_0", "A", "C", "0", "1000"))

	g := NewGraph(pools)
	if g.PoolCount() != len(testPools()) {
		t.Errorf("drained pool should be excluded, count = %d", g.PoolCount())
	}
	for _, p := range g.FindPaths("A", "C", 2) {
		for _, pool := range p.Pools {
			if pool.ID == "amm_0" {
				t.Error("unusable pool appeared in a path")
			}
		}
	}
}

func TestReachablePools(t *testing.T) {
	g := NewGraph(testPools())
	pools := g.ReachablePools("A", "C", 2)

	want := []string{"amm_1", "amm_2", "amm_3", "amm_4", "amm_5"}
	if len(pools) != len(want) {
		t.Fatalf("got %d pools, want %d", len(pools), len(want))
	}
	for i, p := range pools {
		if p.ID != want[i] {
			t.Errorf("pool %d = %s, want %s", i, p.ID, want[i])
		}
	}
}

func TestParallelGroups(t *testing.T) {
	g := NewGraph(testPools())
	groups := ParallelGroups(g.FindPaths("A", "C", 2))

	if len(groups[1]) != 1 {
		t.Errorf("expected 1 direct path, got %d", len(groups[1]))
	}
	if len(groups[2]) != 2 {
		t.Errorf("expected 2 two-hop paths, got %d", len(groups[2]))
	}
}
