package scene

import "sort"

// busEdge is a candidate connection between two circuit nodes.
type busEdge struct {
	from, to int
	weight   int
}

// spanningBus joins grid nodes with a minimum spanning tree (Kruskal) under
// Manhattan distance. It returns the joined node pairs; ties are broken by
// node order so the result is deterministic.
func spanningBus(nodes []uint32, size int) [][2]uint32 {
	if len(nodes) < 2 {
		return nil
	}
	edges := make([]busEdge, 0, len(nodes)*(len(nodes)-1)/2)
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			edges = append(edges, busEdge{from: i, to: j, weight: manhattanDist(nodes[i], nodes[j], size)})
		}
	}
	sort.Slice(edges, func(a, b int) bool {
		if edges[a].weight != edges[b].weight {
			return edges[a].weight < edges[b].weight
		}
		if edges[a].from != edges[b].from {
			return edges[a].from < edges[b].from
		}
		return edges[a].to < edges[b].to
	})

	// Union-Find
	parent := make([]int, len(nodes))
	rank := make([]int, len(nodes))
	for i := range parent {
		parent[i] = i
	}
	var find func(x int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(x, y int) bool {
		rootX, rootY := find(x), find(y)
		if rootX == rootY {
			return false
		}
		if rank[rootX] < rank[rootY] {
			rootX, rootY = rootY, rootX
		}
		parent[rootY] = rootX
		if rank[rootX] == rank[rootY] {
			rank[rootX]++
		}
		return true
	}

	out := make([][2]uint32, 0, len(nodes)-1)
	for _, e := range edges {
		if union(e.from, e.to) {
			out = append(out, [2]uint32{nodes[e.from], nodes[e.to]})
			if len(out) == len(nodes)-1 {
				break
			}
		}
	}
	return out
}

func manhattanDist(a, b uint32, size int) int {
	dx := int(a)%size - int(b)%size
	dy := int(a)/size - int(b)/size
	return abs(dx) + abs(dy)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
