package foodweb

import (
	"errors"
	"strconv"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"

	"github.com/san-kum/befsim/internal/dynamo"
)

// producerSource is the virtual vertex linked to every producer when
// measuring chain lengths.
const producerSource = "producers"

// energyGraph builds the directed graph of energy flow, one edge from each
// prey to each of its consumers. Self-loops are left out.
func energyGraph(a Matrix) (*core.Graph, error) {
	g := core.NewGraph(core.WithDirected(true))
	for i := range a {
		if err := g.AddVertex(vertexID(i)); err != nil {
			return nil, err
		}
	}
	for i, row := range a {
		for j, v := range row {
			if v == 1 && i != j {
				if _, err := g.AddEdge(vertexID(j), vertexID(i), 0); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}

func vertexID(i int) string { return strconv.Itoa(i) }

func vertexIndex(id string) int {
	i, err := strconv.Atoi(id)
	if err != nil {
		return -1
	}
	return i
}

// dietOrder returns species so that every species comes after all of its
// prey, ignoring self-loops. Diet cycles of length two or more are rejected.
func dietOrder(a Matrix) ([]int, error) {
	g, err := energyGraph(a)
	if err != nil {
		return nil, err
	}
	ids, err := dfs.TopologicalSort(g)
	if errors.Is(err, dfs.ErrCycleDetected) {
		_, cycles, cerr := dfs.DetectCycles(g)
		if cerr != nil || len(cycles) == 0 {
			return nil, dynamo.Invalidf("diet cycle")
		}
		var members []int
		for _, id := range cycles[0] {
			members = append(members, vertexIndex(id))
		}
		return nil, dynamo.Invalidf("diet cycle among species %v", members)
	}
	if err != nil {
		return nil, err
	}

	order := make([]int, len(ids))
	for k, id := range ids {
		order[k] = vertexIndex(id)
	}
	return order, nil
}

// HasCycle reports whether a contains a diet cycle other than a self-loop.
func HasCycle(a Matrix) bool {
	_, err := dietOrder(a)
	return err != nil
}

// TrophicRank computes, for every species, one plus the mean trophic rank of
// its prey. Producers have rank 1. Cannibalistic self-loops are ignored, so a
// consumer whose only prey is itself has no rank.
func TrophicRank(a Matrix) ([]float64, error) {
	if err := Check(a); err != nil {
		return nil, err
	}
	order, err := dietOrder(a)
	if err != nil {
		return nil, err
	}

	producers := Producers(a)
	rank := make([]float64, len(a))
	for _, i := range order {
		if producers[i] {
			rank[i] = 1
			continue
		}
		sum, n := 0.0, 0
		for j, v := range a[i] {
			if v == 1 && j != i {
				sum += rank[j]
				n++
			}
		}
		if n == 0 {
			return nil, dynamo.Invalidf("species %d feeds only on itself", i)
		}
		rank[i] = 1 + sum/float64(n)
	}
	return rank, nil
}

// DistanceToProducer is the length of the shortest food chain from each
// species down to a producer, counting the producer as 1. Species with no
// such chain get 0.
func DistanceToProducer(a Matrix) ([]int, error) {
	if err := Check(a); err != nil {
		return nil, err
	}
	g, err := energyGraph(a)
	if err != nil {
		return nil, err
	}
	if err := g.AddVertex(producerSource); err != nil {
		return nil, err
	}
	for i, p := range Producers(a) {
		if p {
			if _, err := g.AddEdge(producerSource, vertexID(i), 0); err != nil {
				return nil, err
			}
		}
	}

	res, err := bfs.BFS(g, producerSource)
	if err != nil {
		return nil, err
	}
	dist := make([]int, len(a))
	for id, d := range res.Depth {
		if i := vertexIndex(id); i >= 0 {
			dist[i] = d
		}
	}
	return dist, nil
}
