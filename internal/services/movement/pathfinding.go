package movement

import (
	"container/heap"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
)

// 8-connected grid; diagonal steps cost the destination cell's entry
// cost just like orthogonal ones
var neighborOffsets = [...]struct{ dx, dy int }{
	{0, -1},
	{1, 0},
	{0, 1},
	{-1, 0},
	{1, -1},
	{1, 1},
	{-1, 1},
	{-1, -1},
}

// Path is a validated route across the grid. Cost is the sum of the
// entry cost of every cell after the first.
type Path struct {
	Cells []game.Position `json:"cells"`
	Cost  int             `json:"cost"`
}

type pathNode struct {
	pos    game.Position
	cost   int
	index  int
	parent *pathNode
}

type pathQueue []*pathNode

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool { return pq[i].cost < pq[j].cost }

func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *pathQueue) Push(x any) {
	n := len(*pq)
	item := x.(*pathNode)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// ComputePath finds a minimum-cost route between two cells. Terrain
// costs are non-uniform, so this is a uniform-cost search over entry
// costs, not a shortest-hop search: a longer route through normal
// terrain beats a shorter one through difficult terrain.
func ComputePath(m *game.MapState, from, to game.Position) (*Path, error) {
	if m == nil {
		return nil, apperr.InvalidArgument("map state is required")
	}
	if !m.InBounds(from) {
		return nil, apperr.InvalidArgumentf("start %s is out of bounds", from.Key())
	}
	if !m.InBounds(to) {
		return nil, apperr.InvalidArgumentf("destination %s is out of bounds", to.Key())
	}
	if m.EntryCost(to) == game.CostBlocked {
		return nil, apperr.InvalidArgumentf("destination %s is blocked", to.Key())
	}

	if from == to {
		return &Path{Cells: []game.Position{from}, Cost: 0}, nil
	}

	open := &pathQueue{}
	heap.Init(open)
	heap.Push(open, &pathNode{pos: from, cost: 0})
	best := map[string]int{from.Key(): 0}
	closed := make(map[string]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		currKey := current.pos.Key()
		if _, seen := closed[currKey]; seen {
			continue
		}
		closed[currKey] = struct{}{}
		if current.pos == to {
			return &Path{Cells: reconstructPath(current), Cost: current.cost}, nil
		}

		for _, delta := range neighborOffsets {
			next := game.Position{X: current.pos.X + delta.dx, Y: current.pos.Y + delta.dy}
			if !m.InBounds(next) {
				continue
			}
			entryCost := m.EntryCost(next)
			if entryCost == game.CostBlocked {
				continue
			}
			key := next.Key()
			if _, seen := closed[key]; seen {
				continue
			}
			tentative := current.cost + entryCost
			if prev, ok := best[key]; ok && tentative >= prev {
				continue
			}
			best[key] = tentative
			heap.Push(open, &pathNode{pos: next, cost: tentative, parent: current})
		}
	}

	return nil, apperr.InvalidArgumentf("no path from %s to %s", from.Key(), to.Key())
}

func reconstructPath(end *pathNode) []game.Position {
	if end == nil {
		return nil
	}
	path := make([]game.Position, 0)
	for node := end; node != nil; node = node.parent {
		path = append(path, node.pos)
	}
	for i := 0; i < len(path)/2; i++ {
		j := len(path) - 1 - i
		path[i], path[j] = path[j], path[i]
	}
	return path
}
