package game

import (
	"container/heap"
	"fmt"
)

// Heuristic selects the A* distance estimate.
type Heuristic int

const (
	// HeuristicWorld divides the straight-line distance by the longest edge
	// in the grid. It never overestimates, so paths are always shortest.
	HeuristicWorld Heuristic = iota
	// HeuristicCube uses CubeDistance. On this topology it can overestimate
	// (forward steps jump two columns), so paths may be longer than needed.
	HeuristicCube
)

func (h Heuristic) String() string {
	if h == HeuristicCube {
		return "cube"
	}
	return "world"
}

// ParseHeuristic accepts "world" or "cube".
func ParseHeuristic(s string) (Heuristic, error) {
	switch s {
	case "world", "":
		return HeuristicWorld, nil
	case "cube":
		return HeuristicCube, nil
	default:
		return 0, fmt.Errorf("unknown heuristic %q", s)
	}
}

// Planner runs A* over the grid's neighbor graph, honouring occupancy and
// reservations. Every step costs 1.
type Planner struct {
	grid      *Grid
	occ       *Occupancy
	heuristic Heuristic
}

func newPlanner(g *Grid, occ *Occupancy, h Heuristic) *Planner {
	return &Planner{grid: g, occ: occ, heuristic: h}
}

func (p *Planner) estimate(a, b HexCoord) float64 {
	if p.heuristic == HeuristicCube {
		return float64(CubeDistance(a, b))
	}
	if p.grid.longestEdge <= 0 {
		return 0
	}
	return p.grid.layout.WorldDistance(a, b) / p.grid.longestEdge
}

// --- A* pathfinding ---

type pathNode struct {
	c      HexCoord
	g, h   float64
	seq    int
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].g+ol[i].h, ol[j].g+ol[j].h
	if fi != fj {
		return fi < fj
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

// findPath returns the coordinates from `from` to `to` inclusive, or nil if
// `to` cannot be reached. The goal tile is explored under the relaxed goal
// rule (castles and enemies allowed, friends not); every other tile must be
// fully passable.
func (p *Planner) findPath(from, to HexCoord, team Team) []HexCoord {
	if from == to {
		return nil
	}
	seq := 0
	start := &pathNode{c: from, h: p.estimate(from, to)}
	ol := &openList{start}
	heap.Init(ol)

	closed := make(map[HexCoord]bool)
	best := map[HexCoord]*pathNode{from: start}

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.c == to {
			return buildPath(cur)
		}
		if closed[cur.c] {
			continue
		}
		closed[cur.c] = true

		for _, n := range p.grid.Neighbors(cur.c) {
			if closed[n] {
				continue
			}
			if !p.occ.IsPassable(n, team, n == to) {
				continue
			}
			g := cur.g + 1
			if prev, ok := best[n]; ok && g >= prev.g {
				continue
			}
			seq++
			node := &pathNode{c: n, g: g, h: p.estimate(n, to), seq: seq, parent: cur}
			best[n] = node
			heap.Push(ol, node)
		}
	}
	return nil
}

// NextStep returns the hex a unit at `from` should move into to approach
// `to`. It reports false when the target is unreachable or already adjacent
// (a two-node path means the next action is combat, not movement).
func (p *Planner) NextStep(from, to HexCoord, team Team) (HexCoord, bool) {
	path := p.findPath(from, to, team)
	if len(path) < 3 {
		return HexCoord{}, false
	}
	return path[1], true
}

func buildPath(end *pathNode) []HexCoord {
	var cells []HexCoord
	for n := end; n != nil; n = n.parent {
		cells = append(cells, n.c)
	}
	// Reverse
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}
