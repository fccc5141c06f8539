package ai

import "testing"

// TestGreedyFleesDominantCell verifies fleeing wins over feeding: with
// a dominant cell on one side and food on the other, the controller
// moves away from the threat.
func TestGreedyFleesDominantCell(t *testing.T) {
	g := NewGreedy(1)
	self := SelfView{ID: 1, X: 0, Y: 0, Mass: 100, CellCount: 1}
	view := []EntityView{
		{Kind: ViewCell, AgentID: 2, X: 100, Y: 0, Mass: 500},
		{Kind: ViewFood, X: -50, Y: 0, Mass: 2},
	}

	intent := g.Decide(self, view)

	if intent.DirX >= 0 {
		t.Errorf("DirX = %v, want negative (away from threat)", intent.DirX)
	}
	if intent.Split {
		t.Error("fleeing controller requested a split")
	}
}

// TestGreedyChasesPreyOverFood verifies an edible cell beats a nearer
// pellet.
func TestGreedyChasesPreyOverFood(t *testing.T) {
	g := NewGreedy(1)
	self := SelfView{ID: 1, X: 0, Y: 0, Mass: 300, CellCount: 1}
	view := []EntityView{
		{Kind: ViewFood, X: 10, Y: 0, Mass: 2},
		{Kind: ViewCell, AgentID: 2, X: 0, Y: 500, Mass: 100},
	}

	intent := g.Decide(self, view)

	if intent.DirY <= 0 {
		t.Errorf("DirY = %v, want positive (toward prey)", intent.DirY)
	}
}

// TestGreedyIgnoresOwnCells verifies an agent's own cells are neither
// threats nor targets.
func TestGreedyIgnoresOwnCells(t *testing.T) {
	g := NewGreedy(1)
	self := SelfView{ID: 1, X: 0, Y: 0, Mass: 100, CellCount: 2}
	view := []EntityView{
		{Kind: ViewCell, AgentID: 1, X: 50, Y: 0, Mass: 5000},
	}

	intent := g.Decide(self, view)

	// Nothing actionable visible: the wander direction holds for many
	// ticks, so two consecutive decisions match.
	next := g.Decide(self, view)
	if intent.DirX != next.DirX || intent.DirY != next.DirY {
		t.Error("own cell treated as actionable target")
	}
}

// TestGreedySplitsAtCloseRange verifies the split lunge: big mass
// lead, few cells, prey within range.
func TestGreedySplitsAtCloseRange(t *testing.T) {
	g := NewGreedy(1)
	self := SelfView{ID: 1, X: 0, Y: 0, Mass: 300, CellCount: 1}
	view := []EntityView{
		{Kind: ViewCell, AgentID: 2, X: 100, Y: 0, Mass: 50},
	}

	if intent := g.Decide(self, view); !intent.Split {
		t.Error("no split lunge at close-range prey")
	}

	// Too fragmented: no further splitting.
	self.CellCount = 4
	if intent := g.Decide(self, view); intent.Split {
		t.Error("split requested at the fragment limit")
	}

	// Distant prey: chase without splitting.
	self.CellCount = 1
	view[0].X = 1000
	if intent := g.Decide(self, view); intent.Split {
		t.Error("split requested at long range")
	}
}

// TestGreedyAvoidsVirusWhenLarge verifies only heavy agents treat
// viruses as threats.
func TestGreedyAvoidsVirusWhenLarge(t *testing.T) {
	g := NewGreedy(1)
	view := []EntityView{
		{Kind: ViewVirus, X: 30, Y: 0, Radius: 10, Mass: 80},
	}

	heavy := SelfView{ID: 1, Mass: 500, CellCount: 1}
	if intent := g.Decide(heavy, view); intent.DirX >= 0 {
		t.Errorf("heavy agent DirX = %v, want negative (away from virus)", intent.DirX)
	}

	// A light agent has nothing to fear and wanders instead.
	light := SelfView{ID: 1, Mass: 100, CellCount: 1}
	g2 := NewGreedy(2)
	intent := g2.Decide(light, view)
	if intent.DirX < 0 && intent.DirY == 0 {
		t.Error("light agent fled a harmless virus")
	}
}

// TestGreedyWanderIsBounded verifies wander directions stay in the
// unit box and persist across ticks.
func TestGreedyWanderIsBounded(t *testing.T) {
	g := NewGreedy(7)
	self := SelfView{ID: 1, Mass: 100, CellCount: 1}

	first := g.Decide(self, nil)
	if first.DirX < -1 || first.DirX > 1 || first.DirY < -1 || first.DirY > 1 {
		t.Errorf("wander direction out of bounds: %+v", first)
	}
	for i := 0; i < 10; i++ {
		if next := g.Decide(self, nil); next.DirX != first.DirX || next.DirY != first.DirY {
			t.Fatal("wander direction re-rolled too eagerly")
		}
	}
}
