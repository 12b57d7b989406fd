package graph

import (
	"reflect"
	"testing"

	"github.com/taskweave/taskweave/pkg/task"
)

func TestBuildNodes(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Kind: task.KindInline, Text: "- [ ] a"},
		{ID: "b", Kind: task.KindInline, Text: "- [ ] b"},
		{ID: "c", Kind: task.KindInline, Text: "- [ ] c"},
	}
	display := DisplayConfig{Direction: DirectionVertical, ShowTags: true}

	nodes := BuildNodes(tasks, display)
	if len(nodes) != 3 {
		t.Fatalf("BuildNodes produced %d nodes, want 3", len(nodes))
	}
	for i, n := range nodes {
		if n.ID != tasks[i].ID {
			t.Errorf("node %d id = %q, want task id %q", i, n.ID, tasks[i].ID)
		}
		if want := float64(i) * DefaultNodeSpacing; n.Position.Y != want || n.Position.X != 0 {
			t.Errorf("node %d position = %+v, want {0,%v}", i, n.Position, want)
		}
		if n.Data.Display != display {
			t.Errorf("node %d lost display config", i)
		}
	}
}

func TestBuildEdges(t *testing.T) {
	tasks := []task.Task{
		{ID: "B", IncomingLinks: []string{"A"}},
	}
	edges := BuildEdges(tasks)
	if len(edges) != 1 {
		t.Fatalf("BuildEdges produced %d edges, want 1", len(edges))
	}
	want := Edge{ID: "A-B", Source: "A", Target: "B", Data: EdgeData{Marker: "A-B"}}
	if edges[0] != want {
		t.Errorf("edge = %+v, want %+v", edges[0], want)
	}
}

func TestBuildEdgesKeepsDanglingSources(t *testing.T) {
	tasks := []task.Task{
		{ID: "B", IncomingLinks: []string{"ghost1", "ghost2"}},
	}
	edges := BuildEdges(tasks)
	if len(edges) != 2 {
		t.Fatalf("dangling sources dropped: got %d edges, want 2", len(edges))
	}
}

func TestEdgeIDDistinctPairs(t *testing.T) {
	seen := map[string]bool{}
	pairs := [][2]string{{"a", "b"}, {"b", "a"}, {"a", "c"}}
	for _, p := range pairs {
		id := EdgeID(p[0], p[1])
		if seen[id] {
			t.Errorf("EdgeID collision for %v", p)
		}
		seen[id] = true
	}
}

func TestFilterEmpty(t *testing.T) {
	keep, _ := task.ParseInline("- [ ] real work", "a.md", 1)
	drop, _ := task.ParseInline("- [ ] ⭐ #tag", "a.md", 2)

	got := FilterEmpty([]task.Task{keep, drop})
	if len(got) != 1 || got[0].ID != keep.ID {
		t.Errorf("FilterEmpty = %+v, want only the real task", got)
	}
}

func TestRestorePreservesSavedNodes(t *testing.T) {
	stale := task.Task{ID: "gone", Summary: "no longer on disk"}
	saved := GraphData{
		Nodes: []SnapshotNode{
			{ID: "gone", Position: Position{X: 40, Y: 70}, TaskID: "gone", TaskData: &stale},
			{ID: "bare", Position: Position{X: 1, Y: 2}, TaskID: "bare"},
		},
		Edges:    []SnapshotEdge{{ID: "gone-bare", Source: "gone", Target: "bare"}},
		Viewport: Viewport{Zoom: 1.5},
	}

	nodes, edges := Restore(saved, DisplayConfig{})

	if len(nodes) != 2 {
		t.Fatalf("Restore produced %d nodes, want 2", len(nodes))
	}
	if nodes[0].Position != (Position{X: 40, Y: 70}) {
		t.Errorf("saved position not restored: %+v", nodes[0].Position)
	}
	if nodes[0].Data.Task.Summary != "no longer on disk" {
		t.Errorf("retained task data lost: %+v", nodes[0].Data.Task)
	}
	if nodes[1].Data.Task.ID != "bare" {
		t.Errorf("node without task data should reconstruct minimal payload: %+v", nodes[1].Data.Task)
	}
	if len(edges) != 1 || edges[0].Data.Marker != "gone-bare" {
		t.Errorf("edges not restored: %+v", edges)
	}
}

func TestRefreshUpdatesPayloadKeepsPosition(t *testing.T) {
	nodes := []Node{
		{ID: "n1", Position: Position{X: 40, Y: 70}, Data: NodeData{Task: task.Task{ID: "n1", Status: task.StatusTodo}}},
		{ID: "orphan", Position: Position{X: 5, Y: 6}, Data: NodeData{Task: task.Task{ID: "orphan"}}},
	}
	fresh := []task.Task{{ID: "n1", Status: task.StatusDone, Summary: "updated"}}

	got := Refresh(nodes, fresh)

	if got[0].Position != (Position{X: 40, Y: 70}) {
		t.Errorf("refresh moved a node: %+v", got[0].Position)
	}
	if got[0].Data.Task.Status != task.StatusDone || got[0].Data.Task.Summary != "updated" {
		t.Errorf("refresh did not update payload: %+v", got[0].Data.Task)
	}
	if got[1].ID != "orphan" {
		t.Errorf("refresh deleted an unmatched node")
	}
	if len(got) != 2 {
		t.Errorf("refresh changed node count: %d", len(got))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Kind: task.KindInline, Summary: "first"},
		{ID: "b", Kind: task.KindInline, Summary: "second", IncomingLinks: []string{"a"}},
	}
	nodes := BuildNodes(tasks, DisplayConfig{Direction: DirectionHorizontal})
	edges := BuildEdges(tasks)
	viewport := Viewport{X: 10, Y: -4, Zoom: 0.8}

	saved := Snapshot(nodes, edges, viewport)

	data, err := saved.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	loaded, err := UnmarshalGraphData(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(saved, loaded) {
		t.Errorf("snapshot round trip diverged:\n%+v\n%+v", saved, loaded)
	}

	restoredNodes, restoredEdges := Restore(loaded, DisplayConfig{Direction: DirectionHorizontal})
	if len(restoredNodes) != len(nodes) || len(restoredEdges) != len(edges) {
		t.Fatalf("restore count mismatch")
	}
	if restoredNodes[1].Data.Task.Summary != "second" {
		t.Errorf("task payload lost through round trip")
	}
}
