package graph_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/stammbaum/pkg/graph"
)

func ExampleWriteSnapshot() {
	// A minimal assembled snapshot
	s := graph.Snapshot{
		TreeID:      "demo",
		Strategy:    "hierarchical",
		GeneratedAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		Width:       200,
		Height:      140,
		Nodes: []graph.Node{
			{ID: "anna", Label: "Anna", X: 40, Y: 40, Width: 120, Height: 60, InPort: graph.PortTop, OutPort: graph.PortBottom},
		},
		Edges: []graph.Edge{},
	}

	// Write to a buffer (or any io.Writer)
	var buf bytes.Buffer
	if err := graph.WriteSnapshot(s, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("JSON output:")
	fmt.Println(buf.String())
	// Output:
	// JSON output:
	// {
	//   "tree_id": "demo",
	//   "strategy": "hierarchical",
	//   "generated_at": "2026-01-02T15:04:05Z",
	//   "width": 200,
	//   "height": 140,
	//   "nodes": [
	//     {
	//       "id": "anna",
	//       "label": "Anna",
	//       "x": 40,
	//       "y": 40,
	//       "width": 120,
	//       "height": 60,
	//       "rank": 0,
	//       "in_port": "top",
	//       "out_port": "bottom"
	//     }
	//   ],
	//   "edges": []
	// }
}

func ExampleReadSnapshot() {
	// JSON input as produced by the assembler
	jsonData := `{
		"tree_id": "demo",
		"strategy": "hierarchical",
		"width": 360,
		"height": 500,
		"nodes": [
			{"id": "p1", "label": "Paula", "x": 40, "y": 40, "rank": 0},
			{"id": "c1", "label": "Clara", "x": 40, "y": 340, "rank": 2}
		],
		"edges": [
			{"from": "p1", "to": "c1", "kind": "parent_child"}
		]
	}`

	s, err := graph.ReadSnapshot(bytes.NewReader([]byte(jsonData)))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("Nodes:", len(s.Nodes))
	fmt.Println("Edges:", len(s.Edges))
	fmt.Println("Child label:", s.Node("c1").DisplayLabel())
	// Output:
	// Nodes: 2
	// Edges: 1
	// Child label: Clara
}

func ExampleWriteSnapshotFile() {
	s := graph.Snapshot{
		TreeID: "demo",
		Nodes:  []graph.Node{{ID: "anna", X: 40, Y: 40}},
		Edges:  []graph.Edge{},
	}

	// Export to a file
	tmpDir := os.TempDir()
	path := filepath.Join(tmpDir, "exported-snapshot.json")
	defer os.Remove(path)

	if err := graph.WriteSnapshotFile(s, path); err != nil {
		fmt.Println("Error:", err)
		return
	}

	// Verify the file was created
	if _, err := os.Stat(path); err == nil {
		fmt.Println("Snapshot exported successfully")
	}
	// Output:
	// Snapshot exported successfully
}
