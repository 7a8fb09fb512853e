package main

import (
	"testing"

	"github.com/kwv/frontiermesh/explore"
)

// testGrid builds a small grid with one clear frontier: an unknown top row
// above open free space.
func testGrid() *explore.OccupancyGrid {
	return &explore.OccupancyGrid{
		Width:      4,
		Height:     3,
		Resolution: 0.1,
		Data: []int8{
			-1, -1, -1, -1,
			0, 0, 0, 0,
			0, 0, 0, 0,
		},
	}
}

// exploredGrid builds a fully explored grid with no frontiers.
func exploredGrid() *explore.OccupancyGrid {
	return &explore.OccupancyGrid{
		Width:      2,
		Height:     2,
		Resolution: 0.1,
		Data:       []int8{0, 0, 100, 100},
	}
}

func TestParsePose(t *testing.T) {
	t.Run("x y", func(t *testing.T) {
		pose, err := parsePose("1.5,-2")
		if err != nil {
			t.Fatalf("parsePose failed: %v", err)
		}
		if pose.X != 1.5 || pose.Y != -2 || pose.Theta != 0 {
			t.Errorf("unexpected pose %+v", pose)
		}
	})

	t.Run("x y theta", func(t *testing.T) {
		pose, err := parsePose("0, 3, 90")
		if err != nil {
			t.Fatalf("parsePose failed: %v", err)
		}
		if pose.Y != 3 || pose.Theta != 90 {
			t.Errorf("unexpected pose %+v", pose)
		}
	})

	t.Run("empty", func(t *testing.T) {
		pose, err := parsePose("")
		if err != nil {
			t.Fatalf("empty pose should default to zero: %v", err)
		}
		if pose != (explore.Pose{}) {
			t.Errorf("expected zero pose, got %+v", pose)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		for _, spec := range []string{"1", "1,2,3,4", "a,b"} {
			if _, err := parsePose(spec); err == nil {
				t.Errorf("expected error for %q", spec)
			}
		}
	})
}

func TestDefaultExplorationConfig(t *testing.T) {
	fm := explore.NewFrontiersMap(nil)
	if err := fm.Configure(defaultExplorationConfig()); err != nil {
		t.Errorf("default exploration config must be valid: %v", err)
	}
}

func TestPrepareFrontiersMap(t *testing.T) {
	grid := testGrid()
	fm, err := prepareFrontiersMap(grid, explore.Pose{X: 0.2, Y: 0.2}, defaultExplorationConfig())
	if err != nil {
		t.Fatalf("prepareFrontiersMap failed: %v", err)
	}

	if fm.Len() == 0 {
		t.Fatal("expected frontiers in the test grid")
	}
	if _, _, err := fm.Best(); err != nil {
		t.Errorf("Best failed: %v", err)
	}
}

func TestSelectionCycle(t *testing.T) {
	app := NewApp()
	fm := explore.NewFrontiersMap(nil)
	if err := fm.Configure(defaultExplorationConfig()); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	app.frontierMaps["r1"] = fm

	app.StateTracker.UpdatePose("r1", explore.Pose{X: 0.2, Y: 0.2})
	app.selectionCycle("r1", testGrid())

	if _, ok := app.StateTracker.GetGrid("r1"); !ok {
		t.Error("cycle must store the grid")
	}
	snapshot := app.StateTracker.GetFrontiers("r1")
	if len(snapshot) == 0 {
		t.Fatal("cycle must store the ranked snapshot")
	}
	if snapshot[0].Rank != 1 {
		t.Errorf("snapshot must be ranked, got rank %d first", snapshot[0].Rank)
	}

	goal, ok := app.StateTracker.GetGoal("r1")
	if !ok {
		t.Fatal("cycle must store a goal while frontiers exist")
	}
	if goal.RobotID != "r1" || goal.Size == 0 {
		t.Errorf("unexpected goal %+v", goal)
	}
}

func TestSelectionCycleExplorationComplete(t *testing.T) {
	app := NewApp()
	fm := explore.NewFrontiersMap(nil)
	if err := fm.Configure(defaultExplorationConfig()); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	app.frontierMaps["r1"] = fm

	app.selectionCycle("r1", testGrid())
	if _, ok := app.StateTracker.GetGoal("r1"); !ok {
		t.Fatal("expected a goal on the first cycle")
	}

	// A fully explored map clears the previous goal.
	app.selectionCycle("r1", exploredGrid())
	if _, ok := app.StateTracker.GetGoal("r1"); ok {
		t.Error("expected the goal cleared when no frontiers remain")
	}
	if got := app.StateTracker.GetFrontiers("r1"); len(got) != 0 {
		t.Errorf("expected an empty snapshot, got %d entries", len(got))
	}
}

func TestSelectionCycleUnknownRobot(t *testing.T) {
	app := NewApp()
	// Must not panic or store state for an unconfigured robot.
	app.selectionCycle("ghost", testGrid())
	if _, ok := app.StateTracker.GetGrid("ghost"); ok {
		t.Error("cycle must skip robots without a frontier map")
	}
}

func TestResolveConfigPath(t *testing.T) {
	app := NewApp()
	app.ConfigFile = "config.yaml"
	app.DataDir = "/data"
	if got := app.resolveConfigPath(); got != "/data/config.yaml" {
		t.Errorf("expected data-dir resolution, got %s", got)
	}

	app.ConfigFile = "/etc/frontiermesh.yaml"
	if got := app.resolveConfigPath(); got != "/etc/frontiermesh.yaml" {
		t.Errorf("explicit config path must win, got %s", got)
	}

	app.ConfigFile = "config.yaml"
	app.DataDir = "."
	if got := app.resolveConfigPath(); got != "config.yaml" {
		t.Errorf("default data-dir keeps the flag value, got %s", got)
	}
}
