package explore

import (
	"sort"
	"sync"
	"time"
)

// FrontierSnapshot is a ranked frontier with its aggregate score, captured
// at selection time for the HTTP surface. Frontiers are cycle-scoped, so a
// snapshot is only valid until the next map update replaces it.
type FrontierSnapshot struct {
	Rank     int       `json:"rank"`
	Size     int       `json:"size"`
	Centroid Point     `json:"centroid"`
	Score    float64   `json:"score"`
	Frontier *Frontier `json:"-"`
}

// StateTracker tracks the latest grid, pose, ranked frontiers, and selected
// goal per robot for the HTTP endpoints.
type StateTracker struct {
	mu        sync.RWMutex
	grids     map[string]*OccupancyGrid
	poses     map[string]Pose
	poseSeen  map[string]time.Time
	frontiers map[string][]FrontierSnapshot
	goals     map[string]*Goal
	colors    map[string]string // robot ID -> hex color
}

// NewStateTracker creates a new state tracker.
func NewStateTracker() *StateTracker {
	return &StateTracker{
		grids:     make(map[string]*OccupancyGrid),
		poses:     make(map[string]Pose),
		poseSeen:  make(map[string]time.Time),
		frontiers: make(map[string][]FrontierSnapshot),
		goals:     make(map[string]*Goal),
		colors:    make(map[string]string),
	}
}

// SetColor sets the display color for a robot.
func (st *StateTracker) SetColor(robotID, hexColor string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.colors[robotID] = hexColor
}

// GetColor returns the display color for a robot, or the default red.
func (st *StateTracker) GetColor(robotID string) string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if c := st.colors[robotID]; c != "" {
		return c
	}
	return "#FF0000"
}

// UpdateGrid stores the latest occupancy grid for a robot.
func (st *StateTracker) UpdateGrid(robotID string, g *OccupancyGrid) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.grids[robotID] = g
}

// GetGrid returns the latest grid for a robot.
func (st *StateTracker) GetGrid(robotID string) (*OccupancyGrid, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	g, ok := st.grids[robotID]
	return g, ok
}

// GetGrids returns all current grids.
func (st *StateTracker) GetGrids() map[string]*OccupancyGrid {
	st.mu.RLock()
	defer st.mu.RUnlock()

	result := make(map[string]*OccupancyGrid, len(st.grids))
	for k, v := range st.grids {
		result[k] = v
	}
	return result
}

// HasGrids returns true if at least one robot has published a grid.
func (st *StateTracker) HasGrids() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.grids) > 0
}

// UpdatePose updates a robot's pose.
func (st *StateTracker) UpdatePose(robotID string, pose Pose) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.poses[robotID] = pose
	st.poseSeen[robotID] = time.Now()
}

// GetPose returns the last known pose for a robot. The zero Pose is
// returned when the robot has never reported one.
func (st *StateTracker) GetPose(robotID string) (Pose, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	pose, ok := st.poses[robotID]
	return pose, ok
}

// UpdateFrontiers stores the ranked frontier snapshot for a robot,
// replacing the previous cycle's snapshot.
func (st *StateTracker) UpdateFrontiers(robotID string, snapshot []FrontierSnapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.frontiers[robotID] = snapshot
}

// GetFrontiers returns the latest ranked frontier snapshot for a robot.
func (st *StateTracker) GetFrontiers(robotID string) []FrontierSnapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()

	snapshot := st.frontiers[robotID]
	result := make([]FrontierSnapshot, len(snapshot))
	copy(result, snapshot)
	return result
}

// UpdateGoal stores the selected goal for a robot.
func (st *StateTracker) UpdateGoal(goal *Goal) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.goals[goal.RobotID] = goal
}

// ClearGoal removes a robot's goal, e.g. when no frontiers remain.
func (st *StateTracker) ClearGoal(robotID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.goals, robotID)
}

// GetGoal returns the latest goal for a robot.
func (st *StateTracker) GetGoal(robotID string) (*Goal, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	g, ok := st.goals[robotID]
	if !ok {
		return nil, false
	}
	goalCopy := *g
	return &goalCopy, true
}

// GetGoals returns all current goals.
func (st *StateTracker) GetGoals() map[string]*Goal {
	st.mu.RLock()
	defer st.mu.RUnlock()

	result := make(map[string]*Goal, len(st.goals))
	for k, v := range st.goals {
		goalCopy := *v
		result[k] = &goalCopy
	}
	return result
}

// RobotIDs returns the IDs of all robots that have published a grid, in
// sorted order so fallback robot selection is stable across requests.
func (st *StateTracker) RobotIDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ids := make([]string, 0, len(st.grids))
	for id := range st.grids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
