package main

import (
	"encoding/json"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/kwv/frontiermesh/explore"
)

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(stateTracker *explore.StateTracker, config *explore.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status    string    `json:"status"`
			Timestamp time.Time `json:"timestamp"`
			HasMaps   bool      `json:"hasMaps"`
			Robots    []string  `json:"robots"`
		}{
			Status:    "ok",
			Timestamp: time.Now(),
			HasMaps:   stateTracker.HasGrids(),
			Robots:    stateTracker.RobotIDs(),
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	// Ranked frontiers as GeoJSON
	mux.HandleFunc("/frontiers.json", func(w http.ResponseWriter, r *http.Request) {
		robotID, ok := resolveRobot(r, stateTracker)
		if !ok {
			http.Error(w, "No maps available", http.StatusServiceUnavailable)
			return
		}

		grid, _ := stateTracker.GetGrid(robotID)
		snapshot := stateTracker.GetFrontiers(robotID)

		fc := explore.FrontiersToFeatureCollection(grid, snapshot)
		if goal, ok := stateTracker.GetGoal(robotID); ok {
			fc.AddFeature(explore.GoalToFeature(goal))
		}

		w.Header().Set("Content-Type", "application/geo+json")
		w.Header().Set("Cache-Control", "no-cache")
		if err := json.NewEncoder(w).Encode(fc); err != nil {
			log.Printf("Error encoding frontiers GeoJSON: %v", err)
		}
	})

	// Selected goals
	mux.HandleFunc("/goal.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		if robotID := r.URL.Query().Get("robot"); robotID != "" {
			goal, ok := stateTracker.GetGoal(robotID)
			if !ok {
				http.Error(w, "No goal for robot", http.StatusNotFound)
				return
			}
			if err := json.NewEncoder(w).Encode(goal); err != nil {
				log.Printf("Error encoding goal: %v", err)
			}
			return
		}

		if err := json.NewEncoder(w).Encode(stateTracker.GetGoals()); err != nil {
			log.Printf("Error encoding goals: %v", err)
		}
	})

	// Raster map with ranked frontiers
	mux.HandleFunc("/map.png", func(w http.ResponseWriter, r *http.Request) {
		robotID, ok := resolveRobot(r, stateTracker)
		if !ok {
			http.Error(w, "No maps available", http.StatusServiceUnavailable)
			return
		}
		grid, _ := stateTracker.GetGrid(robotID)

		renderer := explore.NewMapRenderer(grid)
		renderer.Frontiers = stateTracker.GetFrontiers(robotID)
		if pose, ok := stateTracker.GetPose(robotID); ok {
			renderer.Robot = &pose
		}
		if goal, ok := stateTracker.GetGoal(robotID); ok {
			renderer.Goal = goal
		}

		img := renderer.Render()
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := png.Encode(w, img); err != nil {
			log.Printf("Error encoding map PNG: %v", err)
		}
	})

	// Vector map with ranked frontiers
	mux.HandleFunc("/map.svg", func(w http.ResponseWriter, r *http.Request) {
		robotID, ok := resolveRobot(r, stateTracker)
		if !ok {
			http.Error(w, "No maps available", http.StatusServiceUnavailable)
			return
		}
		grid, _ := stateTracker.GetGrid(robotID)

		renderer := explore.NewVectorRenderer(grid)
		renderer.Frontiers = stateTracker.GetFrontiers(robotID)
		if pose, ok := stateTracker.GetPose(robotID); ok {
			renderer.Robot = &pose
		}
		if goal, ok := stateTracker.GetGoal(robotID); ok {
			renderer.Goal = goal
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.RenderToSVG(w); err != nil {
			log.Printf("Error encoding map SVG: %v", err)
		}
	})

	return logRequests(mux)
}

// resolveRobot picks the robot from the ?robot= query parameter, falling
// back to the first robot that has published a grid.
func resolveRobot(r *http.Request, stateTracker *explore.StateTracker) (string, bool) {
	if robotID := r.URL.Query().Get("robot"); robotID != "" {
		if _, ok := stateTracker.GetGrid(robotID); ok {
			return robotID, true
		}
		return "", false
	}

	ids := stateTracker.RobotIDs()
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// logRequests logs each HTTP request with its duration.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[HTTP] %s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}
