package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/kwv/frontiermesh/explore"
)

// App encapsulates the application state and dependencies
type App struct {
	Config       *explore.Config
	StateTracker *explore.StateTracker
	MQTTClient   *explore.MQTTClient
	Publisher    *explore.Publisher

	// One frontier map per robot; maps are not safe for concurrent use,
	// so cycleMu serializes the selection cycles.
	frontierMaps map[string]*explore.FrontiersMap
	cycleMu      sync.Mutex

	// CLI Flags (effectively dependencies)
	ConfigFile   string
	GridFile     string
	PoseSpec     string
	Describe     bool
	OutputFile   string
	RenderFormat string
	DataDir      string
	HttpPort     int
	MqttMode     bool
	HttpMode     bool
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{
		StateTracker: explore.NewStateTracker(),
		frontierMaps: make(map[string]*explore.FrontiersMap),
	}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.GridFile = opts.GridFile
	a.PoseSpec = opts.PoseSpec
	a.Describe = opts.Describe
	a.OutputFile = opts.OutputFile
	a.RenderFormat = opts.RenderFormat
	a.DataDir = opts.DataDir
	a.HttpPort = opts.HttpPort
	a.MqttMode = opts.MqttMode
	a.HttpMode = opts.HttpMode
}

// parsePose parses a "X,Y" or "X,Y,THETA" pose specification.
func parsePose(spec string) (explore.Pose, error) {
	var pose explore.Pose
	if spec == "" {
		return pose, nil
	}

	parts := strings.Split(spec, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return pose, fmt.Errorf("pose must be X,Y or X,Y,THETA, got %q", spec)
	}
	if _, err := fmt.Sscanf(strings.TrimSpace(parts[0]), "%f", &pose.X); err != nil {
		return pose, fmt.Errorf("invalid pose X %q", parts[0])
	}
	if _, err := fmt.Sscanf(strings.TrimSpace(parts[1]), "%f", &pose.Y); err != nil {
		return pose, fmt.Errorf("invalid pose Y %q", parts[1])
	}
	if len(parts) == 3 {
		if _, err := fmt.Sscanf(strings.TrimSpace(parts[2]), "%f", &pose.Theta); err != nil {
			return pose, fmt.Errorf("invalid pose theta %q", parts[2])
		}
	}
	return pose, nil
}

// defaultExplorationConfig is the fallback when no config file is present
// in the one-shot modes.
func defaultExplorationConfig() explore.ExplorationConfig {
	return explore.ExplorationConfig{
		MinFrontierSize: 0,
		Strategies: []explore.StrategyConfig{
			{Name: explore.StrategyMaxSize},
			{Name: explore.StrategyClosest},
		},
	}
}

// loadExplorationConfig loads the exploration section from the config file,
// falling back to defaults when the file does not exist.
func (a *App) loadExplorationConfig() explore.ExplorationConfig {
	path := a.resolveConfigPath()
	if _, err := os.Stat(path); err != nil {
		log.Printf("No config file at %s, using default strategies", path)
		return defaultExplorationConfig()
	}

	config, err := explore.LoadConfig(path)
	if err != nil {
		log.Printf("Warning: failed to load config %s: %v (using default strategies)", path, err)
		return defaultExplorationConfig()
	}
	log.Printf("Loaded config from %s", path)
	return config.Exploration
}

// resolveConfigPath resolves the config file relative to data-dir when the
// flag still points at the default.
func (a *App) resolveConfigPath() string {
	if a.DataDir != "." && a.ConfigFile == "config.yaml" {
		return filepath.Join(a.DataDir, "config.yaml")
	}
	return a.ConfigFile
}

// prepareFrontiersMap builds a configured frontier map bound to the grid.
func prepareFrontiersMap(grid *explore.OccupancyGrid, pose explore.Pose, cfg explore.ExplorationConfig) (*explore.FrontiersMap, error) {
	fm := explore.NewFrontiersMap(grid)
	if err := fm.Configure(cfg); err != nil {
		return nil, fmt.Errorf("configuring frontier map: %w", err)
	}
	fm.SetRobotPose(pose)
	fm.SetFrontiers(explore.ExtractFrontiers(grid))
	return fm, nil
}

// RunSelect loads a grid export, ranks its frontiers, and prints the
// selected exploration goal.
func (a *App) RunSelect() {
	if a.GridFile == "" {
		log.Fatal("--select requires --grid=FILE")
	}

	grid, err := explore.ParseGridFile(a.GridFile)
	if err != nil {
		log.Fatalf("Error loading grid: %v", err)
	}
	fmt.Printf("Loaded grid: %dx%d cells at %.3fm resolution\n", grid.Width, grid.Height, grid.Resolution)

	pose, err := parsePose(a.PoseSpec)
	if err != nil {
		log.Fatalf("Error parsing pose: %v", err)
	}

	fm, err := prepareFrontiersMap(grid, pose, a.loadExplorationConfig())
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	fmt.Printf("Found %d frontier(s) above minimum size %d\n", fm.Len(), fm.MinimumSize())

	if a.Describe {
		fm.Describe(os.Stdout)
	}

	best, score, err := fm.Best()
	if err != nil {
		if errors.Is(err, explore.ErrNoFrontiers) {
			fmt.Println("No frontiers remain: exploration complete")
			return
		}
		log.Fatalf("Error selecting frontier: %v", err)
	}

	fmt.Printf("Selected goal: (%.2f, %.2f) size=%d score=%.4f\n",
		best.Centroid[0], best.Centroid[1], best.Size(), score)
}

// RunRender loads a grid export and renders it with ranked frontiers.
func (a *App) RunRender() {
	if a.GridFile == "" {
		log.Fatal("--render requires --grid=FILE")
	}

	grid, err := explore.ParseGridFile(a.GridFile)
	if err != nil {
		log.Fatalf("Error loading grid: %v", err)
	}

	pose, err := parsePose(a.PoseSpec)
	if err != nil {
		log.Fatalf("Error parsing pose: %v", err)
	}

	fm, err := prepareFrontiersMap(grid, pose, a.loadExplorationConfig())
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	snapshot := fm.RankedSnapshot()
	fmt.Printf("Rendering %d frontier(s) to %s...\n", len(snapshot), a.OutputFile)

	format := a.RenderFormat
	if format != "raster" && format != "vector" && format != "both" {
		log.Fatalf("Invalid format: %s (must be raster, vector, or both)", format)
	}

	var robot *explore.Pose
	if a.PoseSpec != "" {
		robot = &pose
	}

	if format == "raster" || format == "both" {
		renderer := explore.NewMapRenderer(grid)
		renderer.Frontiers = snapshot
		renderer.Robot = robot

		outputPath := a.OutputFile
		if format == "both" && !strings.HasSuffix(outputPath, ".png") {
			outputPath = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".png"
		}
		if err := renderer.SavePNG(outputPath); err != nil {
			log.Fatalf("Error rendering raster: %v", err)
		}
		fmt.Printf("Created raster: %s\n", outputPath)
	}

	if format == "vector" || format == "both" {
		renderer := explore.NewVectorRenderer(grid)
		renderer.Frontiers = snapshot
		renderer.Robot = robot

		outputPath := strings.TrimSuffix(a.OutputFile, filepath.Ext(a.OutputFile)) + ".svg"
		outFile, err := os.Create(outputPath)
		if err != nil {
			log.Fatalf("Error creating output file %s: %v", outputPath, err)
		}
		defer func() {
			if err := outFile.Close(); err != nil {
				log.Printf("Warning: error closing output file %s: %v", outputPath, err)
			}
		}()

		if err := renderer.RenderToSVG(outFile); err != nil {
			log.Fatalf("Error rendering vector SVG: %v", err)
		}
		fmt.Printf("Created vector SVG: %s\n", outputPath)
	}

	fmt.Println("Done!")
}

// selectionCycle runs one frontier selection pass for a robot: extract,
// filter, rank, publish. Called on every map update.
func (a *App) selectionCycle(robotID string, grid *explore.OccupancyGrid) {
	a.cycleMu.Lock()
	defer a.cycleMu.Unlock()

	fm, ok := a.frontierMaps[robotID]
	if !ok {
		log.Printf("No frontier map for robot %s, skipping", robotID)
		return
	}

	fm.SetGrid(grid)
	if pose, ok := a.StateTracker.GetPose(robotID); ok {
		fm.SetRobotPose(pose)
	}

	fm.SetFrontiers(explore.ExtractFrontiers(grid))
	snapshot := fm.RankedSnapshot()
	if fm.Verbosity() > 0 {
		fm.Describe(log.Writer())
	}

	a.StateTracker.UpdateGrid(robotID, grid)
	a.StateTracker.UpdateFrontiers(robotID, snapshot)

	best, score, err := fm.Best()
	if err != nil {
		if errors.Is(err, explore.ErrNoFrontiers) {
			log.Printf("%s: no frontiers remain, exploration complete", robotID)
			a.StateTracker.ClearGoal(robotID)
			if a.Publisher != nil {
				a.Publisher.ClearGoal(robotID)
			}
			return
		}
		log.Printf("%s: frontier selection failed: %v", robotID, err)
		return
	}

	log.Printf("%s: %d frontier(s), best at (%.2f, %.2f) size=%d score=%.4f",
		robotID, fm.Len(), best.Centroid[0], best.Centroid[1], best.Size(), score)

	a.StateTracker.UpdateGoal(&explore.Goal{
		RobotID:   robotID,
		X:         best.Centroid[0],
		Y:         best.Centroid[1],
		Size:      best.Size(),
		Score:     score,
		Timestamp: time.Now().Unix(),
	})

	if a.Publisher != nil {
		if err := a.Publisher.PublishGoal(robotID, best.Centroid[0], best.Centroid[1], best.Size(), score); err != nil {
			log.Printf("Error publishing goal for %s: %v", robotID, err)
		}
	}
}

// RunService starts the combined MQTT and/or HTTP service
func (a *App) RunService() {
	fmt.Println("Starting frontiermesh service...")

	// 1. Load config.yaml (required for service mode)
	resolvedConfig := a.resolveConfigPath()
	config, err := explore.LoadConfig(resolvedConfig)
	if err != nil {
		log.Fatalf("Failed to load config: %v (looked at %s)", err, resolvedConfig)
	}
	a.Config = config
	log.Printf("Loaded config from %s", resolvedConfig)

	// 2. Set colors and build one frontier map per robot
	for _, rc := range config.Robots {
		if rc.Color != "" {
			a.StateTracker.SetColor(rc.ID, rc.Color)
		}
		fm := explore.NewFrontiersMap(nil)
		if err := fm.Configure(config.Exploration); err != nil {
			log.Fatalf("Invalid exploration config: %v", err)
		}
		a.frontierMaps[rc.ID] = fm
	}

	// 3. Start MQTT if enabled
	if a.MqttMode {
		mapHandler := func(robotID string, grid *explore.OccupancyGrid, err error) {
			if err != nil {
				log.Printf("Error receiving map data for %s: %v", robotID, err)
				return
			}
			a.selectionCycle(robotID, grid)
		}
		poseHandler := func(robotID string, pose explore.Pose) {
			a.StateTracker.UpdatePose(robotID, pose)
		}

		mqttClient, err := explore.InitMQTT(config, mapHandler, poseHandler)
		if err != nil {
			log.Fatalf("Failed to initialize MQTT: %v", err)
		}
		if mqttClient == nil {
			log.Fatal("MQTT broker not configured in config.yaml")
		}
		a.MQTTClient = mqttClient

		a.Publisher = explore.NewPublisher(mqttClient.GetClient())
		fmt.Println("MQTT goal publisher initialized")
	}

	// 4. Start HTTP server if enabled
	if a.HttpMode {
		httpServer := newHTTPServer(a.StateTracker, a.Config)
		go func() {
			addr := fmt.Sprintf(":%d", a.HttpPort)
			log.Printf("[HTTP] Starting server on %s", addr)
			if err := http.ListenAndServe(addr, httpServer); err != nil {
				log.Fatalf("[HTTP] Server error: %v", err)
			}
		}()
	}

	// 5. Print service info
	fmt.Println("\nService Running")
	fmt.Println("===============")

	if a.MqttMode {
		fmt.Println("\nMQTT:")
		fmt.Println("  Subscribed topics:")
		for _, rc := range config.Robots {
			fmt.Printf("    - %s (%s)\n", rc.MapTopic, rc.ID)
			if rc.PoseTopic != "" {
				fmt.Printf("    - %s (%s pose)\n", rc.PoseTopic, rc.ID)
			}
		}
		publishPrefix := config.MQTT.PublishPrefix
		if publishPrefix == "" {
			publishPrefix = "frontiermesh"
		}
		fmt.Printf("  Publishing goals to: %s/{robotID}/goal\n", publishPrefix)
		fmt.Printf("  Combined goals: %s/goals\n", publishPrefix)
	}

	if a.HttpMode {
		fmt.Printf("\nHTTP endpoints (port %d):\n", a.HttpPort)
		fmt.Println("  GET /health         - Health check")
		fmt.Println("  GET /frontiers.json - Ranked frontiers as GeoJSON")
		fmt.Println("  GET /goal.json      - Selected exploration goals")
		fmt.Println("  GET /map.png        - Grid with ranked frontiers (raster)")
		fmt.Println("  GET /map.svg        - Grid with ranked frontiers (vector)")
	}

	fmt.Println("\nPress Ctrl+C to stop")

	// 6. Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	fmt.Println("\nShutting down service...")
	if a.MQTTClient != nil {
		a.MQTTClient.Disconnect()
	}
	fmt.Println("Service stopped")
}
