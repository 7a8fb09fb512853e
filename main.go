package main

import (
	"flag"
	"fmt"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile   = flag.String("config", "config.yaml", "Path to configuration file")
	selectOnly   = flag.Bool("select", false, "Select the best frontier from a grid export and exit")
	renderOnly   = flag.Bool("render", false, "Render the grid with ranked frontiers and exit")
	gridFile     = flag.String("grid", "", "Path to an occupancy grid JSON export (for --select/--render)")
	poseSpec     = flag.String("pose", "", "Robot pose as X,Y[,THETA] in world coordinates (for --select/--render)")
	describe     = flag.Bool("describe", false, "Print the per-strategy score breakdown in --select mode")
	outputFile   = flag.String("output", "frontier-map.png", "Output file for --render mode")
	renderFormat = flag.String("format", "raster", "Render format: raster, vector, or both")
	dataDir      = flag.String("data-dir", ".", "Directory containing grid exports and config")
	mqttMode     = flag.Bool("mqtt", false, "Run MQTT service mode for live frontier selection")
	httpMode     = flag.Bool("http", false, "Enable HTTP server for maps and frontier data")
	httpPort     = flag.Int("http-port", 8080, "HTTP server port (default 8080)")
)

// AppOptions carries parsed CLI options into the App.
type AppOptions struct {
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

func optionsFromFlags() AppOptions {
	return AppOptions{
		ConfigFile:   *configFile,
		GridFile:     *gridFile,
		PoseSpec:     *poseSpec,
		Describe:     *describe,
		OutputFile:   *outputFile,
		RenderFormat: *renderFormat,
		DataDir:      *dataDir,
		HttpPort:     *httpPort,
		MqttMode:     *mqttMode,
		HttpMode:     *httpMode,
	}
}

func main() {
	flag.Parse()
	fmt.Printf("frontiermesh version: %s\n", Version)

	app := NewApp()
	app.ApplyOptions(optionsFromFlags())

	if *selectOnly {
		app.RunSelect()
		return
	}

	if *renderOnly {
		app.RunRender()
		return
	}

	if *mqttMode || *httpMode {
		app.RunService()
		return
	}

	fmt.Println("frontiermesh service starting...")
	fmt.Println("Use --select --grid=FILE to pick the best frontier from a grid export")
	fmt.Println("Use --render --grid=FILE to render the ranked frontiers")
	fmt.Println("Use --mqtt to run MQTT service mode")
	fmt.Println("Use --http to run HTTP server mode")
	fmt.Println("Use --mqtt --http to run both MQTT and HTTP together")
	fmt.Println("\nConfiguration:")
	fmt.Println("  config.yaml - MQTT settings, robots, and selection strategies")
}
