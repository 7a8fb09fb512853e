package explore

// Occupancy values follow the ROS occupancy-grid convention: each cell holds
// -1 for unknown space or a 0..100 occupancy probability.
const (
	CellUnknown = int8(-1)

	// DefaultFreeThreshold is the exclusive upper bound for "free" cells.
	DefaultFreeThreshold = int8(25)
	// DefaultOccupiedThreshold is the inclusive lower bound for "occupied" cells.
	DefaultOccupiedThreshold = int8(65)
)

// OccupancyGrid is a robot's map of explored space: a row-major grid of
// occupancy probabilities anchored at Origin in world coordinates.
type OccupancyGrid struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Resolution float64 `json:"resolution"` // meters per cell
	Origin     Point   `json:"origin"`     // world position of cell (0,0)'s corner
	Data       []int8  `json:"data"`       // row-major, -1 unknown, 0..100 occupancy

	// FreeThreshold / OccupiedThreshold override the classification cutoffs.
	// Zero values fall back to the defaults.
	FreeThreshold     int8 `json:"freeThreshold,omitempty"`
	OccupiedThreshold int8 `json:"occupiedThreshold,omitempty"`
}

// Point represents a 2D world coordinate in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pose is a robot position and heading in world coordinates.
// Theta is in degrees, 0 = East, counter-clockwise.
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// StrategyConfig names one evaluation strategy with its string-keyed
// parameters. Parameter interpretation is strategy-specific.
type StrategyConfig struct {
	Name   string            `yaml:"name" json:"name"`
	Params map[string]string `yaml:"params,omitempty" json:"params,omitempty"`
}

// ExplorationConfig holds the frontier-selection parameters. The strategy
// order is significant: it defines the tie-break priority of the ranking.
type ExplorationConfig struct {
	MinFrontierSize int              `yaml:"minFrontierSize" json:"minFrontierSize"`
	Verbosity       int              `yaml:"verbosity,omitempty" json:"verbosity,omitempty"`
	Strategies      []StrategyConfig `yaml:"strategies" json:"strategies"`
}

// RobotConfig defines a robot from the config file.
type RobotConfig struct {
	ID        string `yaml:"id" json:"id"`
	MapTopic  string `yaml:"mapTopic" json:"mapTopic"`
	PoseTopic string `yaml:"poseTopic,omitempty" json:"poseTopic,omitempty"`
	Color     string `yaml:"color,omitempty" json:"color,omitempty"`
}

// MQTTConfig holds MQTT connection settings.
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	PublishPrefix string `yaml:"publishPrefix,omitempty" json:"publishPrefix,omitempty"`
	ClientID      string `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// Config represents the full configuration file.
type Config struct {
	MQTT        MQTTConfig        `yaml:"mqtt" json:"mqtt"`
	Robots      []RobotConfig     `yaml:"robots" json:"robots"`
	Exploration ExplorationConfig `yaml:"exploration" json:"exploration"`
}

// GetRobotByID returns the robot config for the given ID.
func (c *Config) GetRobotByID(id string) *RobotConfig {
	for i := range c.Robots {
		if c.Robots[i].ID == id {
			return &c.Robots[i]
		}
	}
	return nil
}

// Goal is a selected exploration target published for a robot.
type Goal struct {
	RobotID   string  `json:"robotId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Size      int     `json:"size"`  // cell count of the chosen frontier
	Score     float64 `json:"score"` // aggregate strategy score
	Timestamp int64   `json:"timestamp"`
}
