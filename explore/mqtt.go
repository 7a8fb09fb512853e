package explore

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MapHandler is called when a robot publishes an occupancy-grid update.
// On decode failure grid is nil and err describes the problem.
type MapHandler func(robotID string, grid *OccupancyGrid, err error)

// PoseHandler is called when a robot publishes a pose update.
type PoseHandler func(robotID string, pose Pose)

// MQTTClient manages the broker connection and per-robot subscriptions.
type MQTTClient struct {
	client      mqtt.Client
	config      *Config
	mapHandler  MapHandler
	poseHandler PoseHandler
	isConnected bool
	mu          sync.RWMutex
}

var (
	globalClient *MQTTClient
	clientMu     sync.Mutex
)

// InitMQTT initializes the global MQTT client with the provided
// configuration. If neither the MQTT_BROKER env var nor the config sets a
// broker, MQTT is disabled and this returns nil.
func InitMQTT(config *Config, mapHandler MapHandler, poseHandler PoseHandler) (*MQTTClient, error) {
	clientMu.Lock()
	defer clientMu.Unlock()

	broker := os.Getenv("MQTT_BROKER")
	if broker == "" && config != nil && config.MQTT.Broker != "" {
		broker = config.MQTT.Broker
	}

	if broker == "" {
		log.Println("MQTT disabled: MQTT_BROKER not set")
		return nil, nil
	}

	if config == nil || len(config.Robots) == 0 {
		return nil, fmt.Errorf("MQTT enabled but no robot configuration provided")
	}

	client := &MQTTClient{
		config:      config,
		mapHandler:  mapHandler,
		poseHandler: poseHandler,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)

	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" && config.MQTT.ClientID != "" {
		clientID = config.MQTT.ClientID
	}
	if clientID == "" {
		clientID = "frontiermesh"
	}
	opts.SetClientID(clientID)

	username := os.Getenv("MQTT_USERNAME")
	if username == "" && config.MQTT.Username != "" {
		username = config.MQTT.Username
	}
	if username != "" {
		opts.SetUsername(username)
		password := os.Getenv("MQTT_PASSWORD")
		if password == "" && config.MQTT.Password != "" {
			password = config.MQTT.Password
		}
		opts.SetPassword(password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(false) // Preserve subscriptions on reconnect

	// Grid and pose updates for one robot must be processed in publish
	// order, otherwise a stale pose could be scored against a fresh grid.
	opts.SetOrderMatters(true)

	opts.SetOnConnectHandler(client.onConnect)
	opts.SetConnectionLostHandler(client.onConnectionLost)
	opts.SetReconnectingHandler(client.onReconnecting)

	client.client = mqtt.NewClient(opts)

	go client.connectWithRetry()

	globalClient = client
	return client, nil
}

// GetMQTTClient returns the global MQTT client instance.
func GetMQTTClient() *MQTTClient {
	clientMu.Lock()
	defer clientMu.Unlock()
	return globalClient
}

// connectWithRetry attempts to connect to the broker with exponential backoff.
func (c *MQTTClient) connectWithRetry() {
	retryDelay := 1 * time.Second
	maxRetryDelay := 60 * time.Second

	for {
		log.Println("Connecting to MQTT broker...")

		token := c.client.Connect()
		if token.WaitTimeout(10 * time.Second) {
			if token.Error() == nil {
				log.Println("Successfully connected to MQTT broker")
				c.setConnected(true)
				return
			}
			log.Printf("MQTT connection failed: %v", token.Error())
		} else {
			log.Println("MQTT connection timeout")
		}

		log.Printf("Retrying MQTT connection in %v...", retryDelay)
		time.Sleep(retryDelay)
		retryDelay *= 2
		if retryDelay > maxRetryDelay {
			retryDelay = maxRetryDelay
		}
	}
}

// onConnect subscribes to every robot's map and pose topics.
func (c *MQTTClient) onConnect(client mqtt.Client) {
	log.Println("MQTT connected, subscribing to robot topics...")
	c.setConnected(true)

	for _, robot := range c.config.Robots {
		if robot.MapTopic == "" {
			log.Printf("Warning: robot %s has no map topic configured", robot.ID)
			continue
		}

		log.Printf("Subscribing to %s for robot %s", robot.MapTopic, robot.ID)
		token := client.Subscribe(robot.MapTopic, 0, c.createMapHandler(robot.ID))
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Printf("Error subscribing to %s: %v", robot.MapTopic, token.Error())
		} else {
			log.Printf("Successfully subscribed to %s", robot.MapTopic)
		}

		if robot.PoseTopic != "" {
			log.Printf("Subscribing to %s for robot %s pose", robot.PoseTopic, robot.ID)
			poseToken := client.Subscribe(robot.PoseTopic, 0, c.createPoseHandler(robot.ID))
			if poseToken.WaitTimeout(5*time.Second) && poseToken.Error() != nil {
				log.Printf("Error subscribing to %s: %v", robot.PoseTopic, poseToken.Error())
			} else {
				log.Printf("Successfully subscribed to %s", robot.PoseTopic)
			}
		}
	}
}

// onConnectionLost is called when the connection drops; auto-reconnect is
// enabled, so this is typically a transient event.
func (c *MQTTClient) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("MQTT connection interrupted (%v), auto-reconnect will retry", err)
	c.setConnected(false)
}

func (c *MQTTClient) onReconnecting(client mqtt.Client, opts *mqtt.ClientOptions) {
	log.Println("MQTT reconnecting...")
}

// createMapHandler creates a handler for a specific robot's map topic.
func (c *MQTTClient) createMapHandler(robotID string) mqtt.MessageHandler {
	return func(client mqtt.Client, msg mqtt.Message) {
		payload := msg.Payload()
		log.Printf("Received map data for %s (topic: %s, size: %d bytes)",
			robotID, msg.Topic(), len(payload))

		grid, err := DecodeGridData(payload)
		if err != nil {
			log.Printf("Error decoding map data for %s: %v", robotID, err)
			if c.mapHandler != nil {
				c.mapHandler(robotID, nil, err)
			}
			return
		}

		if c.mapHandler != nil {
			c.mapHandler(robotID, grid, nil)
		}
	}
}

// createPoseHandler creates a handler for a specific robot's pose topic.
func (c *MQTTClient) createPoseHandler(robotID string) mqtt.MessageHandler {
	return func(client mqtt.Client, msg mqtt.Message) {
		var pose Pose
		if err := json.Unmarshal(msg.Payload(), &pose); err != nil {
			log.Printf("Error decoding pose for %s: %v", robotID, err)
			return
		}

		if c.poseHandler != nil {
			c.poseHandler(robotID, pose)
		}
	}
}

// IsConnected returns true if the MQTT client is connected.
func (c *MQTTClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

func (c *MQTTClient) setConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isConnected = connected
}

// Disconnect gracefully closes the MQTT connection.
func (c *MQTTClient) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		log.Println("Disconnecting from MQTT broker...")
		c.client.Disconnect(250) // 250ms quiesce time
		c.setConnected(false)
	}
}

// GetRobotByMapTopic returns the robot ID for a given map topic.
func (c *MQTTClient) GetRobotByMapTopic(topic string) (string, bool) {
	for _, robot := range c.config.Robots {
		if robot.MapTopic == topic {
			return robot.ID, true
		}
	}
	return "", false
}

// GetClient returns the underlying MQTT client for publishing.
func (c *MQTTClient) GetClient() mqtt.Client {
	return c.client
}

// newMQTTClientWithMock creates an MQTTClient with a provided mqtt.Client.
// This is used for testing with mock clients.
func newMQTTClientWithMock(client mqtt.Client, config *Config, mapHandler MapHandler, poseHandler PoseHandler) *MQTTClient {
	return &MQTTClient{
		client:      client,
		config:      config,
		mapHandler:  mapHandler,
		poseHandler: poseHandler,
	}
}
