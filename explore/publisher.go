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

// Publisher manages publishing selected exploration goals to MQTT.
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	goals         map[string]*Goal
	mu            sync.RWMutex
}

// NewPublisher creates a new goal publisher.
// If client is nil, publishing is disabled (for testing).
func NewPublisher(client mqtt.Client) *Publisher {
	prefix := os.Getenv("MQTT_PUBLISH_PREFIX")
	if prefix == "" {
		prefix = "frontiermesh"
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           0,    // goals are superseded every cycle, fire and forget
		retain:        true, // retain so late subscribers see the latest goal
		goals:         make(map[string]*Goal),
	}
}

// PublishGoal publishes a robot's selected frontier goal to MQTT, on both
// the robot's individual topic and the combined goals topic.
func (p *Publisher) PublishGoal(robotID string, x, y float64, size int, score float64) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	goal := &Goal{
		RobotID:   robotID,
		X:         x,
		Y:         y,
		Size:      size,
		Score:     score,
		Timestamp: time.Now().Unix(),
	}

	p.mu.Lock()
	p.goals[robotID] = goal
	p.mu.Unlock()

	// Individual topic: frontiermesh/{robotID}/goal
	if err := p.publishIndividual(goal); err != nil {
		log.Printf("Error publishing goal for %s: %v", robotID, err)
		return err
	}

	// Combined topic: frontiermesh/goals
	if err := p.publishCombined(); err != nil {
		log.Printf("Error publishing combined goals: %v", err)
		return err
	}

	return nil
}

func (p *Publisher) publishIndividual(goal *Goal) error {
	topic := fmt.Sprintf("%s/%s/goal", p.publishPrefix, goal.RobotID)

	payload, err := json.Marshal(goal)
	if err != nil {
		return fmt.Errorf("marshaling goal: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	log.Printf("Published goal for %s: (%.2f, %.2f) size=%d score=%.4f",
		goal.RobotID, goal.X, goal.Y, goal.Size, goal.Score)
	return nil
}

func (p *Publisher) publishCombined() error {
	p.mu.RLock()
	goals := make([]*Goal, 0, len(p.goals))
	for _, g := range p.goals {
		goals = append(goals, g)
	}
	p.mu.RUnlock()

	if len(goals) == 0 {
		return nil
	}

	topic := fmt.Sprintf("%s/goals", p.publishPrefix)

	message := map[string]interface{}{
		"goals":     goals,
		"timestamp": time.Now().Unix(),
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshaling combined goals: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	return nil
}

// GetGoal returns the last published goal for a robot.
func (p *Publisher) GetGoal(robotID string) (*Goal, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	goal, ok := p.goals[robotID]
	return goal, ok
}

// GetAllGoals returns all last-published goals.
func (p *Publisher) GetAllGoals() map[string]*Goal {
	p.mu.RLock()
	defer p.mu.RUnlock()

	goals := make(map[string]*Goal, len(p.goals))
	for id, g := range p.goals {
		goalCopy := *g
		goals[id] = &goalCopy
	}
	return goals
}

// ClearGoal removes a robot's goal (e.g., when exploration finishes).
func (p *Publisher) ClearGoal(robotID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.goals, robotID)
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2).
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker.
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}
