package explore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher() (*Publisher, *MockClient) {
	mock := NewMockClient()
	mock.SetConnected(true)
	p := NewPublisher(mock)
	p.publishPrefix = "frontiermesh"
	return p, mock
}

func TestPublishGoal(t *testing.T) {
	p, mock := newTestPublisher()

	err := p.PublishGoal("robot1", 2.5, -1.0, 12, 14.75)
	require.NoError(t, err)

	messages := mock.GetPublishedMessages()
	require.Len(t, messages, 2)

	// Individual topic first, combined second.
	assert.Equal(t, "frontiermesh/robot1/goal", messages[0].Topic)
	assert.Equal(t, "frontiermesh/goals", messages[1].Topic)
	assert.True(t, messages[0].Retain)

	var goal Goal
	require.NoError(t, json.Unmarshal(messages[0].Payload, &goal))
	assert.Equal(t, "robot1", goal.RobotID)
	assert.Equal(t, 2.5, goal.X)
	assert.Equal(t, -1.0, goal.Y)
	assert.Equal(t, 12, goal.Size)
	assert.Equal(t, 14.75, goal.Score)
	assert.NotZero(t, goal.Timestamp)

	var combined struct {
		Goals     []*Goal `json:"goals"`
		Timestamp int64   `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(messages[1].Payload, &combined))
	require.Len(t, combined.Goals, 1)
	assert.Equal(t, "robot1", combined.Goals[0].RobotID)
}

func TestPublishGoalMultipleRobots(t *testing.T) {
	p, mock := newTestPublisher()

	require.NoError(t, p.PublishGoal("robot1", 1, 1, 3, 4))
	require.NoError(t, p.PublishGoal("robot2", 2, 2, 5, 6))

	messages := mock.GetPublishedMessages()
	require.Len(t, messages, 4)

	// The second combined publish carries both goals.
	var combined struct {
		Goals []*Goal `json:"goals"`
	}
	require.NoError(t, json.Unmarshal(messages[3].Payload, &combined))
	assert.Len(t, combined.Goals, 2)
}

func TestPublishGoalNotConnected(t *testing.T) {
	mock := NewMockClient()
	p := NewPublisher(mock)

	err := p.PublishGoal("robot1", 0, 0, 1, 1)
	assert.Error(t, err)
	assert.Empty(t, mock.GetPublishedMessages())
}

func TestPublishGoalNilClient(t *testing.T) {
	p := NewPublisher(nil)
	assert.Error(t, p.PublishGoal("robot1", 0, 0, 1, 1))
}

func TestPublisherGoalTracking(t *testing.T) {
	p, _ := newTestPublisher()

	require.NoError(t, p.PublishGoal("robot1", 5, 6, 2, 3))

	goal, ok := p.GetGoal("robot1")
	require.True(t, ok)
	assert.Equal(t, 5.0, goal.X)

	all := p.GetAllGoals()
	require.Len(t, all, 1)
	all["robot1"].X = 99
	unchanged, _ := p.GetGoal("robot1")
	assert.Equal(t, 5.0, unchanged.X, "GetAllGoals must return copies")

	p.ClearGoal("robot1")
	_, ok = p.GetGoal("robot1")
	assert.False(t, ok)
}

func TestPublisherQoSAndRetain(t *testing.T) {
	p, mock := newTestPublisher()

	p.SetQoS(1)
	p.SetRetain(false)
	require.NoError(t, p.PublishGoal("robot1", 0, 0, 1, 1))

	messages := mock.GetPublishedMessages()
	require.NotEmpty(t, messages)
	assert.Equal(t, byte(1), messages[0].QoS)
	assert.False(t, messages[0].Retain)

	p.SetQoS(7) // invalid, ignored
	assert.Equal(t, byte(1), p.qos)
}
