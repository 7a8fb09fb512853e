package explore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMQTTConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{Broker: "tcp://localhost:1883"},
		Robots: []RobotConfig{
			{ID: "robot1", MapTopic: "robots/robot1/map", PoseTopic: "robots/robot1/pose"},
			{ID: "robot2", MapTopic: "robots/robot2/map"},
		},
		Exploration: ExplorationConfig{
			Strategies: []StrategyConfig{{Name: StrategyMaxSize}},
		},
	}
}

func TestOnConnectSubscribesRobotTopics(t *testing.T) {
	mock := NewMockClient()
	mock.SetConnected(true)

	client := newMQTTClientWithMock(mock, testMQTTConfig(), nil, nil)
	client.onConnect(mock)

	assert.True(t, client.IsConnected())

	// Subscriptions are visible to SimulateMessage only when registered.
	mock.SimulateMessage("robots/robot1/map", []byte("x"))
	mock.SimulateMessage("robots/robot1/pose", []byte("x"))
	mock.SimulateMessage("robots/robot2/map", []byte("x"))
}

func TestMapMessageDecoded(t *testing.T) {
	mock := NewMockClient()
	mock.SetConnected(true)

	var gotRobot string
	var gotGrid *OccupancyGrid
	var gotErr error
	handler := func(robotID string, grid *OccupancyGrid, err error) {
		gotRobot = robotID
		gotGrid = grid
		gotErr = err
	}

	client := newMQTTClientWithMock(mock, testMQTTConfig(), handler, nil)
	client.onConnect(mock)

	payload := sampleGridJSON(t)
	mock.SimulateMessage("robots/robot1/map", payload)

	require.NoError(t, gotErr)
	assert.Equal(t, "robot1", gotRobot)
	require.NotNil(t, gotGrid)
	assert.Equal(t, 3, gotGrid.Width)
}

func TestMapMessageCompressed(t *testing.T) {
	mock := NewMockClient()
	mock.SetConnected(true)

	var gotGrid *OccupancyGrid
	handler := func(robotID string, grid *OccupancyGrid, err error) {
		require.NoError(t, err)
		gotGrid = grid
	}

	client := newMQTTClientWithMock(mock, testMQTTConfig(), handler, nil)
	client.onConnect(mock)

	mock.SimulateMessage("robots/robot2/map", deflate(t, sampleGridJSON(t)))

	require.NotNil(t, gotGrid)
	assert.Equal(t, 6, gotGrid.NumCells())
}

func TestMapMessageDecodeFailure(t *testing.T) {
	mock := NewMockClient()
	mock.SetConnected(true)

	var gotErr error
	var gotGrid *OccupancyGrid
	handler := func(robotID string, grid *OccupancyGrid, err error) {
		gotGrid = grid
		gotErr = err
	}

	client := newMQTTClientWithMock(mock, testMQTTConfig(), handler, nil)
	client.onConnect(mock)

	mock.SimulateMessage("robots/robot1/map", []byte{0x01, 0x02})

	assert.Error(t, gotErr)
	assert.Nil(t, gotGrid)
}

func TestPoseMessageDecoded(t *testing.T) {
	mock := NewMockClient()
	mock.SetConnected(true)

	var gotRobot string
	var gotPose Pose
	handler := func(robotID string, pose Pose) {
		gotRobot = robotID
		gotPose = pose
	}

	client := newMQTTClientWithMock(mock, testMQTTConfig(), nil, handler)
	client.onConnect(mock)

	payload, err := json.Marshal(Pose{X: 1.25, Y: -0.5, Theta: 45})
	require.NoError(t, err)
	mock.SimulateMessage("robots/robot1/pose", payload)

	assert.Equal(t, "robot1", gotRobot)
	assert.Equal(t, 1.25, gotPose.X)
	assert.Equal(t, 45.0, gotPose.Theta)
}

func TestPoseMessageInvalidJSON(t *testing.T) {
	mock := NewMockClient()
	mock.SetConnected(true)

	called := false
	handler := func(robotID string, pose Pose) { called = true }

	client := newMQTTClientWithMock(mock, testMQTTConfig(), nil, handler)
	client.onConnect(mock)

	mock.SimulateMessage("robots/robot1/pose", []byte("not json"))
	assert.False(t, called, "malformed pose must not reach the handler")
}

func TestGetRobotByMapTopic(t *testing.T) {
	client := newMQTTClientWithMock(NewMockClient(), testMQTTConfig(), nil, nil)

	id, ok := client.GetRobotByMapTopic("robots/robot2/map")
	assert.True(t, ok)
	assert.Equal(t, "robot2", id)

	_, ok = client.GetRobotByMapTopic("robots/ghost/map")
	assert.False(t, ok)
}

func TestDisconnect(t *testing.T) {
	mock := NewMockClient()
	mock.SetConnected(true)

	client := newMQTTClientWithMock(mock, testMQTTConfig(), nil, nil)
	client.onConnect(mock)
	require.True(t, client.IsConnected())

	client.Disconnect()
	assert.False(t, client.IsConnected())
	assert.False(t, mock.IsConnected())
}
