package landmark

import (
	"FallWatch/internal/entity"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type IWebsocket interface {
	Provider
	IsConnected(model Model) bool
	Reconnect(model Model) error
	CloseConnections()
}

// channel is one connection to a model endpoint. mu serializes whole
// request/response round trips so concurrent callers never read each
// other's answers.
type channel struct {
	model Model
	url   string
	mu    sync.Mutex
	conn  *websocket.Conn
}

type webSocketClient struct {
	channels     map[Model]*channel
	log          *logrus.Logger
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewAIWebSocketClient dials the landmark service in the background; the
// first request on a model reconnects if the initial dial failed.
func NewAIWebSocketClient(log *logrus.Logger) IWebsocket {
	client := newClient(log, URLFromEnv(PoseModel), URLFromEnv(FaceMeshModel))

	go client.connectInBackground(PoseModel)
	go client.connectInBackground(FaceMeshModel)

	return client
}

// NewWithURLs builds a client that dials lazily on first use.
func NewWithURLs(log *logrus.Logger, poseURL, faceMeshURL string) IWebsocket {
	return newClient(log, poseURL, faceMeshURL)
}

func newClient(log *logrus.Logger, poseURL, faceMeshURL string) *webSocketClient {
	return &webSocketClient{
		channels: map[Model]*channel{
			PoseModel:     {model: PoseModel, url: poseURL},
			FaceMeshModel: {model: FaceMeshModel, url: faceMeshURL},
		},
		log:          log,
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}
}

func (c *webSocketClient) connectInBackground(model Model) {
	if err := c.Reconnect(model); err != nil {
		c.log.Warnf("Initial connection to %s failed: %v. Will retry on demand.", model.Name(), err)
		return
	}
	c.log.Infof("Successfully connected to %s service", model.Name())
}

func (c *webSocketClient) IsConnected(model Model) bool {
	ch, ok := c.channels[model]
	if !ok {
		return false
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.conn != nil
}

func (c *webSocketClient) Reconnect(model Model) error {
	ch, ok := c.channels[model]
	if !ok {
		return fmt.Errorf("unknown landmark model %q", model)
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return c.dial(context.Background(), ch)
}

// dial must be called with ch.mu held.
func (c *webSocketClient) dial(ctx context.Context, ch *channel) error {
	if ch.conn != nil {
		ch.conn.Close()
		ch.conn = nil
	}

	if ch.url == "" {
		return fmt.Errorf("URL for %s not configured", ch.model.Name())
	}

	c.log.Debugf("Connecting to %s at %s", ch.model.Name(), ch.url)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.DialContext(ctx, ch.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", ch.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		if err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout)); err != nil {
			c.log.Warnf("Error sending pong: %v", err)
		}
		return nil
	})

	ch.conn = conn
	go c.keepAlive(ch, conn)

	return nil
}

func (c *webSocketClient) CloseConnections() {
	for _, ch := range c.channels {
		ch.mu.Lock()
		if ch.conn != nil {
			ch.conn.Close()
			ch.conn = nil
		}
		ch.mu.Unlock()
	}
}

func (c *webSocketClient) keepAlive(ch *channel, conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		ch.mu.Lock()
		if ch.conn != conn {
			ch.mu.Unlock()
			return
		}

		if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout)); err != nil {
			c.log.Warnf("Ping failed for %s, marking connection as dead: %v", ch.model.Name(), err)
			ch.conn = nil
			conn.Close()
			ch.mu.Unlock()
			return
		}
		ch.mu.Unlock()
	}
}

func (c *webSocketClient) roundTrip(ctx context.Context, model Model, frame []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch, ok := c.channels[model]
	if !ok {
		return nil, fmt.Errorf("unknown landmark model %q", model)
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()

	// The caller may have given up while another round trip held the channel.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ch.conn == nil {
		if err := c.dial(ctx, ch); err != nil {
			return nil, fmt.Errorf("cannot connect to %s service: %w", model.Name(), err)
		}
	}
	conn := ch.conn

	conn.SetWriteDeadline(c.deadline(ctx, c.writeTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		ch.conn = nil
		conn.Close()
		return nil, fmt.Errorf("error sending frame to %s: %w", model.Name(), err)
	}

	conn.SetReadDeadline(c.deadline(ctx, c.readTimeout))
	_, message, err := conn.ReadMessage()
	if err != nil {
		ch.conn = nil
		conn.Close()
		return nil, fmt.Errorf("error reading %s response: %w", model.Name(), err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	return message, nil
}

func (c *webSocketClient) deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

func (c *webSocketClient) DetectPose(ctx context.Context, frame []byte) (*entity.Pose, error) {
	message, err := c.roundTrip(ctx, PoseModel, frame)
	if err != nil {
		return nil, err
	}

	var res poseResponse
	if err := json.Unmarshal(message, &res); err != nil {
		return nil, fmt.Errorf("error unmarshaling pose response: %w", err)
	}
	if res.Error != "" {
		return nil, errors.New("pose service error: " + res.Error)
	}
	if len(res.Landmarks) == 0 {
		return nil, nil
	}

	return &entity.Pose{Landmarks: res.Landmarks}, nil
}

func (c *webSocketClient) DetectFaceMesh(ctx context.Context, frame []byte) ([]entity.FaceMesh, error) {
	message, err := c.roundTrip(ctx, FaceMeshModel, frame)
	if err != nil {
		return nil, err
	}

	var res faceMeshResponse
	if err := json.Unmarshal(message, &res); err != nil {
		return nil, fmt.Errorf("error unmarshaling face mesh response: %w", err)
	}
	if res.Error != "" {
		return nil, errors.New("face mesh service error: " + res.Error)
	}

	faces := make([]entity.FaceMesh, 0, len(res.Faces))
	for _, points := range res.Faces {
		if len(points) == 0 {
			continue
		}
		faces = append(faces, entity.FaceMesh{Landmarks: points})
	}

	return faces, nil
}

// URLFromEnv returns the configured endpoint for model, falling back to the
// local development service.
func URLFromEnv(model Model) string {
	switch model {
	case PoseModel:
		url := os.Getenv("AI_POSE_LANDMARK_URL")
		if url == "" {
			url = "ws://localhost:8000/api/v1/pose/ws"
		}
		return url
	case FaceMeshModel:
		url := os.Getenv("AI_FACE_MESH_URL")
		if url == "" {
			url = "ws://localhost:8000/api/v1/face-mesh/ws"
		}
		return url
	default:
		return ""
	}
}
