package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/pkg/types"
)

// SessionTransport wraps a session-based remote-signing protocol: requests
// are relayed over a WebSocket connection to the wallet that approved the
// session. A request is only valid when both a live relay connection and an
// active session topic are present; absent either, it fails fast before any
// network call.
type SessionTransport struct {
	relayURL string
	chainID  string // "hathor:<network>"
	logger   *zap.Logger

	mu      sync.RWMutex
	conn    *websocket.Conn
	topic   string
	pending map[string]chan sessionResponse

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

// SessionConfig holds remote-session transport configuration.
type SessionConfig struct {
	RelayURL string
	Network  string
	Logger   *zap.Logger
}

// sessionEnvelope is the relay request wire format.
type sessionEnvelope struct {
	ID      string         `json:"id"`
	ChainID string         `json:"chainId"`
	Topic   string         `json:"topic"`
	Request sessionRequest `json:"request"`
}

type sessionRequest struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// sessionResponse is the relay response wire format.
type sessionResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *sessionError   `json:"error,omitempty"`
}

type sessionError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// userRejectedCode is the session protocol's code for a rejection in the
// wallet UI.
const userRejectedCode = 5000

// NewSessionTransport creates a remote-session transport. The transport is
// inert until Connect establishes the relay connection and session topic.
func NewSessionTransport(cfg *SessionConfig) *SessionTransport {
	return &SessionTransport{
		relayURL: cfg.RelayURL,
		chainID:  "hathor:" + cfg.Network,
		logger:   cfg.Logger,
		pending:  make(map[string]chan sessionResponse),
	}
}

// Connect dials the relay and activates the given session topic.
func (s *SessionTransport) Connect(ctx context.Context, topic string) error {
	if topic == "" {
		return types.NewWalletError(types.ErrNotConnected, "", "session topic cannot be empty")
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, s.relayURL, nil)
	if err != nil {
		return types.NewWalletError(types.ErrNetworkFailure, "",
			fmt.Sprintf("dial relay: %v", err))
	}

	s.mu.Lock()
	s.conn = conn
	s.topic = topic
	s.mu.Unlock()

	s.wg.Add(1)
	go s.readLoop(conn)

	s.logger.Info("session-connected",
		zap.String("relay-url", s.relayURL),
		zap.String("topic", topic))

	return nil
}

// Close tears down the relay connection and fails all in-flight requests.
func (s *SessionTransport) Close() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.topic = ""
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}

	s.wg.Wait()
	s.logger.Info("session-closed")
}

// Active reports whether both a live relay connection and a session topic
// are present.
func (s *SessionTransport) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.conn != nil && s.topic != ""
}

// Request relays one wallet RPC through the active session and waits for
// the correlated response.
func (s *SessionTransport) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	s.mu.RLock()
	conn := s.conn
	topic := s.topic
	s.mu.RUnlock()

	if conn == nil || topic == "" {
		return nil, types.NewWalletError(types.ErrNotConnected, method,
			"no active wallet session")
	}

	envelope := sessionEnvelope{
		ID:      uuid.NewString(),
		ChainID: s.chainID,
		Topic:   topic,
		Request: sessionRequest{Method: method, Params: params},
	}

	respChan := make(chan sessionResponse, 1)

	s.mu.Lock()
	s.pending[envelope.ID] = respChan
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, envelope.ID)
		s.mu.Unlock()
	}()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, normalizeError(method, err)
	}

	s.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, payload)
	s.writeMu.Unlock()

	if err != nil {
		return nil, types.NewWalletError(types.ErrNetworkFailure, method, err.Error())
	}

	s.logger.Debug("session-request-sent",
		zap.String("method", method),
		zap.String("request-id", envelope.ID))

	// No built-in timeout here: a hung remote signer blocks only this
	// caller. Cancellation comes from the caller's context.
	select {
	case <-ctx.Done():
		return nil, normalizeError(method, ctx.Err())
	case resp, ok := <-respChan:
		if !ok {
			return nil, types.NewWalletError(types.ErrNotConnected, method,
				"session closed while awaiting response")
		}

		if resp.Error != nil {
			code := types.ErrRPCFailed
			if resp.Error.Code == userRejectedCode {
				code = types.ErrUserRejected
			}

			return nil, types.NewWalletError(code, method, resp.Error.Message)
		}

		return resp.Result, nil
	}
}

// readLoop dispatches relay responses to their awaiting callers by request
// id.
func (s *SessionTransport) readLoop(conn *websocket.Conn) {
	defer s.wg.Done()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.logger.Debug("session-read-loop-exiting", zap.Error(err))
			s.failPending()
			return
		}

		var resp sessionResponse

		err = json.Unmarshal(payload, &resp)
		if err != nil {
			s.logger.Warn("session-response-unparsable", zap.Error(err))
			continue
		}

		s.mu.RLock()
		respChan, found := s.pending[resp.ID]
		s.mu.RUnlock()

		if !found {
			s.logger.Debug("session-response-unmatched",
				zap.String("request-id", resp.ID))
			continue
		}

		respChan <- resp
	}
}

// failPending closes all in-flight request channels so awaiting callers
// observe a disconnect instead of hanging.
func (s *SessionTransport) failPending() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, respChan := range s.pending {
		close(respChan)
		delete(s.pending, id)
	}
}
