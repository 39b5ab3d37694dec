package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"calorieburn/calories"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = (livePongWait * 9) / 10
	liveMaxMessage = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// liveReply is sent for every message received on /ws/predict.
type liveReply struct {
	*calories.Result
	Error string `json:"error,omitempty"`
}

// handleLive serves API clients that want a prediction per message over one
// connection. Messages are handled one at a time in arrival order.
func (h *Handlers) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	requestID := GetRequestID(r.Context())
	logger := h.logger.With(zap.String("request_id", requestID))

	conn.SetReadLimit(liveMaxMessage)
	conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	replies := make(chan []byte, 1)
	done := make(chan struct{})
	go h.livePump(conn, replies, done, logger)
	defer func() {
		close(replies)
		<-done
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(livePongWait))

		reply := h.livePredict(r, message, logger)
		payload, err := json.Marshal(reply)
		if err != nil {
			logger.Error("encode live reply", zap.Error(err))
			return
		}
		select {
		case replies <- payload:
		case <-done:
			return
		}
	}
}

func (h *Handlers) livePredict(r *http.Request, message []byte, logger *zap.Logger) liveReply {
	values, err := decodeValues(bytes.NewReader(message))
	if err != nil {
		return liveReply{Error: "invalid JSON message"}
	}
	result, err := h.predictor.Submit(r.Context(), values, nil)
	if err != nil {
		logger.Error("live prediction failed", zap.Error(err))
		return liveReply{Error: predictionFailed}
	}
	return liveReply{Result: &result}
}

// livePump owns all writes to conn: replies in order, plus keepalive pings.
func (h *Handlers) livePump(conn *websocket.Conn, replies <-chan []byte, done chan<- struct{}, logger *zap.Logger) {
	ticker := time.NewTicker(livePingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	for {
		select {
		case payload, ok := <-replies:
			conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Warn("websocket write error", zap.Error(err))
				// unblock the reader
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
