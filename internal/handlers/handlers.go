// Package handlers contains the websocket event dispatcher and the
// HTTP monitoring endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"quizlive-backend/api"
	"quizlive-backend/internal/config"
	errs "quizlive-backend/internal/errors"
	"quizlive-backend/internal/metrics"
	"quizlive-backend/internal/quiz"
	"quizlive-backend/internal/rate"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	requestTimeout = 5 * time.Second
	pingInterval   = 5 * time.Second
)

// SocketHandler owns one websocket endpoint. For every inbound event
// it resolves the room and authorization, invokes the corresponding
// room operation and fans out the resulting events: acks to the
// sender, emits to the host, broadcasts to the room.
type SocketHandler struct {
	cfg      config.Config
	registry *quiz.Registry
	sessions *quiz.Sessions
	metrics  *metrics.Metrics
	accept   websocket.AcceptOptions
}

func NewSocketHandler(cfg config.Config, registry *quiz.Registry, sessions *quiz.Sessions, m *metrics.Metrics, accept websocket.AcceptOptions) SocketHandler {
	return SocketHandler{
		cfg:      cfg,
		registry: registry,
		sessions: sessions,
		metrics:  m,
		accept:   accept,
	}
}

func (h SocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &h.accept)
	if err != nil {
		// Accept already writes a status code and error message.
		slog.Error("websocket accept", slog.Any("error", err))
		return
	}
	conn.SetReadLimit(h.cfg.Room.WebsocketReadLimit)

	h.metrics.ConnOpened()
	defer h.metrics.ConnClosed()

	ctx := r.Context()
	go ping(ctx, conn, pingInterval) // Detect timed out connections.
	defer h.handleDisconnect(conn)

	limiter := rate.NewLimiter(h.cfg.Rate.Window, h.cfg.Rate.Limit)

	for {
		req := api.Request[json.RawMessage]{}
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			if websocket.CloseStatus(err) == -1 { // -1 is considered an err unrelated to closing.
				timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
				errs.WriteWebsocketError(timeoutCtx, conn, errs.InvalidRequestError(err, api.RequestTypeUnknown, "could not read websocket frame"))
				cancel()
			} else {
				slog.Debug("websocket closed", slog.Any("error", err))
			}
			return
		}

		h.metrics.Message()

		timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)

		if !limiter.Allow() {
			errs.WriteWebsocketError(timeoutCtx, conn, errs.TooManyRequestsError(req.Type))
			cancel()
			continue
		}

		switch req.Type {
		case api.RequestTypeCreateRoom:
			h.handleCreateRoom(timeoutCtx, conn)
		case api.RequestTypeJoinRoom:
			h.handleJoinRoom(timeoutCtx, conn, req.Data)
		case api.RequestTypeAddQuestion:
			h.handleAddQuestion(timeoutCtx, conn, req.Data)
		case api.RequestTypeStartQuiz:
			h.handleStartQuiz(timeoutCtx, conn, req.Data)
		case api.RequestTypeNextQuestion:
			h.handleNextQuestion(timeoutCtx, conn, req.Data)
		case api.RequestTypeEndQuiz:
			h.handleEndQuiz(timeoutCtx, conn, req.Data)
		case api.RequestTypeSubmitAnswer:
			h.handleSubmitAnswer(timeoutCtx, conn, req.Data)
		case api.RequestTypeRoomInfo:
			h.handleRoomInfo(timeoutCtx, conn, req.Data)
		default:
			err := fmt.Errorf("unknown request: %s", req.Type)
			errs.WriteWebsocketError(timeoutCtx, conn, errs.InvalidRequestError(err, api.RequestTypeUnknown, err.Error()))
		}

		cancel()
	}
}

func ping(ctx context.Context, conn *websocket.Conn, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := conn.Ping(timeoutCtx); err != nil {
				slog.Debug("ping failed, closing conn")
				conn.CloseNow()
				cancel()
				return
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}
}

// handleDisconnect resolves the departing connection to its session
// and room. A departing participant is removed and announced; a
// departing host takes the whole room down, since a quiz cannot
// continue without its host.
func (h SocketHandler) handleDisconnect(conn *websocket.Conn) {
	conn.CloseNow()

	sess, ok := h.sessions.Get(conn)
	if !ok {
		return
	}
	h.sessions.Delete(conn)

	room, ok := h.registry.Get(sess.RoomCode)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if sess.Host {
		res := api.Response[api.EmptyData]{Type: api.ResponseTypeHostDisconnected}
		if err := room.Broadcast(ctx, res); err != nil {
			slog.Debug("broadcast host-disconnected", slog.Any("error", err))
		}
		h.registry.Delete(sess.RoomCode)

		slog.Info("host disconnected, room deleted", slog.String("room", sess.RoomCode))
		return
	}

	p, ok := room.RemoveParticipant(conn)
	if !ok {
		return
	}

	res := api.Response[api.ParticipantLeftData]{
		Type: api.ResponseTypeParticipantLeft,
		Data: api.ParticipantLeftData{
			ParticipantID:     p.ID,
			ParticipantName:   p.Name,
			TotalParticipants: room.NumParticipants(),
		},
	}
	if err := room.Broadcast(ctx, res); err != nil {
		slog.Debug("broadcast participant-left", slog.Any("error", err))
	}

	slog.Info("participant left",
		slog.String("room", sess.RoomCode),
		slog.String("participant", p.Name))
}

// writeResponse writes a single response to one connection, ack or
// targeted emit alike.
func writeResponse[T any](ctx context.Context, conn *websocket.Conn, t api.ResponseType, data T) {
	res := api.Response[T]{
		Type: t,
		Data: data,
	}
	if err := wsjson.Write(ctx, conn, res); err != nil {
		slog.Error("response write",
			slog.String("type", string(t)),
			slog.Any("error", err))
	}
}

// hostRoom resolves a room code and checks the sender is its host.
func (h SocketHandler) hostRoom(code string, conn *websocket.Conn) (*quiz.Room, error) {
	room, ok := h.registry.Get(code)
	if !ok {
		return nil, quiz.ErrRoomNotFound
	}
	if room.Host() != conn {
		return nil, quiz.ErrUnauthorized
	}
	return room, nil
}
