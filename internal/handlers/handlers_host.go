package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"quizlive-backend/api"
	errs "quizlive-backend/internal/errors"
	"quizlive-backend/internal/quiz"

	"github.com/coder/websocket"
)

func (h SocketHandler) handleCreateRoom(ctx context.Context, conn *websocket.Conn) {
	if _, ok := h.sessions.Get(conn); ok {
		writeResponse(ctx, conn, api.ResponseTypeCreateRoom, api.CreateRoomAckData{
			Error: quiz.ErrAlreadyInRoom.Error(),
		})
		return
	}

	room, err := h.registry.Create(conn, time.Now())
	if err != nil {
		errs.WriteWebsocketError(ctx, conn, errs.InternalServerError(err, api.RequestTypeCreateRoom))
		return
	}

	h.sessions.Add(conn, quiz.Session{RoomCode: room.Code(), Host: true})
	h.metrics.RoomCreated()

	writeResponse(ctx, conn, api.ResponseTypeCreateRoom, api.CreateRoomAckData{
		Success:  true,
		RoomCode: room.Code(),
	})

	slog.InfoContext(ctx, "room created", slog.String("room", room.Code()))
}

func (h SocketHandler) handleAddQuestion(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	req, err := api.DecodeJSON[api.AddQuestionRequestData](data)
	if err != nil {
		errs.WriteWebsocketError(ctx, conn, errs.InvalidRequestError(err, api.RequestTypeAddQuestion, "invalid add-question request"))
		return
	}

	room, err := h.hostRoom(req.RoomCode, conn)
	if err != nil {
		writeResponse(ctx, conn, api.ResponseTypeAddQuestion, api.AddQuestionAckData{Error: err.Error()})
		return
	}

	q, err := room.AddQuestion(req.Question, time.Now())
	if err != nil {
		writeResponse(ctx, conn, api.ResponseTypeAddQuestion, api.AddQuestionAckData{Error: err.Error()})
		return
	}

	writeResponse(ctx, conn, api.ResponseTypeAddQuestion, api.AddQuestionAckData{
		Success:  true,
		Question: &q,
	})
	writeResponse(ctx, conn, api.ResponseTypeQuestionAdded, q)

	slog.InfoContext(ctx, "question added",
		slog.String("room", room.Code()),
		slog.String("question", q.ID))
}

func (h SocketHandler) handleStartQuiz(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	req, err := api.DecodeJSON[api.StartQuizRequestData](data)
	if err != nil {
		errs.WriteWebsocketError(ctx, conn, errs.InvalidRequestError(err, api.RequestTypeStartQuiz, "invalid start-quiz request"))
		return
	}

	room, err := h.hostRoom(req.RoomCode, conn)
	if err != nil {
		writeResponse(ctx, conn, api.ResponseTypeStartQuiz, api.StartQuizAckData{Error: err.Error()})
		return
	}

	first, err := room.Start(time.Now())
	if err != nil {
		writeResponse(ctx, conn, api.ResponseTypeStartQuiz, api.StartQuizAckData{Error: err.Error()})
		return
	}

	writeResponse(ctx, conn, api.ResponseTypeStartQuiz, api.StartQuizAckData{Success: true})

	res := api.Response[api.QuizStartedData]{
		Type: api.ResponseTypeQuizStarted,
		Data: api.QuizStartedData{
			Question:       first.View(),
			QuestionNumber: 1,
			TimeLimit:      first.TimeLimit,
			TotalQuestions: room.NumQuestions(),
		},
	}
	if err := room.Broadcast(ctx, res); err != nil {
		slog.Debug("broadcast quiz-started", slog.Any("error", err))
	}

	slog.InfoContext(ctx, "quiz started", slog.String("room", room.Code()))
}

func (h SocketHandler) handleNextQuestion(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	req, err := api.DecodeJSON[api.NextQuestionRequestData](data)
	if err != nil {
		errs.WriteWebsocketError(ctx, conn, errs.InvalidRequestError(err, api.RequestTypeNextQuestion, "invalid next-question request"))
		return
	}

	room, err := h.hostRoom(req.RoomCode, conn)
	if err != nil {
		writeResponse(ctx, conn, api.ResponseTypeNextQuestion, api.NextQuestionAckData{Error: err.Error()})
		return
	}

	// Results and advance are one atomic room operation; the snapshot
	// goes to the host only, correct answers included.
	results, next, hasNext := room.AdvanceQuestion(time.Now())

	writeResponse(ctx, conn, api.ResponseTypeNextQuestion, api.NextQuestionAckData{
		Success:         true,
		HasNextQuestion: hasNext,
	})
	writeResponse(ctx, conn, api.ResponseTypeQuestionResults, results)

	if hasNext {
		res := api.Response[api.NextQuestionData]{
			Type: api.ResponseTypeNextQuestion,
			Data: api.NextQuestionData{
				QuestionNumber: room.CurrentQuestionIndex() + 1,
				TotalQuestions: room.NumQuestions(),
				TimeLimit:      next.TimeLimit,
				Question:       next.View(),
			},
		}
		if err := room.Broadcast(ctx, res); err != nil {
			slog.Debug("broadcast next-question", slog.Any("error", err))
		}
		return
	}

	res := api.Response[api.QuizFinishedData]{
		Type: api.ResponseTypeQuizFinished,
		Data: api.QuizFinishedData{
			FinalLeaderboard: room.Leaderboard(),
			TotalQuestions:   room.NumQuestions(),
		},
	}
	if err := room.Broadcast(ctx, res); err != nil {
		slog.Debug("broadcast quiz-finished", slog.Any("error", err))
	}

	slog.InfoContext(ctx, "quiz finished", slog.String("room", room.Code()))
}

// handleEndQuiz force-terminates a quiz. There is no ack: the end-quiz
// broadcast itself is the observable outcome, a terminal event
// distinct from quiz-finished.
func (h SocketHandler) handleEndQuiz(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	req, err := api.DecodeJSON[api.EndQuizRequestData](data)
	if err != nil {
		errs.WriteWebsocketError(ctx, conn, errs.InvalidRequestError(err, api.RequestTypeEndQuiz, "invalid end-quiz request"))
		return
	}

	room, err := h.hostRoom(req.RoomCode, conn)
	if err != nil {
		switch err {
		case quiz.ErrRoomNotFound:
			errs.WriteWebsocketError(ctx, conn, errs.RoomNotFoundError(api.RequestTypeEndQuiz, req.RoomCode))
		default:
			errs.WriteWebsocketError(ctx, conn, errs.UnauthorizedRequestError(api.RequestTypeEndQuiz, "sender is not the room host"))
		}
		return
	}

	leaderboard := room.End()

	res := api.Response[api.EndQuizData]{
		Type: api.ResponseTypeEndQuiz,
		Data: api.EndQuizData{Leaderboard: leaderboard},
	}
	if err := room.Broadcast(ctx, res); err != nil {
		slog.Debug("broadcast end-quiz", slog.Any("error", err))
	}

	slog.InfoContext(ctx, "quiz ended by host", slog.String("room", room.Code()))
}
