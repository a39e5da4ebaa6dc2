package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"quizlive-backend/api"
	errs "quizlive-backend/internal/errors"
	"quizlive-backend/internal/quiz"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

func (h SocketHandler) handleJoinRoom(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	req, err := api.DecodeJSON[api.JoinRoomRequestData](data)
	if err != nil {
		errs.WriteWebsocketError(ctx, conn, errs.InvalidRequestError(err, api.RequestTypeJoinRoom, "invalid join-room request"))
		return
	}

	if _, ok := h.sessions.Get(conn); ok {
		writeResponse(ctx, conn, api.ResponseTypeJoinRoom, api.JoinRoomAckData{
			Error: quiz.ErrAlreadyInRoom.Error(),
		})
		return
	}
	if err := validatePlayerName(req.PlayerName); err != nil {
		writeResponse(ctx, conn, api.ResponseTypeJoinRoom, api.JoinRoomAckData{Error: err.Error()})
		return
	}

	room, ok := h.registry.Get(req.RoomCode)
	if !ok {
		writeResponse(ctx, conn, api.ResponseTypeJoinRoom, api.JoinRoomAckData{
			Error: quiz.ErrRoomNotFound.Error(),
		})
		return
	}

	participant, err := room.AddParticipant(conn, uuid.NewString(), req.PlayerName, time.Now())
	if err != nil {
		writeResponse(ctx, conn, api.ResponseTypeJoinRoom, api.JoinRoomAckData{Error: err.Error()})
		return
	}

	h.sessions.Add(conn, quiz.Session{
		RoomCode:      room.Code(),
		ParticipantID: participant.ID,
	})

	writeResponse(ctx, conn, api.ResponseTypeJoinRoom, api.JoinRoomAckData{
		Success:     true,
		Participant: &participant,
	})

	res := api.Response[api.ParticipantJoinedData]{
		Type: api.ResponseTypeParticipantJoined,
		Data: api.ParticipantJoinedData{
			Participant:       participant,
			TotalParticipants: room.NumParticipants(),
		},
	}
	if err := room.Broadcast(ctx, res); err != nil {
		slog.Debug("broadcast participant-joined", slog.Any("error", err))
	}

	slog.InfoContext(ctx, "participant joined",
		slog.String("room", room.Code()),
		slog.String("participant", participant.Name))
}

func (h SocketHandler) handleSubmitAnswer(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	req, err := api.DecodeJSON[api.SubmitAnswerRequestData](data)
	if err != nil {
		errs.WriteWebsocketError(ctx, conn, errs.InvalidRequestError(err, api.RequestTypeSubmitAnswer, "invalid submit-answer request"))
		return
	}

	sess, ok := h.sessions.Get(conn)
	if !ok || sess.Host || sess.RoomCode != req.RoomCode {
		writeResponse(ctx, conn, api.ResponseTypeSubmitAnswer, api.SubmitAnswerAckData{
			Error: quiz.ErrUnknownParticipant.Error(),
		})
		return
	}

	room, ok := h.registry.Get(req.RoomCode)
	if !ok {
		writeResponse(ctx, conn, api.ResponseTypeSubmitAnswer, api.SubmitAnswerAckData{
			Error: quiz.ErrRoomNotFound.Error(),
		})
		return
	}

	response, question, err := room.SubmitResponse(conn, req.AnswerIndex, req.ResponseTime, time.Now())
	if err != nil {
		writeResponse(ctx, conn, api.ResponseTypeSubmitAnswer, api.SubmitAnswerAckData{Error: err.Error()})
		return
	}

	// The correct answer is revealed to the sender only now that its
	// submission is locked in.
	writeResponse(ctx, conn, api.ResponseTypeSubmitAnswer, api.SubmitAnswerAckData{
		Success:       true,
		IsCorrect:     response.IsCorrect,
		Points:        response.Points,
		CorrectAnswer: question.CorrectAnswer,
	})

	participant, _ := room.Participant(conn)
	writeResponse(ctx, room.Host(), api.ResponseTypeParticipantResponse, api.ParticipantResponseData{
		ParticipantID:     response.ParticipantID,
		ParticipantName:   participant.Name(),
		AnswerIndex:       response.AnswerIndex,
		ResponseTime:      response.ResponseTime,
		IsCorrect:         response.IsCorrect,
		Points:            response.Points,
		TotalResponses:    room.NumResponses(),
		TotalParticipants: room.NumParticipants(),
	})

	if err := room.BroadcastLeaderboard(ctx); err != nil {
		slog.Debug("broadcast leaderboard-update", slog.Any("error", err))
	}

	slog.InfoContext(ctx, "answer submitted",
		slog.String("room", room.Code()),
		slog.String("participant", participant.Name()),
		slog.Bool("correct", response.IsCorrect))
}

func (h SocketHandler) handleRoomInfo(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	req, err := api.DecodeJSON[api.RoomInfoRequestData](data)
	if err != nil {
		errs.WriteWebsocketError(ctx, conn, errs.InvalidRequestError(err, api.RequestTypeRoomInfo, "invalid get-room-info request"))
		return
	}

	room, ok := h.registry.Get(req.RoomCode)
	if !ok {
		writeResponse(ctx, conn, api.ResponseTypeRoomInfo, api.RoomInfoAckData{
			Error: quiz.ErrRoomNotFound.Error(),
		})
		return
	}

	info := room.Info(conn)
	writeResponse(ctx, conn, api.ResponseTypeRoomInfo, api.RoomInfoAckData{
		Success: true,
		Room:    &info,
	})
}

func validatePlayerName(name string) error {
	count := utf8.RuneCountInString(name)
	if count == 0 {
		return errors.New("missing player name")
	}
	if count > 25 {
		return errors.New("player name too long")
	}
	return nil
}
