// Package api defines the websocket event catalog shared by the server,
// the client package and external consumers.
//
// Every inbound message is a Request envelope carrying a typed payload;
// every outbound message is a Response envelope. Acknowledgements reuse
// the request's type and are written to the sender only, broadcasts use
// their own response types.
package api

import (
	"encoding/json"
	"time"
)

type RequestType string

const (
	RequestTypeUnknown      RequestType = ""
	RequestTypeCreateRoom   RequestType = "create-room"
	RequestTypeJoinRoom     RequestType = "join-room"
	RequestTypeAddQuestion  RequestType = "add-question"
	RequestTypeStartQuiz    RequestType = "start-quiz"
	RequestTypeNextQuestion RequestType = "next-question"
	RequestTypeEndQuiz      RequestType = "end-quiz"
	RequestTypeSubmitAnswer RequestType = "submit-answer"
	RequestTypeRoomInfo     RequestType = "get-room-info"
)

type ResponseType string

const (
	ResponseTypeError               ResponseType = "error"
	ResponseTypeCreateRoom          ResponseType = "create-room"
	ResponseTypeJoinRoom            ResponseType = "join-room"
	ResponseTypeAddQuestion         ResponseType = "add-question"
	ResponseTypeStartQuiz           ResponseType = "start-quiz"
	ResponseTypeSubmitAnswer        ResponseType = "submit-answer"
	ResponseTypeRoomInfo            ResponseType = "get-room-info"
	ResponseTypeQuestionAdded       ResponseType = "question-added"
	ResponseTypeQuizStarted         ResponseType = "quiz-started"
	ResponseTypeNextQuestion        ResponseType = "next-question"
	ResponseTypeQuizFinished        ResponseType = "quiz-finished"
	ResponseTypeEndQuiz             ResponseType = "end-quiz"
	ResponseTypeQuestionResults     ResponseType = "question-results"
	ResponseTypeParticipantResponse ResponseType = "participant-response"
	ResponseTypeLeaderboardUpdate   ResponseType = "leaderboard-update"
	ResponseTypeParticipantJoined   ResponseType = "participant-joined"
	ResponseTypeParticipantLeft     ResponseType = "participant-left"
	ResponseTypeHostDisconnected    ResponseType = "host-disconnected"
)

type Request[T any] struct {
	Type RequestType `json:"type"`
	Data T           `json:"data,omitempty"`
}

type Response[T any] struct {
	Type    ResponseType `json:"type"`
	Message string       `json:"message,omitempty"`
	Data    T            `json:"data,omitempty"`
}

// NoAnswerIndex is the sentinel answer index meaning the participant
// gave no answer before the client-side countdown ran out.
const NoAnswerIndex = -1

// QuestionData is the full question representation, correct answer
// included. It must only ever reach the host.
type QuestionData struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Options       []string  `json:"options"`
	CorrectAnswer int       `json:"correctAnswer"`
	TimeLimit     int       `json:"timeLimit"`
	Points        int       `json:"points"`
	CreatedAt     time.Time `json:"createdAt"`
}

// QuestionView is the question representation broadcast to
// participants. The correct answer index is structurally absent so a
// redaction cannot be forgotten at a call site.
type QuestionView struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Options   []string `json:"options"`
	TimeLimit int      `json:"timeLimit"`
	Points    int      `json:"points"`
}

// View strips the correct answer from a question.
func (q QuestionData) View() QuestionView {
	return QuestionView{
		ID:        q.ID,
		Text:      q.Text,
		Options:   q.Options,
		TimeLimit: q.TimeLimit,
		Points:    q.Points,
	}
}

// QuestionInput is the host-provided question shape on add-question.
type QuestionInput struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	TimeLimit     int      `json:"timeLimit"`
	Points        int      `json:"points"`
}

type ParticipantData struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	IsOnline bool      `json:"isOnline"`
	JoinedAt time.Time `json:"joinedAt"`
}

type LeaderboardEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Rank  int    `json:"rank"`
}

type ResponseData struct {
	ParticipantID string    `json:"participantId"`
	AnswerIndex   int       `json:"answerIndex"`
	ResponseTime  float64   `json:"responseTime"`
	Points        int       `json:"points"`
	IsCorrect     bool      `json:"isCorrect"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

type CreateRoomRequestData struct{}

type JoinRoomRequestData struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type AddQuestionRequestData struct {
	RoomCode string        `json:"roomCode"`
	Question QuestionInput `json:"question"`
}

type StartQuizRequestData struct {
	RoomCode string `json:"roomCode"`
}

type NextQuestionRequestData struct {
	RoomCode string `json:"roomCode"`
}

type EndQuizRequestData struct {
	RoomCode string `json:"roomCode"`
}

type SubmitAnswerRequestData struct {
	RoomCode     string  `json:"roomCode"`
	AnswerIndex  int     `json:"answerIndex"`
	ResponseTime float64 `json:"responseTime"`
}

type RoomInfoRequestData struct {
	RoomCode string `json:"roomCode"`
}

type CreateRoomAckData struct {
	Success  bool   `json:"success"`
	RoomCode string `json:"roomCode,omitempty"`
	Error    string `json:"error,omitempty"`
}

type JoinRoomAckData struct {
	Success     bool             `json:"success"`
	Participant *ParticipantData `json:"participant,omitempty"`
	Error       string           `json:"error,omitempty"`
}

type AddQuestionAckData struct {
	Success  bool          `json:"success"`
	Question *QuestionData `json:"question,omitempty"`
	Error    string        `json:"error,omitempty"`
}

type StartQuizAckData struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type NextQuestionAckData struct {
	Success         bool   `json:"success"`
	HasNextQuestion bool   `json:"hasNextQuestion"`
	Error           string `json:"error,omitempty"`
}

type SubmitAnswerAckData struct {
	Success       bool   `json:"success"`
	IsCorrect     bool   `json:"isCorrect"`
	Points        int    `json:"points"`
	CorrectAnswer int    `json:"correctAnswer"`
	Error         string `json:"error,omitempty"`
}

type RoomInfoAckData struct {
	Success bool          `json:"success"`
	Room    *RoomInfoData `json:"room,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// RoomInfoData is the get-room-info snapshot. Participants and
// Questions are only populated when the requester is the host.
type RoomInfoData struct {
	Code                 string            `json:"code"`
	IsActive             bool              `json:"isActive"`
	ParticipantCount     int               `json:"participantCount"`
	QuestionCount        int               `json:"questionCount"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	IsHost               bool              `json:"isHost"`
	Participants         []ParticipantData `json:"participants,omitempty"`
	Questions            []QuestionData    `json:"questions,omitempty"`
}

type QuizStartedData struct {
	Question       QuestionView `json:"question"`
	QuestionNumber int          `json:"questionNumber"`
	TimeLimit      int          `json:"timeLimit"`
	TotalQuestions int          `json:"totalQuestions"`
}

type NextQuestionData struct {
	QuestionNumber int          `json:"questionNumber"`
	TotalQuestions int          `json:"totalQuestions"`
	TimeLimit      int          `json:"timeLimit"`
	Question       QuestionView `json:"question"`
}

type QuizFinishedData struct {
	FinalLeaderboard []LeaderboardEntry `json:"finalLeaderboard"`
	TotalQuestions   int                `json:"totalQuestions"`
}

type EndQuizData struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type QuestionResultsData struct {
	QuestionID       string             `json:"questionId"`
	TotalResponses   int                `json:"totalResponses"`
	CorrectResponses int                `json:"correctResponses"`
	Responses        []ResponseData     `json:"responses"`
	Leaderboard      []LeaderboardEntry `json:"leaderboard"`
}

type ParticipantResponseData struct {
	ParticipantID     string  `json:"participantId"`
	ParticipantName   string  `json:"participantName"`
	AnswerIndex       int     `json:"answerIndex"`
	ResponseTime      float64 `json:"responseTime"`
	IsCorrect         bool    `json:"isCorrect"`
	Points            int     `json:"points"`
	TotalResponses    int     `json:"totalResponses"`
	TotalParticipants int     `json:"totalParticipants"`
}

type ParticipantJoinedData struct {
	Participant       ParticipantData `json:"participant"`
	TotalParticipants int             `json:"totalParticipants"`
}

type ParticipantLeftData struct {
	ParticipantID     string `json:"participantId"`
	ParticipantName   string `json:"participantName"`
	TotalParticipants int    `json:"totalParticipants"`
}

type EmptyData struct{}

// DecodeJSON decodes a raw request payload into the payload type
// expected by the event being handled.
func DecodeJSON[T any](data json.RawMessage) (res T, err error) {
	if len(data) == 0 {
		return res, nil
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return res, err
	}
	return res, nil
}
