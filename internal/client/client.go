// Package client implements a typed websocket client for the quiz
// event catalog, used by the server tests and handy for smoke testing
// against a live instance.
package client

import (
	"context"
	"encoding/json"

	"quizlive-backend/api"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

type Client struct {
	conn *websocket.Conn
}

// Dial connects to a quiz server websocket endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, res, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if res != nil && res.Body != nil {
		res.Body.Close()
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() {
	c.conn.Close(websocket.StatusNormalClosure, "client closes")
}

// CloseNow drops the connection without a close handshake, simulating
// an abrupt disconnect.
func (c *Client) CloseNow() {
	c.conn.CloseNow()
}

// ReadResponse reads the next message, broadcast or ack alike.
func (c *Client) ReadResponse(ctx context.Context) (api.Response[json.RawMessage], error) {
	res := api.Response[json.RawMessage]{}
	err := wsjson.Read(ctx, c.conn, &res)
	return res, err
}

// Send fires a request without waiting for any reply.
func (c *Client) Send(ctx context.Context, reqType api.RequestType, data any) error {
	req := api.Request[any]{
		Type: reqType,
		Data: data,
	}
	return wsjson.Write(ctx, c.conn, req)
}

// sendCmd issues a request and reads the next message, which for
// acknowledged events is the ack.
func (c *Client) sendCmd(ctx context.Context, reqType api.RequestType, data any) (api.Response[json.RawMessage], error) {
	if err := c.Send(ctx, reqType, data); err != nil {
		return api.Response[json.RawMessage]{}, err
	}
	return c.ReadResponse(ctx)
}

func (c *Client) CreateRoom(ctx context.Context) (api.Response[json.RawMessage], error) {
	return c.sendCmd(ctx, api.RequestTypeCreateRoom, api.CreateRoomRequestData{})
}

func (c *Client) JoinRoom(ctx context.Context, roomCode, playerName string) (api.Response[json.RawMessage], error) {
	return c.sendCmd(ctx, api.RequestTypeJoinRoom, api.JoinRoomRequestData{
		RoomCode:   roomCode,
		PlayerName: playerName,
	})
}

func (c *Client) AddQuestion(ctx context.Context, roomCode string, question api.QuestionInput) (api.Response[json.RawMessage], error) {
	return c.sendCmd(ctx, api.RequestTypeAddQuestion, api.AddQuestionRequestData{
		RoomCode: roomCode,
		Question: question,
	})
}

func (c *Client) StartQuiz(ctx context.Context, roomCode string) (api.Response[json.RawMessage], error) {
	return c.sendCmd(ctx, api.RequestTypeStartQuiz, api.StartQuizRequestData{RoomCode: roomCode})
}

func (c *Client) NextQuestion(ctx context.Context, roomCode string) (api.Response[json.RawMessage], error) {
	return c.sendCmd(ctx, api.RequestTypeNextQuestion, api.NextQuestionRequestData{RoomCode: roomCode})
}

// EndQuiz has no acknowledgement; the end-quiz broadcast is the
// observable outcome.
func (c *Client) EndQuiz(ctx context.Context, roomCode string) error {
	return c.Send(ctx, api.RequestTypeEndQuiz, api.EndQuizRequestData{RoomCode: roomCode})
}

func (c *Client) SubmitAnswer(ctx context.Context, roomCode string, answerIndex int, responseTime float64) (api.Response[json.RawMessage], error) {
	return c.sendCmd(ctx, api.RequestTypeSubmitAnswer, api.SubmitAnswerRequestData{
		RoomCode:     roomCode,
		AnswerIndex:  answerIndex,
		ResponseTime: responseTime,
	})
}

func (c *Client) RoomInfo(ctx context.Context, roomCode string) (api.Response[json.RawMessage], error) {
	return c.sendCmd(ctx, api.RequestTypeRoomInfo, api.RoomInfoRequestData{RoomCode: roomCode})
}
