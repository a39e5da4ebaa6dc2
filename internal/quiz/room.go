package quiz

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"quizlive-backend/api"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type RoomState int

const (
	RoomStateSetup RoomState = iota
	RoomStateInProgress
	RoomStateFinished
)

var roomStateToString = map[RoomState]string{
	RoomStateSetup:      "setup",
	RoomStateInProgress: "in-progress",
	RoomStateFinished:   "finished",
}

func (rs RoomState) String() string {
	if s, ok := roomStateToString[rs]; ok {
		return s
	}
	return "unknown"
}

const (
	defaultTimeLimit = 30
	defaultPoints    = 10
)

// Room owns one quiz session: its participants, question list,
// in-progress question state and per-question response set.
//
// Multiple goroutines may invoke methods on a Room simultaneously; a
// single mutex linearizes all mutations.
type Room struct {
	code string
	host *websocket.Conn // immutable, authorizes host-only operations

	// participants maps each joined websocket to its participant.
	// The host's conn is never a key here.
	participants map[*websocket.Conn]*Participant

	questions     []api.QuestionData
	current       int // -1 before start, len(questions) once concluded
	active        bool
	questionStart time.Time

	// responses is scoped to the current question only and cleared
	// whenever a new question starts. At most one entry per
	// participant.
	responses map[string]api.ResponseData

	leaderboard []api.LeaderboardEntry
	created     time.Time
	joinSeq     int
	closed      bool
	mu          sync.Mutex
}

// NewRoom creates a room in the Setup state owned by the host conn.
func NewRoom(code string, host *websocket.Conn, now time.Time) *Room {
	return &Room{
		code:         code,
		host:         host,
		participants: map[*websocket.Conn]*Participant{},
		current:      -1,
		responses:    map[string]api.ResponseData{},
		created:      now,
	}
}

// Code returns the room's unique shareable code.
func (r *Room) Code() string {
	return r.code
}

// Host returns the connection that created the room.
func (r *Room) Host() *websocket.Conn {
	return r.host
}

// CreationDate returns when the room was created, for expiry
// accounting.
func (r *Room) CreationDate() time.Time {
	return r.created
}

// State derives the room's lifecycle state.
func (r *Room) State() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.active:
		return RoomStateInProgress
	case len(r.questions) > 0 && r.current >= len(r.questions):
		return RoomStateFinished
	default:
		return RoomStateSetup
	}
}

// IsActive reports whether the quiz currently accepts submissions.
func (r *Room) IsActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// NumParticipants returns the current participant count, host
// excluded.
func (r *Room) NumParticipants() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

// Empty reports whether no participant is joined.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants) == 0
}

// NumQuestions returns the size of the question bank.
func (r *Room) NumQuestions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.questions)
}

// AddParticipant registers a joining connection. Joins are refused
// once the quiz is active, not queued.
func (r *Room) AddParticipant(conn *websocket.Conn, id, name string, now time.Time) (api.ParticipantData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return api.ParticipantData{}, ErrAlreadyActive
	}

	p := &Participant{
		id:     id,
		name:   name,
		online: true,
		joined: now,
		seq:    r.joinSeq,
	}
	r.joinSeq++
	r.participants[conn] = p

	return p.data(), nil
}

// Participant resolves a connection to its participant.
func (r *Room) Participant(conn *websocket.Conn) (*Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[conn]
	return p, ok
}

// RemoveParticipant deletes a participant from the room. Scores
// already credited to others are cumulative state and stay untouched.
func (r *Room) RemoveParticipant(conn *websocket.Conn) (api.ParticipantData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[conn]
	if !ok {
		return api.ParticipantData{}, false
	}
	delete(r.participants, conn)
	r.recomputeLeaderboard()

	return p.data(), true
}

// AddQuestion validates and appends a question to the bank. The bank
// is immutable once the quiz is active.
func (r *Room) AddQuestion(in api.QuestionInput, now time.Time) (api.QuestionData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return api.QuestionData{}, ErrAlreadyActive
	}
	if len(in.Options) < 2 || in.CorrectAnswer < 0 || in.CorrectAnswer >= len(in.Options) {
		return api.QuestionData{}, ErrInvalidQuestion
	}

	q := api.QuestionData{
		ID:            uuid.NewString(),
		Text:          in.Text,
		Options:       in.Options,
		CorrectAnswer: in.CorrectAnswer,
		TimeLimit:     in.TimeLimit,
		Points:        in.Points,
		CreatedAt:     now,
	}
	if q.TimeLimit <= 0 {
		q.TimeLimit = defaultTimeLimit
	}
	if q.Points <= 0 {
		q.Points = defaultPoints
	}

	r.questions = append(r.questions, q)

	return q, nil
}

// Start activates the quiz and presents the first question.
func (r *Room) Start(now time.Time) (api.QuestionData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return api.QuestionData{}, ErrAlreadyActive
	}
	if len(r.questions) == 0 {
		return api.QuestionData{}, ErrNoQuestions
	}

	r.active = true
	r.current = -1
	q, _ := r.startNextQuestion(now)

	return q, nil
}

// StartNextQuestion advances to the next question. The second return
// value is false once the bank is exhausted: the quiz is then
// concluded and no longer active.
func (r *Room) StartNextQuestion(now time.Time) (api.QuestionData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startNextQuestion(now)
}

func (r *Room) startNextQuestion(now time.Time) (api.QuestionData, bool) {
	r.current++
	if r.current < len(r.questions) {
		r.questionStart = now
		r.responses = map[string]api.ResponseData{}
		return r.questions[r.current], true
	}

	r.current = len(r.questions)
	r.active = false

	return api.QuestionData{}, false
}

// CurrentQuestion returns the question presently open for answers.
func (r *Room) CurrentQuestion() (api.QuestionData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasCurrentQuestion() {
		return api.QuestionData{}, false
	}
	return r.questions[r.current], true
}

// CurrentQuestionIndex returns the zero-based index of the current
// question, -1 before start.
func (r *Room) CurrentQuestionIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Room) hasCurrentQuestion() bool {
	return r.active && r.current >= 0 && r.current < len(r.questions)
}

// SubmitResponse scores an answer for the current question. A second
// submission for the same question is rejected, not overwritten. The
// leaderboard is recomputed synchronously before returning.
//
// The scored question is returned alongside the response so callers
// reveal the correct answer of the question actually answered, even if
// the host advances concurrently.
//
// A correct answer awards points + floor(max(0, timeLimit -
// responseTime) / 2). The time bonus has no upper clamp: a client
// reporting a negative response time inflates it.
func (r *Room) SubmitResponse(conn *websocket.Conn, answerIndex int, responseTime float64, now time.Time) (api.ResponseData, api.QuestionData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[conn]
	if !ok {
		return api.ResponseData{}, api.QuestionData{}, ErrUnknownParticipant
	}
	if !r.hasCurrentQuestion() {
		return api.ResponseData{}, api.QuestionData{}, ErrInvalidState
	}
	if _, exist := r.responses[p.id]; exist {
		return api.ResponseData{}, api.QuestionData{}, ErrDuplicateSubmission
	}

	q := r.questions[r.current]
	res := api.ResponseData{
		ParticipantID: p.id,
		AnswerIndex:   answerIndex,
		ResponseTime:  responseTime,
		SubmittedAt:   now,
	}

	if answerIndex == q.CorrectAnswer {
		bonus := math.Max(0, float64(q.TimeLimit)-responseTime)
		res.Points = q.Points + int(math.Floor(bonus/2))
		res.IsCorrect = true
		p.score += res.Points
	}

	r.responses[p.id] = res
	p.responses = append(p.responses, res)
	r.recomputeLeaderboard()

	return res, q, nil
}

// NumResponses returns how many answers the current question has
// collected so far.
func (r *Room) NumResponses() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.responses)
}

// Results snapshots the current question's outcome for the host.
func (r *Room) Results() api.QuestionResultsData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results()
}

// AdvanceQuestion snapshots the closing question's results and starts
// the next question as one atomic step, so no submission can land
// between the snapshot and the advance and vanish from both.
func (r *Room) AdvanceQuestion(now time.Time) (api.QuestionResultsData, api.QuestionData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	results := r.results()
	next, hasNext := r.startNextQuestion(now)

	return results, next, hasNext
}

func (r *Room) results() api.QuestionResultsData {
	data := api.QuestionResultsData{
		TotalResponses: len(r.responses),
		Responses:      make([]api.ResponseData, 0, len(r.responses)),
		Leaderboard:    append([]api.LeaderboardEntry(nil), r.leaderboard...),
	}
	if r.current >= 0 && r.current < len(r.questions) {
		data.QuestionID = r.questions[r.current].ID
	}
	for _, res := range r.responses {
		if res.IsCorrect {
			data.CorrectResponses++
		}
		data.Responses = append(data.Responses, res)
	}
	sort.Slice(data.Responses, func(i, j int) bool {
		return data.Responses[i].SubmittedAt.Before(data.Responses[j].SubmittedAt)
	})

	return data
}

// UpdateLeaderboard recomputes ranks from the current scores. It is
// idempotent: with no intervening score change the ordering and ranks
// are identical.
func (r *Room) UpdateLeaderboard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recomputeLeaderboard()
}

// recomputeLeaderboard orders participants by score descending with a
// stable tie-break on join order and assigns 1-based ranks.
func (r *Room) recomputeLeaderboard() {
	ps := make([]*Participant, 0, len(r.participants))
	for _, p := range r.participants {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].seq < ps[j].seq })
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].score > ps[j].score })

	lb := make([]api.LeaderboardEntry, len(ps))
	for i, p := range ps {
		lb[i] = api.LeaderboardEntry{
			ID:    p.id,
			Name:  p.name,
			Score: p.score,
			Rank:  i + 1,
		}
	}
	r.leaderboard = lb
}

// Leaderboard returns a copy of the current standings.
func (r *Room) Leaderboard() []api.LeaderboardEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.LeaderboardEntry(nil), r.leaderboard...)
}

// End force-terminates the quiz regardless of phase and returns the
// final standings. Distinct from natural completion via
// StartNextQuestion running out of questions: external consumers
// differentiate the two terminal events.
func (r *Room) End() []api.LeaderboardEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active = false
	r.current = -1
	r.recomputeLeaderboard()

	return append([]api.LeaderboardEntry(nil), r.leaderboard...)
}

// Info snapshots the room for get-room-info. Participant and question
// lists are only included for the host since questions carry correct
// answers.
func (r *Room) Info(conn *websocket.Conn) api.RoomInfoData {
	r.mu.Lock()
	defer r.mu.Unlock()

	isHost := conn == r.host
	info := api.RoomInfoData{
		Code:                 r.code,
		IsActive:             r.active,
		ParticipantCount:     len(r.participants),
		QuestionCount:        len(r.questions),
		CurrentQuestionIndex: r.current,
		IsHost:               isHost,
	}
	if !isHost {
		return info
	}

	ps := make([]*Participant, 0, len(r.participants))
	for _, p := range r.participants {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].seq < ps[j].seq })
	for _, p := range ps {
		info.Participants = append(info.Participants, p.data())
	}
	info.Questions = append([]api.QuestionData(nil), r.questions...)

	return info
}

// Broadcast sends a JSON message to the host and every participant
// connection in the room.
func (r *Room) Broadcast(ctx context.Context, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	errs := errgroup.Group{}
	conns := make([]*websocket.Conn, 0, len(r.participants)+1)
	if r.host != nil {
		conns = append(conns, r.host)
	}
	for conn := range r.participants {
		conns = append(conns, conn)
	}
	for _, conn := range conns {
		errs.Go(func() error {
			if conn == nil {
				return nil
			}
			return wsjson.Write(ctx, conn, v)
		})
	}
	return errs.Wait()
}

// BroadcastLeaderboard sends the bare leaderboard array to the room.
func (r *Room) BroadcastLeaderboard(ctx context.Context) error {
	res := api.Response[[]api.LeaderboardEntry]{
		Type: api.ResponseTypeLeaderboardUpdate,
		Data: r.Leaderboard(),
	}
	return r.Broadcast(ctx, res)
}

// Close shuts the room down and closes every joined websocket,
// host included. Safe to call more than once.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.active = false

	for conn := range r.participants {
		if conn != nil {
			conn.Close(websocket.StatusNormalClosure, "room closed")
		}
	}
	if r.host != nil {
		r.host.Close(websocket.StatusNormalClosure, "room closed")
	}
}
