package quiz

import (
	"time"

	"quizlive-backend/api"
)

// Participant is a non-host connection that joined a room to answer
// questions. All fields are guarded by the owning Room's mutex; a
// Participant never outlives its Room.
type Participant struct {
	id        string
	name      string
	score     int
	responses []api.ResponseData
	online    bool
	joined    time.Time
	seq       int // join order, leaderboard tie-break
}

func (p *Participant) ID() string {
	return p.id
}

func (p *Participant) Name() string {
	return p.name
}

// Data snapshots the participant for an API payload. Callers must hold
// the owning Room's lock or receive the snapshot from a Room method.
func (p *Participant) data() api.ParticipantData {
	return api.ParticipantData{
		ID:       p.id,
		Name:     p.name,
		Score:    p.score,
		IsOnline: p.online,
		JoinedAt: p.joined,
	}
}
