package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"quizlive-backend/internal/metrics"
	"quizlive-backend/internal/quiz"

	"github.com/shirou/gopsutil/v3/process"
)

// Monitoring endpoints. Read-only snapshots of the registry and the
// process, outside the core websocket contract.

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    int64  `json:"uptime"`
}

type apiHealthResponse struct {
	Status            string `json:"status"`
	Timestamp         string `json:"timestamp"`
	ActiveRooms       int    `json:"activeRooms"`
	TotalParticipants int    `json:"totalParticipants"`
}

type memoryUsage struct {
	RSS uint64 `json:"rss"`
	VMS uint64 `json:"vms"`
}

type metricsResponse struct {
	Connections       int64        `json:"connections"`
	MaxConnections    int64        `json:"maxConnections"`
	ActiveRooms       int          `json:"activeRooms"`
	TotalRooms        int64        `json:"totalRooms"`
	MessagesPerSecond int64        `json:"messagesPerSecond"`
	Uptime            int64        `json:"uptime"`
	MemoryUsage       *memoryUsage `json:"memoryUsage,omitempty"`
	CPUPercent        float64      `json:"cpuUsage"`
}

type statsResponse struct {
	TotalRooms                 int     `json:"totalRooms"`
	ActiveParticipants         int     `json:"activeParticipants"`
	TotalQuestions             int     `json:"totalQuestions"`
	AverageParticipantsPerRoom float64 `json:"averageParticipantsPerRoom"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("monitoring response encode", slog.Any("error", err))
	}
}

// HealthHandler reports process liveness.
func HealthHandler(m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		now := time.Now()
		writeJSON(w, healthResponse{
			Status:    "OK",
			Timestamp: now.Format(time.RFC3339),
			Uptime:    m.Uptime(now),
		})
	}
}

// APIHealthHandler reports liveness plus registry occupancy.
func APIHealthHandler(registry *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, apiHealthResponse{
			Status:            "OK",
			Timestamp:         time.Now().Format(time.RFC3339),
			ActiveRooms:       registry.Len(),
			TotalParticipants: registry.TotalParticipants(),
		})
	}
}

// MetricsHandler reports connection counters and process resource
// usage sampled through gopsutil.
func MetricsHandler(registry *quiz.Registry, m *metrics.Metrics) http.HandlerFunc {
	proc, procErr := process.NewProcess(int32(os.Getpid()))
	if procErr != nil {
		slog.Error("process handle", slog.Any("error", procErr))
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		res := metricsResponse{
			Connections:       m.Connections(),
			MaxConnections:    m.PeakConnections(),
			ActiveRooms:       registry.Len(),
			TotalRooms:        m.RoomsCreated(),
			MessagesPerSecond: m.MessagesPerSecond(),
			Uptime:            m.Uptime(time.Now()),
		}
		if proc != nil {
			if mem, err := proc.MemoryInfo(); err == nil {
				res.MemoryUsage = &memoryUsage{RSS: mem.RSS, VMS: mem.VMS}
			}
			if cpu, err := proc.CPUPercent(); err == nil {
				res.CPUPercent = cpu
			}
		}
		writeJSON(w, res)
	}
}

// StatsHandler reports aggregate quiz activity across live rooms.
func StatsHandler(registry *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		rooms := registry.Len()
		participants := registry.TotalParticipants()

		res := statsResponse{
			TotalRooms:         rooms,
			ActiveParticipants: participants,
			TotalQuestions:     registry.TotalQuestions(),
		}
		if rooms > 0 {
			res.AverageParticipantsPerRoom = float64(participants) / float64(rooms)
		}
		writeJSON(w, res)
	}
}
