package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizlive-backend/api"
	"quizlive-backend/internal/handlers"
	"quizlive-backend/internal/metrics"
	"quizlive-backend/internal/quiz"
)

func doMonitoringRequest(t *testing.T, handler http.HandlerFunc, target string, out any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	res := httptest.NewRecorder()
	handler(res, req)

	httpRes := res.Result()
	defer httpRes.Body.Close()

	assertEqual(t, http.StatusOK, httpRes.StatusCode)
	assertEqual(t, "application/json", httpRes.Header.Get("Content-Type"))
	assertNil(t, json.NewDecoder(httpRes.Body).Decode(out))
}

func TestHealthHandler(t *testing.T) {
	out := struct {
		Status string `json:"status"`
		Uptime int64  `json:"uptime"`
	}{}
	doMonitoringRequest(t, handlers.HealthHandler(metrics.New()), "/health", &out)

	assertEqual(t, "OK", out.Status)
	if out.Uptime < 0 {
		t.Errorf("negative uptime: %d", out.Uptime)
	}
}

func TestAPIHealthHandler(t *testing.T) {
	registry := quiz.NewRegistry(quiz.RegistryOptions{})
	if _, err := registry.Create(nil, time.Now()); err != nil {
		t.Fatalf("%v", err)
	}

	out := struct {
		Status      string `json:"status"`
		ActiveRooms int    `json:"activeRooms"`
	}{}
	doMonitoringRequest(t, handlers.APIHealthHandler(registry), "/api/health", &out)

	assertEqual(t, "OK", out.Status)
	assertEqual(t, 1, out.ActiveRooms)
}

func TestMetricsHandler(t *testing.T) {
	registry := quiz.NewRegistry(quiz.RegistryOptions{})
	m := metrics.New()
	m.ConnOpened()
	m.RoomCreated()

	out := struct {
		Connections    int64 `json:"connections"`
		MaxConnections int64 `json:"maxConnections"`
		TotalRooms     int64 `json:"totalRooms"`
	}{}
	doMonitoringRequest(t, handlers.MetricsHandler(registry, m), "/metrics", &out)

	assertEqual(t, int64(1), out.Connections)
	assertEqual(t, int64(1), out.MaxConnections)
	assertEqual(t, int64(1), out.TotalRooms)
}

func TestStatsHandler(t *testing.T) {
	registry := quiz.NewRegistry(quiz.RegistryOptions{})
	room, err := registry.Create(nil, time.Now())
	if err != nil {
		t.Fatalf("%v", err)
	}
	if _, err := room.AddQuestion(api.QuestionInput{
		Text:    "2+2?",
		Options: []string{"3", "4"},
	}, time.Now()); err != nil {
		t.Fatalf("%v", err)
	}

	out := struct {
		TotalRooms     int `json:"totalRooms"`
		TotalQuestions int `json:"totalQuestions"`
	}{}
	doMonitoringRequest(t, handlers.StatsHandler(registry), "/api/stats", &out)

	assertEqual(t, 1, out.TotalRooms)
	assertEqual(t, 1, out.TotalQuestions)
}
