package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"quizlive-backend/internal/config"
	"quizlive-backend/internal/handlers"
	"quizlive-backend/internal/metrics"
	"quizlive-backend/internal/middleware"
	"quizlive-backend/internal/quiz"

	"github.com/MadAppGang/httplog"
	"github.com/coder/websocket"
	"github.com/rs/cors"
)

func init() {
	if os.Getenv("DEBUG") == "yes" {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		middleware.CORS = cors.New(cors.Options{
			AllowedOrigins: []string{"*"},
		})
		middleware.HTTPLogger = httplog.LoggerWithConfig(httplog.LoggerConfig{
			RouterName: "QuizLive",
			Formatter: httplog.ChainLogFormatter(
				httplog.DefaultLogFormatter,
				httplog.RequestHeaderLogFormatter, httplog.RequestBodyLogFormatter,
				httplog.ResponseHeaderLogFormatter, httplog.ResponseBodyLogFormatter),
			CaptureBody: true,
		})
	}
}

func main() {
	cfg, err := config.Load("") // TODO: config flags
	if err != nil {
		log.Fatal(err)
	}

	registry := quiz.NewRegistry(quiz.RegistryOptions{
		MaxAge:      cfg.Room.MaxAge,
		EmptyMaxAge: cfg.Room.EmptyMaxAge,
	})
	sessions := quiz.NewSessions()

	m := metrics.New()
	go m.Run(context.Background())
	go quiz.NewSweeper(registry, cfg.Room.SweepInterval).Run(context.Background())

	socketHandler := handlers.NewSocketHandler(cfg, registry, sessions, m, websocket.AcceptOptions{
		InsecureSkipVerify: true, // Accepting all origins
	})

	http.Handle("GET /ws", middleware.ApplyDefaults(socketHandler))
	http.Handle("GET /health", middleware.ApplyDefaults(handlers.HealthHandler(m)))
	http.Handle("GET /metrics", middleware.ApplyDefaults(handlers.MetricsHandler(registry, m)))
	http.Handle("GET /api/health", middleware.ApplyDefaults(handlers.APIHealthHandler(registry)))
	http.Handle("GET /api/stats", middleware.ApplyDefaults(handlers.StatsHandler(registry)))

	srv := http.Server{
		Addr:        cfg.Addr,
		Handler:     http.DefaultServeMux,
		ReadTimeout: 15 * time.Second,
	}

	log.Printf("listening on addr %q\n", srv.Addr)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
