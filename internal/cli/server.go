package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trivia-room-service/internal/app"
	"trivia-room-service/internal/config"
	"trivia-room-service/internal/domain"
	"trivia-room-service/internal/infra/memory"
	pgloader "trivia-room-service/internal/infra/postgres"
	redisbank "trivia-room-service/internal/infra/redis"
	transport "trivia-room-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia room server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(sampleBanks())
	switch {
	case pool != nil:
		loader = pgloader.NewBankLoader(pool)
	case cfg.Quiz.BankFile != "":
		loader = memory.NewFileBankLoader(cfg.Quiz.BankFile)
	}

	bankID := cfg.Quiz.Bank
	if bankID == "" {
		bankID = "round-1"
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var banks app.BankRepository
	if redisClient != nil {
		redisTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)
		banks = redisbank.NewBankRepository(redisClient, loader, redisTTL)
	} else {
		banks = memory.NewBankRepository(loader, quizTTL)
	}

	source := app.NewBalancedSource(banks, bankID, cfg.Quiz.PerSubject)
	countdown := cfg.Room.CountdownSeconds
	tick := config.Duration(cfg.Room.TickInterval, app.DefaultTickInterval)
	registry := app.NewRegistry(source, countdown, tick)
	bot := app.NewBotAgent(banks, bankID)

	wsHandler := transport.NewWSHandler(registry)
	apiHandler := transport.NewAPIHandler(bot)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/check-answer", apiHandler.CheckAnswer)
	mux.HandleFunc("/bot/answers", apiHandler.BotAnswers)
	mux.HandleFunc("/bot/answer", apiHandler.BotAnswer)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia room service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleBanks provides a minimal bank for running without a backing store;
// point quiz.bank_file or postgres.url at real data in production.
func sampleBanks() map[string][]domain.Question {
	return map[string][]domain.Question{
		"round-1": {
			{
				Sn:                  1,
				Subject:             "Mathematics",
				Prompt:              "Evaluate the integral of 2x with respect to x from 0 to 3.",
				CorrectAnswer:       "9",
				CalculationsPresent: true,
			},
			{
				Sn:            2,
				Subject:       "Mathematics",
				Prompt:        "State the degree of the polynomial 4x^3 - 2x + 7.",
				CorrectAnswer: "3",
			},
			{
				Sn:            3,
				Subject:       "Physics",
				Prompt:        "Name the SI unit of electric charge.",
				CorrectAnswer: "Coulomb",
			},
			{
				Sn:            4,
				Subject:       "Physics",
				HasPreamble:   true,
				PreambleText:  "A ball is dropped from rest near the surface of the earth.",
				Prompt:        "State the magnitude of its acceleration.",
				CorrectAnswer: "9.8 m/s^2",
			},
			{
				Sn:            5,
				Subject:       "Chemistry",
				Prompt:        "Give the chemical symbol for sodium.",
				CorrectAnswer: "Na",
			},
			{
				Sn:            6,
				Subject:       "Biology",
				Prompt:        "Name the organelle responsible for cellular respiration.",
				CorrectAnswer: "Mitochondrion",
			},
		},
	}
}
