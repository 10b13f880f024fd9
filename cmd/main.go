package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	gommon "github.com/labstack/gommon/log"

	"fable/pkg/audio/elevenlabs"
	"fable/pkg/inference"
	"fable/pkg/queue/leonardo"
	"fable/pkg/server"
	"fable/pkg/store"
	"fable/pkg/store/memory"
	"fable/pkg/store/postgres"
	"fable/pkg/store/sqlite"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	var st store.Store
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		pg, err := postgres.Open(ctx, dsn)
		if err != nil {
			log.Fatal("failed opening postgres", "error", err)
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal("failed ensuring postgres schema", "error", err)
		}
		st = pg
		log.Info("using postgres store")
	} else {
		st = memory.New()
		log.Warn("DB_DSN not set, using in-memory store")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "fable.db"
	}
	beats, err := sqlite.Open(dbPath)
	if err != nil {
		log.Fatal("failed opening sqlite beat store", "error", err)
	}
	defer beats.Close()

	srv := server.NewServer(ctx, st, beats)
	srv.Echo.Logger.SetLevel(gommon.INFO)

	srv.Text = pickTextProvider()
	if srv.Text != nil {
		log.Info("text provider ready", "provider", srv.Text.Name(), "model", srv.Text.Model())
	} else {
		log.Warn("no text provider configured")
	}

	if key := geminiKey(); key != "" {
		vision, err := inference.NewGeminiInferencer(key, "gemini-2.5-flash")
		if err != nil {
			log.Warn("failed initializing gemini", "error", err)
		} else {
			srv.Vision = vision
		}
	}

	if key := os.Getenv("LEONARDO_API_KEY"); key != "" {
		q := leonardo.New(key)
		q.Start()
		srv.Queue = q
	}

	if key := os.Getenv("ELEVENLABS_API_KEY"); key != "" {
		srv.Audio = elevenlabs.New(key)
	}

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("shutdown error", "error", err)
		}
		done()
		close(finishedShutDown)
	}()

	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
	}
	<-finishedShutDown
}

// pickTextProvider chooses the first configured text provider, cheapest
// hosted option first, local Ollama as the final fallback.
func pickTextProvider() inference.Inferencer {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		return inference.NewGroqInferencer(key, os.Getenv("GROQ_MODEL"))
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return inference.NewOpenAIInferencer(key, os.Getenv("OPENAI_MODEL"))
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return inference.NewClaudeInferencer(key, os.Getenv("ANTHROPIC_MODEL"))
	}
	if base := os.Getenv("OLLAMA_BASE_URL"); base != "" {
		return inference.NewOllamaInferencer(base, os.Getenv("OLLAMA_MODEL"))
	}
	return nil
}

func geminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GOOGLE_AI_API_KEY")
}
