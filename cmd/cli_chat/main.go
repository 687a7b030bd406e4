package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"relay-llm/internal/config"
	"relay-llm/internal/db"
	"relay-llm/internal/domain"
	"relay-llm/internal/llm"
	"relay-llm/internal/repository"
	"relay-llm/internal/service"
)

// cli_chat ejecuta el mismo intercambio que POST /sms desde la terminal.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	var messageRepo repository.MessageRepository
	if cfg.UsePostgres() {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			log.Fatal(err)
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			log.Fatal(err)
		}
		messageRepo = repository.NewPgMessageRepository(pool)
	} else {
		gdb, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatal(err)
		}
		messageRepo = repository.NewGormMessageRepository(gdb)
	}

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.OpenAIAPIKey, cfg.LLMModel, logger)
	exchangeSvc := service.NewExchangeService(logger, llmClient, messageRepo, cfg.SystemPrompt, cfg.HistoryWindow)

	fmt.Println("Escribe un mensaje. /history muestra el historial, /quit sale.")
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return
		case "/history":
			messages, err := exchangeSvc.History(ctx)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			printHistory(os.Stdout, messages)
			continue
		}

		reply, err := exchangeSvc.Exchange(ctx, line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Printf("assistant: %s\n", reply)
	}
}

func printHistory(w io.Writer, messages []domain.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(w, "(sin mensajes)")
		return
	}
	for _, m := range messages {
		fmt.Fprintf(w, "[%d %s] %s: %s\n", m.ID, m.CreatedAt.Format("2006-01-02 15:04:05"), m.Role, m.Content)
	}
}
