package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-telegram/bot"
	"github.com/joho/godotenv"

	"github.com/consilium-ai/consilium-go/internal/config"
)

// Standalone check that the configured Telegram bot token works before
// enabling consensus notifications in production.
func main() {
	fmt.Println("Validating Telegram bot configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: could not load .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.Telegram.BotToken == "" {
		fmt.Println("TELEGRAM_BOT_TOKEN is not configured")
		os.Exit(1)
	}
	fmt.Printf("TELEGRAM_BOT_TOKEN is configured (length: %d)\n", len(cfg.Telegram.BotToken))

	if cfg.Telegram.ChatID == "" {
		fmt.Println("Warning: telegram.chat_id is not configured, notifications will be disabled")
	}

	b, err := bot.New(cfg.Telegram.BotToken)
	if err != nil {
		fmt.Printf("Failed to create Telegram bot: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Testing bot API connection...")
	botInfo, err := b.GetMe(context.Background())
	if err != nil {
		fmt.Printf("Failed to get bot info: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Bot API connection successful: %s (@%s, id %d)\n",
		botInfo.FirstName, botInfo.Username, botInfo.ID)
}
