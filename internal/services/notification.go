package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/sirupsen/logrus"

	"github.com/consilium-ai/consilium-go/internal/config"
	"github.com/consilium-ai/consilium-go/internal/models"
)

// NotificationService broadcasts consensus decisions to a Telegram chat.
// It is optional: with no bot token configured the service is inert and
// every notify call is a no-op.
type NotificationService struct {
	bot    *bot.Bot
	chatID int64
	logger *logrus.Logger
}

func NewNotificationService(cfg *config.TelegramConfig, logger *logrus.Logger) (*NotificationService, error) {
	ns := &NotificationService{logger: logger}
	if cfg.BotToken == "" {
		logger.Info("Telegram bot token not configured, notifications disabled")
		return ns, nil
	}

	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat ID: %w", err)
	}

	b, err := bot.New(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}

	ns.bot = b
	ns.chatID = chatID
	return ns, nil
}

// NotifyConsensus sends a formatted summary of a consensus decision. A
// disabled service returns nil without sending.
func (ns *NotificationService) NotifyConsensus(ctx context.Context, consensus *models.ConsensusDecision) error {
	if ns.bot == nil {
		return nil
	}

	_, err := ns.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: ns.chatID,
		Text:   ns.formatConsensusMessage(consensus),
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (ns *NotificationService) formatConsensusMessage(consensus *models.ConsensusDecision) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Consensus decision %s\n", consensus.ID)
	fmt.Fprintf(&sb, "Signal: %s (conviction %s, risk %s, %s)\n",
		consensus.OverallSignal,
		consensus.ConvictionLevel.StringFixed(2),
		consensus.RiskLevel.StringFixed(2),
		consensus.ExecutionPriority)

	if len(consensus.AssetAllocation) > 0 {
		assets := make([]string, 0, len(consensus.AssetAllocation))
		for asset := range consensus.AssetAllocation {
			assets = append(assets, asset)
		}
		sort.Strings(assets)

		sb.WriteString("Allocation:")
		for _, asset := range assets {
			fmt.Fprintf(&sb, " %s=%s", asset, consensus.AssetAllocation[asset].StringFixed(2))
		}
		sb.WriteString("\n")
	}

	for _, factor := range consensus.ConsensusFactors {
		fmt.Fprintf(&sb, "- %s\n", factor)
	}
	for _, dissent := range consensus.DissentingViews {
		fmt.Fprintf(&sb, "! %s\n", dissent)
	}
	return strings.TrimRight(sb.String(), "\n")
}
