// Package notifier шлёт алерты о принятых сделках в операционный чат.
package notifier

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"p2p_market/internal/domain/entity"
	"p2p_market/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Run запускает обработку принятых интентов из канала.
func (b *TelegramBot) Run(ctx context.Context, accepted <-chan entity.AcceptIntent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case intent, ok := <-accepted:
			if !ok {
				return nil
			}
			if err := b.SendAccepted(ctx, intent); err != nil {
				logger(ctx).Error("failed to send accept alert", "error", err)
			}
		}
	}
}

func (b *TelegramBot) SendAccepted(ctx context.Context, intent entity.AcceptIntent) error {
	text := fmt.Sprintf(
		"✅ <b>Offer accepted</b>\n\n"+
			"📄 <b>Offer:</b> %s\n"+
			"👤 <b>Trader:</b> %s\n"+
			"💵 <b>Amount:</b> %s\n"+
			"🏦 <b>Method:</b> %s",
		intent.OfferID,
		intent.TraderID,
		intent.Amount.String(),
		intent.Method,
	)

	msg := tu.Message(
		tu.ID(b.chatID),
		text,
	).WithParseMode(telego.ModeHTML)

	_, err := b.bot.SendMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SendText отправляет простое текстовое сообщение.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	return err
}
