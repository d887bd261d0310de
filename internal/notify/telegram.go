package notify

import (
	"context"
	"fmt"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramClient — реализация Client поверх Telegram Bot API.
type TelegramClient struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramClient создаёт клиент по токену бота.
func NewTelegramClient(token string) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &TelegramClient{bot: bot}, nil
}

// NewTelegramClientFromBot оборачивает уже созданный BotAPI.
func NewTelegramClientFromBot(bot *tgbotapi.BotAPI) *TelegramClient {
	return &TelegramClient{bot: bot}
}

// Send отправляет одну часть с опциональными инлайн-кнопками.
func (c *TelegramClient) Send(ctx context.Context, chatID int64, text string, buttons []string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if len(buttons) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
		for i, label := range buttons {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("info:%d", i)),
			))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return sent.MessageID, nil
}

// EditStruck заменяет текст сообщения перечёркнутым вариантом.
// Редактирование без reply_markup заодно снимает инлайн-кнопки.
func (c *TelegramClient) EditStruck(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.Entities = []tgbotapi.MessageEntity{
		{
			Type:   "strikethrough",
			Offset: 0,
			Length: utf16Len(text),
		},
	}

	if _, err := c.bot.Send(edit); err != nil {
		return fmt.Errorf("edit message %d: %w", messageID, err)
	}
	return nil
}

// utf16Len — длина текста в UTF-16 code units: Telegram считает
// offset/length сущностей именно так.
func utf16Len(text string) int {
	return len(utf16.Encode([]rune(text)))
}
