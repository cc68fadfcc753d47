package telegram

import (
	"fmt"
	"hash/fnv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WebhookPath is the secret path Telegram posts updates to.
func WebhookPath(token string) string {
	return "/webhook/" + shortHash(token)
}

// SetWebhook registers baseURL+WebhookPath with Telegram and drops updates
// queued while the bot was down.
func SetWebhook(bot Sender, token, baseURL string) (string, error) {
	path := WebhookPath(token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return "", err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return "", err
	}
	return path, nil
}

// shortHash hides the token in the webhook path: FNV-1a as 16 hex digits.
func shortHash(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}
