package telegram

import (
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nutrition-analyzer/api/internal/nutrition"
	"nutrition-analyzer/api/internal/util"
)

const (
	// Telegram rejects longer messages.
	messageLimit       = 4096
	goalCallbackPrefix = "goal:"
)

func helpText(current nutrition.Goal) string {
	return "Send a photo of your meal and I will estimate the items, portions, calories and macros.\n" +
		"Add a caption for notes, e.g. \"homemade, cooked in olive oil\".\n\n" +
		"Current goal: " + string(current) + "\n" +
		"Commands: /goal, /health, /help"
}

func goalList() string {
	labels := make([]string, 0, len(nutrition.Goals))
	for _, g := range nutrition.Goals {
		labels = append(labels, string(g))
	}
	return strings.Join(labels, ", ")
}

func makeGoalKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(nutrition.Goals))
	for _, g := range nutrition.Goals {
		btn := tgbotapi.NewInlineKeyboardButtonData(string(g), goalCallbackPrefix+g.Key())
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (r *Router) sendGoalPicker(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Current goal: "+string(r.goals.Get(chatID))+". Pick a new one:")
	msg.ReplyMarkup = makeGoalKeyboard()
	if _, err := r.Bot.Send(msg); err != nil {
		log.Printf("telegram: send goal picker to %d: %v", chatID, err)
	}
}

// sendReport delivers the analysis unchanged: plain-text messages (no parse
// mode) followed by the same bytes as a document.
func (r *Router) sendReport(chatID int64, rep nutrition.Report) {
	if !rep.OK {
		text := rep.Error
		if rep.Hint != "" {
			text += "\n\n" + rep.Hint
		}
		r.send(chatID, text)
		return
	}

	for _, chunk := range util.SplitText(rep.Text, messageLimit) {
		r.send(chatID, chunk)
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: rep.FileName, Bytes: rep.Artifact()})
	if _, err := r.Bot.Send(doc); err != nil {
		log.Printf("telegram: send document to %d: %v", chatID, err)
	}
}
