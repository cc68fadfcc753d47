package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nutrition-analyzer/api/internal/llm"
	"nutrition-analyzer/api/internal/nutrition"
)

// Sender is the part of *tgbotapi.BotAPI the router talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Fetcher downloads a Telegram file by its ID.
type Fetcher func(ctx context.Context, fileID string) ([]byte, error)

type Router struct {
	Bot     Sender
	Fetch   Fetcher
	Engines *llm.Engines
	Limits  nutrition.Limits
	Timeout time.Duration

	goals *GoalManager
}

func NewRouter(bot Sender, fetch Fetcher, engs *llm.Engines, limits nutrition.Limits, timeout time.Duration) *Router {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Router{
		Bot:     bot,
		Fetch:   fetch,
		Engines: engs,
		Limits:  limits,
		Timeout: timeout,
		goals:   NewGoalManager(nutrition.GoalGeneralInfo),
	}
}

// Serve handles updates one at a time until ctx is done or the channel closes.
func (r *Router) Serve(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				log.Printf("telegram: updates channel closed")
				return
			}
			r.HandleUpdate(ctx, upd)
		}
	}
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	if msg.IsCommand() {
		r.HandleCommand(msg)
		return
	}

	ref, ok := imageRef(msg)
	if !ok {
		r.sendReport(msg.Chat.ID, nutrition.Present(nutrition.Result{}, nutrition.MissingInput(nutrition.ErrNoImage)))
		return
	}
	r.analyze(ctx, msg.Chat.ID, ref, msg.Caption)
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, helpText(r.goals.Get(cid)))
	case "health":
		if r.Engines.Ready() {
			r.send(cid, "✅ OK")
		} else {
			r.send(cid, "⚠️ OK, but no API key is configured; analyses will fail.")
		}
	case "goal":
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			r.sendGoalPicker(cid)
			return
		}
		g, err := nutrition.ParseGoal(arg)
		if err != nil {
			r.send(cid, fmt.Sprintf("Unknown goal %q. Choose one of: %s", arg, goalList()))
			return
		}
		r.goals.Set(cid, g)
		r.send(cid, "Goal set: "+string(g))
	default:
		r.send(cid, "Unknown command. Send /help for usage.")
	}
}

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID

	key, ok := strings.CutPrefix(cb.Data, goalCallbackPrefix)
	if !ok {
		return
	}
	g, err := nutrition.ParseGoal(key)
	if err != nil {
		r.send(cid, "Unknown goal.")
		return
	}
	r.goals.Set(cid, g)

	edit := tgbotapi.NewEditMessageText(cid, cb.Message.MessageID, "Goal set: "+string(g))
	_, _ = r.Bot.Send(edit)
}

// analyze runs one submission and replies with the text and the .txt file,
// or with the error message.
func (r *Router) analyze(ctx context.Context, chatID int64, ref fileRef, caption string) {
	_, _ = r.Bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.run(ctx, ref, caption, r.goals.Get(chatID))
	if err != nil {
		log.Printf("telegram: analyze failed chat=%d kind=%s: %v", chatID, nutrition.KindOf(err), err)
	}
	r.sendReport(chatID, nutrition.Present(res, err))
}

func (r *Router) run(ctx context.Context, ref fileRef, caption string, goal nutrition.Goal) (nutrition.Result, error) {
	img, err := r.download(ctx, ref)
	if err != nil {
		return nutrition.Result{}, err
	}
	inf, err := r.Engines.Resolve("")
	if err != nil {
		return nutrition.Result{}, err
	}
	return nutrition.NewAnalyzer(inf, r.Limits).Analyze(ctx, nutrition.AnalysisRequest{
		Image: img,
		Goal:  goal,
		Notes: caption,
	})
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		log.Printf("telegram: send to %d: %v", chatID, err)
	}
}
