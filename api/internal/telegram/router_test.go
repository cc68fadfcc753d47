package telegram

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nutrition-analyzer/api/internal/llm"
	"nutrition-analyzer/api/internal/nutrition"
)

type fakeSender struct {
	texts    []string
	docs     [][]byte
	docNames []string
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		f.texts = append(f.texts, m.Text)
	case tgbotapi.EditMessageTextConfig:
		f.texts = append(f.texts, m.Text)
	case tgbotapi.DocumentConfig:
		fb, ok := m.File.(tgbotapi.FileBytes)
		if ok {
			f.docs = append(f.docs, fb.Bytes)
			f.docNames = append(f.docNames, fb.Name)
		}
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type stubEngine struct {
	text      string
	err       error
	calls     int
	gotPrompt string
}

func (s *stubEngine) Name() string     { return "stub" }
func (s *stubEngine) GetModel() string { return "stub-1" }
func (s *stubEngine) Infer(_ context.Context, _ []byte, _, prompt string) (string, error) {
	s.calls++
	s.gotPrompt = prompt
	return s.text, s.err
}

type fixture struct {
	r       *Router
	bot     *fakeSender
	eng     *stubEngine
	fetches int
}

func newFixture(t *testing.T, text string) *fixture {
	t.Helper()
	f := &fixture{bot: &fakeSender{}, eng: &stubEngine{text: text}}
	img := samplePNG(t)
	fetch := func(context.Context, string) ([]byte, error) {
		f.fetches++
		return img, nil
	}
	engs := &llm.Engines{Default: "gemini", Gemini: f.eng}
	f.r = NewRouter(f.bot, fetch, engs, nutrition.DefaultLimits, time.Second)
	return f
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func chat() *tgbotapi.Chat { return &tgbotapi.Chat{ID: 42} }

func photoUpdate(caption string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:    chat(),
		Caption: caption,
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90, Height: 90},
			{FileID: "large", Width: 1280, Height: 1280},
		},
	}}
}

func commandUpdate(text string) tgbotapi.Update {
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i > 0 {
		cmdLen = i
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     chat(),
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}}
}

func TestPhotoRepliesWithTextAndDocument(t *testing.T) {
	long := strings.Repeat("1) Grilled chicken, ~150g, ~250 kcal\n", 250) + "- Total Estimated Calories: ~500 kcal"
	f := newFixture(t, long)

	f.r.HandleUpdate(context.Background(), photoUpdate("homemade"))

	if f.eng.calls != 1 {
		t.Fatalf("engine calls = %d", f.eng.calls)
	}
	if !strings.Contains(f.eng.gotPrompt, "User notes: homemade") {
		t.Errorf("caption not used as notes: %q", f.eng.gotPrompt)
	}
	if len(f.bot.texts) < 2 {
		t.Fatalf("expected the long analysis to be split, got %d messages", len(f.bot.texts))
	}
	for _, m := range f.bot.texts {
		if len([]rune(m)) > messageLimit {
			t.Errorf("message of %d runes exceeds the limit", len([]rune(m)))
		}
	}
	if got := strings.Join(f.bot.texts, ""); got != long {
		t.Error("messages do not reassemble the analysis verbatim")
	}
	if len(f.bot.docs) != 1 || string(f.bot.docs[0]) != long {
		t.Fatal("document bytes differ from the analysis")
	}
	if f.bot.docNames[0] != nutrition.ReportFileName {
		t.Errorf("document name = %q", f.bot.docNames[0])
	}
}

func TestTextWithoutImage(t *testing.T) {
	f := newFixture(t, "unused")
	f.r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{Chat: chat(), Text: "how many calories?"}})

	if f.eng.calls != 0 || f.fetches != 0 {
		t.Errorf("calls=%d fetches=%d, want none", f.eng.calls, f.fetches)
	}
	if len(f.bot.texts) != 1 || !strings.HasPrefix(f.bot.texts[0], "Please upload an image to analyze.") {
		t.Errorf("reply = %q", f.bot.texts)
	}
	if len(f.bot.docs) != 0 {
		t.Error("document sent without a result")
	}
}

func TestDocumentOutsideAllowList(t *testing.T) {
	f := newFixture(t, "unused")
	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     chat(),
		Document: &tgbotapi.Document{FileID: "doc", FileName: "menu.pdf", MimeType: "application/pdf"},
	}}
	f.r.HandleUpdate(context.Background(), upd)

	if f.eng.calls != 0 || f.fetches != 0 {
		t.Errorf("calls=%d fetches=%d, want none", f.eng.calls, f.fetches)
	}
	if len(f.bot.texts) != 1 || !strings.HasPrefix(f.bot.texts[0], "Analysis failed:") {
		t.Errorf("reply = %q", f.bot.texts)
	}
}

func TestImageDocumentIsAnalyzed(t *testing.T) {
	f := newFixture(t, "~500 kcal")
	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     chat(),
		Document: &tgbotapi.Document{FileID: "doc", FileName: "lunch.png", MimeType: "image/png"},
	}}
	f.r.HandleUpdate(context.Background(), upd)

	if f.eng.calls != 1 || f.fetches != 1 {
		t.Errorf("calls=%d fetches=%d", f.eng.calls, f.fetches)
	}
}

func TestEngineFailure(t *testing.T) {
	f := newFixture(t, "")
	f.eng.err = errors.New("quota exceeded")

	f.r.HandleUpdate(context.Background(), photoUpdate(""))

	if f.eng.calls != 1 {
		t.Errorf("engine calls = %d, want exactly one", f.eng.calls)
	}
	if len(f.bot.texts) != 1 {
		t.Fatalf("replies = %q", f.bot.texts)
	}
	if !strings.Contains(f.bot.texts[0], "Analysis failed: ") || !strings.Contains(f.bot.texts[0], "quota exceeded") {
		t.Errorf("reply = %q", f.bot.texts[0])
	}
	if len(f.bot.docs) != 0 {
		t.Error("document sent after a failure")
	}
}

func TestGoalCommandAndCallback(t *testing.T) {
	f := newFixture(t, "ok")

	f.r.HandleUpdate(context.Background(), commandUpdate("/goal weight-loss"))
	if g := f.r.goals.Get(42); g != nutrition.GoalWeightLoss {
		t.Fatalf("goal = %q", g)
	}
	f.r.HandleUpdate(context.Background(), photoUpdate("homemade"))
	if !strings.Contains(f.eng.gotPrompt, "User notes: homemade | Goal: Weight Loss") {
		t.Errorf("prompt = %q", f.eng.gotPrompt)
	}

	f.r.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		Data:    goalCallbackPrefix + nutrition.GoalMuscleGain.Key(),
		Message: &tgbotapi.Message{MessageID: 7, Chat: chat()},
	}})
	if g := f.r.goals.Get(42); g != nutrition.GoalMuscleGain {
		t.Errorf("goal after callback = %q", g)
	}
	if got := f.bot.texts[len(f.bot.texts)-1]; got != "Goal set: Muscle Gain" {
		t.Errorf("last reply = %q", got)
	}

	f.r.HandleUpdate(context.Background(), commandUpdate("/goal bulk"))
	if g := f.r.goals.Get(42); g != nutrition.GoalMuscleGain {
		t.Errorf("unknown goal changed selection to %q", g)
	}
	if f.r.goals.Get(7) != nutrition.GoalGeneralInfo {
		t.Error("other chats must keep the default goal")
	}
}

func TestGoalPickerKeyboard(t *testing.T) {
	kb := makeGoalKeyboard()
	if len(kb.InlineKeyboard) != len(nutrition.Goals) {
		t.Fatalf("rows = %d", len(kb.InlineKeyboard))
	}
	for i, row := range kb.InlineKeyboard {
		if row[0].Text != string(nutrition.Goals[i]) {
			t.Errorf("row %d = %q", i, row[0].Text)
		}
		if data := *row[0].CallbackData; len(data) > 64 {
			t.Errorf("callback data %q exceeds 64 bytes", data)
		}
	}
}

func TestHealthCommand(t *testing.T) {
	f := newFixture(t, "ok")
	f.r.HandleUpdate(context.Background(), commandUpdate("/health"))
	if len(f.bot.texts) != 1 || f.bot.texts[0] != "✅ OK" {
		t.Errorf("reply = %q", f.bot.texts)
	}

	f.r.Engines = &llm.Engines{Default: "gemini"}
	f.r.HandleUpdate(context.Background(), commandUpdate("/health"))
	if !strings.Contains(f.bot.texts[1], "no API key") {
		t.Errorf("reply = %q", f.bot.texts[1])
	}
}

func TestServeStopsOnClose(t *testing.T) {
	f := newFixture(t, "ok")
	ch := make(chan tgbotapi.Update, 1)
	ch <- commandUpdate("/start")
	close(ch)

	f.r.Serve(context.Background(), ch)
	if len(f.bot.texts) != 1 || !strings.Contains(f.bot.texts[0], "Send a photo") {
		t.Errorf("reply = %q", f.bot.texts)
	}
}
