package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nutrition-analyzer/api/internal/nutrition"
	"nutrition-analyzer/api/internal/util"
)

type fileRef struct {
	ID   string
	MIME string
	Name string
	Size int
}

// imageRef picks the file to analyze: the largest photo size, or a document.
func imageRef(msg *tgbotapi.Message) (fileRef, bool) {
	if n := len(msg.Photo); n > 0 {
		ph := msg.Photo[n-1]
		return fileRef{ID: ph.FileID, MIME: "image/jpeg", Name: "photo.jpg", Size: ph.FileSize}, true
	}
	if d := msg.Document; d != nil {
		return fileRef{ID: d.FileID, MIME: d.MimeType, Name: d.FileName, Size: d.FileSize}, true
	}
	return fileRef{}, false
}

// download checks what Telegram told us about the file before fetching it.
// The bytes are checked again by the pipeline.
func (r *Router) download(ctx context.Context, ref fileRef) (nutrition.Image, error) {
	if _, ok := util.PickImageMIME(ref.MIME, ref.Name, nil); !ok {
		return nutrition.Image{}, nutrition.InvalidInput(fmt.Errorf("unsupported file type %q; send a JPEG, PNG or WebP image", ref.MIME))
	}
	if limit := r.Limits.MaxImageBytes; limit > 0 && int64(ref.Size) > limit {
		return nutrition.Image{}, nutrition.InvalidInput(fmt.Errorf("image is %d bytes, limit is %d", ref.Size, limit))
	}
	data, err := r.Fetch(ctx, ref.ID)
	if err != nil {
		return nutrition.Image{}, nutrition.TransportError(fmt.Errorf("download photo: %w", err))
	}
	return nutrition.Image{Data: data, MIME: ref.MIME, Name: ref.Name}, nil
}

// BotFetcher resolves file IDs through the Bot API and downloads the bytes.
func BotFetcher(bot *tgbotapi.BotAPI) Fetcher {
	httpc := &http.Client{Timeout: 60 * time.Second}
	return func(ctx context.Context, fileID string) ([]byte, error) {
		url, err := bot.GetFileDirectURL(fileID)
		if err != nil {
			return nil, err
		}
		return fetchURL(ctx, httpc, url)
	}
}

func fetchURL(ctx context.Context, httpc *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}
