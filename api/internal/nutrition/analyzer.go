package nutrition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nutrition-analyzer/api/internal/util"
)

// Inferrer is the external multimodal model: image and prompt in, text out.
type Inferrer interface {
	Infer(ctx context.Context, image []byte, mime, prompt string) (string, error)
}

type Limits struct {
	MaxImageBytes int64 // 0 disables the check
	MaxPixels     int   // larger images are downscaled; 0 disables
}

var DefaultLimits = Limits{
	MaxImageBytes: 10 << 20,
	MaxPixels:     12_000_000,
}

type Analyzer struct {
	inf    Inferrer
	limits Limits
}

func NewAnalyzer(inf Inferrer, limits Limits) *Analyzer {
	return &Analyzer{inf: inf, limits: limits}
}

// Analyze runs one submission: validate the image, build the prompt, make
// exactly one inference call. Nothing is retried.
func (a *Analyzer) Analyze(ctx context.Context, req AnalysisRequest) (Result, error) {
	img, err := PrepareImage(req.Image, a.limits)
	if err != nil {
		return Result{}, err
	}
	if a.inf == nil {
		return Result{}, CredentialError(ErrMissingCredential)
	}
	goal := req.Goal
	if goal == "" {
		goal = GoalGeneralInfo
	}
	prompt := BuildPrompt(goal, req.Notes)

	start := time.Now()
	text, err := a.inf.Infer(ctx, img.Data, img.MIME, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Result{}, TransportError(err)
		}
		return Result{}, ServiceError(err)
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, ServiceError(ErrEmptyCompletion)
	}

	res := Result{Text: text, Elapsed: time.Since(start)}
	if id, ok := a.inf.(interface {
		Name() string
		GetModel() string
	}); ok {
		res.Engine = id.Name()
		res.Model = id.GetModel()
	}
	return res, nil
}

// PrepareImage enforces the allow-list and size limit and downscales
// oversized pictures.
func PrepareImage(img Image, limits Limits) (Image, error) {
	if len(img.Data) == 0 {
		return Image{}, MissingInput(ErrNoImage)
	}
	if limits.MaxImageBytes > 0 && int64(len(img.Data)) > limits.MaxImageBytes {
		return Image{}, InvalidInput(fmt.Errorf("image is %d bytes, limit is %d", len(img.Data), limits.MaxImageBytes))
	}
	mime, ok := util.PickImageMIME(img.MIME, img.Name, img.Data)
	if !ok {
		return Image{}, InvalidInput(fmt.Errorf("unsupported image type %q; use JPEG, PNG or WebP", util.SniffMimeHTTP(img.Data)))
	}
	out := Image{Data: img.Data, MIME: mime, Name: img.Name}

	data, newMIME, resized, err := util.Downscale(img.Data, limits.MaxPixels)
	if err != nil {
		return Image{}, InvalidInput(fmt.Errorf("downscale image: %w", err))
	}
	if resized {
		out.Data, out.MIME = data, newMIME
	}
	return out, nil
}
