package handle

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"nutrition-analyzer/api/internal/llm"
	"nutrition-analyzer/api/internal/nutrition"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Options struct {
	Limits      nutrition.Limits
	Timeout     time.Duration // per-submission deadline for the inference call
	CORSOrigins []string      // empty allows any origin on /api
}

type Handle struct {
	engs *llm.Engines
	opts Options
}

func New(engs *llm.Engines, opts Options) *Handle {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Handle{
		engs: engs,
		opts: opts,
	}
}

// Router wires every route onto a fresh gin engine.
func (h *Handle) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(), limitBody(h.bodyLimit()))
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	r.GET("/healthz", h.Healthz)
	r.GET("/", h.Index)
	r.POST("/analyze", h.Analyze)

	api := r.Group("/api")
	api.Use(cors.New(h.corsConfig()))
	api.GET("/goals", h.Goals)
	api.POST("/analyze", h.APIAnalyze)

	return r
}

func (h *Handle) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-Timeout"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(h.opts.CORSOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = h.opts.CORSOrigins
	}
	return cfg
}

// bodyLimit leaves room for base64 inflation and form overhead.
func (h *Handle) bodyLimit() int64 {
	if h.opts.Limits.MaxImageBytes <= 0 {
		return 0
	}
	return h.opts.Limits.MaxImageBytes*2 + 1<<20
}

func (h *Handle) Healthz(c *gin.Context) {
	if !h.engs.Ready() {
		c.String(http.StatusOK, "ok\ncredential: missing")
		return
	}
	c.String(http.StatusOK, "ok")
}

func (h *Handle) analyze(ctx context.Context, llmName string, req nutrition.AnalysisRequest) (nutrition.Result, error) {
	inf, err := h.engs.Resolve(llmName)
	if err != nil {
		return nutrition.Result{}, err
	}
	return nutrition.NewAnalyzer(inf, h.opts.Limits).Analyze(ctx, req)
}

// requestTimeout honours X-Request-Timeout or ?timeoutSec= (seconds).
func (h *Handle) requestTimeout(c *gin.Context) time.Duration {
	deadline := h.opts.Timeout
	if ts := c.GetHeader("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := c.Query("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return deadline
}

func statusFor(kind nutrition.Kind) int {
	switch kind {
	case nutrition.KindMissingInput, nutrition.KindInvalidInput:
		return http.StatusBadRequest
	case nutrition.KindCredential:
		return http.StatusServiceUnavailable
	case nutrition.KindTransport:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func logFailure(c *gin.Context, err error) {
	log.Printf("analyze failed rid=%s kind=%s: %v", c.GetString(ctxRequestID), nutrition.KindOf(err), err)
}
