package handle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nutrition-analyzer/api/internal/nutrition"
	"nutrition-analyzer/api/internal/util"
)

type AnalyzeRequest struct {
	LLMName  string `json:"llm_name"`
	ImageB64 string `json:"image_b64"` // plain base64 or a data: URL
	MIME     string `json:"mime,omitempty"`
	Goal     string `json:"goal,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type AnalyzeResponse struct {
	Analysis  string `json:"analysis"`
	Engine    string `json:"engine,omitempty"`
	Model     string `json:"model,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
	FileName  string `json:"file_name"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Hint  string `json:"hint,omitempty"`
}

// APIAnalyze is the JSON variant of Analyze. With ?format=txt the analysis
// comes back as the downloadable text file.
func (h *Handle) APIAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.writeError(c, nutrition.InvalidInput(fmt.Errorf("request exceeds %d bytes", tooBig.Limit)))
			return
		}
		h.writeError(c, nutrition.InvalidInput(fmt.Errorf("bad json: %w", err)))
		return
	}

	goal, err := nutrition.ParseGoal(req.Goal)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var img nutrition.Image
	if strings.TrimSpace(req.ImageB64) != "" {
		data, hintMIME, err := util.DecodeBase64MaybeDataURL(req.ImageB64)
		if err != nil {
			h.writeError(c, nutrition.InvalidInput(fmt.Errorf("bad image_b64: %w", err)))
			return
		}
		mime := req.MIME
		if mime == "" {
			mime = hintMIME
		}
		img = nutrition.Image{Data: data, MIME: mime}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout(c))
	defer cancel()

	res, err := h.analyze(ctx, req.LLMName, nutrition.AnalysisRequest{Image: img, Goal: goal, Notes: req.Notes})
	if err != nil {
		h.writeError(c, err)
		return
	}

	report := nutrition.Present(res, nil)
	if strings.EqualFold(c.Query("format"), "txt") {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.FileName))
		c.Data(http.StatusOK, nutrition.ReportContentType, report.Artifact())
		return
	}
	c.JSON(http.StatusOK, AnalyzeResponse{
		Analysis:  report.Text,
		Engine:    res.Engine,
		Model:     res.Model,
		ElapsedMS: res.Elapsed.Milliseconds(),
		FileName:  report.FileName,
	})
}

func (h *Handle) writeError(c *gin.Context, err error) {
	logFailure(c, err)
	report := nutrition.Present(nutrition.Result{}, err)
	c.JSON(statusFor(report.Kind), errorResponse{
		Error: report.Error,
		Kind:  report.Kind.String(),
		Hint:  report.Hint,
	})
}

func (h *Handle) Goals(c *gin.Context) {
	type goal struct {
		Key   string `json:"key"`
		Label string `json:"label"`
	}
	out := make([]goal, 0, len(nutrition.Goals))
	for _, g := range nutrition.Goals {
		out = append(out, goal{Key: g.Key(), Label: string(g)})
	}
	c.JSON(http.StatusOK, out)
}
