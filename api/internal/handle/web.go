package handle

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nutrition-analyzer/api/internal/nutrition"
	"nutrition-analyzer/api/internal/util"
)

const exampleOutput = `- Items Detected:
  1) Grilled Chicken Breast — ~150g — ~250 kcal
     • Macros (est.): P ~45g, C ~0g, F ~5g
  2) Brown Rice — ~1 cup (195g) — ~215 kcal
     • Macros (est.): P ~5g, C ~45g, F ~2g
  3) Steamed Broccoli — ~100g — ~35 kcal
     • Macros (est.): P ~3g, C ~7g, F ~0g

- Assumptions & Uncertainty:
  • Chicken appears grilled with minimal oil; actual calories may vary by ±10% based on cooking method
  • Rice portion estimated from plate proportion; could be 170-220g range

- Total Estimated Calories: ~500 kcal

- Notes & Tips:
  • Well-balanced meal with good protein and fiber; consider adding healthy fats (avocado, nuts)
  • No major allergens detected; broccoli and rice are gluten-free`

type goalOption struct {
	Value    string
	Label    string
	Selected bool
}

type page struct {
	Goals       []goalOption
	Notes       string
	Accept      string
	MaxUploadMB int64
	Ready       bool
	Example     string

	Submitted   bool
	Report      nutrition.Report
	DownloadURL template.URL
}

func (h *Handle) newPage(selected nutrition.Goal, notes string) page {
	goals := make([]goalOption, 0, len(nutrition.Goals))
	for _, g := range nutrition.Goals {
		goals = append(goals, goalOption{Value: g.Key(), Label: string(g), Selected: g == selected})
	}
	return page{
		Goals:       goals,
		Notes:       notes,
		Accept:      strings.Join(util.AcceptedImageExts, ","),
		MaxUploadMB: h.opts.Limits.MaxImageBytes >> 20,
		Ready:       h.engs.Ready(),
		Example:     exampleOutput,
	}
}

func (h *Handle) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.newPage(nutrition.GoalGeneralInfo, ""))
}

// Analyze handles the form post and renders the result on the same page.
func (h *Handle) Analyze(c *gin.Context) {
	notes := c.PostForm("notes")
	goal, err := nutrition.ParseGoal(c.PostForm("goal"))
	if err != nil {
		h.renderReport(c, h.newPage(nutrition.GoalGeneralInfo, notes), nutrition.Result{}, err)
		return
	}
	p := h.newPage(goal, notes)

	img, err := formImage(c, "image")
	if err != nil {
		h.renderReport(c, p, nutrition.Result{}, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.Timeout)
	defer cancel()

	res, err := h.analyze(ctx, c.PostForm("llm_name"), nutrition.AnalysisRequest{
		Image: img,
		Goal:  goal,
		Notes: notes,
	})
	h.renderReport(c, p, res, err)
}

func (h *Handle) renderReport(c *gin.Context, p page, res nutrition.Result, err error) {
	p.Submitted = true
	p.Report = nutrition.Present(res, err)
	status := http.StatusOK
	if err != nil {
		logFailure(c, err)
		status = statusFor(p.Report.Kind)
	} else {
		// data: URLs are rejected by html/template unless marked safe; the
		// payload is our own base64.
		p.DownloadURL = template.URL(p.Report.DownloadURL())
	}
	c.HTML(status, "index.html", p)
}

// formImage reads an uploaded file. No file yields an empty Image, which
// the pipeline reports as missing input.
func formImage(c *gin.Context, field string) (nutrition.Image, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nutrition.Image{}, nil
	}
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nutrition.Image{}, nutrition.InvalidInput(fmt.Errorf("upload exceeds %d bytes", tooBig.Limit))
		}
		return nutrition.Image{}, nutrition.InvalidInput(fmt.Errorf("read upload: %w", err))
	}
	f, err := fh.Open()
	if err != nil {
		return nutrition.Image{}, nutrition.InvalidInput(fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nutrition.Image{}, nutrition.InvalidInput(fmt.Errorf("read upload: %w", err))
	}
	return nutrition.Image{
		Data: data,
		MIME: fh.Header.Get("Content-Type"),
		Name: fh.Filename,
	}, nil
}
