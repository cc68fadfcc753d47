package nutrition

import "encoding/base64"

const (
	ReportFileName    = "nutrition_analysis.txt"
	ReportContentType = "text/plain; charset=utf-8"
)

// Report is what a shell renders after a submission: either the analysis
// text with its download, or an error message. Never both.
type Report struct {
	OK       bool
	Text     string
	FileName string
	Error    string
	Hint     string
	Kind     Kind
}

// Present turns the pipeline outcome into a Report. The text is not touched.
func Present(res Result, err error) Report {
	if err != nil {
		kind := KindOf(err)
		return Report{
			Error: UserMessage(err),
			Hint:  Hint(kind),
			Kind:  kind,
		}
	}
	return Report{
		OK:       true,
		Text:     res.Text,
		FileName: ReportFileName,
	}
}

// Artifact is the downloadable file body, or nil after a failure.
func (r Report) Artifact() []byte {
	if !r.OK {
		return nil
	}
	return []byte(r.Text)
}

// DownloadURL embeds the artifact in a data: URL so a page can offer the
// download without keeping server-side state.
func (r Report) DownloadURL() string {
	if !r.OK {
		return ""
	}
	return "data:text/plain;charset=utf-8;base64," + base64.StdEncoding.EncodeToString(r.Artifact())
}
