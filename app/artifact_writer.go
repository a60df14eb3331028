package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"goeda/domain/eda"
	"goeda/domain/insight"
	"goeda/internal"
	apperrors "goeda/internal/errors"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Artifacts lists the files written for one report; empty fields were not persisted
type Artifacts struct {
	Dir      string `json:"dir"`
	JSON     string `json:"json,omitempty"`
	Text     string `json:"text,omitempty"`
	Markdown string `json:"markdown,omitempty"`
	HTML     string `json:"html,omitempty"`
}

// Files returns the written paths in a stable order
func (a Artifacts) Files() []string {
	var out []string
	for _, p := range []string{a.JSON, a.Text, a.Markdown, a.HTML} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ArtifactWriter persists a report under a report folder
type ArtifactWriter struct {
	dir      string
	jsonName string
	logger   *internal.Logger
}

// NewArtifactWriter creates a writer for dir; jsonName is the already dated JSON file name
func NewArtifactWriter(dir, jsonName string, logger *internal.Logger) *ArtifactWriter {
	if logger == nil {
		logger = internal.NewLoggerWithZap(internal.LogLevelError, nil)
	}
	return &ArtifactWriter{dir: dir, jsonName: jsonName, logger: logger.Named("artifacts")}
}

// Write persists the aggregate JSON when plots or insights are saved, and the
// insight text renderings when insights are saved.
func (w *ArtifactWriter) Write(report *insight.Report, toggles eda.Toggles) (Artifacts, error) {
	out := Artifacts{Dir: w.dir}
	if report == nil || (!toggles.SaveInsights && !toggles.SavePlots) {
		return out, nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return out, apperrors.Wrapf(err, "create report folder %s", w.dir)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return out, apperrors.Wrap(err, "encode report")
	}
	out.JSON = filepath.Join(w.dir, w.jsonName)
	if err := writeFile(out.JSON, data); err != nil {
		return out, err
	}

	if !toggles.SaveInsights {
		w.logger.Info("report written to %s", out.JSON)
		return out, nil
	}

	stem := "insights_" + report.GeneratedAt.Format("2006-01-02")
	out.Text = filepath.Join(w.dir, stem+".txt")
	if err := writeFile(out.Text, []byte(insightText(report))); err != nil {
		return out, err
	}

	md := InsightMarkdown(report)
	out.Markdown = filepath.Join(w.dir, stem+".md")
	if err := writeFile(out.Markdown, md); err != nil {
		return out, err
	}

	out.HTML = filepath.Join(w.dir, stem+".html")
	if err := writeFile(out.HTML, RenderHTML(md, "EDA report: "+report.Dataset)); err != nil {
		return out, err
	}

	w.logger.Info("report written to %s (%d files)", w.dir, len(out.Files()))
	return out, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.Wrapf(err, "write %s", path)
	}
	return nil
}

func insightText(report *insight.Report) string {
	if len(report.Insights) == 0 {
		return ""
	}
	return strings.Join(report.Insights, "\n") + "\n"
}

// InsightMarkdown renders the report header, the insight lines and the chart references
func InsightMarkdown(report *insight.Report) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# EDA report: %s\n\n", report.Dataset)
	fmt.Fprintf(&b, "- Run: `%s`\n", report.RunID)
	fmt.Fprintf(&b, "- Rows: %d\n", report.Rows)
	fmt.Fprintf(&b, "- Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## Insights\n\n")
	if len(report.Insights) == 0 {
		b.WriteString("_No insights recorded._\n")
	}
	for _, line := range report.Insights {
		if !strings.HasPrefix(line, "- ") {
			line = "- " + line
		}
		b.WriteString(line + "\n")
	}

	var charts []string
	for _, id := range report.Order() {
		recs := report.Results[id]
		keys := make([]string, 0, len(recs))
		for k := range recs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if p := recs[k].PlotPath(); p != "" {
				charts = append(charts, fmt.Sprintf("- %s / %s: `%s`", id, k, p))
			}
		}
	}
	if len(charts) > 0 {
		b.WriteString("\n## Charts\n\n")
		b.WriteString(strings.Join(charts, "\n") + "\n")
	}
	return b.Bytes()
}

// RenderHTML converts markdown into a standalone HTML page
func RenderHTML(md []byte, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
	})
	return markdown.ToHTML(md, p, r)
}
