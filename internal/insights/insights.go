// Package insights extracts analyst free text from structured analysis
// documents and regroups it by topic. It is a pure text transform: no
// scoring, no filtering beyond dropping epochs that carry no prose.
package insights

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmercer/benchsight/internal/config"
	"github.com/dmercer/benchsight/internal/models"
)

// Document is one rendered per-topic insight file.
type Document struct {
	Topic   config.Topic
	Content string
}

// Extract builds one document per topic from the given suite analyses.
// Attribution is preserved: sections per model, subsections per epoch,
// analyst name on each excerpt. Topics with no prose anywhere still render
// (with only their header) so the output set is predictable.
func Extract(analyses []*models.SuiteAnalysis, topics []config.Topic) []Document {
	docs := make([]Document, 0, len(topics))
	for _, topic := range topics {
		docs = append(docs, Document{
			Topic:   topic,
			Content: renderTopic(topic, analyses),
		})
	}
	return docs
}

// WriteAll writes every document into dir, creating it if needed.
func WriteAll(docs []Document, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("insights output directory: %w", err)
	}
	for _, doc := range docs {
		path := filepath.Join(dir, doc.Topic.Output)
		if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", doc.Topic.Output, err)
		}
	}
	return nil
}

func renderTopic(topic config.Topic, analyses []*models.SuiteAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", topic.Name)
	fmt.Fprintf(&b, "## %s\n\n", topic.Title)
	b.WriteString("> **Raw Insights Extracted from Multi-Model Evaluation**\n")
	fmt.Fprintf(&b, "> *Generated: %s*\n\n", time.Now().UTC().Format("2006-01-02"))
	b.WriteString("---\n\n")
	b.WriteString("This file contains the raw analyst commentary from all evaluated models.\n")
	b.WriteString("Use it as source material for a consolidated insight report.\n\n")
	b.WriteString("---\n\n")

	for _, analysis := range analyses {
		ca := analysis.Challenge(topic.Challenge)
		if ca == nil {
			continue
		}
		model := analysis.Metadata.Model
		if model == "" {
			model = "(unnamed model)"
		}

		var epochs []string
		for _, ep := range ca.Epochs {
			section := renderEpoch(ep)
			if section != "" {
				epochs = append(epochs, section)
			}
		}
		if len(epochs) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s\n\n", model)
		for _, section := range epochs {
			b.WriteString(section)
		}
	}
	return b.String()
}

// renderEpoch formats one epoch's analyst prose, or returns "" when no
// review carried any.
func renderEpoch(ep models.Epoch) string {
	var b strings.Builder
	wrote := false
	for _, r := range ep.Reviews {
		if r.Rationale == "" && r.Strengths == "" && r.Weaknesses == "" && r.Insights == "" {
			continue
		}
		if !wrote {
			fmt.Fprintf(&b, "### Epoch %d\n\n", ep.Index)
			wrote = true
		}
		analyst := r.Analyst
		if analyst == "" {
			analyst = "analyst"
		}
		fmt.Fprintf(&b, "**%s**\n\n", analyst)
		writeExcerpt(&b, "Insights", r.Insights)
		writeExcerpt(&b, "Rationale", r.Rationale)
		writeExcerpt(&b, "Strengths", r.Strengths)
		writeExcerpt(&b, "Weaknesses", r.Weaknesses)
	}
	if !wrote {
		return ""
	}
	b.WriteString("---\n\n")
	return b.String()
}

func writeExcerpt(b *strings.Builder, label, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	fmt.Fprintf(b, "*%s:* %s\n\n", label, text)
}
