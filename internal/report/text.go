package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dmercer/benchsight/internal/models"
)

const rule = "======================================================================"

// Renderer renders one suite analysis.
type Renderer struct {
	analysis *models.SuiteAnalysis
}

// New returns a renderer over the analysis.
func New(analysis *models.SuiteAnalysis) *Renderer {
	return &Renderer{analysis: analysis}
}

// Text renders the narrative report: a section per challenge with metric
// breakdowns and pathologies, the suite summary with rankings, and the
// exclusion list. Everything left out of an aggregate appears here with its
// reason.
func (r *Renderer) Text() string {
	var b strings.Builder
	a := r.analysis

	b.WriteString(rule + "\n")
	b.WriteString("SUITE ANALYSIS REPORT\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Model:     %s\n", orDash(a.Metadata.Model))
	if len(a.Metadata.Analysts) > 0 {
		fmt.Fprintf(&b, "Analysts:  %s\n", strings.Join(a.Metadata.Analysts, ", "))
	}
	fmt.Fprintf(&b, "Source:    %s\n", a.Metadata.Source)
	fmt.Fprintf(&b, "Generated: %s\n", a.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "Challenges: %d\n", len(a.Challenges))

	for i := range a.Challenges {
		writeChallenge(&b, &a.Challenges[i])
	}

	writeSummary(&b, a)
	writeExclusions(&b, a.Exclusions)

	b.WriteString("\n" + rule + "\n")
	b.WriteString("END OF REPORT\n")
	return b.String()
}

func writeChallenge(b *strings.Builder, ca *models.ChallengeAnalysis) {
	fmt.Fprintf(b, "\n%s\n", rule)
	fmt.Fprintf(b, "CHALLENGE: %s\n", strings.ToUpper(string(ca.Challenge)))
	fmt.Fprintf(b, "%s\n", rule)
	fmt.Fprintf(b, "Epochs: %d analyzed, %d scored\n\n", len(ca.Epochs), ca.ScoredEpochs)

	if ca.ScoredEpochs == 0 {
		b.WriteString("No scored epochs; excluded from suite aggregates.\n")
		return
	}

	writeStatTable(b, []statRow{
		{"structure", ca.Structure},
		{"behavior", ca.Behavior},
		{"specialization", ca.Specialization},
		{"quality index", ca.Quality},
	})

	if ca.QualityCI != nil {
		fmt.Fprintf(b, "\nQuality %d%% CI: [%.4f, %.4f] (%d bootstraps)\n",
			int(ca.QualityCI.ConfidenceLevel*100), ca.QualityCI.Lower, ca.QualityCI.Upper,
			ca.QualityCI.NumBootstraps)
	}

	if ca.Rate != nil {
		fmt.Fprintf(b, "\nALIGNMENT RATE: %.4f/min [%s]\n", ca.Rate.PerMinute, ca.Rate.Status)
		fmt.Fprintf(b, "  quality %.4f over mean %.1f min\n", ca.Rate.Quality, ca.Rate.MeanMinutes)
	} else {
		b.WriteString("\nALIGNMENT RATE: undefined (no epoch with valid timing)\n")
	}

	writePathologies(b, ca)
	writeEpochs(b, ca.Epochs)
}

type statRow struct {
	label string
	stat  *models.Stat
}

// writeStatTable prints a fixed-width metric breakdown. Column widths use
// terminal display width, not byte length.
func writeStatTable(b *strings.Builder, rows []statRow) {
	fmt.Fprintf(b, "%s %8s %8s %8s %8s %8s\n",
		padRight("metric", 16), "mean", "median", "std", "min", "max")
	for _, row := range rows {
		if row.stat == nil {
			fmt.Fprintf(b, "%s %8s\n", padRight(row.label, 16), "-")
			continue
		}
		s := row.stat
		fmt.Fprintf(b, "%s %8.3f %8.3f %8.3f %8.3f %8.3f\n",
			padRight(row.label, 16), s.Mean, s.Median, s.StdDev, s.Min, s.Max)
	}
}

func writePathologies(b *strings.Builder, ca *models.ChallengeAnalysis) {
	if len(ca.Pathologies) == 0 {
		b.WriteString("\nPathologies: none detected\n")
		return
	}
	b.WriteString("\nPathologies:\n")
	for _, tag := range sortedCounts(ca.Pathologies) {
		fmt.Fprintf(b, "  %s: %d epoch(s)\n", tag.name, tag.count)
	}
}

// writeEpochs lists per-epoch detail: timing, analyst ensemble, quality,
// fallback state.
func writeEpochs(b *strings.Builder, epochs []models.Epoch) {
	b.WriteString("\nEpochs:\n")
	for _, ep := range epochs {
		fmt.Fprintf(b, "  epoch %d:", ep.Index)
		if ep.HasTiming {
			fmt.Fprintf(b, " %.1f min,", ep.ElapsedMinutes())
		} else {
			b.WriteString(" untimed,")
		}
		if ep.Scored() {
			fmt.Fprintf(b, " %d valid review(s)", ep.Score.ValidReviews)
			if ep.QualityIndex != nil {
				fmt.Fprintf(b, ", quality %.4f", *ep.QualityIndex)
			}
		} else {
			b.WriteString(" unscored")
		}
		if ep.Fallback {
			fmt.Fprintf(b, " [FALLBACK: %s]", ep.FallbackReason)
		}
		b.WriteString("\n")
		for _, note := range ep.Notes {
			fmt.Fprintf(b, "    (%s) %s\n", note.Kind, note.Message)
		}
	}
}

func writeSummary(b *strings.Builder, a *models.SuiteAnalysis) {
	s := a.Summary
	fmt.Fprintf(b, "\n%s\n", rule)
	b.WriteString("SUITE-LEVEL SUMMARY\n")
	fmt.Fprintf(b, "%s\n", rule)
	fmt.Fprintf(b, "Total epochs:    %d\n", s.TotalEpochs)
	fmt.Fprintf(b, "Scored epochs:   %d\n", s.ScoredEpochs)
	if s.FallbackEpochs > 0 {
		fmt.Fprintf(b, "Fallback epochs: %d\n", s.FallbackEpochs)
	}
	fmt.Fprintf(b, "\nQUALITY INDEX\n")
	fmt.Fprintf(b, "  Mean:   %.4f (%.2f%%)\n", s.MeanQuality, s.MeanQuality*100)
	fmt.Fprintf(b, "  Median: %.4f (%.2f%%)\n", s.MedianQuality, s.MedianQuality*100)

	if s.Rate != nil {
		fmt.Fprintf(b, "\nSUITE ALIGNMENT RATE (median of per-challenge rates)\n")
		fmt.Fprintf(b, "  %.4f/min [%s]\n", s.Rate.PerMinute, s.Rate.Status)
	} else {
		b.WriteString("\nSUITE ALIGNMENT RATE: undefined (no challenge had valid timing)\n")
	}

	writeRankings(b, a.Challenges)

	if len(s.Pathologies) > 0 {
		b.WriteString("\nPATHOLOGIES ACROSS ALL CHALLENGES\n")
		for _, tag := range sortedCounts(s.Pathologies) {
			pct := 0.0
			if s.TotalEpochs > 0 {
				pct = float64(tag.count) / float64(s.TotalEpochs) * 100
			}
			fmt.Fprintf(b, "  %s: %d (%.1f%% of epochs)\n", tag.name, tag.count, pct)
		}
	} else {
		b.WriteString("\nPATHOLOGIES: none detected\n")
	}
}

// writeRankings orders challenges by median quality index, best first.
func writeRankings(b *strings.Builder, challenges []models.ChallengeAnalysis) {
	type ranked struct {
		challenge models.Challenge
		median    float64
	}
	var rows []ranked
	for _, ca := range challenges {
		if ca.Quality != nil {
			rows = append(rows, ranked{ca.Challenge, ca.Quality.Median})
		}
	}
	if len(rows) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].median > rows[j].median })

	b.WriteString("\nCHALLENGE RANKINGS (by median quality)\n")
	for i, row := range rows {
		fmt.Fprintf(b, "  %d. %s %.4f (%.1f%%)\n",
			i+1, padRight(string(row.challenge), 14), row.median, row.median*100)
	}
}

func writeExclusions(b *strings.Builder, exclusions []models.Exclusion) {
	if len(exclusions) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", rule)
	b.WriteString("EXCLUSIONS\n")
	fmt.Fprintf(b, "%s\n", rule)
	for _, ex := range exclusions {
		if ex.Epoch > 0 {
			fmt.Fprintf(b, "  %s epoch %d: %s\n", ex.Challenge, ex.Epoch, ex.Reason)
		} else {
			fmt.Fprintf(b, "  %s: %s\n", ex.Challenge, ex.Reason)
		}
	}
}

type tagCount struct {
	name  string
	count int
}

func sortedCounts(counts map[string]int) []tagCount {
	out := make([]tagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, tagCount{name, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
