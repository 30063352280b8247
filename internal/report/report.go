// Package report renders session summaries and rating tables as text.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/rotaenot/internal/judgment"
	"github.com/verte-zerg/rotaenot/internal/model"
	"github.com/verte-zerg/rotaenot/internal/play"
	"github.com/verte-zerg/rotaenot/internal/score"
)

const (
	sparkChars          = " .:-=+*#%@"
	terminalWidthBackup = 80
	minTraceWidth       = 10
	traceLabel          = "Angle trace "
	dateLayout          = "2006-01-02"
)

var gradeColors = map[score.Grade]string{
	score.GradeSSS: "#F5C542",
	score.GradeSS:  "#F5C542",
	score.GradeS:   "#C89A3A",
	score.GradeA:   "#52C41A",
	score.GradeB:   "#40A9FF",
	score.GradeC:   "#8C8C8C",
	score.GradeD:   "#FF4D4F",
}

type styles struct {
	heading lipgloss.Style
	label   lipgloss.Style
	grade   func(score.Grade) lipgloss.Style
}

// newStyles builds styles for w; color is dropped when w is not a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
		grade: func(g score.Grade) lipgloss.Style {
			return r.NewStyle().Bold(true).Foreground(lipgloss.Color(gradeColors[g]))
		},
	}
}

// RenderSummary prints the outcome of a play session.
func RenderSummary(w io.Writer, res play.Result) error {
	st := newStyles(w)
	s := res.Score
	lines := []string{
		st.heading.Render(fmt.Sprintf("Session %s", res.ID)),
		fmt.Sprintf("%s %s (difficulty %d)", st.label.Render("Song:"), res.SongID, res.Difficulty),
		fmt.Sprintf("%s %d / %d", st.label.Render("Score:"), s.TotalScore, res.TheoreticalMax),
		fmt.Sprintf("%s %.2f%%", st.label.Render("Accuracy:"), s.Accuracy),
		fmt.Sprintf("%s %s", st.label.Render("Grade:"), st.grade(res.Grade).Render(string(res.Grade))),
		fmt.Sprintf("%s %.2f", st.label.Render("Rating:"), res.Rating),
		fmt.Sprintf("%s %d (full combo: %s)", st.label.Render("Max combo:"), s.MaxCombo, yesNo(s.FullCombo)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return RenderJudgmentTable(w, s)
}

// RenderJudgmentTable prints per-tier counts and their share of all notes.
func RenderJudgmentTable(w io.Writer, s model.ScoreData) error {
	total := s.TotalNotes()
	counts := map[judgment.Tag]int{
		judgment.Perfect: s.PerfectCount,
		judgment.Great:   s.GreatCount,
		judgment.Good:    s.GoodCount,
		judgment.Miss:    s.MissCount,
	}
	rows := make([][]string, 0, len(judgment.Tags))
	for _, tag := range judgment.Tags {
		share := 0.0
		if total > 0 {
			share = float64(counts[tag]) / float64(total) * 100
		}
		rows = append(rows, []string{
			tag.String(),
			fmt.Sprintf("%d", counts[tag]),
			fmt.Sprintf("%.1f%%", share),
		})
	}
	lines := formatTable([]string{"Judgment", "Count", "Share"}, rows, map[int]bool{1: true, 2: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderBest40 prints the B40 total and the records it sums.
func RenderBest40(w io.Writer, total float64, records []model.ScoreRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No score records found.")
		return err
	}
	st := newStyles(w)
	if _, err := fmt.Fprintln(w, st.heading.Render(fmt.Sprintf("B40 rating: %.2f (%d songs)", total, len(records)))); err != nil {
		return err
	}
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		date := ""
		if !rec.Timestamp.IsZero() {
			date = rec.Timestamp.Format(dateLayout)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			rec.SongID,
			fmt.Sprintf("%d", rec.Difficulty),
			fmt.Sprintf("%.2f", rec.Rating),
			date,
		})
	}
	lines := formatTable([]string{"#", "Song", "Diff", "Rating", "Played"}, rows, map[int]bool{0: true, 2: true, 3: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrace prints a single-line sparkline of angles (0 at the bottom,
// 360 at the top). A width of 0 fits the terminal.
func RenderTrace(w io.Writer, angles []float64, width int) error {
	if len(angles) == 0 {
		return nil
	}
	if width <= 0 {
		width = terminalWidth() - len(traceLabel)
	}
	if width < minTraceWidth {
		width = minTraceWidth
	}
	_, err := fmt.Fprintln(w, traceLabel+AngleSparkline(resample(angles, width)))
	return err
}

// AngleSparkline renders angles on a fixed 0-360 scale.
func AngleSparkline(angles []float64) string {
	var b strings.Builder
	top := len(sparkChars) - 1
	for _, a := range angles {
		idx := int(a / 360 * float64(top+1))
		if idx < 0 {
			idx = 0
		}
		if idx > top {
			idx = top
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// resample picks evenly spaced values; angles are not averaged so that
// samples on either side of 0/360 stay distinct.
func resample(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		out[i] = values[i*len(values)/width]
	}
	return out
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
