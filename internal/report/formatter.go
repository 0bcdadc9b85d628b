package report

import (
	"fmt"
	"html"
	"strings"

	"IndexSentinel/internal/model"
)

// ReturnsShown is how many 30-day returns the report lists.
const ReturnsShown = 5

// Results bundles the ranked sets of one run.
type Results struct {
	Gainers   []model.GainerLoser
	Losers    []model.GainerLoser
	BelowHigh []model.ExtremeDeviation
	AboveLow  []model.ExtremeDeviation
	Returns   []model.ReturnEntry // full ranking; truncated when formatted
}

type section struct {
	header    string
	separator string
	lines     []string
}

// Format renders the results as the plain-text report.
func Format(r *Results) string {
	sections := []section{
		{"----- Top 5 Gainers -----", strings.Repeat("-", 25), moverLines(r.Gainers)},
		{"----- Top 5 Losers -----", strings.Repeat("-", 25), moverLines(r.Losers)},
		{"----- Stocks 30% Below 52-Week High -----", strings.Repeat("-", 41), extremeLines(r.BelowHigh, "52-Week High")},
		{"----- Stocks 20% Above 52-Week Low -----", strings.Repeat("-", 40), extremeLines(r.AboveLow, "52-Week Low")},
		{"----- Top 5 Stocks by 30-Day Return -----", strings.Repeat("-", 41), returnLines(r.Returns)},
	}

	var lines []string
	for _, s := range sections {
		lines = append(lines, s.header)
		lines = append(lines, s.lines...)
		lines = append(lines, s.separator+"\n")
	}
	return strings.Join(lines, "\n")
}

// FormatTelegram wraps the report for HTML parse mode.
func FormatTelegram(title, text string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s</b>\n\n", html.EscapeString(title)))
	b.WriteString("<pre>")
	b.WriteString(html.EscapeString(strings.TrimRight(text, "\n")))
	b.WriteString("</pre>")
	return b.String()
}

func moverLines(entries []model.GainerLoser) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = fmt.Sprintf("Symbol: %s, %% Change: %.2f%%", e.Symbol, e.PercentChange)
	}
	return out
}

func extremeLines(entries []model.ExtremeDeviation, label string) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = fmt.Sprintf("Symbol: %s, Current Price: %.2f, %s: %.2f", e.Symbol, e.CurrentPrice, label, e.ExtremePrice)
	}
	return out
}

func returnLines(entries []model.ReturnEntry) []string {
	if len(entries) > ReturnsShown {
		entries = entries[:ReturnsShown]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = fmt.Sprintf("Symbol: %s, 30-Day Return: %.2f%%", e.Symbol, e.ReturnPercent)
	}
	return out
}
