package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"

	"sports-edge-lab/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Grid Search Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Season: %s\n\n", r.RunID, r.Season))

	// Split summary
	sb.WriteString("## Splits\n\n")
	sb.WriteString("| Split | Games |\n")
	sb.WriteString("|-------|-------|\n")
	for _, split := range domain.Splits {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", split, r.GameCounts[split]))
	}
	sb.WriteString("\n")

	// Selection
	sb.WriteString("## Selected Combination\n\n")
	if r.Best != nil {
		sb.WriteString(fmt.Sprintf("Entry %.4f / Exit %.4f\n\n", r.Best.EntryThreshold, r.Best.ExitThreshold))
		if r.BestTestResult != nil {
			c := r.BestTestResult
			sb.WriteString("| Test Games | Net $ | $/Game | Trades | WinRate | ProfitFactor |\n")
			sb.WriteString("|------------|-------|--------|--------|---------|-------------|\n")
			sb.WriteString(fmt.Sprintf("| %d | %.2f | %.4f | %d | %.4f | %s |\n\n",
				c.GameCount, c.NetProfitDollars, c.ProfitPerGame, c.TradeCount, c.WinRate,
				formatProfitFactor(c.ProfitFactor)))
		}
	} else {
		sb.WriteString(r.SelectionNote + "\n\n")
	}

	// Discrepancies
	sb.WriteString("## Train/Valid Discrepancies\n\n")
	if len(r.Discrepancies) > 0 {
		sb.WriteString("| Entry | Exit | Train $/Game | Valid $/Game | Ratio |\n")
		sb.WriteString("|-------|------|--------------|--------------|-------|\n")
		for _, d := range r.Discrepancies {
			sb.WriteString(fmt.Sprintf("| %.4f | %.4f | %.4f | %.4f | %s |\n",
				d.EntryThreshold, d.ExitThreshold,
				d.TrainProfitPerGame, d.ValidProfitPerGame, formatRatio(d.Ratio)))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No combination diverges beyond the configured ratio.\n\n")
	}

	// Combination table
	sb.WriteString("## Combinations\n\n")
	if len(r.Combinations) > 0 {
		sb.WriteString("| Entry | Exit | Train $/Game | Valid $/Game | Test $/Game | Train Trades | Valid Trades | Test Trades |\n")
		sb.WriteString("|-------|------|--------------|--------------|-------------|--------------|--------------|-------------|\n")
		for _, row := range r.Combinations {
			sb.WriteString(fmt.Sprintf("| %.4f | %.4f | %s | %s | %s | %s | %s | %s |\n",
				row.EntryThreshold, row.ExitThreshold,
				formatPPG(row.BySplit[domain.SplitTrain]),
				formatPPG(row.BySplit[domain.SplitValid]),
				formatPPG(row.BySplit[domain.SplitTest]),
				formatTrades(row.BySplit[domain.SplitTrain]),
				formatTrades(row.BySplit[domain.SplitValid]),
				formatTrades(row.BySplit[domain.SplitTest])))
		}
	} else {
		sb.WriteString("No combinations available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func formatPPG(c *CombinationSplitCell) string {
	if c == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", c.ProfitPerGame)
}

func formatTrades(c *CombinationSplitCell) string {
	if c == nil {
		return "-"
	}
	return fmt.Sprintf("%d", c.TradeCount)
}

func formatProfitFactor(pf *float64) string {
	if pf == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *pf)
}

func formatRatio(ratio float64) string {
	if math.IsInf(ratio, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", ratio)
}
