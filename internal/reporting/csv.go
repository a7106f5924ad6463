package reporting

import (
	"fmt"
	"strings"

	"sports-edge-lab/internal/domain"
)

// RenderCSV renders the combination table as CSV string, one row per
// (combination, split). Undefined profit factors render as empty cells.
func RenderCSV(rows []CombinationRow) string {
	var sb strings.Builder

	sb.WriteString("entry_threshold,exit_threshold,split,game_count,net_profit_dollars,profit_per_game,trade_count,win_rate,profit_factor\n")

	for _, row := range rows {
		for _, split := range domain.Splits {
			c, ok := row.BySplit[split]
			if !ok {
				continue
			}
			pf := ""
			if c.ProfitFactor != nil {
				pf = fmt.Sprintf("%.6f", *c.ProfitFactor)
			}
			sb.WriteString(fmt.Sprintf("%.4f,%.4f,%s,%d,%.2f,%.6f,%d,%.6f,%s\n",
				row.EntryThreshold,
				row.ExitThreshold,
				split,
				c.GameCount,
				c.NetProfitDollars,
				c.ProfitPerGame,
				c.TradeCount,
				c.WinRate,
				pf,
			))
		}
	}

	return sb.String()
}
