package sim

import (
	"sports-edge-lab/internal/domain"
)

// TradePnL converts a closed position into signed dollars.
// Longs earn (exit − entry), shorts the negation, scaled by contract count.
// The slippage penalty applies only to forced closes; invalid closes are
// exactly zero, never NaN.
func TradePnL(side domain.Side, entry, exit, contracts float64, reason domain.CloseReason, slippage float64) float64 {
	if reason == domain.CloseInvalid {
		return 0
	}

	perContract := exit - entry
	if side == domain.SideShort {
		perContract = entry - exit
	}
	if reason == domain.CloseForced {
		perContract -= slippage
	}
	return perContract * contracts
}

// Aggregate folds a game's closed trades into its summary statistics.
// ProfitFactor is gross profit over |gross loss|; nil when there are zero
// losing trades (which also covers a game with zero winning trades).
func Aggregate(gameID string, trades []*domain.Trade) *domain.GameResult {
	result := &domain.GameResult{
		GameID: gameID,
		Trades: trades,
	}

	var grossProfit, grossLoss float64
	wins := 0
	for _, t := range trades {
		result.NetProfitDollars += t.PnLDollars
		switch {
		case t.PnLDollars > 0:
			grossProfit += t.PnLDollars
			wins++
		case t.PnLDollars < 0:
			grossLoss += t.PnLDollars
		}
		switch t.CloseReason {
		case domain.CloseInvalid:
			result.InvalidCloses++
		case domain.CloseForced:
			result.ForcedCloses++
		}
	}

	result.TradeCount = len(trades)
	if result.TradeCount > 0 {
		result.WinRate = float64(wins) / float64(result.TradeCount)
	}
	if grossLoss < 0 {
		pf := grossProfit / -grossLoss
		result.ProfitFactor = &pf
	}

	return result
}
