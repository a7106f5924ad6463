// Package sim replays an aligned snapshot sequence through the position
// state machine for one parameter combination and accounts the resulting
// trades.
package sim

import (
	"errors"
	"fmt"

	"sports-edge-lab/internal/diag"
	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/idhash"
)

// ErrInvalidPrice marks a defensive close on missing or degenerate price
// data. It is consumed inside the simulator (the trade gets zero P&L and a
// counted invalid close), never returned to callers.
var ErrInvalidPrice = errors.New("invalid price data")

// Config holds the execution parameters shared by every combination.
type Config struct {
	// Contracts is the fixed position size in contracts.
	Contracts float64
	// ForcedCloseSlippage is the per-contract penalty, in dollars, applied
	// to end-of-game forced closes.
	ForcedCloseSlippage float64
}

// DefaultConfig returns the execution parameters used in production runs.
func DefaultConfig() Config {
	return Config{
		Contracts:           100,
		ForcedCloseSlippage: 0.02,
	}
}

// Simulator runs the per-game state machine for one parameter combination.
// It owns no mutable state between Run calls and is safe to reuse; the
// recorder is the only shared collaborator and is internally synchronized.
type Simulator struct {
	combo    domain.ParameterCombination
	cfg      Config
	recorder *diag.Recorder
}

// New creates a simulator for one combination. A nil recorder disables
// diagnostics.
func New(combo domain.ParameterCombination, cfg Config, recorder *diag.Recorder) *Simulator {
	if recorder == nil {
		recorder = diag.NewRecorder()
	}
	return &Simulator{combo: combo, cfg: cfg, recorder: recorder}
}

// Run consumes the snapshot sequence in order and returns the game's
// result. The sequence is read-only; identical inputs always produce an
// identical trade sequence.
//
// Transitions:
//   - flat → long when model_prob − ask ≥ entry threshold
//   - flat → short when bid − model_prob ≥ entry threshold
//   - open → closed (natural) when the side divergence ≤ exit threshold
//   - open → closed (forced) at the final snapshot, slippage applied
//   - open → closed (invalid) on missing/degenerate close price, P&L zero
func (s *Simulator) Run(gameID string, snaps []*domain.Snapshot) (*domain.GameResult, error) {
	if len(snaps) == 0 {
		return Aggregate(gameID, nil), nil
	}

	var trades []*domain.Trade
	var pos *domain.Position
	lastValidMid := 0.0
	final := len(snaps) - 1

	for i, snap := range snaps {
		if snap.PriceValid {
			if m := snap.Mid(); m > 0 {
				lastValidMid = m
			}
		}

		if pos == nil {
			// No entries at the final snapshot: the position would be
			// force-closed in the same instant.
			if i == final || !snap.PriceValid {
				continue
			}
			pos = s.tryOpen(gameID, snap)
			continue
		}

		// Natural close on divergence decay.
		if i < final {
			if snap.PriceValid && s.shouldClose(pos, snap) {
				trades = append(trades, s.close(pos, snap, exitPriceFor(pos.Side, snap), domain.CloseNatural))
				pos = nil
			}
			continue
		}

		// Final snapshot: forced close regardless of divergence.
		trades = append(trades, s.forceClose(pos, snap, lastValidMid))
		pos = nil
	}

	return Aggregate(gameID, trades), nil
}

// tryOpen evaluates entry conditions on a price-valid snapshot and returns
// the opened position, or nil.
func (s *Simulator) tryOpen(gameID string, snap *domain.Snapshot) *domain.Position {
	longDiv := snap.ProbHome - snap.Ask
	shortDiv := snap.Bid - snap.ProbHome

	goLong := longDiv >= s.combo.EntryThreshold
	goShort := shortDiv >= s.combo.EntryThreshold

	if goLong && goShort {
		// Mutually exclusive by construction (ask ≥ bid); firing together
		// means the book is crossed beyond twice the threshold.
		s.recorder.Record(diag.CategoryInconsistency, gameID,
			fmt.Sprintf("seq=%d long=%.4f short=%.4f", snap.Sequence, longDiv, shortDiv))
		return nil
	}

	switch {
	case goLong:
		return s.open(gameID, domain.SideLong, snap, snap.Ask)
	case goShort:
		return s.open(gameID, domain.SideShort, snap, snap.Bid)
	}
	return nil
}

func (s *Simulator) open(gameID string, side domain.Side, snap *domain.Snapshot, price float64) *domain.Position {
	return &domain.Position{
		GameID:     gameID,
		Side:       side,
		EntrySeq:   snap.Sequence,
		EntryTime:  snap.TimestampMs,
		EntryPrice: price,
		Contracts:  s.cfg.Contracts,
		Status:     domain.PositionOpen,
	}
}

// shouldClose reports whether the side divergence has decayed to the exit
// threshold. Longs close against the bid, shorts against the ask.
func (s *Simulator) shouldClose(pos *domain.Position, snap *domain.Snapshot) bool {
	var div float64
	if pos.Side == domain.SideLong {
		div = snap.ProbHome - snap.Bid
	} else {
		div = snap.Ask - snap.ProbHome
	}
	return div <= s.combo.ExitThreshold
}

// forceClose closes the open position at the game's final snapshot against
// the last valid mid-price. Missing or degenerate price data downgrades the
// close to invalid with exactly zero P&L.
func (s *Simulator) forceClose(pos *domain.Position, snap *domain.Snapshot, lastValidMid float64) *domain.Trade {
	if !domain.PriceTradable(pos.EntryPrice) || !domain.PriceTradable(lastValidMid) {
		err := fmt.Errorf("%w: entry=%.4f mid=%.4f", ErrInvalidPrice, pos.EntryPrice, lastValidMid)
		s.recorder.Record(diag.CategoryInvalidPrice, pos.GameID, err.Error())
		return s.close(pos, snap, lastValidMid, domain.CloseInvalid)
	}

	s.recorder.Record(diag.CategoryEndOfGame, pos.GameID,
		fmt.Sprintf("side=%s mid=%.4f", pos.Side, lastValidMid))
	return s.close(pos, snap, lastValidMid, domain.CloseForced)
}

// close finalizes the position into an immutable trade.
func (s *Simulator) close(pos *domain.Position, snap *domain.Snapshot, exitPrice float64, reason domain.CloseReason) *domain.Trade {
	pos.Status = domain.PositionClosed
	pos.ExitSeq = snap.Sequence
	pos.ExitTime = snap.TimestampMs
	pos.ExitPrice = exitPrice
	pos.CloseReason = reason

	return &domain.Trade{
		TradeID:     idhash.ComputeTradeID(pos.GameID, s.combo.Key(), pos.EntrySeq),
		GameID:      pos.GameID,
		Side:        pos.Side,
		Contracts:   pos.Contracts,
		EntrySeq:    pos.EntrySeq,
		EntryTime:   pos.EntryTime,
		EntryPrice:  pos.EntryPrice,
		ExitSeq:     pos.ExitSeq,
		ExitTime:    pos.ExitTime,
		ExitPrice:   pos.ExitPrice,
		CloseReason: reason,
		PnLDollars:  s.tradePnL(pos, reason),
	}
}

func (s *Simulator) tradePnL(pos *domain.Position, reason domain.CloseReason) float64 {
	return TradePnL(pos.Side, pos.EntryPrice, pos.ExitPrice, pos.Contracts, reason, s.cfg.ForcedCloseSlippage)
}

// exitPriceFor returns the book side an open position closes against.
func exitPriceFor(side domain.Side, snap *domain.Snapshot) float64 {
	if side == domain.SideLong {
		return snap.Bid
	}
	return snap.Ask
}
