package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(game_id|combination_key|entry_seq)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(gameID, combinationKey string, entrySeq int) string {
	data := fmt.Sprintf("%s|%s|%d", gameID, combinationKey, entrySeq)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
