package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeRunID computes a deterministic grid-search run_id using SHA256.
// Formula: SHA256(season|entry_min:entry_max:entry_step|exit_min:exit_max:exit_step|game_ids...)
// Game IDs are joined in the order given; callers sort them first.
// Returns hex-encoded hash (64 characters).
func ComputeRunID(season string, entryMin, entryMax, entryStep, exitMin, exitMax, exitStep float64, gameIDs []string) string {
	data := fmt.Sprintf("%s|%g:%g:%g|%g:%g:%g|%s",
		season,
		entryMin, entryMax, entryStep,
		exitMin, exitMax, exitStep,
		strings.Join(gameIDs, ","),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
