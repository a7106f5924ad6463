package align

import "sports-edge-lab/internal/domain"

// mirrorEpsilon bounds how close home+away implied prices must sum to 1.0
// before the away book is treated as a mirrored duplicate. A healthy pair of
// independent books carries overround, so the sum sits noticeably above 1.
const mirrorEpsilon = 0.005

// minMirrorSamples is how many two-sided quotes must agree before a game is
// flagged. A single coincidental sum is not a regression signal.
const minMirrorSamples = 3

// MirroredBook reports whether the away side of the quote stream is a
// mirrored duplicate of the home side (home_mid + away_mid ≈ 1.0 on every
// two-sided quote). Quotes without both sides are skipped.
func MirroredBook(quotes []*domain.MarketQuotePoint) bool {
	sampled := 0
	for _, q := range quotes {
		homeMid := mid(q.Bid, q.Ask)
		awayMid := mid(q.AwayBid, q.AwayAsk)
		if homeMid == 0 || awayMid == 0 {
			continue
		}
		sum := homeMid + awayMid
		if sum < 1-mirrorEpsilon || sum > 1+mirrorEpsilon {
			return false
		}
		sampled++
	}
	return sampled >= minMirrorSamples
}

func mid(bid, ask float64) float64 {
	if bid <= 0 || ask <= 0 {
		return 0
	}
	return (bid + ask) / 2
}
