package core

import "calunga-catalog/internal/types"

// Trust score weights. A verified attestation is the baseline signal;
// SLSA levels and a known verifier identity raise the score on top.
const (
	trustPointsVerified     = 40
	trustPointsPerSLSALevel = 15
	trustPointsVerifierID   = 15
	trustScoreMax           = 100

	trustLevelLowMin    = 30
	trustLevelMediumMin = 55
	trustLevelHighMin   = 85
)

// ComputeTrustScore derives an aggregate 0-100 trust rating from a
// package's attestations. Unverified attestations contribute nothing:
// an unverifiable provenance claim is treated the same as no claim.
func ComputeTrustScore(attestations []types.Attestation) types.TrustScore {
	score := types.TrustScore{Level: types.TrustLevelNone}
	hasVerifier := false
	for _, attestation := range attestations {
		if !attestation.Verified {
			continue
		}
		score.Verified++
		if attestation.SLSALevel > score.MaxSLSALevel {
			score.MaxSLSALevel = attestation.SLSALevel
		}
		if attestation.VerifierID != "" {
			hasVerifier = true
		}
	}
	if score.Verified == 0 {
		return score
	}
	points := trustPointsVerified + score.MaxSLSALevel*trustPointsPerSLSALevel
	if hasVerifier {
		points += trustPointsVerifierID
	}
	if points > trustScoreMax {
		points = trustScoreMax
	}
	score.Score = points
	score.Level = trustLevel(points)
	return score
}

func trustLevel(points int) types.TrustLevel {
	switch {
	case points >= trustLevelHighMin:
		return types.TrustLevelHigh
	case points >= trustLevelMediumMin:
		return types.TrustLevelMedium
	case points >= trustLevelLowMin:
		return types.TrustLevelLow
	default:
		return types.TrustLevelNone
	}
}
