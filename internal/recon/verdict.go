package recon

import "github.com/dialadrink/payrecon/internal/models"

// Reduce merges the signals of one poll round into a single round signal.
// Signals must be in source priority order. Any success wins and the
// first one carries its receipt; with no success, an explicit gateway
// failure decides the round; otherwise the round stays pending.
func Reduce(signals []models.Signal) models.Signal {
	for _, sig := range signals {
		if sig.Verdict == models.VerdictSuccess {
			return sig
		}
	}
	for _, sig := range signals {
		if sig.Verdict == models.VerdictFailure {
			return sig
		}
	}
	return models.Signal{Verdict: models.VerdictPending}
}
