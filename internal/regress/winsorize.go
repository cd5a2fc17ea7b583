package regress

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// WinsorizedTarget keeps the original value alongside the clipped one so the
// clipping is auditable after training.
type WinsorizedTarget struct {
	Original      float64
	Value         float64
	WasWinsorized bool
}

// Bounds are the IQR clipping limits applied to the target.
type Bounds struct {
	Lower float64
	Upper float64
}

// Winsorize clips target values outside [Q1 − 1.5·IQR, Q3 + 1.5·IQR] to the
// nearest bound. Closure days and anomalies keep their leverage on the fit
// bounded without being discarded.
func Winsorize(targets []float64) ([]WinsorizedTarget, Bounds, error) {
	if len(targets) == 0 {
		return nil, Bounds{}, fmt.Errorf("winsorize: empty target vector")
	}

	quartiles, err := stats.Quartile(targets)
	if err != nil {
		return nil, Bounds{}, fmt.Errorf("winsorize: %w", err)
	}
	iqr := quartiles.Q3 - quartiles.Q1
	bounds := Bounds{
		Lower: quartiles.Q1 - 1.5*iqr,
		Upper: quartiles.Q3 + 1.5*iqr,
	}

	out := make([]WinsorizedTarget, len(targets))
	for i, v := range targets {
		w := WinsorizedTarget{Original: v, Value: v}
		if v < bounds.Lower {
			w.Value = bounds.Lower
			w.WasWinsorized = true
		} else if v > bounds.Upper {
			w.Value = bounds.Upper
			w.WasWinsorized = true
		}
		out[i] = w
	}
	return out, bounds, nil
}
