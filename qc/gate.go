package qc

import (
	"fmt"
	"math"
	"strconv"
)

// Gate names a quality checkpoint.
type Gate string

const (
	// GateRaw checks the raw read count.
	GateRaw Gate = "raw"
	// GateTrim checks the fraction of reads lost by trimming.
	GateTrim Gate = "trim"
)

// Decision is the outcome of a gate. A failed decision is a breakpoint.
type Decision struct {
	Gate      Gate
	Pass      bool
	Value     float64
	Threshold float64
	// Reason completes "failed with a ..." when Pass is false.
	Reason string
	Metric Metric
}

// RawGate breaks when the raw read count is below minReads.
func RawGate(m Metric, minReads int) Decision {
	d := Decision{
		Gate:      GateRaw,
		Pass:      m.Reads >= minReads,
		Value:     float64(m.Reads),
		Threshold: float64(minReads),
		Metric:    m,
	}
	if !d.Pass {
		d.Reason = fmt.Sprintf("read count of only %d", m.Reads)
	}
	return d
}

// TrimGate breaks when the fraction of reads lost between raw and trimmed
// exceeds maxLoss.
func TrimGate(raw, trimmed Metric, maxLoss float64) Decision {
	loss := Loss(raw.Reads, trimmed.Reads)
	d := Decision{
		Gate:      GateTrim,
		Pass:      loss <= maxLoss,
		Value:     loss,
		Threshold: maxLoss,
		Metric:    trimmed,
	}
	if !d.Pass {
		d.Reason = "loss of " + FormatLoss(loss) + " compared to raw read counts"
	}
	return d
}

// Loss returns 1 - trimmed/raw. No raw reads counts as total loss.
func Loss(raw, trimmed int) float64 {
	if raw <= 0 {
		return 1
	}
	return 1 - float64(trimmed)/float64(raw)
}

// FormatLoss renders a loss fraction with at most four decimals.
func FormatLoss(loss float64) string {
	return strconv.FormatFloat(math.Round(loss*1e4)/1e4, 'f', -1, 64)
}
