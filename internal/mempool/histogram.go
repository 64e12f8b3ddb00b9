package mempool

import (
	"math"
	"sort"

	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

// defaultHistogramBinSize is the literal constant the histogram engine
// always compacts with (§9: resolved — not a per-chain or server config
// knob; CompactHistogram itself stays parametric for testability).
const defaultHistogramBinSize = 100_000

// buildRawHistogram implements C7 step 2: bucket every committed tx's
// fee-rate at 0.1 sat/byte resolution, floored so a tx lands in the
// interval containing its rate. Callers hold c.mu (read or write).
func buildRawHistogram(c *Core) map[float64]int64 {
	raw := make(map[float64]int64, len(c.txs))
	for _, tx := range c.txs {
		if tx.Size <= 0 {
			continue
		}
		rate := math.Floor(10*float64(tx.Fee)/float64(tx.Size)) / 10
		raw[rate] += int64(tx.Size)
	}
	return raw
}

// CompactHistogram implements the §4.7.1 compaction algorithm: walk
// fee-rate buckets in descending order, accumulating size into a
// geometrically growing bin until it overflows, emitting one compact
// entry per overflow. The trailing residue below threshold is dropped.
func CompactHistogram(raw map[float64]int64, binSize int64) []mempooltypes.HistogramEntry {
	if binSize <= 0 {
		binSize = defaultHistogramBinSize
	}

	rates := make([]float64, 0, len(raw))
	for rate := range raw {
		rates = append(rates, rate)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(rates)))

	var compact []mempooltypes.HistogramEntry
	var cumSize int64
	var prevRate float64
	havePrev := false
	bin := float64(binSize)

	for _, rate := range rates {
		size := raw[rate]

		if float64(size) > 2*bin && havePrev && cumSize > 0 {
			compact = append(compact, mempooltypes.HistogramEntry{FeeRate: prevRate, Size: cumSize})
			cumSize = 0
			bin *= 1.1
		}

		cumSize += size

		if float64(cumSize) > bin {
			compact = append(compact, mempooltypes.HistogramEntry{FeeRate: rate, Size: cumSize})
			cumSize = 0
			bin *= 1.1
		}

		prevRate = rate
		havePrev = true
	}

	return compact
}

// refreshHistogram implements the rest of C7: build the raw histogram
// over the committed mempool state, compact it, and publish the result
// atomically to the cached field consumed by the query surface. The
// mempool lock is held across the whole build+compact, matching the
// source's single-lock discipline (§5).
func (c *Core) refreshHistogram() {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw := buildRawHistogram(c)
	c.histogram = CompactHistogram(raw, defaultHistogramBinSize)
}
