package mempool

import "testing"

func TestCompactHistogram_SingleTxScenario(t *testing.T) {
	// Scenario 1 from the testable-properties list: fee 1000, size 250
	// -> rate 1000/250 = 4.0 -> bucket key floor(40)/10 = 4.0.
	raw := map[float64]int64{4.0: 250}

	got := CompactHistogram(raw, 100)

	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1: %+v", len(got), got)
	}
	if got[0].FeeRate != 4.0 || got[0].Size != 250 {
		t.Errorf("got[0] = %+v, want {4.0 250}", got[0])
	}
}

func TestCompactHistogram_DescendingFeeRate(t *testing.T) {
	raw := map[float64]int64{
		1.0: 500_000,
		2.0: 300_000,
		5.0: 900_000,
		0.5: 100_000,
	}

	got := CompactHistogram(raw, 100_000)

	for i := 1; i < len(got); i++ {
		if got[i].FeeRate >= got[i-1].FeeRate {
			t.Fatalf("fee rates not strictly decreasing at %d: %+v", i, got)
		}
	}
}

func TestCompactHistogram_TrailingResidueDropped(t *testing.T) {
	// A single bucket far below bin_size never gets flushed.
	raw := map[float64]int64{3.0: 10}

	got := CompactHistogram(raw, 100_000)

	if len(got) != 0 {
		t.Errorf("expected trailing residue dropped, got %+v", got)
	}
}

func TestCompactHistogram_PreFlushBeforeGiantBucket(t *testing.T) {
	// A bucket whose size exceeds 2*bin_size forces the previous
	// accumulation to flush under its own rate before the giant bucket's
	// own post-flush emission.
	raw := map[float64]int64{
		10.0: 50,      // small accumulation first (higher rate, visited first)
		5.0:  500_000, // > 2*bin_size(100_000): triggers pre-flush of the 10.0 bucket
	}

	got := CompactHistogram(raw, 100_000)

	if len(got) < 2 {
		t.Fatalf("expected at least 2 entries (pre-flush + giant bucket), got %+v", got)
	}
	if got[0].FeeRate != 10.0 || got[0].Size != 50 {
		t.Errorf("pre-flush entry = %+v, want {10.0 50}", got[0])
	}
	if got[1].FeeRate != 5.0 || got[1].Size != 500_000 {
		t.Errorf("giant-bucket entry = %+v, want {5.0 500000}", got[1])
	}
}

func TestCompactHistogram_EmptyInput(t *testing.T) {
	got := CompactHistogram(map[float64]int64{}, 100_000)
	if len(got) != 0 {
		t.Errorf("expected no entries for empty histogram, got %+v", got)
	}
}

func TestCompactHistogram_DefaultBinSizeWhenZero(t *testing.T) {
	raw := map[float64]int64{1.0: 50}
	got := CompactHistogram(raw, 0)
	if len(got) != 0 {
		t.Errorf("expected 50 < default bin size to produce no entries, got %+v", got)
	}
}
