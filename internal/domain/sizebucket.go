package domain

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// bucket bounds use K/M suffixes in the disclosure feed ("1K–15K", "1M–5M").
var bucketSuffixes = []struct {
	suffix     string
	multiplier decimal.Decimal
}{
	{"M", decimal.NewFromInt(1_000_000)},
	{"K", decimal.NewFromInt(1_000)},
}

// SizeBucket disclosed dollar-size range of a trade. Disclosures never carry
// exact amounts, only a bucket.
type SizeBucket struct {
	// Lower bound of the bucket in dollars.
	Lower decimal.Decimal
	// Upper bound of the bucket in dollars.
	Upper decimal.Decimal
}

// ParseSizeBucket parses a raw bucket label such as "1K–15K" or "500K–1M".
// Both the en dash used by the feed and a plain hyphen are accepted.
// The open-ended "< 1K" bucket parses to [0, 1000).
func ParseSizeBucket(s string) (SizeBucket, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return SizeBucket{}, errors.New("size bucket is empty")
	}

	if strings.HasPrefix(raw, "<") {
		upper, err := parseBucketBound(strings.TrimSpace(strings.TrimPrefix(raw, "<")))
		if err != nil {
			return SizeBucket{}, errors.Wrapf(err, "parse size bucket %q", s)
		}
		return SizeBucket{Lower: decimal.Zero, Upper: upper}, nil
	}

	sep := "–"
	if !strings.Contains(raw, sep) {
		sep = "-"
	}
	parts := strings.SplitN(raw, sep, 2)
	if len(parts) != 2 {
		return SizeBucket{}, errors.Errorf("size bucket %q has no range separator", s)
	}

	lower, err := parseBucketBound(strings.TrimSpace(parts[0]))
	if err != nil {
		return SizeBucket{}, errors.Wrapf(err, "parse size bucket %q", s)
	}
	upper, err := parseBucketBound(strings.TrimSpace(parts[1]))
	if err != nil {
		return SizeBucket{}, errors.Wrapf(err, "parse size bucket %q", s)
	}
	if upper.LessThan(lower) {
		return SizeBucket{}, errors.Errorf("size bucket %q upper bound below lower", s)
	}

	return SizeBucket{Lower: lower, Upper: upper}, nil
}

func parseBucketBound(s string) (decimal.Decimal, error) {
	for _, bs := range bucketSuffixes {
		if strings.HasSuffix(s, bs.suffix) {
			base, err := decimal.NewFromString(strings.TrimSuffix(s, bs.suffix))
			if err != nil {
				return decimal.Zero, err
			}
			return base.Mul(bs.multiplier), nil
		}
	}
	return decimal.NewFromString(s)
}

// Midpoint returns the assumed position size: the average of the bucket
// bounds. This is an estimate, the actual amount is never disclosed.
func (b SizeBucket) Midpoint() decimal.Decimal {
	return b.Lower.Add(b.Upper).Div(decimal.NewFromInt(2))
}

// BelowThousand reports whether the bucket is the open-ended "< 1K" bucket.
// Such trades are usually noise and filtered out before backtesting.
func (b SizeBucket) BelowThousand() bool {
	return b.Lower.IsZero() && b.Upper.LessThanOrEqual(decimal.NewFromInt(1_000))
}

// String returns the bucket in the feed's label format.
func (b SizeBucket) String() string {
	if b.BelowThousand() {
		return "< 1K"
	}
	return fmt.Sprintf("%s–%s", formatBucketBound(b.Lower), formatBucketBound(b.Upper))
}

func formatBucketBound(v decimal.Decimal) string {
	for _, bs := range bucketSuffixes {
		if v.GreaterThanOrEqual(bs.multiplier) && v.Mod(bs.multiplier).IsZero() {
			return v.Div(bs.multiplier).String() + bs.suffix
		}
	}
	return v.String()
}
