package rangedl

import "fmt"

const (
	kb = 1024
	mb = kb * 1024
	gb = mb * 1024
	tb = gb * 1024
)

// FormatBytes renders n using binary units (1024-based), picking the
// largest divisor among TB/GB/MB/KB/B that n meets or exceeds. Integer
// quotients render without a decimal point; fractional quotients render
// with exactly one decimal digit. Zero always renders as "0 B". Negative
// inputs are reflected to positive before formatting — this mirrors a
// progress counter that should never display a sign.
func FormatBytes(n int64) string {
	if n < 0 {
		n = -n
	}
	if n == 0 {
		return "0 B"
	}

	var divisor int64
	var unit string
	switch {
	case n >= tb:
		divisor, unit = tb, "TB"
	case n >= gb:
		divisor, unit = gb, "GB"
	case n >= mb:
		divisor, unit = mb, "MB"
	case n >= kb:
		divisor, unit = kb, "KB"
	default:
		return fmt.Sprintf("%d B", n)
	}

	if n%divisor == 0 {
		return fmt.Sprintf("%d %s", n/divisor, unit)
	}
	return fmt.Sprintf("%.1f %s", float64(n)/float64(divisor), unit)
}
