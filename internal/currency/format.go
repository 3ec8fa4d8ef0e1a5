package currency

import "fmt"

// FormatRupiah renders an amount for display. Downstream reports and
// dashboards depend on this exact shape:
//
//	>= 1,000,000  ->  "Rp 2.5M"
//	>= 1,000      ->  "Rp 136K"  (no decimal)
//	otherwise     ->  "Rp 500"
func FormatRupiah(amount float64) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("Rp %.1fM", amount/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("Rp %.0fK", amount/1_000)
	default:
		return fmt.Sprintf("Rp %.0f", amount)
	}
}
