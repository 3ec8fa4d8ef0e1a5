package analytics

import (
	"sort"

	"github.com/prasetya/spendsight/internal/domain"
)

const (
	topItemsCap   = 20
	topAmountsCap = 10
)

// RankByVendor groups records by vendor name and sorts descending by
// total. Empty vendor names group under "Unknown". Ties keep the order
// in which vendors were first encountered.
func RankByVendor(records []domain.LedgerRecord) []domain.RankingEntry {
	totals := make(map[string]*domain.RankingEntry)
	var order []string

	for _, rec := range records {
		vendor := rec.Vendor
		if vendor == "" {
			vendor = "Unknown"
		}
		e, ok := totals[vendor]
		if !ok {
			e = &domain.RankingEntry{Name: vendor}
			totals[vendor] = e
			order = append(order, vendor)
		}
		e.Total += rec.Amount
		e.Count++
	}

	return sortEntries(totals, order)
}

// RankByType groups records by transaction type. Records without a type
// group under "unknown".
func RankByType(records []domain.LedgerRecord) []domain.RankingEntry {
	totals := make(map[string]*domain.RankingEntry)
	var order []string

	for _, rec := range records {
		name := string(rec.Type)
		if name == "" {
			name = string(domain.TypeUnknown)
		}
		e, ok := totals[name]
		if !ok {
			e = &domain.RankingEntry{Name: name}
			totals[name] = e
			order = append(order, name)
		}
		e.Total += rec.Amount
		e.Count++
	}

	return sortEntries(totals, order)
}

func sortEntries(totals map[string]*domain.RankingEntry, order []string) []domain.RankingEntry {
	out := make([]domain.RankingEntry, 0, len(order))
	for _, name := range order {
		e := totals[name]
		if e.Count > 0 {
			e.Average = e.Total / float64(e.Count)
		}
		out = append(out, *e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}

// RankByItem accumulates line items across records by item name,
// tracking total spend, quantity (default 1 when absent), and the
// distinct vendors the item was bought from. Capped at the top 20.
func RankByItem(records []domain.LedgerRecord) []domain.ItemRankingEntry {
	type itemAcc struct {
		entry   domain.ItemRankingEntry
		vendors map[string]struct{}
	}
	totals := make(map[string]*itemAcc)
	var order []string

	for _, rec := range records {
		vendor := rec.Vendor
		if vendor == "" {
			vendor = "Unknown"
		}
		for _, item := range rec.Items {
			acc, ok := totals[item.Name]
			if !ok {
				acc = &itemAcc{
					entry:   domain.ItemRankingEntry{Name: item.Name},
					vendors: make(map[string]struct{}),
				}
				totals[item.Name] = acc
				order = append(order, item.Name)
			}
			qty := item.Quantity
			if qty == 0 {
				qty = 1
			}
			acc.entry.TotalSpent += item.TotalPrice
			acc.entry.TotalQuantity += qty
			if _, seen := acc.vendors[vendor]; !seen {
				acc.vendors[vendor] = struct{}{}
				acc.entry.Vendors = append(acc.entry.Vendors, vendor)
			}
		}
	}

	out := make([]domain.ItemRankingEntry, 0, len(order))
	for _, name := range order {
		out = append(out, totals[name].entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSpent > out[j].TotalSpent
	})
	if len(out) > topItemsCap {
		out = out[:topItemsCap]
	}
	return out
}

// TopByAmount returns the ten largest individual transactions and the
// single highest one. Ties keep ledger order.
func TopByAmount(records []domain.LedgerRecord) ([]domain.TransactionHighlight, *domain.TransactionHighlight) {
	highlights := make([]domain.TransactionHighlight, 0, len(records))
	for _, rec := range records {
		vendor := rec.Vendor
		if vendor == "" {
			vendor = "Unknown"
		}
		highlights = append(highlights, domain.TransactionHighlight{
			Vendor: vendor,
			Amount: rec.Amount,
			Date:   rec.Date,
		})
	}
	sort.SliceStable(highlights, func(i, j int) bool {
		return highlights[i].Amount > highlights[j].Amount
	})

	if len(highlights) == 0 {
		return highlights, nil
	}
	highest := highlights[0]
	if len(highlights) > topAmountsCap {
		highlights = highlights[:topAmountsCap]
	}
	return highlights, &highest
}
