package billing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

// Tender is the amount handed over with one payment method.
type Tender struct {
	Method Method          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// LineShare is a service-line's weight in a proportional split.
type LineShare struct {
	LineID uint
	Price  decimal.Decimal
}

type Allocation struct {
	LineID uint
	Method Method
	Amount decimal.Decimal
}

// Allocate splits every tender across lines in proportion to each line's
// price over the total. Shares are truncated to cents and the remainder of a
// tender goes to the last line (highest id) with a positive price, so the
// allocations of a tender always sum to exactly its amount. Tenders that
// share a method are merged. Zero shares are not emitted.
func Allocate(lines []LineShare, tenders []Tender) ([]Allocation, error) {
	if len(lines) == 0 {
		return nil, httperr.ErrValidation("no_service_lines", "Booking has no services to pay for.")
	}

	sorted := append([]LineShare(nil), lines...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LineID < sorted[j].LineID })

	total := decimal.Zero
	remainderIdx := len(sorted) - 1
	for i, l := range sorted {
		total = total.Add(l.Price)
		if l.Price.IsPositive() {
			remainderIdx = i
		}
	}

	var out []Allocation
	for _, t := range mergeTenders(tenders) {
		shares := make([]decimal.Decimal, len(sorted))
		allocated := decimal.Zero

		for i, l := range sorted {
			if i == remainderIdx || total.IsZero() {
				continue
			}
			shares[i] = t.Amount.Mul(l.Price).Div(total).Truncate(2)
			allocated = allocated.Add(shares[i])
		}
		shares[remainderIdx] = t.Amount.Sub(allocated)

		for i, l := range sorted {
			if !shares[i].IsPositive() {
				continue
			}
			out = append(out, Allocation{LineID: l.LineID, Method: t.Method, Amount: shares[i]})
		}
	}

	return out, nil
}

func mergeTenders(tenders []Tender) []Tender {
	var merged []Tender
	index := map[Method]int{}

	for _, t := range tenders {
		if i, ok := index[t.Method]; ok {
			merged[i].Amount = merged[i].Amount.Add(t.Amount)
			continue
		}
		index[t.Method] = len(merged)
		merged = append(merged, t)
	}
	return merged
}

func TenderTotal(tenders []Tender) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range tenders {
		sum = sum.Add(t.Amount)
	}
	return sum
}
