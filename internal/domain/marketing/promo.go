package marketing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/swas/backend/internal/domain/shared"
)

// FormatPromoID builds PROMO-<nnn>
func FormatPromoID(seq int64) string {
	return fmt.Sprintf("PROMO-%03d", seq)
}

// Promo is a discount campaign running on specific days
type Promo struct {
	shared.BranchAggregateRoot
	PromoID     string
	Title       string
	Description string
	Dates       []time.Time
	Duration    string
}

// PromoDetails are the editable fields of a promo
type PromoDetails struct {
	Title       string
	Description string
	Dates       []time.Time
}

// NewPromo creates a promo
func NewPromo(branchID, promoID string, d PromoDetails) (*Promo, error) {
	p := &Promo{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		PromoID:             promoID,
	}
	if err := p.Update(d); err != nil {
		return nil, err
	}
	p.Version = 1
	return p, nil
}

// Update replaces the promo details and recomputes the duration label
func (p *Promo) Update(d PromoDetails) error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return shared.NewDomainError("INVALID_PROMO", "Promo title is required")
	}
	if len(d.Dates) == 0 {
		return shared.NewDomainError("INVALID_PROMO", "A promo needs at least one date")
	}
	p.Title = title
	p.Description = strings.TrimSpace(d.Description)
	p.Dates = normalizeDates(d.Dates)
	p.Duration = DurationLabel(p.Dates)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// RunsOn reports whether day is one of the promo dates
func (p *Promo) RunsOn(day time.Time) bool {
	y, m, d := day.Date()
	for _, pd := range p.Dates {
		py, pm, pdd := pd.Date()
		if y == py && m == pm && d == pdd {
			return true
		}
	}
	return false
}

func normalizeDates(dates []time.Time) []time.Time {
	seen := make(map[string]bool, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		y, m, dd := d.Date()
		day := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
		k := day.Format("2006-01-02")
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// DurationLabel renders sorted dates as "Oct 01, 2026", "Oct 01 - Oct 05, 2026"
// or "Dec 30, 2026 - Jan 02, 2027"
func DurationLabel(dates []time.Time) string {
	if len(dates) == 0 {
		return ""
	}
	first, last := dates[0], dates[len(dates)-1]
	if first.Equal(last) {
		return first.Format("Jan 02, 2006")
	}
	if first.Year() == last.Year() {
		return first.Format("Jan 02") + " - " + last.Format("Jan 02, 2006")
	}
	return first.Format("Jan 02, 2006") + " - " + last.Format("Jan 02, 2006")
}
