package compoff

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/workflow"
	"github.com/shopspring/decimal"
)

type DetailType string

const (
	DetailEarned  DetailType = "earned"
	DetailUsed    DetailType = "used"
	DetailExpired DetailType = "expired"
)

func (t DetailType) Valid() bool {
	switch t {
	case DetailEarned, DetailUsed, DetailExpired:
		return true
	}
	return false
}

// MonthLayout is the format of Detail.EarnedMonth.
const MonthLayout = "2006-01"

// Tracking is the rolling comp-off balance of one employee.
// AvailableDays always equals EarnedDays - UsedDays - ExpiredDays and is never
// negative.
type Tracking struct {
	ID            string
	EmployeeID    string
	EarnedDays    decimal.Decimal
	UsedDays      decimal.Decimal
	ExpiredDays   decimal.Decimal
	AvailableDays decimal.Decimal
	EarnedDate    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Recompute derives AvailableDays from the other three totals.
func (t *Tracking) Recompute() {
	t.AvailableDays = t.EarnedDays.Sub(t.UsedDays).Sub(t.ExpiredDays)
}

// Consistent reports whether the conservation invariant holds.
func (t Tracking) Consistent() bool {
	expected := t.EarnedDays.Sub(t.UsedDays).Sub(t.ExpiredDays)
	return t.AvailableDays.Equal(expected) && !t.AvailableDays.IsNegative()
}

// Detail is an immutable ledger line. Days is always positive; Type gives the
// sign. EarnedMonth is the bucket the line belongs to.
type Detail struct {
	ID          string
	EmployeeID  string
	TrackingID  string
	Type        DetailType
	Days        decimal.Decimal
	Date        time.Time
	EarnedMonth string
	Note        *string
	CreatedAt   time.Time
}

// LedgerEntry is the result of one ledger mutation: the balance after it and the
// detail lines it appended.
type LedgerEntry struct {
	Tracking Tracking
	Details  []Detail
}

// Bucket is the per earned-month view of an employee's ledger.
type Bucket struct {
	Month     string
	Earned    decimal.Decimal
	Used      decimal.Decimal
	Expired   decimal.Decimal
	Remaining decimal.Decimal
}

// BuildBuckets groups details by earned month, oldest month first.
func BuildBuckets(details []Detail) []Bucket {
	byMonth := make(map[string]*Bucket)
	for _, d := range details {
		b, ok := byMonth[d.EarnedMonth]
		if !ok {
			b = &Bucket{Month: d.EarnedMonth}
			byMonth[d.EarnedMonth] = b
		}
		switch d.Type {
		case DetailEarned:
			b.Earned = b.Earned.Add(d.Days)
		case DetailUsed:
			b.Used = b.Used.Add(d.Days)
		case DetailExpired:
			b.Expired = b.Expired.Add(d.Days)
		}
	}

	buckets := make([]Bucket, 0, len(byMonth))
	for _, b := range byMonth {
		b.Remaining = b.Earned.Sub(b.Used).Sub(b.Expired)
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Month < buckets[j].Month
	})
	return buckets
}

// ExpiresAt returns the instant from which the bucket for month may be expired.
func ExpiresAt(month string, expiryMonths int) (time.Time, error) {
	start, err := time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return start.AddDate(0, expiryMonths, 0), nil
}

// Request is an employee's claim for comp-off earned by working outside the
// normal schedule. Approval credits the ledger.
type Request struct {
	ID         string
	EmployeeID string
	ManagerID  *string
	WorkedDate time.Time
	Days       decimal.Decimal
	Reason     string
	Status     workflow.Status
	ReviewedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
