package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Weekly   Period = "weekly"
	Biweekly Period = "biweekly"
	Monthly  Period = "monthly"
	Annual   Period = "annual"
)

const (
	Income  EntryKind = "income"
	Expense EntryKind = "expense"
)

type (
	// Period is the cadence a recurring budget is recorded on.
	Period string

	// EntryKind tells incomes and expenses apart in the ledger.
	EntryKind string

	Date struct {
		time.Time
	}

	// Amount is a monetary value tagged with its currency code. Codes
	// are short uppercase identifiers; codes outside the known set are
	// still valid data.
	Amount struct {
		Value    float64
		Currency string
	}

	// CurrencyRate states that 1 unit of Base equals Rate units of
	// Target.
	CurrencyRate struct {
		ID     int64
		Base   string
		Target string
		Rate   float64
	}

	// RateTable is an ordered, read-only snapshot of rates scoped to a
	// single computation. Callers rebuild it per fetch; nothing in here
	// caches or does I/O.
	RateTable []CurrencyRate

	Entry struct {
		ID          int64
		Date        Date
		Description string
		Amount      Amount
		Kind        EntryKind
		Category    string
	}

	RecurringBudget struct {
		ID          int64
		Description string
		Amount      Amount
		Period      Period
		Kind        EntryKind
		Category    string
		StartDate   Date
		EndDate     Date
		PlaceName   string
		PlaceLat    float64
		PlaceLon    float64
	}
)

var (
	ErrInvalidValue     = errors.New("invalid value")
	ErrInvalidRate      = errors.New("invalid rate")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrSamePair         = errors.New("base and target are the same currency")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInvalidKind      = errors.New("invalid entry kind")
)

// NewDate builds a Date at midnight UTC, the canonical form for ledger
// dates.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Calendar accessors. Month flattens to int so templates and query
// params handle it without time.Month conversions.
func (d Date) Year() int  { return d.Time.Year() }
func (d Date) Month() int { return int(d.Time.Month()) }
func (d Date) Day() int   { return d.Time.Day() }

// Validate rejects the zero date. time.Date normalizes out-of-range
// components, so any non-zero Date already names a real calendar day.
func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// IsEmpty reports whether the date is unset (optional dates).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// ValidCurrencyCode reports whether code looks like a currency
// identifier: 2 to 6 uppercase ASCII letters. The set of known codes is
// wider than the formatter's symbol map on purpose.
func ValidCurrencyCode(code string) bool {
	if len(code) < 2 || len(code) > 6 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// NormalizeCurrencyCode uppercases and trims user input before it
// reaches validation.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (a Amount) Validate() error {
	if a.Value <= 0 {
		return ErrInvalidValue
	}
	if !ValidCurrencyCode(a.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// Validate rejects malformed rate rows before they reach storage. The
// resolver assumes every stored rate is positive.
func (r CurrencyRate) Validate() error {
	if !ValidCurrencyCode(r.Base) || !ValidCurrencyCode(r.Target) {
		return ErrInvalidCurrency
	}
	if r.Base == r.Target {
		return ErrSamePair
	}
	if r.Rate <= 0 {
		return ErrInvalidRate
	}
	return nil
}

func (k EntryKind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (e Entry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (b RecurringBudget) Validate() error {
	if err := b.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}

	if !b.EndDate.IsZero() {
		if err := b.EndDate.Validate(); err != nil {
			return errors.New("invalid end date: " + err.Error())
		}
		if !b.EndDate.After(b.StartDate.Time) && !b.EndDate.Equal(b.StartDate.Time) {
			return errors.New("end date must be after start date")
		}
	}

	switch b.Period {
	case Weekly, Biweekly, Monthly, Annual:
	default:
		return ErrInvalidPeriod
	}

	if err := b.Kind.Validate(); err != nil {
		return err
	}

	if len(strings.TrimSpace(b.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(b.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}

	if err := b.Amount.Validate(); err != nil {
		return err
	}

	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}

	return nil
}
