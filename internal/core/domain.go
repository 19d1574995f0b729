package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// CategoryAll is the sentinel shown in category pickers. It means
	// "no category narrowing" and is never sent to the backend.
	CategoryAll Category = "All"

	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryEntertainment  Category = "Entertainment"
	CategoryHousing        Category = "Housing"
	CategoryUtilities      Category = "Utilities"
	CategoryHealthcare     Category = "Healthcare"
	CategoryEducation      Category = "Education"
	CategoryShopping       Category = "Shopping"
	CategoryTravel         Category = "Travel"
	CategoryOther          Category = "Other"
)

type (
	Category string

	// Date is a calendar day without a time component. It marshals as
	// YYYY-MM-DD, the format the backend uses everywhere.
	Date struct {
		time.Time
	}

	// Expense as returned by the backend. The client never mutates
	// expenses, it only creates, requests and displays them.
	Expense struct {
		ID          string   `json:"id"`
		Amount      float64  `json:"amount"`
		Category    Category `json:"category"`
		Date        Date     `json:"date"`
		Description string   `json:"description"`
	}

	// ExpenseForm is the payload for create and update requests.
	ExpenseForm struct {
		Amount      float64  `json:"amount"`
		Category    Category `json:"category"`
		Date        Date     `json:"date"`
		Description string   `json:"description"`
		UserID      string   `json:"user_id"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
)

// Categories returns the ten concrete expense categories, without the
// "All" sentinel.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransportation,
		CategoryEntertainment,
		CategoryHousing,
		CategoryUtilities,
		CategoryHealthcare,
		CategoryEducation,
		CategoryShopping,
		CategoryTravel,
		CategoryOther,
	}
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Narrows reports whether the category actually restricts a query.
// The empty value and the "All" sentinel both mean "no narrowing".
func (c Category) Narrows() bool {
	return c != "" && c != CategoryAll
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day.
func Today(now time.Time) Date {
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (f ExpenseForm) Validate() error {
	if f.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !f.Category.Valid() {
		return ErrInvalidCategory
	}
	if err := f.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(f.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(f.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
