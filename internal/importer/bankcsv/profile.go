package bankcsv

import "strings"

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one amount column, signed unless a type column is present.
	amountSingle amountMode = iota
	// amountSplit means separate withdrawal and deposit columns (e.g. "출금액"/"입금액").
	amountSplit
)

// column lists the header names a column may appear under.
type column []string

func (c column) index(cols colIndex) (int, bool) {
	for _, name := range c {
		if i, ok := cols[normalizeHeader(name)]; ok {
			return i, true
		}
	}

	return -1, false
}

// Profile describes the column layout of a supported CSV export.
// Adding a new format is just adding a new Profile to the profiles slice.
type Profile struct {
	Name       string
	Date       column
	Type       column // optional
	Category   column // optional
	Desc       column // optional, becomes the memo
	AmountMode amountMode
	Amount     column // used when AmountMode == amountSingle
	Debit      column // used when AmountMode == amountSplit
	Credit     column // used when AmountMode == amountSplit
	NeedDesc   bool
}

// required returns the columns that must be present for this profile to match.
func (p Profile) required() []column {
	cols := []column{p.Date}

	if p.NeedDesc {
		cols = append(cols, p.Desc)
	}

	if p.Type != nil {
		cols = append(cols, p.Type)
	}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.Amount)
	case amountSplit:
		cols = append(cols, p.Debit, p.Credit)
	}

	return cols
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// profiles is the ordered list of formats to try during auto-detection.
// More specific profiles should come first to avoid false matches.
var profiles = []Profile{
	{
		Name:       "peraccount",
		Date:       column{"date"},
		Type:       column{"type"},
		Category:   column{"category"},
		Desc:       column{"memo"},
		AmountMode: amountSingle,
		Amount:     column{"amount"},
	},
	{
		Name:       "korean bank",
		Date:       column{"거래일자", "거래일시", "거래일"},
		Category:   column{"분류", "카테고리"},
		Desc:       column{"적요", "내용", "거래내용", "기재내용"},
		AmountMode: amountSplit,
		Debit:      column{"출금액", "출금", "찾으신금액"},
		Credit:     column{"입금액", "입금", "맡기신금액"},
		NeedDesc:   true,
	},
	{
		Name:       "split",
		Date:       column{"date", "data"},
		Category:   column{"category"},
		Desc:       column{"description", "descrição"},
		AmountMode: amountSplit,
		Debit:      column{"debit", "débito"},
		Credit:     column{"credit", "crédito"},
		NeedDesc:   true,
	},
	{
		Name:       "signed",
		Date:       column{"date", "data mov.", "data"},
		Category:   column{"category"},
		Desc:       column{"description", "descrição"},
		AmountMode: amountSingle,
		Amount:     column{"amount", "montante", "movimento"},
		NeedDesc:   true,
	},
}
