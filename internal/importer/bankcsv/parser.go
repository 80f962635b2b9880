// Package bankcsv reads transaction CSV files exported by Korean banks, by
// Portuguese-style statement tools and by peraccount itself, and turns them
// into ledger drafts.
package bankcsv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	enc "github.com/MrJamesThe3rd/peraccount/internal/encoding"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
)

// DefaultCategory is used when the file has no category column or the cell is blank.
const DefaultCategory = "기타"

var delimiters = []rune{',', ';', '\t'}

var dateLayouts = []string{
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
	"20060102",
	"02-01-2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"2006/01/02 15:04:05",
	time.RFC3339,
}

// Result is what a parsed file produced.
type Result struct {
	Drafts  []ledger.Draft
	Format  string
	Charset enc.Charset
	Skipped int
}

// Parser auto-detects the layout of a CSV export by matching its header row
// against known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) (*Result, error) {
	r, err := sniff(r)
	if err != nil {
		return nil, err
	}

	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	for _, delim := range delimiters {
		rows, err := readRows(data, delim)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		res, err := parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
		if err != nil {
			return nil, err
		}

		res.Charset = charset

		return res, nil
	}

	return nil, apperr.Validation("file", "no supported column layout found")
}

func readRows(data []byte, delim rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rows, nil
}

// colIndex maps normalized column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := normalizeHeader(cell)
			if _, dup := cols[name]; name != "" && !dup {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, c := range p.required() {
		if _, ok := c.index(cols); !ok {
			return false
		}
	}

	return true
}

// layout holds the resolved column positions of a matched profile.
type layout struct {
	profile  *Profile
	date     int
	typ      int
	category int
	desc     int
	amount   int
	debit    int
	credit   int
}

func resolve(p *Profile, cols colIndex) layout {
	l := layout{profile: p}

	l.date, _ = p.Date.index(cols)
	l.typ, _ = p.Type.index(cols)
	l.category, _ = p.Category.index(cols)
	l.desc, _ = p.Desc.index(cols)
	l.amount, _ = p.Amount.index(cols)
	l.debit, _ = p.Debit.index(cols)
	l.credit, _ = p.Credit.index(cols)

	return l
}

// parseRows extracts drafts from data rows using the matched profile.
// headerLine is the 1-based line of the header, used in error messages.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerLine int) (*Result, error) {
	l := resolve(p, cols)
	res := &Result{Format: p.Name}

	for i, row := range rows {
		rowNum := headerLine + i + 1

		date, ok := parseDate(cellValue(row, l.date))
		if !ok {
			if !blank(row) {
				res.Skipped++
			}

			continue
		}

		desc := cellValue(row, l.desc)
		if p.NeedDesc && desc == "" {
			return nil, fmt.Errorf("row %d: %w", rowNum, apperr.Validation("description", "must not be empty"))
		}

		amount, typ, err := l.amountOf(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if amount.IsZero() {
			res.Skipped++
			continue
		}

		category := cellValue(row, l.category)
		if category == "" {
			category = DefaultCategory
		}

		res.Drafts = append(res.Drafts, ledger.Draft{
			Type:     typ,
			Amount:   amount,
			Category: category,
			Date:     date,
			Memo:     desc,
		})
	}

	return res, nil
}

// parseDate returns false for empty cells or unparseable values (footer rows, etc).
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ledger.Day(t), true
		}
	}

	return time.Time{}, false
}

// amountOf extracts the amount and transaction type from a row based on the profile's amount mode.
// A zero amount means the row carries no movement.
func (l layout) amountOf(row []string) (decimal.Decimal, ledger.Type, error) {
	switch l.profile.AmountMode {
	case amountSplit:
		return splitAmount(cellValue(row, l.debit), cellValue(row, l.credit))
	default:
		return l.singleAmount(row)
	}
}

func (l layout) singleAmount(row []string) (decimal.Decimal, ledger.Type, error) {
	s := cellValue(row, l.amount)
	if s == "" {
		return decimal.Zero, "", nil
	}

	amount, err := parseAmount(s)
	if err != nil {
		return decimal.Zero, "", apperr.Validation("amount", fmt.Sprintf("%q is not a number", s))
	}

	if l.profile.Type != nil {
		typ, err := parseType(cellValue(row, l.typ))
		if err != nil {
			return decimal.Zero, "", err
		}

		return amount.Abs(), typ, nil
	}

	if amount.IsNegative() {
		return amount.Neg(), ledger.TypeExpense, nil
	}

	return amount, ledger.TypeIncome, nil
}

// splitAmount handles separate withdrawal/deposit columns.
func splitAmount(debit, credit string) (decimal.Decimal, ledger.Type, error) {
	for _, side := range []struct {
		cell string
		typ  ledger.Type
	}{
		{debit, ledger.TypeExpense},
		{credit, ledger.TypeIncome},
	} {
		if side.cell == "" {
			continue
		}

		amount, err := parseAmount(side.cell)
		if err != nil {
			return decimal.Zero, "", apperr.Validation("amount", fmt.Sprintf("%q is not a number", side.cell))
		}

		if !amount.IsZero() {
			return amount.Abs(), side.typ, nil
		}
	}

	return decimal.Zero, "", nil
}

func parseType(s string) (ledger.Type, error) {
	switch strings.ToLower(s) {
	case "income", "수입", "입금":
		return ledger.TypeIncome, nil
	case "expense", "지출", "출금":
		return ledger.TypeExpense, nil
	}

	return "", apperr.Validation("type", fmt.Sprintf("%q is not income or expense", s))
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
