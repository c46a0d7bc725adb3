package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	numberSanitizer = regexp.MustCompile(`[^\d.\-]`)
	dmyPattern      = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)
)

// excelEpoch is the zero day of spreadsheet serial dates.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ToNumber coerces heterogeneous input into a float64. Currency symbols and
// whitespace are stripped; when both comma and period appear, the period is a
// thousands separator and the comma the decimal point (pt-BR convention), and a
// lone comma is the decimal point. Unparseable input yields 0 so a malformed
// cell never aborts a batch import.
func ToNumber(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return finiteOrZero(v)
	case float32:
		return finiteOrZero(float64(v))
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case decimal.Decimal:
		f, _ := v.Float64()
		return f
	case string:
		return parseNumberText(v)
	default:
		return parseNumberText(fmt.Sprint(value))
	}
}

func parseNumberText(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	text = strings.NewReplacer("R$", "", "r$", "", " ", "", "\u00a0", "").Replace(text)

	hasComma := strings.Contains(text, ",")
	hasDot := strings.Contains(text, ".")

	switch {
	case hasComma && hasDot:
		text = strings.ReplaceAll(text, ".", "")
		text = strings.ReplaceAll(text, ",", ".")
	case hasComma:
		text = strings.ReplaceAll(text, ",", ".")
	}

	text = numberSanitizer.ReplaceAllString(text, "")

	parsed, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return finiteOrZero(parsed)
}

// ToCurrency is ToNumber rounded half-up to two decimal places.
func ToCurrency(value any) float64 {
	rounded, _ := decimal.NewFromFloat(ToNumber(value)).Round(2).Float64()
	return rounded
}

// ToISODate converts native times, spreadsheet serial numbers (days since
// 1899-12-30), ISO-parseable strings and DD/MM/YYYY or DD-MM-YYYY text into a
// YYYY-MM-DD string. Two-digit years are assumed to be 2000s. The second
// return value reports whether any pattern matched.
func ToISODate(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case time.Time:
		if v.IsZero() {
			return "", false
		}
		return v.UTC().Format("2006-01-02"), true
	case float64:
		return serialToISODate(v)
	case float32:
		return serialToISODate(float64(v))
	case int:
		return serialToISODate(float64(v))
	case int64:
		return serialToISODate(float64(v))
	case string:
		return parseDateText(v)
	default:
		return parseDateText(fmt.Sprint(value))
	}
}

func serialToISODate(serial float64) (string, bool) {
	if serial <= 0 || serial > 500000 {
		return "", false
	}
	t := excelEpoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
	return t.UTC().Format("2006-01-02"), true
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDateText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC().Format("2006-01-02"), true
		}
	}

	if m := dmyPattern.FindStringSubmatch(text); m != nil {
		day, month, year := pad2(m[1]), pad2(m[2]), m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		candidate := year + "-" + month + "-" + day
		if t, err := time.Parse("2006-01-02", candidate); err == nil {
			return t.UTC().Format("2006-01-02"), true
		}
	}

	return "", false
}

// CleanText trims the textual form of value; an empty result means "absent".
func CleanText(value any) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func finiteOrZero(f float64) float64 {
	if f != f || f > 1e308 || f < -1e308 {
		return 0
	}
	return f
}
