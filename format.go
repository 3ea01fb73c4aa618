package xls

import (
	"strings"
	"unicode"
)

// FormatKind is the semantic class of a number format.
type FormatKind uint8

const (
	KindOther FormatKind = iota
	KindDate
	KindNumber
	KindCurrency
	KindPercentage
)

func (k FormatKind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindNumber:
		return "number"
	case KindCurrency:
		return "currency"
	case KindPercentage:
		return "percentage"
	}

	return "other"
}

// CellFormat is the resolved number format of one XF record.
type CellFormat struct {
	Kind FormatKind
	// Pattern is the Excel format string. It is empty for KindOther.
	Pattern string
	// Layout is a time.Format layout for KindDate formats.
	Layout string
	// FormatIndex is the format index the XF record refers to.
	FormatIndex uint16
	// Multiplier scales the stored number for display: 100 for the
	// built-in percentage formats, 1 otherwise.
	Multiplier float64
}

// userDefinedFormats is the first format index Excel assigns to custom formats.
const userDefinedFormats = 164

type builtinFormat struct {
	pattern string
	kind    FormatKind
	layout  string
}

// Excel's predefined number formats. 27-36 and 50-58 are the East Asian
// locale date formats; their pattern strings only exist in FORMAT records.
var builtinFormats = map[uint16]builtinFormat{
	0:  {"General", KindOther, ""},
	1:  {"0", KindNumber, ""},
	2:  {"0.00", KindNumber, ""},
	3:  {"#,##0", KindNumber, ""},
	4:  {"#,##0.00", KindNumber, ""},
	5:  {`"$"#,##0_);("$"#,##0)`, KindCurrency, ""},
	6:  {`"$"#,##0_);[Red]("$"#,##0)`, KindCurrency, ""},
	7:  {`"$"#,##0.00_);("$"#,##0.00)`, KindCurrency, ""},
	8:  {`"$"#,##0.00_);[Red]("$"#,##0.00)`, KindCurrency, ""},
	9:  {"0%", KindPercentage, ""},
	10: {"0.00%", KindPercentage, ""},
	11: {"0.00E+00", KindNumber, ""},
	12: {"# ?/?", KindNumber, ""},
	13: {"# ??/??", KindNumber, ""},
	14: {"m/d/yy", KindDate, "1/2/06"},
	15: {"d-mmm-yy", KindDate, "2-Jan-06"},
	16: {"d-mmm", KindDate, "2-Jan"},
	17: {"mmm-yy", KindDate, "Jan-06"},
	18: {"h:mm AM/PM", KindDate, "3:04 PM"},
	19: {"h:mm:ss AM/PM", KindDate, "3:04:05 PM"},
	20: {"h:mm", KindDate, "15:04"},
	21: {"h:mm:ss", KindDate, "15:04:05"},
	22: {"m/d/yy h:mm", KindDate, "1/2/06 15:04"},
	37: {"#,##0_);(#,##0)", KindNumber, ""},
	38: {"#,##0_);[Red](#,##0)", KindNumber, ""},
	39: {"#,##0.00_);(#,##0.00)", KindNumber, ""},
	40: {"#,##0.00_);[Red](#,##0.00)", KindNumber, ""},
	41: {`_(* #,##0_);_(* (#,##0);_(* "-"_);_(@_)`, KindNumber, ""},
	42: {`_("$"* #,##0_);_("$"* (#,##0);_("$"* "-"_);_(@_)`, KindCurrency, ""},
	43: {`_(* #,##0.00_);_(* (#,##0.00);_(* "-"??_);_(@_)`, KindNumber, ""},
	44: {`_("$"* #,##0.00_);_("$"* (#,##0.00);_("$"* "-"??_);_(@_)`, KindCurrency, ""},
	45: {"mm:ss", KindDate, "04:05"},
	46: {"[h]:mm:ss", KindDate, "15:04:05"},
	47: {"mm:ss.0", KindDate, "04:05.0"},
	48: {"##0.0E+0", KindNumber, ""},
	49: {"@", KindOther, ""},
}

func init() {
	for _, r := range [][2]uint16{{27, 36}, {50, 58}} {
		for i := r[0]; i <= r[1]; i++ {
			builtinFormats[i] = builtinFormat{kind: KindDate, layout: "2006/1/2"}
		}
	}
}

// resolveFormat classifies a format index. custom holds the FORMAT records
// seen in the globals stream, which override built-in pattern strings.
func resolveFormat(index uint16, custom map[uint16]string) CellFormat {
	cf := CellFormat{FormatIndex: index, Multiplier: 1}
	pattern, hasCustom := custom[index]

	if bf, ok := builtinFormats[index]; ok && bf.kind != KindOther {
		cf.Kind = bf.kind
		cf.Pattern = bf.pattern
		cf.Layout = bf.layout
		if hasCustom {
			cf.Pattern = pattern
		}

		if index == 9 || index == 10 {
			cf.Multiplier = 100
		}

		return cf
	}

	if hasCustom && index > 0 && isDatePattern(pattern) {
		cf.Kind = KindDate
		cf.Pattern = pattern
		cf.Layout = dateLayout(pattern)
	}

	return cf
}

// isDatePattern reports whether a custom format consists only of date and
// time placeholders and separators.
func isDatePattern(pattern string) bool {
	if strings.TrimSpace(pattern) == "" {
		return false
	}

	for _, r := range pattern {
		if unicode.IsSpace(r) {
			continue
		}

		switch unicode.ToLower(r) {
		case 'h', 'm', 's', 'd', 'a', 'y', '/', '-', ':':
		default:
			return false
		}
	}

	return true
}

// dateLayout translates a date pattern accepted by isDatePattern into a
// time.Format layout. "mm" is a minute and any run of "h" is a 24-hour hour.
func dateLayout(pattern string) string {
	var sb strings.Builder
	runes := []rune(strings.ToLower(pattern))

	for i := 0; i < len(runes); {
		r := runes[i]
		n := 1
		for i+n < len(runes) && runes[i+n] == r {
			n++
		}
		i += n

		switch r {
		case 'y':
			if n > 2 {
				sb.WriteString("2006")
			} else {
				sb.WriteString("06")
			}
		case 'm':
			switch {
			case n == 1:
				sb.WriteString("1")
			case n == 2:
				sb.WriteString("04")
			case n == 3:
				sb.WriteString("Jan")
			default:
				sb.WriteString("January")
			}
		case 'd':
			switch {
			case n == 1:
				sb.WriteString("2")
			case n == 2:
				sb.WriteString("02")
			case n == 3:
				sb.WriteString("Mon")
			default:
				sb.WriteString("Monday")
			}
		case 'h':
			sb.WriteString("15")
		case 's':
			if n == 1 {
				sb.WriteString("5")
			} else {
				sb.WriteString("05")
			}
		default:
			sb.WriteString(strings.Repeat(string(r), n))
		}
	}

	return sb.String()
}
