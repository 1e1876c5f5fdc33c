// Package sniffer classifies an uploaded CSV file into one of the known source
// formats by looking at its header row. It also detects the field delimiter
// and generates a header fingerprint for diagnostics.
package sniffer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"
)

var ErrEmptyFile = errors.New("file is empty")

// Kind identifies which canonical record shape an upload is normalized into.
type Kind int

const (
	KindTransactions Kind = iota
	KindAccounts
)

func (k Kind) String() string {
	switch k {
	case KindTransactions:
		return "transactions"
	case KindAccounts:
		return "accounts"
	default:
		return "unknown"
	}
}

// SourceFormat is the closed set of import layouts the pipeline understands.
type SourceFormat int

const (
	FormatUnrecognized SourceFormat = iota
	FormatDCU
	FormatStandard
)

func (f SourceFormat) String() string {
	switch f {
	case FormatDCU:
		return "dcu"
	case FormatStandard:
		return "standard"
	default:
		return "unrecognized"
	}
}

// DCU exports are recognized by their exact header spelling and casing.
var dcuMarkers = []string{"Date", "Transaction Type", "Running Bal."}

var standardMarkers = map[Kind][]string{
	KindTransactions: {"Transaction Date", "Post Date", "date"},
	KindAccounts:     {"account_name", "account_number"},
}

// Sniff classifies a file from its header row. Checks run in priority order:
// bank-specific markers first, then the generic canonical headers.
func Sniff(kind Kind, header []string) SourceFormat {
	present := make(map[string]struct{}, len(header))
	for i, h := range header {
		present[CleanHeader(h, i == 0)] = struct{}{}
	}

	if containsAny(present, dcuMarkers) {
		return FormatDCU
	}
	if containsAny(present, standardMarkers[kind]) {
		return FormatStandard
	}
	return FormatUnrecognized
}

// CleanHeader trims a header cell; the first cell also loses a UTF-8 BOM.
func CleanHeader(h string, first bool) string {
	if first {
		h = strings.TrimPrefix(h, "\uFEFF")
	}
	return strings.TrimSpace(h)
}

func containsAny(present map[string]struct{}, names []string) bool {
	for _, n := range names {
		if _, ok := present[n]; ok {
			return true
		}
	}
	return false
}

// DetectDelimiter returns the most frequent candidate delimiter in the header line.
func DetectDelimiter(headerLine string) (rune, error) {
	line := cleanLine(headerLine, true)
	if line == "" {
		return 0, ErrEmptyFile
	}

	delimiter, count := detectDelimiter(line)
	if count == 0 {
		// A single-column file is still valid CSV.
		return ',', nil
	}
	return delimiter, nil
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r\n")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

func detectDelimiter(line string) (rune, int) {
	delimiters := []rune{',', ';', '\t', '|'}
	bestDelimiter := rune(0)
	bestCount := 0
	for _, d := range delimiters {
		count := strings.Count(line, string(d))
		if count > bestCount {
			bestCount = count
			bestDelimiter = d
		}
	}
	return bestDelimiter, bestCount
}

// DecimalComma reports whether sampled amount cells are written with ','
// as the decimal separator ("1.234,56"). Ties keep the '.' reading.
func DecimalComma(samples []string) bool {
	comma, point := 0, 0
	for _, v := range samples {
		switch hint := amountHint(v); {
		case hint > 0:
			comma++
		case hint < 0:
			point++
		}
	}
	return comma > point
}

// amountHint returns >0 for a decimal comma, <0 for a decimal point and 0
// when the cell could be read either way.
func amountHint(val string) int {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == ',' || r == '.' {
			return r
		}
		return -1
	}, val)
	if cleaned == "" {
		return 0
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			return 1
		}
		return -1
	case lastComma >= 0:
		// "1,234" is a thousands group
		if len(cleaned)-lastComma-1 <= 2 {
			return 1
		}
	case lastDot >= 0:
		if len(cleaned)-lastDot-1 <= 2 {
			return -1
		}
	}
	return 0
}

// Fingerprint creates a stable hash from header names so the same bank export
// layout can be recognized across uploads in the logs.
func Fingerprint(headers []string) string {
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	joined := strings.Join(normalized, "|")
	hash := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(hash[:])
}
