package normalizer

import (
	"path/filepath"
	"regexp"
	"strings"
)

// UnknownAccountName is used when nothing usable is left of an upload's filename.
const UnknownAccountName = "Unknown Account"

var (
	filenameSeparators = strings.NewReplacer("_", " ", "-", " ", ".", " ")
	yearTokenPattern   = regexp.MustCompile(`\b\d{4}\b`)
)

// AccountNameFromFilename derives a display account name from an uploaded
// file name, e.g. "DCU_Checking_2025.csv" becomes "DCU Checking".
func AccountNameFromFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" {
		return UnknownAccountName
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))

	base = filenameSeparators.Replace(base)
	base = yearTokenPattern.ReplaceAllString(base, " ")
	base = strings.Join(strings.Fields(base), " ")

	if base == "" {
		return UnknownAccountName
	}
	return base
}

// CleanDescription trims a description and collapses repeated whitespace.
func CleanDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
