// Package languages provides the fixed table of language codes used to tag
// handler files by their location in the sources tree.
package languages

import (
	"path/filepath"
	"strings"
)

// codes maps ISO 639-1 language codes to their English names. Handler files
// live under per-language directories (for example sources/en/...), and the
// directory name is matched against this table.
var codes = map[string]string{
	"ar": "Arabic",
	"bn": "Bengali",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"th": "Thai",
	"tr": "Turkish",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// IsCode reports whether s is a known language code.
func IsCode(s string) bool {
	_, ok := codes[s]
	return ok
}

// Name returns the English name for a language code, or the empty string if
// the code is unknown.
func Name(code string) string {
	return codes[code]
}

// FromPath derives the language tag for a handler file by scanning its path
// components from the innermost outward for a known language code. Returns
// the empty string if no component matches.
func FromPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if IsCode(parts[i]) {
			return parts[i]
		}
	}
	return ""
}
