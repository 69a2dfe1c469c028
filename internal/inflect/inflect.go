// Package inflect provides the lexical singular/plural transforms used for
// table and key-column naming. The rules are intentionally simple and
// irregular-aware; they operate on the immediate word only.
package inflect

import "strings"

// knownSingulars maps irregular or invariant plurals to their singular form.
var knownSingulars = map[string]string{
	"series":    "series",
	"status":    "status",
	"analysis":  "analysis",
	"species":   "species",
	"news":      "news",
	"goods":     "goods",
	"children":  "child",
	"people":    "person",
	"men":       "man",
	"women":     "woman",
	"teeth":     "tooth",
	"feet":      "foot",
	"mice":      "mouse",
	"geese":     "goose",
	"data":      "data",
	"media":     "media",
	"addresses": "address",
}

// knownPlurals is the mirror of knownSingulars for words whose plural is not
// reachable by suffix rules.
var knownPlurals = map[string]string{
	"child":   "children",
	"person":  "people",
	"man":     "men",
	"woman":   "women",
	"tooth":   "teeth",
	"foot":    "feet",
	"mouse":   "mice",
	"goose":   "geese",
	"series":  "series",
	"species": "species",
	"news":    "news",
	"goods":   "goods",
	"data":    "data",
	"media":   "media",
}

// Singularize attempts to convert a plural name to a singular one.
func Singularize(plural string) string {
	if singular, ok := knownSingulars[strings.ToLower(plural)]; ok {
		return matchCase(plural, singular)
	}

	lowerPlural := strings.ToLower(plural)

	if strings.HasSuffix(lowerPlural, "ies") && len(lowerPlural) > 3 {
		return plural[:len(plural)-3] + "y"
	}

	// Avoid removing 's' from words like 'bus', 'gas', 'class', 'address'
	if strings.HasSuffix(lowerPlural, "ss") ||
		strings.HasSuffix(lowerPlural, "us") || // e.g. status, virus
		strings.HasSuffix(lowerPlural, "is") { // e.g. analysis, basis
		return plural
	}

	if strings.HasSuffix(lowerPlural, "xes") ||
		strings.HasSuffix(lowerPlural, "ches") ||
		strings.HasSuffix(lowerPlural, "shes") {
		return plural[:len(plural)-2]
	}

	if strings.HasSuffix(lowerPlural, "s") && len(lowerPlural) > 1 {
		return plural[:len(plural)-1]
	}

	return plural
}

// Pluralize converts a field name to its plural form for table naming.
// A word that is already plural is returned unchanged, so fields like
// "hobbies" or "orders" name their table directly.
func Pluralize(word string) string {
	if word == "" {
		return word
	}
	if plural, ok := knownPlurals[strings.ToLower(word)]; ok {
		return matchCase(word, plural)
	}
	if Singularize(word) != word {
		// Already plural.
		return word
	}

	lower := strings.ToLower(word)

	if strings.HasSuffix(lower, "y") && len(lower) > 1 && !isVowel(lower[len(lower)-2]) {
		return word[:len(word)-1] + "ies"
	}

	if strings.HasSuffix(lower, "s") ||
		strings.HasSuffix(lower, "x") ||
		strings.HasSuffix(lower, "z") ||
		strings.HasSuffix(lower, "ch") ||
		strings.HasSuffix(lower, "sh") {
		return word + "es"
	}

	return word + "s"
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// matchCase preserves a leading capital from the original word.
func matchCase(original, transformed string) string {
	if len(original) > 0 && len(transformed) > 0 &&
		strings.ToUpper(string(original[0])) == string(original[0]) &&
		strings.ToLower(string(original[0])) != string(original[0]) {
		return strings.ToUpper(string(transformed[0])) + transformed[1:]
	}
	return transformed
}
