// Package textproc turns raw model output into prompt text that is safe to
// hand to an image model: ASCII only, ending on a complete sentence.
package textproc

import "strings"

// replacement is one literal find/replace pair of the ASCII table.
type replacement struct {
	from string
	to   string
}

// asciiReplacements maps typographic and accented characters to their closest
// ASCII spelling. Order is fixed. No replacement is itself a key, so the order
// never changes the result.
var asciiReplacements = []replacement{
	// Quotes
	{"“", `"`}, {"”", `"`}, {"„", `"`}, {"«", `"`}, {"»", `"`},
	{"‘", "'"}, {"’", "'"}, {"‚", "'"}, {"´", "'"},

	// Dashes and ellipsis
	{"—", "-"}, {"–", "-"}, {"−", "-"}, {"‒", "-"}, {"―", "-"},
	{"…", "..."},

	// Lowercase accented letters
	{"á", "a"}, {"à", "a"}, {"â", "a"}, {"ä", "a"}, {"ã", "a"}, {"å", "a"}, {"ā", "a"}, {"æ", "ae"},
	{"ç", "c"}, {"č", "c"},
	{"é", "e"}, {"è", "e"}, {"ê", "e"}, {"ë", "e"}, {"ē", "e"},
	{"í", "i"}, {"ì", "i"}, {"î", "i"}, {"ï", "i"}, {"ī", "i"},
	{"ñ", "n"},
	{"ó", "o"}, {"ò", "o"}, {"ô", "o"}, {"ö", "o"}, {"õ", "o"}, {"ø", "o"}, {"œ", "oe"}, {"ō", "o"},
	{"ú", "u"}, {"ù", "u"}, {"û", "u"}, {"ü", "u"}, {"ū", "u"},
	{"ý", "y"}, {"ÿ", "y"},
	{"ß", "ss"},

	// Uppercase accented letters
	{"Á", "A"}, {"À", "A"}, {"Â", "A"}, {"Ä", "A"}, {"Ã", "A"}, {"Å", "A"}, {"Ā", "A"}, {"Æ", "AE"},
	{"Ç", "C"}, {"Č", "C"},
	{"É", "E"}, {"È", "E"}, {"Ê", "E"}, {"Ë", "E"}, {"Ē", "E"},
	{"Í", "I"}, {"Ì", "I"}, {"Î", "I"}, {"Ï", "I"}, {"Ī", "I"},
	{"Ñ", "N"},
	{"Ó", "O"}, {"Ò", "O"}, {"Ô", "O"}, {"Ö", "O"}, {"Õ", "O"}, {"Ø", "O"}, {"Œ", "OE"}, {"Ō", "O"},
	{"Ú", "U"}, {"Ù", "U"}, {"Û", "U"}, {"Ü", "U"}, {"Ū", "U"},
	{"Ý", "Y"},

	// Currency, legal and math symbols
	{"€", "EUR"}, {"£", "GBP"}, {"¥", "JPY"}, {"₹", "INR"}, {"¢", "c"}, {"₩", "KRW"},
	{"©", "(c)"}, {"®", "(r)"}, {"™", "(tm)"}, {"°", " deg"}, {"±", "+/-"}, {"×", "x"}, {"÷", "/"},

	// Bullets
	{"•", "*"}, {"●", "*"}, {"‣", "*"}, {"·", "*"},

	// Arrows
	{"→", "->"}, {"←", "<-"}, {"↑", "^"}, {"↓", "v"},
}

var asciiReplacer = newASCIIReplacer()

func newASCIIReplacer() *strings.Replacer {
	pairs := make([]string, 0, 2*len(asciiReplacements))
	for _, r := range asciiReplacements {
		pairs = append(pairs, r.from, r.to)
	}
	return strings.NewReplacer(pairs...)
}

// Normalize replaces known typographic characters with ASCII equivalents and
// then drops every remaining code point above 127. Invalid UTF-8 is dropped too.
// ASCII input is returned unchanged.
func Normalize(text string) string {
	text = asciiReplacer.Replace(text)
	return strings.Map(func(r rune) rune {
		if r > 127 {
			return -1
		}
		return r
	}, text)
}
