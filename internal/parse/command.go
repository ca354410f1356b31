package parse

import "strings"

// Keyword is a recognised SMS command word.
type Keyword string

const (
	KeywordCheckIn  Keyword = "CHECKIN"
	KeywordCheckOut Keyword = "CHECKOUT"
	KeywordStatus   Keyword = "STATUS"
	KeywordHelp     Keyword = "HELP"
	KeywordUnknown  Keyword = ""
)

// ParseCommand maps SMS text to a keyword. Matching ignores case and spaces,
// so "check in" is CHECKIN.
func ParseCommand(raw string) Keyword {
	word := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	switch Keyword(word) {
	case KeywordCheckIn, KeywordCheckOut, KeywordStatus, KeywordHelp:
		return Keyword(word)
	}
	return KeywordUnknown
}
