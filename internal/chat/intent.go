package chat

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Intent string

const (
	IntentStock            Intent = "stock"
	IntentMutualFund       Intent = "mutual_fund"
	IntentInvestmentAdvice Intent = "investment_advice"
	IntentGeneral          Intent = "general"
)

// Query is the classified form of one user message. Symbol is only set for
// IntentStock, and may be empty when no ticker could be found.
type Query struct {
	Intent Intent `json:"intent"`
	Symbol string `json:"symbol,omitempty"`
}

var stockKeywords = []string{"stock", "price", "share", "market"}

var companySymbols = map[string]string{
	"apple":     "AAPL",
	"google":    "GOOGL",
	"microsoft": "MSFT",
	"amazon":    "AMZN",
	"tesla":     "TSLA",
	"netflix":   "NFLX",
	"meta":      "META",
	"facebook":  "META",
	"nvidia":    "NVDA",
}

func Classify(text string) Query {
	lower := strings.ToLower(text)
	if containsAny(lower, stockKeywords...) {
		return Query{Intent: IntentStock, Symbol: ExtractSymbol(text)}
	}
	if containsAny(lower, "mutual fund", "sip") {
		return Query{Intent: IntentMutualFund}
	}
	if containsAny(lower, "invest", "portfolio") {
		return Query{Intent: IntentInvestmentAdvice}
	}
	return Query{Intent: IntentGeneral}
}

// ExtractSymbol prefers any 2-5 character all-caps token, so words like "OK"
// or "USA" are taken as tickers too. Otherwise it falls back to the company
// name table. It returns "" when nothing matches.
func ExtractSymbol(text string) string {
	tokens := tokenize(text)
	for _, tok := range tokens {
		if n := utf8.RuneCountInString(tok); n >= 2 && n <= 5 && isAllCaps(tok) {
			return tok
		}
	}
	for _, tok := range tokens {
		if sym, ok := companySymbols[stripPossessive(strings.ToLower(tok))]; ok {
			return sym
		}
	}
	return ""
}

func tokenize(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func stripPossessive(tok string) string {
	for _, suffix := range []string{"'s", "’s"} {
		if strings.HasSuffix(tok, suffix) {
			return strings.TrimSuffix(tok, suffix)
		}
	}
	return tok
}

func isAllCaps(tok string) bool {
	hasLetter := false
	for _, r := range tok {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
