package chat

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Query
	}{
		{"what's the apple stock price", Query{Intent: IntentStock, Symbol: "AAPL"}},
		{"How is the Tesla share doing?", Query{Intent: IntentStock, Symbol: "TSLA"}},
		{"facebook market cap", Query{Intent: IntentStock, Symbol: "META"}},
		{"price of NVDA today", Query{Intent: IntentStock, Symbol: "NVDA"}},
		{"show me a stock", Query{Intent: IntentStock}},
		{"stock price of Apple's", Query{Intent: IntentStock, Symbol: "AAPL"}},
		{"netflix’s share price", Query{Intent: IntentStock, Symbol: "NFLX"}},
		{"tell me about mutual funds", Query{Intent: IntentMutualFund}},
		{"should I start a SIP", Query{Intent: IntentMutualFund}},
		{"how do I invest 500 dollars", Query{Intent: IntentInvestmentAdvice}},
		{"review my portfolio", Query{Intent: IntentInvestmentAdvice}},
		{"hello there", Query{Intent: IntentGeneral}},
		{"", Query{Intent: IntentGeneral}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractSymbol(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"AAPL", "AAPL"},
		{"  msft  ", ""},
		{"check GOOGL?", "GOOGL"},
		{"I like Microsoft", "MSFT"},
		// all-caps words win over the name table
		{"Is apple OK", "OK"},
		{"A", ""},
		{"TOOLONG", ""},
		{"nothing here", ""},
	}
	for _, tt := range tests {
		if got := ExtractSymbol(tt.text); got != tt.want {
			t.Errorf("ExtractSymbol(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestParseAction(t *testing.T) {
	if a, err := ParseAction("start"); err != nil || a != ActionStartSurvey {
		t.Errorf("ParseAction(start) = %v, %v", a, err)
	}
	if a, err := ParseAction(" Stocks "); err != nil || a != ActionCheckStocks {
		t.Errorf("ParseAction(stocks) = %v, %v", a, err)
	}
	if _, err := ParseAction("dance"); err == nil {
		t.Error("ParseAction(dance) should fail")
	}
}
