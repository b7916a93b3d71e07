package chat

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"investor-assist/internal/market"
)

const (
	greetingText        = "Hello! I'm JAGOINVESTOR Assist. What should I call you?"
	welcomeFormat       = "Nice to meet you, %s! How can I assist you with your financial goals today?"
	askSymbolText       = "Sure! Which stock would you like to check? You can type a company name or a ticker symbol like AAPL."
	clarifySymbolText   = "Could you specify which stock you're interested in? You can mention the company name or stock symbol."
	mutualFundText      = "I can help you understand mutual funds and SIPs. What specific information would you like to know?"
	investmentText      = "I'd be happy to provide investment advice. Could you tell me more about your financial goals and risk tolerance?"
	generalText         = "How can I help you with your investment journey? You can ask about stocks, mutual funds, or get general investment advice."
	quoteFailedFormat   = "Sorry, I couldn't fetch the current stock information for %s. Please try again later."
	noPicksFormat       = "I couldn't fetch live prices for the suggested instruments right now. Would you like some general information on %s investment strategies instead?"
	recommendHeadFormat = "Based on your %s risk profile, here are some instruments worth a look:"
)

func welcomeMessage(name string) Message {
	msg := botMessage(fmt.Sprintf(welcomeFormat, name))
	msg.Actions = []ActionButton{ActionStartSurvey.Button(), ActionCheckStocks.Button()}
	return msg
}

func questionMessage(q Question) Message {
	return botMessage(q.Text)
}

func intentMessage(in Intent) Message {
	switch in {
	case IntentStock:
		return botMessage(clarifySymbolText)
	case IntentMutualFund:
		return botMessage(mutualFundText)
	case IntentInvestmentAdvice:
		return botMessage(investmentText)
	}
	return botMessage(generalText)
}

func quoteMessage(q market.Quote, series []market.Point) Message {
	msg := botMessage(fmt.Sprintf(
		"%s Stock Information:\nPrice: $%s\nChange: %s\nVolume: %d\nWould you like to know more details?",
		q.Symbol, formatPrice(q.Price), formatPercent(q.ChangePct), q.Volume,
	))
	if len(series) > 0 {
		chart := &Chart{Type: ChartLine, Data: make([]ChartPoint, 0, len(series))}
		for _, p := range series {
			chart.Data = append(chart.Data, ChartPoint{X: p.Date, Y: p.Close})
		}
		msg.Chart = chart
	}
	return msg
}

func recommendationMessage(rec Recommendation) Message {
	if len(rec.Picks) == 0 {
		return botMessage(fmt.Sprintf(noPicksFormat, rec.Profile))
	}
	var b strings.Builder
	fmt.Fprintf(&b, recommendHeadFormat, rec.Profile)
	weight := math.Round(10000/float64(len(rec.Picks))) / 100
	chart := &Chart{Type: ChartPie, Data: make([]ChartPoint, 0, len(rec.Picks))}
	for _, q := range rec.Picks {
		fmt.Fprintf(&b, "\n- %s: $%s (%s)", q.Symbol, formatPrice(q.Price), formatPercent(q.ChangePct))
		chart.Data = append(chart.Data, ChartPoint{X: q.Symbol, Y: weight})
	}
	msg := botMessage(b.String())
	msg.Chart = chart
	return msg
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatPercent keeps at most four decimals and drops trailing zeros.
func formatPercent(v float64) string {
	return strconv.FormatFloat(math.Round(v*10000)/10000, 'f', -1, 64) + "%"
}
