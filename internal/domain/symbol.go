package domain

import (
	"fmt"
	"strings"
)

// Exchange identifies a listing venue.
type Exchange string

const (
	ExchangeHOSE  Exchange = "hose"
	ExchangeHNX   Exchange = "hnx"
	ExchangeUPCOM Exchange = "upcom"
	ExchangeVN30  Exchange = "vn30"
)

// AllExchanges lists every supported venue in scan order.
var AllExchanges = []Exchange{ExchangeHOSE, ExchangeHNX, ExchangeUPCOM, ExchangeVN30}

// ParseExchange converts a user-supplied venue code into an Exchange.
func ParseExchange(s string) (Exchange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hose", "hsx":
		return ExchangeHOSE, nil
	case "hnx":
		return ExchangeHNX, nil
	case "upcom":
		return ExchangeUPCOM, nil
	case "vn30":
		return ExchangeVN30, nil
	default:
		return "", fmt.Errorf("unknown exchange %q", s)
	}
}

// Valid reports whether e is one of the supported venues.
func (e Exchange) Valid() bool {
	switch e {
	case ExchangeHOSE, ExchangeHNX, ExchangeUPCOM, ExchangeVN30:
		return true
	}
	return false
}

func (e Exchange) String() string {
	return string(e)
}

// Symbol is a ticker plus its listing venue. Immutable once assigned;
// the universe service refreshes the set of symbols, not their identity.
type Symbol struct {
	Ticker   string   `json:"ticker"`
	Exchange Exchange `json:"exchange"`
}

// NewSymbol normalizes the ticker to upper case.
func NewSymbol(ticker string, exchange Exchange) Symbol {
	return Symbol{
		Ticker:   strings.ToUpper(strings.TrimSpace(ticker)),
		Exchange: exchange,
	}
}

func (s Symbol) String() string {
	return fmt.Sprintf("%s:%s", s.Ticker, s.Exchange)
}
