// Package banks classifies symbols as credit institutions. Bank
// statements carry sector-specific asset-quality fields (bad debt,
// loan-loss reserves) that are meaningless for other industries, so
// the pipeline gates those fields on this classification.
package banks

import "strings"

// listedBanks are the credit institutions listed across the three
// boards. A static allowlist beats industry-string matching as the
// primary signal: listings change rarely and scraped industry labels
// are inconsistent across sources.
var listedBanks = map[string]bool{
	"ACB": true, "BID": true, "CTG": true, "EIB": true, "HDB": true,
	"LPB": true, "MBB": true, "MSB": true, "NAB": true, "OCB": true,
	"SHB": true, "SSB": true, "STB": true, "TCB": true, "TPB": true,
	"VCB": true, "VIB": true, "VPB": true,
}

// industryHints are substrings of industry labels that mark a bank
// when the ticker is not on the allowlist (new listings, renames).
var industryHints = []string{
	"ngân hàng",
	"bank",
}

// IsBank reports whether a symbol is a credit institution, from the
// allowlist first and the provider's industry label second.
func IsBank(ticker, industry string) bool {
	if listedBanks[strings.ToUpper(strings.TrimSpace(ticker))] {
		return true
	}

	label := strings.ToLower(industry)
	for _, hint := range industryHints {
		if strings.Contains(label, hint) {
			return true
		}
	}
	return false
}
