// Package scrape holds the label-lookup and number-parsing helpers
// shared by the CafeF and Vietstock page scrapers. Investor pages are
// treated as label→value maps; anything beyond that is out of scope.
package scrape

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// LabelValue finds the text value next to the first matching label.
// Labels are tried in order; matching is case-insensitive substring.
// It checks table rows first, then div/span siblings.
func LabelValue(doc *goquery.Document, labels []string) string {
	for _, label := range labels {
		if v := labelValueOne(doc, label); v != "" {
			return v
		}
	}
	return ""
}

func labelValueOne(doc *goquery.Document, label string) string {
	needle := strings.ToLower(label)
	var found string

	// Table rows: label cell followed by value cell
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td, th")
		n := cells.Length()
		for i := 0; i < n-1; i++ {
			cellText := strings.ToLower(strings.TrimSpace(cells.Eq(i).Text()))
			if strings.Contains(cellText, needle) {
				value := strings.TrimSpace(cells.Eq(i + 1).Text())
				if value != "" {
					found = value
					return false
				}
			}
		}
		return true
	})
	if found != "" {
		return found
	}

	// Divs and spans: label element followed by a value sibling
	doc.Find("div, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		if !strings.Contains(text, needle) {
			return true
		}
		next := sel.Next()
		if next.Length() == 0 {
			return true
		}
		value := strings.TrimSpace(next.Text())
		if value != "" && !strings.Contains(strings.ToLower(value), needle) {
			found = value
			return false
		}
		return true
	})

	return found
}

// ParseNumber extracts the first decimal number from text.
// Thousands separators are stripped before matching.
func ParseNumber(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	match := numberRe.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParsePercent parses a percentage fragment into a fraction. Values
// above 1 are assumed to be whole percents and divided by 100; the
// result is clamped to [0, 1].
func ParsePercent(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(text, "%", "")
	v, ok := ParseNumber(cleaned)
	if !ok {
		return 0, false
	}
	if v > 1 {
		v /= 100
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v, true
}

// ParseBillions parses a monetary fragment into billions of VND using
// the unit markers Vietnamese finance pages attach to figures. A bare
// number is assumed to already be in billions.
func ParseBillions(text string) (float64, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	v, ok := ParseNumber(lower)
	if !ok {
		return 0, false
	}

	switch {
	case strings.Contains(lower, "nghìn tỷ") || strings.Contains(lower, "thousand billion"):
		return v * 1000, true
	case strings.Contains(lower, "tỷ") || strings.Contains(lower, "billion"):
		return v, true
	case strings.Contains(lower, "triệu") || strings.Contains(lower, "million"):
		return v / 1000, true
	default:
		return v, true
	}
}
