package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const baseURL = "https://www.samsclub.com"

// FuelPageURL finds the fuel-center page for a club. Strategy order:
// href containing the fuel-center marker, any fuel-ish href, anchor text
// containing "Fuel Center" then "Fuel", and finally synthesis from the club
// URL's known path convention. An empty result means no fuel page; the
// caller falls back to the club page itself.
func FuelPageURL(doc *goquery.Document, clubURL string) string {
	if doc != nil {
		for _, sel := range []string{"a[href*='fuel-center']", "a[href*='fuel']"} {
			if href, ok := doc.Find(sel).First().Attr("href"); ok && href != "" {
				return absoluteURL(href)
			}
		}
		for _, text := range []string{"Fuel Center", "Fuel"} {
			if href := anchorByText(doc, text); href != "" {
				return absoluteURL(href)
			}
		}
	}

	if strings.Contains(clubURL, "/club/") {
		return clubURL + "/fuel-center"
	}
	return ""
}

// anchorByText returns the href of the first anchor whose text contains the
// given marker.
func anchorByText(doc *goquery.Document, marker string) string {
	var href string
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !strings.Contains(a.Text(), marker) {
			return true
		}
		if h, ok := a.Attr("href"); ok && h != "" {
			href = h
			return false
		}
		return true
	})
	return href
}

func absoluteURL(href string) string {
	switch {
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "/"):
		return baseURL + href
	default:
		return baseURL + "/" + href
	}
}
