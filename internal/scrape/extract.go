package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/fuelwatch-cli/internal/model"
)

// addressStrategy returns an address and whether it matched. Strategies are
// pure: absence is data, not an error.
type addressStrategy func(doc *goquery.Document) (string, bool)

// priceStrategy returns extracted price pairs and whether it matched.
type priceStrategy func(doc *goquery.Document) ([]model.PricePair, bool)

// firstAddress tries strategies in order and returns the first match.
func firstAddress(doc *goquery.Document, strategies []addressStrategy) (string, bool) {
	for _, s := range strategies {
		if addr, ok := s(doc); ok {
			return addr, true
		}
	}
	return "", false
}

// firstPrices tries strategies in order and returns the first non-empty
// result.
func firstPrices(doc *goquery.Document, strategies []priceStrategy) ([]model.PricePair, bool) {
	for _, s := range strategies {
		if prices, ok := s(doc); ok {
			return prices, true
		}
	}
	return nil, false
}

// Structural selectors for an address-bearing element, most specific first.
var addressSelectors = []string{
	"address",
	"[data-testid*='address']",
	".club-address",
	".address",
	"[class*='address']",
}

// cityStateZipRe matches a "City, ST ZIP" shaped token in page text.
var cityStateZipRe = regexp.MustCompile(`[A-Z][a-z]+(?:[\s,]+[A-Z][a-z]+)*,\s*[A-Z]{2}\s+\d{5}(?:-\d{4})?`)

// ExtractAddress pulls the club address from a page. Strategy order:
// structural selectors, then a City/State/ZIP scan of the page text, then
// the caller-supplied known address, then the NAN placeholder. It never
// fails; a nil document skips straight to the fallback.
func ExtractAddress(doc *goquery.Document, knownFallback string) string {
	if doc != nil {
		strategies := []addressStrategy{
			selectorAddress,
			textScanAddress,
		}
		if addr, ok := firstAddress(doc, strategies); ok {
			return addr
		}
	}
	if knownFallback != "" {
		return knownFallback
	}
	return model.NoValue
}

func selectorAddress(doc *goquery.Document) (string, bool) {
	for _, sel := range addressSelectors {
		elem := doc.Find(sel).First()
		if elem.Length() == 0 {
			continue
		}
		if addr := strings.TrimSpace(elem.Text()); addr != "" {
			return addr, true
		}
	}
	return "", false
}

func textScanAddress(doc *goquery.Document) (string, bool) {
	if m := cityStateZipRe.FindString(doc.Text()); m != "" {
		return m, true
	}
	return "", false
}

// Primary price-card layout: the exact selectors of the currently known
// fuel-center page structure.
const (
	primaryCardSelector  = "div.pa3.br3.flex-grow-1"
	primaryLabelSelector = "div.tc.f6.fw4.lh-title"
	primaryValueSelector = "div.flex.items-center.justify-center.f2.fw5"
)

// Permissive fallback selector families, tried in order once the primary
// layout yields zero cards. The first family producing at least one card
// wins, even if none of its cards parse.
var fallbackCardSelectors = []string{
	"div[class*='pa3'][class*='br3']",
	".fuel-price-card",
	"[data-testid*='price']",
	".price",
	"[class*='price']",
}

var fallbackLabelSelectors = []string{
	"[class*='tc'][class*='f6']",
	".fuel-type",
	"[class*='fuel']",
}

var fallbackValueSelectors = []string{
	"[class*='f2'][class*='fw5']",
	".price-value",
	"[class*='price']",
}

// currencyRe matches currency-shaped tokens for the last-resort text scan.
var currencyRe = regexp.MustCompile(`\$[\d,]+\.?\d*`)

// ExtractPrices pulls (fuel type, price) pairs from a fuel-center page.
// Strategy order: exact primary card layout, then permissive selector
// families, then a currency-token scan of the page text. A malformed card
// never aborts the page; it is skipped and extraction continues. An empty
// outcome becomes a single no-prices sentinel row so callers always have at
// least one row to reason about.
func ExtractPrices(doc *goquery.Document) []model.PricePair {
	if doc == nil {
		return []model.PricePair{{FuelType: model.NoPricesFound, Price: model.NoValue}}
	}

	strategies := []priceStrategy{
		primaryCards,
		fallbackCards,
		currencyScan,
	}
	prices, ok := firstPrices(doc, strategies)
	if !ok || len(prices) == 0 {
		return []model.PricePair{{FuelType: model.NoPricesFound, Price: model.NoValue}}
	}
	return prices
}

// primaryCards parses the exact known card structure in document order.
func primaryCards(doc *goquery.Document) ([]model.PricePair, bool) {
	var prices []model.PricePair
	doc.Find(primaryCardSelector).Each(func(_ int, card *goquery.Selection) {
		fuelType := strings.TrimSpace(card.Find(primaryLabelSelector).First().Text())
		price := strings.TrimSpace(card.Find(primaryValueSelector).First().Text())
		if fuelType == "" || price == "" {
			// Malformed fragment: skip the card, keep the page.
			return
		}
		prices = append(prices, model.PricePair{FuelType: fuelType, Price: price})
	})
	return prices, len(prices) > 0
}

// fallbackCards tries each permissive selector family in order, stopping at
// the first family that yields any cards.
func fallbackCards(doc *goquery.Document) ([]model.PricePair, bool) {
	for _, cardSel := range fallbackCardSelectors {
		cards := doc.Find(cardSel)
		if cards.Length() == 0 {
			continue
		}

		zap.L().Debug("scrape: primary price layout missed, using fallback selectors",
			zap.String("selector", cardSel),
			zap.Int("cards", cards.Length()),
		)

		var prices []model.PricePair
		cards.Each(func(_ int, card *goquery.Selection) {
			fuelType := model.UnknownFuelType
			price := model.NoValue

			for _, sel := range fallbackLabelSelectors {
				if t := strings.TrimSpace(card.Find(sel).First().Text()); t != "" {
					fuelType = t
					break
				}
			}
			for _, sel := range fallbackValueSelectors {
				if p := strings.TrimSpace(card.Find(sel).First().Text()); p != "" {
					price = p
					break
				}
			}

			if price != model.NoValue {
				prices = append(prices, model.PricePair{FuelType: fuelType, Price: price})
			}
		})

		// First family with cards wins even when nothing parsed; the
		// text scan below is the next stop.
		return prices, len(prices) > 0
	}
	return nil, false
}

// currencyScan is the last resort: any currency-shaped token in the page
// text, tagged with the unknown fuel type.
func currencyScan(doc *goquery.Document) ([]model.PricePair, bool) {
	matches := currencyRe.FindAllString(doc.Text(), -1)
	if len(matches) == 0 {
		return nil, false
	}
	prices := make([]model.PricePair, 0, len(matches))
	for _, m := range matches {
		prices = append(prices, model.PricePair{FuelType: model.UnknownFuelType, Price: m})
	}
	return prices, true
}
