package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fpvcatalog/partscrawler/internal/vendor"
)

// Fields holds everything extracted from a product page. A missing
// selector degrades the corresponding field to its zero value; extraction
// itself never fails.
type Fields struct {
	Name        string
	Price       float64
	Brand       string
	SKU         string
	Description string
	ImageURL    string
	InStock     bool
}

// outOfStockPhrases mark a product as unavailable. Absence of any stock
// information defaults to in-stock.
var outOfStockPhrases = []string{
	"out of stock",
	"sold out",
	"currently unavailable",
	"not available",
	"no longer available",
	"discontinued",
	"notify me when available",
	"back-order",
	"backordered",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// ExtractFields pulls the product fields from a rendered page using the
// vendor's selectors.
func ExtractFields(doc *goquery.Document, profile *vendor.Profile, pageURL string) Fields {
	sel := profile.Selectors

	f := Fields{
		Name:        selectText(doc, sel.Name, "h1"),
		Brand:       selectText(doc, sel.Brand, ""),
		SKU:         selectText(doc, sel.SKU, ""),
		Description: selectText(doc, sel.Description, ""),
		InStock:     true,
	}

	if priceText := selectText(doc, sel.Price, ""); priceText != "" {
		if price, ok := ParsePrice(priceText); ok {
			f.Price = price
		}
	}

	if stockText := selectText(doc, sel.Stock, ""); stockText != "" {
		f.InStock = !matchesOutOfStock(stockText)
	}

	f.ImageURL = extractImageURL(doc, sel.Image, pageURL)

	return f
}

// selectText returns the normalized text of the first matching selector,
// falling back to the given selector when the vendor has none configured.
func selectText(doc *goquery.Document, selector, fallback string) string {
	if selector == "" {
		selector = fallback
	}
	if selector == "" {
		return ""
	}

	text := doc.Find(selector).First().Text()
	return NormalizeText(text)
}

// NormalizeText trims and collapses whitespace.
func NormalizeText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

var priceCleanRe = regexp.MustCompile(`[^\d.,-]`)

// ParsePrice strips currency symbols and separators from a price string
// and parses the decimal value. Returns false for unparsable or
// non-positive values.
func ParsePrice(text string) (float64, bool) {
	cleaned := priceCleanRe.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0, false
	}

	// Disambiguate thousand and decimal separators: the last separator
	// wins as the decimal point when it is followed by at most two digits.
	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	switch {
	case lastDot == -1 && lastComma == -1:
		// integer price
	case lastComma > lastDot:
		if len(cleaned)-lastComma-1 <= 2 {
			// European style: comma is the decimal point.
			cleaned = strings.ReplaceAll(cleaned[:lastComma], ".", "") + "." + cleaned[lastComma+1:]
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	default:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}

// matchesOutOfStock checks the text against the out-of-stock phrase list.
func matchesOutOfStock(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range outOfStockPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// extractImageURL finds the product image and resolves it to an absolute
// URL against the page.
func extractImageURL(doc *goquery.Document, selector, pageURL string) string {
	if selector == "" {
		selector = "img[itemprop=image], .product-image img"
	}

	img := doc.Find(selector).First()
	src, exists := img.Attr("src")
	if !exists || src == "" {
		src, exists = img.Attr("data-src")
	}
	if !exists || src == "" {
		return ""
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return src
	}
	ref, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}
