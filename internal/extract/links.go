// Package extract pulls links, product fields and specifications out of
// rendered vendor pages.
package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/fpvcatalog/partscrawler/internal/frontier"
	"github.com/fpvcatalog/partscrawler/internal/vendor"
)

// Link is a candidate URL discovered on a page.
type Link struct {
	URL       string
	IsProduct bool
}

// DiscoverLinks collects outbound links from a document using the vendor's
// configured selectors plus a catch-all anchor scan, classifies each as
// product-like or collection-like, and deduplicates within the page.
//
// Pure function of document + profile: feeding candidates into the
// frontier is the caller's job.
func DiscoverLinks(doc *goquery.Document, profile *vendor.Profile) []Link {
	seen := make(map[string]struct{})
	links := make([]Link, 0)

	collect := func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}

		normalized, err := frontier.NormalizeURL(profile.Origin(), href)
		if err != nil {
			return
		}
		if !frontier.IsCrawlable(normalized) {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}

		links = append(links, Link{
			URL:       normalized,
			IsProduct: profile.IsProductURL(normalized),
		})
	}

	for _, selector := range profile.LinkSelectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			if goquery.NodeName(s) == "a" {
				collect(i, s)
				return
			}
			s.Find("a[href]").Each(collect)
		})
	}

	// Catch-all anchor scan picks up links the configured selectors miss.
	doc.Find("a[href]").Each(collect)

	return links
}
