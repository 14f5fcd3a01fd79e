package cian

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const adLinkBase = "https://www.cian.ru"

// Offer pages for flats, commercial space and offices.
var (
	reAbsoluteAdLink = regexp.MustCompile(`(?i)^https?://(?:[\w\-]+\.)?cian\.ru/sale/(?:flat|commercial|office|offices)/\d+/?$`)
	reRelativeAdLink = regexp.MustCompile(`(?i)^/sale/(?:flat|commercial|office|offices)/\d+/?$`)
)

// ExtractAdLinks returns all unique offer links found on a catalog page,
// sorted for deterministic processing. Absolute links on any cian.ru
// subdomain are kept as-is; relative links resolve against www.cian.ru.
func ExtractAdLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		switch {
		case reAbsoluteAdLink.MatchString(href):
			seen[href] = true
		case reRelativeAdLink.MatchString(href):
			seen[adLinkBase+href] = true
		}
	})

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links, nil
}

// ExtractTotalPages reads the pagination block of a catalog page and
// returns the highest page number it lists, or 1 when no pagination exists.
func ExtractTotalPages(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 1
	}

	total := 1
	doc.Find(`[data-name="PaginationSection"]`).Each(func(_ int, section *goquery.Selection) {
		for _, field := range strings.Fields(section.Text()) {
			if n, err := strconv.Atoi(field); err == nil && n > total {
				total = n
			}
		}
	})
	return total
}
