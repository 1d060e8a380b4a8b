// Package extract turns fetched HTML into structured records. All
// functions are pure: parse failures surface once in Parse, and missing
// optional regions degrade to zero values with an explicit found flag so
// callers (and tests) can tell "absent" apart from "broken markup".
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/insanerask77/tienda-perfumes/internal/model"
)

// Selectors for the WooCommerce detail-page markup served by the source.
const (
	selShortDescription = ".woocommerce-product-details__short-description"
	selNotesList        = "#tab-description > ul"
	selGender           = "#tab-additional_information .woocommerce-product-attributes-item--attribute_pa_genero td"
	selRetailerCard     = "div.theme-card"
	selCardBrand        = ".retailer-name span[itemprop='brand']"
	selCardName         = ".retailer-product-name span[itemprop='name']"
	selCardDescription  = "meta[itemprop='description']"
	selCardLowPrice     = "meta[itemprop='lowPrice']"
	selCardHighPrice    = "meta[itemprop='highPrice']"
	selCardBuyLink      = ".card-button-container a"
)

// Parse builds a queryable document from raw HTML.
func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse html")
	}
	return doc, nil
}

// Thumbnail returns the src of the first <img> in an inline HTML snippet.
// The bool is false when the snippet is empty, unparseable, or has no
// image with a src attribute.
func Thumbnail(snippet string) (string, bool) {
	if strings.TrimSpace(snippet) == "" {
		return "", false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snippet))
	if err != nil {
		return "", false
	}
	src, ok := doc.Find("img").First().Attr("src")
	if !ok || src == "" {
		return "", false
	}
	return src, true
}

// ShortDescription returns the trimmed text of the product's short
// description region. The bool reports whether the region exists.
func ShortDescription(doc *goquery.Document) (string, bool) {
	sel := doc.Find(selShortDescription)
	if sel.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(sel.First().Text()), true
}

// NotesHTML returns the outer HTML of the scent-notes list on the detail
// page, used as the full perfume description. The bool reports whether
// the list exists.
func NotesHTML(doc *goquery.Document) (string, bool) {
	sel := doc.Find(selNotesList)
	if sel.Length() == 0 {
		return "", false
	}
	html, err := goquery.OuterHtml(sel.First())
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(html), true
}

// Gender returns the gender attribute from the additional-information
// table. It is a page-level value shared by every equivalence on the
// page. The bool reports whether the cell exists.
func Gender(doc *goquery.Document) (string, bool) {
	sel := doc.Find(selGender)
	if sel.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(sel.First().Text()), true
}

// Equivalences walks the retailer cards in document order and returns one
// draft per card. Cards without a product name are dropped: the title is
// the only mandatory field. A price is emitted only when both the low and
// high markers carry a content attribute; partial price data yields an
// empty string, never a half-formed one. Gender is left blank here, the
// caller stamps the page-level value onto each draft.
func Equivalences(doc *goquery.Document) []model.EquivalenceDraft {
	var drafts []model.EquivalenceDraft
	doc.Find(selRetailerCard).Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find(selCardName).First().Text())
		if title == "" {
			return
		}

		draft := model.EquivalenceDraft{
			Title: title,
			Store: strings.TrimSpace(card.Find(selCardBrand).First().Text()),
		}

		low, lowOK := card.Find(selCardLowPrice).First().Attr("content")
		high, highOK := card.Find(selCardHighPrice).First().Attr("content")
		if lowOK && highOK {
			draft.Price = low + " € – " + high + " €"
		}

		if desc, ok := card.Find(selCardDescription).First().Attr("content"); ok {
			draft.Description = desc
		}
		if href, ok := card.Find(selCardBuyLink).First().Attr("href"); ok {
			draft.BuyLink = href
		}

		drafts = append(drafts, draft)
	})
	return drafts
}
