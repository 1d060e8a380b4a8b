package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Candidate is one search suggestion as returned by the source's search
// endpoint, before detail-page enrichment.
type Candidate struct {
	Title     string `json:"value"`
	URL       string `json:"url"`
	Desc      string `json:"desc"`
	ThumbHTML string `json:"thumb_html"`
}

// PerfumeDraft holds the fields for a perfume record about to be created.
type PerfumeDraft struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	OriginalLink string `json:"original_link"`
	Thumbnail    string `json:"thumbnail"`
}

// Perfume is a persisted perfume record. Title is the natural dedup key:
// the pipeline never creates two perfumes whose normalized titles match.
type Perfume struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	OriginalLink string    `json:"original_link"`
	Thumbnail    string    `json:"thumbnail"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

// EquivalenceDraft is one retailer offer extracted from a detail page,
// not yet tied to a perfume record.
type EquivalenceDraft struct {
	Title       string `json:"title"`
	Store       string `json:"store"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Gender      string `json:"gender"`
	BuyLink     string `json:"buy_link"`
}

// Equivalence is a persisted retailer offer linked to one perfume.
type Equivalence struct {
	ID          string    `json:"id"`
	PerfumeID   string    `json:"perfume_id"`
	Title       string    `json:"title"`
	Store       string    `json:"store"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	Gender      string    `json:"gender"`
	BuyLink     string    `json:"buy_link"`
	Created     time.Time `json:"created"`
}

var titleFolder = cases.Fold()

// NormalizeTitle produces the dedup key for a perfume title: Unicode
// case-folded with runs of whitespace collapsed to single spaces, so
// "Le Male" and "LE  MALE" compare equal.
func NormalizeTitle(title string) string {
	folded := titleFolder.String(strings.TrimSpace(title))
	return strings.Join(strings.Fields(folded), " ")
}
