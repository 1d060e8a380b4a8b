package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/insanerask77/tienda-perfumes/internal/model"
)

const (
	defaultPerfumeCollection     = "perfumes"
	defaultEquivalenceCollection = "equivalencias"
)

// PocketBase implements Store against a PocketBase records API.
type PocketBase struct {
	baseURL      string
	token        string
	perfumes     string
	equivalences string
	http         *http.Client
}

// PBOption configures the PocketBase store.
type PBOption func(*PocketBase)

// WithToken sets an admin token sent on every request.
func WithToken(token string) PBOption {
	return func(p *PocketBase) { p.token = token }
}

// WithCollections overrides the collection names.
func WithCollections(perfumes, equivalences string) PBOption {
	return func(p *PocketBase) {
		p.perfumes = perfumes
		p.equivalences = equivalences
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) PBOption {
	return func(p *PocketBase) { p.http = hc }
}

// NewPocketBase creates a PocketBase-backed store rooted at baseURL
// (e.g. "http://localhost:8080").
func NewPocketBase(baseURL string, opts ...PBOption) *PocketBase {
	p := &PocketBase{
		baseURL:      strings.TrimRight(baseURL, "/"),
		perfumes:     defaultPerfumeCollection,
		equivalences: defaultEquivalenceCollection,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PocketBase) recordsURL(collection string) string {
	return p.baseURL + "/api/collections/" + collection + "/records"
}

// equivalencePayload is the create-record body for an equivalence.
type equivalencePayload struct {
	PerfumeID   string `json:"perfume_id"`
	Title       string `json:"title"`
	Store       string `json:"store"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Gender      string `json:"gender"`
	BuyLink     string `json:"buy_link"`
}

// listResponse is the PocketBase paginated list envelope.
type listResponse[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	Items      []T `json:"items"`
}

// escapeFilter escapes a value for use inside a double-quoted PocketBase
// filter literal.
func escapeFilter(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}

func (p *PocketBase) FindPerfumeByTitle(ctx context.Context, title string) (*model.Perfume, error) {
	// PocketBase has no case-insensitive equality operator, so filter with
	// the LIKE-style "~" and pick the exact normalized match client-side.
	filter := `title~"` + escapeFilter(title) + `"`
	q := url.Values{}
	q.Set("filter", filter)
	q.Set("perPage", "50")

	body, status, err := p.do(ctx, http.MethodGet, p.recordsURL(p.perfumes)+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &StoreError{Op: "find perfume", Err: err}
	}
	if status != http.StatusOK {
		return nil, &StoreError{Op: "find perfume", StatusCode: status}
	}

	var list listResponse[model.Perfume]
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &StoreError{Op: "find perfume", Err: eris.Wrap(err, "decode list")}
	}

	want := model.NormalizeTitle(title)
	for i := range list.Items {
		if model.NormalizeTitle(list.Items[i].Title) == want {
			return &list.Items[i], nil
		}
	}
	return nil, nil
}

func (p *PocketBase) CreatePerfume(ctx context.Context, draft model.PerfumeDraft) (*model.Perfume, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, &StoreError{Op: "create perfume", Err: err}
	}

	body, status, err := p.do(ctx, http.MethodPost, p.recordsURL(p.perfumes), payload)
	if err != nil {
		return nil, &StoreError{Op: "create perfume", Err: err}
	}

	switch {
	case status == http.StatusOK:
		var perfume model.Perfume
		if err := json.Unmarshal(body, &perfume); err != nil {
			return nil, &StoreError{Op: "create perfume", Err: eris.Wrap(err, "decode record")}
		}
		return &perfume, nil
	case status == http.StatusBadRequest && isUniqueViolation(body):
		return nil, &ConflictError{Title: draft.Title}
	default:
		return nil, &StoreError{Op: "create perfume", StatusCode: status}
	}
}

func (p *PocketBase) CreateEquivalence(ctx context.Context, perfumeID string, draft model.EquivalenceDraft) (*model.Equivalence, error) {
	// Only the writable fields; the backend assigns id and timestamps.
	record := equivalencePayload{
		PerfumeID:   perfumeID,
		Title:       draft.Title,
		Store:       draft.Store,
		Price:       draft.Price,
		Description: draft.Description,
		Gender:      draft.Gender,
		BuyLink:     draft.BuyLink,
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, &StoreError{Op: "create equivalence", Err: err}
	}

	body, status, err := p.do(ctx, http.MethodPost, p.recordsURL(p.equivalences), payload)
	if err != nil {
		return nil, &StoreError{Op: "create equivalence", Err: err}
	}
	if status != http.StatusOK {
		return nil, &StoreError{Op: "create equivalence", StatusCode: status}
	}

	var created model.Equivalence
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, &StoreError{Op: "create equivalence", Err: eris.Wrap(err, "decode record")}
	}
	return &created, nil
}

func (p *PocketBase) Health(ctx context.Context) error {
	_, status, err := p.do(ctx, http.MethodGet, p.recordsURL(p.perfumes)+"?perPage=1", nil)
	if err != nil {
		return eris.Wrap(err, "store: backend unreachable")
	}
	if status != http.StatusOK {
		return eris.Errorf("store: backend health check returned status %d", status)
	}
	return nil
}

// Close is a no-op; the store holds no connections beyond the HTTP pool.
func (p *PocketBase) Close() error { return nil }

func (p *PocketBase) do(ctx context.Context, method, reqURL string, payload []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, 0, eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", p.token)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, 0, eris.Wrap(err, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, eris.Wrap(err, "read response body")
	}
	return body, resp.StatusCode, nil
}

// isUniqueViolation inspects a 400 response body for PocketBase's
// not-unique validation code.
func isUniqueViolation(body []byte) bool {
	return bytes.Contains(body, []byte("validation_not_unique"))
}
