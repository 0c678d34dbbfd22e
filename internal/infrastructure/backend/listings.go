package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
)

// availablePageSize is large enough to fetch every open listing in one page.
const availablePageSize = 100

// ListingAPI implements ports.ListingService over /invendus.
type ListingAPI struct {
	c   *Client
	log zerolog.Logger
	now func() time.Time
}

var _ ports.ListingService = (*ListingAPI)(nil)

func NewListingAPI(c *Client, log zerolog.Logger) *ListingAPI {
	return &ListingAPI{c: c, log: log, now: time.Now}
}

// cacheBust adds the timestamp parameter collection calls carry.
func (a *ListingAPI) cacheBust(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	q.Set("timestamp", strconv.FormatInt(a.now().UnixMilli(), 10))
	return q
}

func (a *ListingAPI) ListAvailable(ctx context.Context, token string) ([]domain.Listing, error) {
	q := url.Values{}
	q.Set("statut", string(domain.ListingAvailable))
	q.Set("per_page", strconv.Itoa(availablePageSize))
	raw, err := a.c.Request(ctx, http.MethodGet, "/invendus", a.cacheBust(q), nil, token)
	if err != nil {
		return nil, fmt.Errorf("list available listings: %w", err)
	}
	items, err := DecodeList[listingWire](raw, a.log)
	if err != nil {
		return nil, fmt.Errorf("list available listings: %w", err)
	}
	return listingsToDomain(items), nil
}

func (a *ListingAPI) ListMine(ctx context.Context, token string, f ports.ListingFilter) ([]domain.Listing, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("statut", string(f.Status))
	}
	raw, err := a.c.Request(ctx, http.MethodGet, "/invendus/my", a.cacheBust(q), nil, token)
	if err != nil {
		return nil, fmt.Errorf("list my listings: %w", err)
	}
	items, err := DecodeList[listingWire](raw, a.log)
	if err != nil {
		return nil, fmt.Errorf("list my listings: %w", err)
	}
	return listingsToDomain(items), nil
}

func (a *ListingAPI) Get(ctx context.Context, token string, id int64) (*domain.Listing, error) {
	raw, err := a.c.Request(ctx, http.MethodGet, listingPath(id), nil, nil, token)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("get listing %d: %w", id, err)
	}
	return decodeListing(raw, domain.ErrListingNotFound)
}

func (a *ListingAPI) Create(ctx context.Context, token string, in ports.ListingInput) (*domain.Listing, error) {
	raw, err := a.c.Request(ctx, http.MethodPost, "/invendus", nil, toListingWrite(in), token)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", renameFields(err, listingFieldNames))
	}
	return decodeListing(raw, nil)
}

func (a *ListingAPI) Update(ctx context.Context, token string, id int64, in ports.ListingInput) (*domain.Listing, error) {
	raw, err := a.c.Request(ctx, http.MethodPut, listingPath(id), nil, toListingWrite(in), token)
	if err != nil {
		return nil, fmt.Errorf("update listing %d: %w", id, renameFields(err, listingFieldNames))
	}
	return decodeListing(raw, nil)
}

func (a *ListingAPI) Delete(ctx context.Context, token string, id int64) error {
	if _, err := a.c.Request(ctx, http.MethodDelete, listingPath(id), nil, nil, token); err != nil {
		return fmt.Errorf("delete listing %d: %w", id, err)
	}
	return nil
}

func (a *ListingAPI) Search(ctx context.Context, token string, p ports.SearchParams) ([]domain.Listing, error) {
	q := url.Values{}
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if p.Locality != "" {
		q.Set("localite", p.Locality)
	}
	if p.Region != "" {
		q.Set("canton", p.Region)
	}
	if p.Temperature != "" {
		q.Set("temperature", string(p.Temperature))
	}
	if p.UrgentOnly {
		q.Set("urgent", "1")
	}
	raw, err := a.c.Request(ctx, http.MethodGet, "/search/invendus", a.cacheBust(q), nil, token)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	items, err := DecodeList[listingWire](raw, a.log)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	return listingsToDomain(items), nil
}

func listingPath(id int64) string {
	return "/invendus/" + strconv.FormatInt(id, 10)
}

// decodeListing returns (nil, missing) when the body carries no record.
func decodeListing(raw []byte, missing error) (*domain.Listing, error) {
	w, err := DecodeRecord[listingWire](raw, "invendu")
	if err != nil {
		return nil, err
	}
	if w == nil || w.ID == 0 {
		return nil, missing
	}
	l := w.toDomain()
	return &l, nil
}

func toListingWrite(in ports.ListingInput) listingWrite {
	status := in.Status
	if status == "" {
		status = domain.ListingAvailable
	}
	temp := in.Temperature
	if temp == "" {
		temp = domain.TemperatureRefrigerated
	}
	return listingWrite{
		Title:         in.Title,
		Description:   in.Description,
		Quantity:      in.Quantity,
		Unit:          in.Unit,
		AvailableFrom: wireTime(in.AvailableFrom),
		ExpiresAt:     wireTime(in.ExpiresAt),
		Allergens:     in.Allergens,
		Urgent:        boolInt(in.Urgent),
		Status:        string(status),
		Temperature:   string(temp),
		RestaurantID:  in.RestaurantID,
	}
}

func isNotFound(err error) bool {
	var re *domain.RequestError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}
