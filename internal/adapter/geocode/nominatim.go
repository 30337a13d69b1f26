package geocode

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"foodrescue-backend/internal/domain/geo"
)

var ErrNoResult = errors.New("geocode: no result")

// Client talks to a Nominatim-compatible endpoint and caches answers in Redis.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	rdb       *redis.Client
	ttl       time.Duration
	log       *zap.Logger
}

// NewClient: rdb may be nil to disable caching.
func NewClient(baseURL, userAgent string, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: 10 * time.Second},
		rdb:       rdb,
		ttl:       ttl,
		log:       log,
	}
}

// nominatim returns coordinates as strings
type searchHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (c *Client) Geocode(ctx context.Context, address string) (*geo.Place, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoResult
	}
	sum := sha1.Sum([]byte(strings.ToLower(address)))
	key := "geocode:fwd:" + hex.EncodeToString(sum[:])

	var cached geo.Place
	if c.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("q", address)
	var hits []searchHit
	if err := c.get(ctx, "/search", q, &hits); err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, ErrNoResult
	}
	lat, err1 := strconv.ParseFloat(hits[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(hits[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("geocode: bad coordinates %q,%q", hits[0].Lat, hits[0].Lon)
	}
	p := &geo.Place{Lat: lat, Lng: lng, DisplayName: hits[0].DisplayName}
	c.cacheSet(ctx, key, p)
	return p, nil
}

// Reverse returns a display name for the point, or "lat, lng" when the
// lookup fails.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) string {
	fallback := FormatPoint(lat, lng)
	key := "geocode:rev:" + fmt.Sprintf("%.5f,%.5f", lat, lng)

	var cached geo.Place
	if c.cacheGet(ctx, key, &cached) {
		return cached.DisplayName
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	var hit searchHit
	if err := c.get(ctx, "/reverse", q, &hit); err != nil {
		c.log.Warn("reverse geocode failed", zap.Error(err))
		return fallback
	}
	if hit.DisplayName == "" {
		return fallback
	}
	c.cacheSet(ctx, key, &geo.Place{Lat: lat, Lng: lng, DisplayName: hit.DisplayName})
	return hit.DisplayName
}

var _ geo.Geocoder = (*Client)(nil)

func FormatPoint(lat, lng float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lng)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocode: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("geocode: decode: %w", err)
	}
	return nil
}

func (c *Client) cacheGet(ctx context.Context, key string, out *geo.Place) bool {
	if c.rdb == nil {
		return false
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("geocode cache read failed", zap.Error(err))
		}
		return false
	}
	return json.Unmarshal(b, out) == nil
}

func (c *Client) cacheSet(ctx context.Context, key string, p *geo.Place) {
	if c.rdb == nil {
		return
	}
	b, _ := json.Marshal(p)
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.log.Warn("geocode cache write failed", zap.Error(err))
	}
}
