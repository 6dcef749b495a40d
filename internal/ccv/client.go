// Package ccv is the CCV Shop REST client. It implements stock.Catalog and
// isolates the shop's payload variance behind a normalization adapter, so
// the reconciliation engine only ever sees the fixed Product shape.
package ccv

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"invoicer/internal/stock"

	"github.com/rs/zerolog"
)

const productsPath = "/api/rest/v1/products"

// Config carries the CCV Shop API credentials and endpoint.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// Client signs every request with the CCV scheme: an HMAC-SHA512 over
// "key|METHOD|path|body|timestamp" sent as x-public/x-date/x-hash headers.
type Client struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
	now    func() time.Time
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "ccv_client").Logger(),
		now:    time.Now,
	}
}

// ListProducts fetches the product catalog, passing filters through as
// query parameters (the API confirms productnumber; others are forwarded
// as-is).
func (c *Client) ListProducts(ctx context.Context, filters map[string]string) ([]stock.Product, error) {
	uriPath := productsPath
	if len(filters) > 0 {
		values := url.Values{}
		keys := make([]string, 0, len(filters))
		for k := range filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if filters[k] != "" {
				values.Set(k, filters[k])
			}
		}
		if encoded := values.Encode(); encoded != "" {
			uriPath += "?" + encoded
		}
	}

	body, status, err := c.do(ctx, http.MethodGet, uriPath, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("ccv: list products returned status %d", status)
	}

	raws, err := extractProductList(body)
	if err != nil {
		return nil, fmt.Errorf("ccv: decode product list: %w", err)
	}

	products := make([]stock.Product, 0, len(raws))
	for _, raw := range raws {
		products = append(products, normalizeProduct(raw))
	}
	c.logger.Debug().Int("count", len(products)).Msg("fetched shop products")
	return products, nil
}

// GetProductByID fetches a single product. A 404 yields (nil, nil).
func (c *Client) GetProductByID(ctx context.Context, id string) (*stock.Product, error) {
	body, status, err := c.do(ctx, http.MethodGet, productsPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("ccv: get product %s returned status %d", id, status)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("ccv: decode product: %w", err)
	}
	product := normalizeProduct(raw)
	return &product, nil
}

// UpdateStock patches the product's stock level. The shop echoes the
// updated product on success; any 2xx counts as acknowledged.
func (c *Client) UpdateStock(ctx context.Context, id string, newStock int) (bool, error) {
	payload, _ := json.Marshal(map[string]int{"stock": newStock})
	_, status, err := c.do(ctx, http.MethodPatch, productsPath+"/"+url.PathEscape(id), payload)
	if err != nil {
		return false, err
	}
	if status < 200 || status > 299 {
		c.logger.Warn().Str("productId", id).Int("status", status).Msg("stock update rejected by shop")
		return false, nil
	}
	c.logger.Info().Str("productId", id).Int("newStock", newStock).Msg("updated shop stock")
	return true, nil
}

func (c *Client) do(ctx context.Context, method, uriPath string, body []byte) ([]byte, int, error) {
	if c.cfg.BaseURL == "" || c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		return nil, 0, fmt.Errorf("ccv: missing api credentials")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+uriPath, reader)
	if err != nil {
		return nil, 0, err
	}

	timestamp, hash := c.sign(method, uriPath, body)
	req.Header.Set("x-public", c.cfg.APIKey)
	req.Header.Set("x-date", timestamp)
	req.Header.Set("x-hash", hash)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("ccv: %s %s: %w", method, uriPath, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("ccv: read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

func (c *Client) sign(method, uriPath string, body []byte) (timestamp, hash string) {
	timestamp = c.now().UTC().Format("2006-01-02T15:04:05.000Z")
	message := strings.Join([]string{
		c.cfg.APIKey,
		strings.ToUpper(method),
		uriPath,
		string(body),
		timestamp,
	}, "|")

	mac := hmac.New(sha512.New, []byte(c.cfg.APISecret))
	mac.Write([]byte(message))
	return timestamp, hex.EncodeToString(mac.Sum(nil))
}

// extractProductList tolerates the API returning either a bare array or an
// object wrapping it under products/data/items.
func extractProductList(body []byte) ([]map[string]any, error) {
	var asList []map[string]any
	if err := json.Unmarshal(body, &asList); err == nil {
		return asList, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	for _, key := range []string{"products", "data", "items"} {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &asList); err == nil {
			return asList, nil
		}
	}
	return nil, nil
}

// normalizeProduct maps the shop's loosely typed payload into the fixed
// Product shape. Stock may live under stock, quantity or stockquantity,
// numeric or string; all absent means tracking is disabled.
func normalizeProduct(raw map[string]any) stock.Product {
	return stock.Product{
		ID:    stringField(raw, "id", "product_id"),
		Name:  textField(raw, "name", "title"),
		SKU:   textField(raw, "productnumber", "sku"),
		Price: numberField(raw, "price", "salesprice"),
		Stock: stockField(raw, "stock", "quantity", "stockquantity"),
	}
}

func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func textField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func numberField(raw map[string]any, keys ...string) float64 {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func stockField(raw map[string]any, keys ...string) *int {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			n := int(v)
			return &n
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				n := int(f)
				return &n
			}
		}
	}
	return nil
}
