package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://world.openfoodfacts.org"

// ErrNoProduct is returned when a lookup or search matches nothing usable.
var ErrNoProduct = errors.New("no openfoodfacts product found")

// Product is the subset of an Open Food Facts product gymtrack stores.
// Nutrient values are per 100 g.
type Product struct {
	Code            string
	Name            string
	Brand           string
	CaloriesPer100g float64
	ProteinPer100g  float64
	CarbsPer100g    float64
	// ServingGrams is the labelled serving weight, or 0 when the label has
	// no gram serving.
	ServingGrams float64
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) base() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return defaultBaseURL
	}
	return base
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return &http.Client{Timeout: 12 * time.Second}
	}
	return c.HTTPClient
}

func (c *Client) get(ctx context.Context, what, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create openfoodfacts %s request: %w", what, err)
	}
	req.Header.Set("User-Agent", "gymtrack/1.0")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("execute openfoodfacts %s request: %w", what, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read openfoodfacts %s response: %w", what, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNoProduct
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("openfoodfacts %s request failed with status %d", what, resp.StatusCode)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode openfoodfacts %s response: %w", what, err)
	}
	return nil
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Product{}, fmt.Errorf("barcode is required")
	}
	var parsed offResponse
	u := fmt.Sprintf("%s/api/v2/product/%s.json", c.base(), url.PathEscape(barcode))
	if err := c.get(ctx, "product", u, &parsed); err != nil {
		return Product{}, err
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return Product{}, fmt.Errorf("%w for barcode %q", ErrNoProduct, barcode)
	}
	p := toProduct(parsed.Product)
	if p.Code == "" {
		p.Code = barcode
	}
	return p, nil
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 10
	}
	u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		c.base(),
		url.QueryEscape(strings.TrimSpace(query)),
		limit,
	)
	var parsed offSearchResponse
	if err := c.get(ctx, "search", u, &parsed); err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		if strings.TrimSpace(p.ProductName) == "" {
			continue
		}
		out = append(out, toProduct(p))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w for query %q", ErrNoProduct, query)
	}
	return out, nil
}

func toProduct(p offProduct) Product {
	return Product{
		Code:            strings.TrimSpace(p.Code),
		Name:            strings.TrimSpace(p.ProductName),
		Brand:           strings.TrimSpace(p.Brands),
		CaloriesPer100g: per100g(p, "energy-kcal"),
		ProteinPer100g:  per100g(p, "proteins"),
		CarbsPer100g:    per100g(p, "carbohydrates"),
		ServingGrams:    servingGrams(p),
	}
}

// per100g prefers the labelled _100g value and derives it from the serving
// value when only that is present.
func per100g(p offProduct, base string) float64 {
	if v, ok := parseFloatAny(p.Nutriments[base+"_100g"]); ok {
		return v
	}
	if v, ok := parseFloatAny(p.Nutriments[base+"_serving"]); ok {
		if g := servingGrams(p); g > 0 {
			return v / g * 100
		}
	}
	return 0
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func servingGrams(p offProduct) float64 {
	if q, ok := parseFloatAny(p.ServingQuantity); ok && q > 0 {
		unit := strings.ToLower(strings.TrimSpace(p.ServingQuantityUnit))
		if unit == "" || unit == "g" {
			return q
		}
		return 0
	}
	parts := strings.Fields(strings.TrimSpace(p.ServingSize))
	if len(parts) >= 2 && strings.EqualFold(parts[1], "g") {
		if val, err := strconv.ParseFloat(strings.ReplaceAll(parts[0], ",", ""), 64); err == nil && val > 0 {
			return val
		}
	}
	return 0
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	Code                string         `json:"code"`
	ProductName         string         `json:"product_name"`
	Brands              string         `json:"brands"`
	ServingSize         string         `json:"serving_size"`
	ServingQuantity     any            `json:"serving_quantity"`
	ServingQuantityUnit string         `json:"serving_quantity_unit"`
	Nutriments          map[string]any `json:"nutriments"`
}

type offSearchResponse struct {
	Products []offProduct `json:"products"`
}
