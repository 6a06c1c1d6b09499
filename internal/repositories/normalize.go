package repositories

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bloxstore/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Rows read from the hosted store may carry a column under its declared camelCase
// name or under the lowercased name PostgreSQL folds unquoted identifiers to.
// Everything above this file sees only the canonical model.

// firstPresent returns the first non-nil value stored under one of keys.
func firstPresent(row map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(row map[string]interface{}, keys ...string) string {
	v, _ := firstPresent(row, keys...)
	return cast.ToString(v)
}

func intField(row map[string]interface{}, def int, keys ...string) int {
	v, ok := firstPresent(row, keys...)
	if !ok {
		return def
	}
	return cast.ToInt(v)
}

func boolField(row map[string]interface{}, def bool, keys ...string) bool {
	v, ok := firstPresent(row, keys...)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case int64:
		return x != 0
	case float64:
		return x != 0
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

func timeField(row map[string]interface{}, keys ...string) time.Time {
	v, ok := firstPresent(row, keys...)
	if !ok {
		return time.Time{}
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func toDecimal(v interface{}) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case []byte:
		d, err := decimal.NewFromString(string(x))
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float32, float64:
		return decimal.NewFromFloat(cast.ToFloat64(x))
	default:
		return decimal.NewFromInt(cast.ToInt64(x))
	}
}

// toStringSlice accepts native slices, JSON arrays and PostgreSQL array literals.
func toStringSlice(v interface{}) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return toStringSlice(string(x))
	case string:
		s := strings.TrimSpace(x)
		switch {
		case s == "" || s == "{}" || s == "[]":
			return []string{}
		case strings.HasPrefix(s, "["):
			var out []string
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				return []string{}
			}
			return out
		case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
			parts := strings.Split(s[1:len(s)-1], ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				out = append(out, strings.Trim(p, `"`))
			}
			return out
		}
		return []string{s}
	default:
		return cast.ToStringSlice(x)
	}
}

// decodeJSON decodes a json/jsonb column that may arrive as text, bytes or an already decoded value.
func decodeJSON(v interface{}, out interface{}) error {
	var raw []byte
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		raw = x
	case string:
		raw = []byte(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return err
		}
		raw = b
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func normalizeProduct(row map[string]interface{}) models.Product {
	price, _ := firstPresent(row, "price")
	typ := stringField(row, "type")
	p := models.Product{
		ID:            stringField(row, "id"),
		Name:          stringField(row, "name"),
		Description:   stringField(row, "description"),
		Image:         stringField(row, "image"),
		Price:         toDecimal(price),
		Type:          models.ProductType(typ),
		Level:         intField(row, 0, "level"),
		InStock:       boolField(row, false, "inStock", "instock"),
		StockQuantity: intField(row, 0, "stockQuantity", "stockquantity"),
	}
	if v, ok := firstPresent(row, "fruits"); ok {
		p.Fruits = toStringSlice(v)
	}
	if v, ok := firstPresent(row, "rareItems", "rareitems"); ok {
		p.RareItems = toStringSlice(v)
	} else {
		p.RareItems = []string{}
	}
	p.PaymentMethods = []models.PaymentMethod{models.PaymentRoblox}
	if v, ok := firstPresent(row, "paymentMethods", "paymentmethods"); ok {
		if methods := toStringSlice(v); len(methods) > 0 {
			p.PaymentMethods = p.PaymentMethods[:0]
			for _, m := range methods {
				p.PaymentMethods = append(p.PaymentMethods, models.PaymentMethod(m))
			}
		}
	}
	return p
}

func normalizeProfile(row map[string]interface{}) (models.Profile, error) {
	p := models.Profile{
		ID:        stringField(row, "id"),
		Username:  stringField(row, "username"),
		Email:     stringField(row, "email"),
		Role:      models.Role(stringField(row, "role")),
		IsBanned:  boolField(row, false, "isBanned", "isbanned"),
		CreatedAt: timeField(row, "createdAt", "createdat"),
		Cart:      []models.CartItem{},
		Wishlist:  []string{},
	}
	if p.Role == "" {
		p.Role = models.RoleUser
	}
	if v, ok := firstPresent(row, "cart_data", "cartData"); ok {
		if err := decodeJSON(v, &p.Cart); err != nil {
			return p, fmt.Errorf("failed to decode cart snapshot of profile %s: %w", p.ID, err)
		}
	}
	if v, ok := firstPresent(row, "wishlist_data", "wishlistData"); ok {
		if err := decodeJSON(v, &p.Wishlist); err != nil {
			return p, fmt.Errorf("failed to decode wishlist snapshot of profile %s: %w", p.ID, err)
		}
	}
	if p.Cart == nil {
		p.Cart = []models.CartItem{}
	}
	if p.Wishlist == nil {
		p.Wishlist = []string{}
	}
	return p, nil
}
