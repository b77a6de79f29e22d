package cart

import (
	"strings"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/session"
)

// ResolveProductRef extracts a product id from a bare id or a product-shaped
// value. Maps are checked for _id, id, productId, product._id, product.id and
// a bare product string, in that order. Returns "" when nothing resolves.
func ResolveProductRef(ref interface{}) string {
	switch v := ref.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case domain.FlexString:
		return strings.TrimSpace(string(v))
	case domain.Product:
		return v.ID
	case *domain.Product:
		if v == nil {
			return ""
		}
		return v.ID
	case domain.ProductSnapshot:
		return v.ID
	case *domain.ProductSnapshot:
		if v == nil {
			return ""
		}
		return v.ID
	case domain.CartLine:
		return lineRef(v)
	case *domain.CartLine:
		if v == nil {
			return ""
		}
		return lineRef(*v)
	case map[string]interface{}:
		return mapRef(v)
	default:
		return ""
	}
}

func lineRef(l domain.CartLine) string {
	if l.ProductRef != "" {
		return l.ProductRef
	}
	if l.Product != nil {
		return l.Product.ID
	}
	return ""
}

func mapRef(m map[string]interface{}) string {
	for _, key := range []string{"_id", "id", "productId"} {
		if s := idValue(m[key]); s != "" {
			return s
		}
	}
	switch p := m["product"].(type) {
	case map[string]interface{}:
		for _, key := range []string{"_id", "id"} {
			if s := idValue(p[key]); s != "" {
				return s
			}
		}
	case string:
		return strings.TrimSpace(p)
	}
	return ""
}

// idValue reads an id the way identity normalization does, numeric ids included
func idValue(v interface{}) string {
	s, _ := session.StringValue(v)
	return strings.TrimSpace(s)
}
