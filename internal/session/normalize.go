package session

import (
	"strconv"
	"strings"

	"github.com/jafarshop/storefront/internal/domain"
)

// Field aliases, in precedence order. A nested "user." prefix means one
// level under the user sub-object.
var (
	credentialAliases = []string{"token", "accessToken", "jwt", "_token"}
	idAliases         = []string{"_id", "id", "userId", "user._id", "user.id"}
	emailAliases      = []string{"email", "user.email"}
	phoneAliases      = []string{"phone", "user.phone"}
	roleAliases       = []string{"role", "user.role"}
)

// Normalize maps a raw identity payload onto the canonical Identity. It is
// total: fields it cannot find come back empty. Normalize(id.Fields()) == id.
func Normalize(raw map[string]interface{}) domain.Identity {
	if raw == nil {
		return domain.Identity{}
	}
	email := firstString(raw, emailAliases...)
	return domain.Identity{
		ID:         firstString(raw, idAliases...),
		Name:       normalizeName(raw, email),
		Email:      email,
		Phone:      firstString(raw, phoneAliases...),
		Role:       domain.ParseRole(firstString(raw, roleAliases...)),
		Credential: firstString(raw, credentialAliases...),
	}
}

// FromAuthResponse normalizes a sign-in/sign-up response. The identity is the
// user sub-object when there is one, else the body itself; the credential is
// body.token, else body.accessToken, else the user object's own token.
func FromAuthResponse(body map[string]interface{}) domain.Identity {
	if body == nil {
		return domain.Identity{}
	}
	payload := body
	if user, ok := body["user"].(map[string]interface{}); ok {
		payload = user
	}

	merged := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		merged[k] = v
	}
	if token := firstString(body, "token", "accessToken"); token != "" {
		merged["token"] = token
	}
	return Normalize(merged)
}

// Recognizable reports whether a normalized response carries a user or a token
func Recognizable(identity domain.Identity) bool {
	return identity.ID != "" || identity.Credential != ""
}

// normalizeName: explicit name (even empty), else "first last" trimmed, else email
func normalizeName(raw map[string]interface{}, email string) string {
	if v, ok := raw["name"]; ok && v != nil {
		if s, ok := StringValue(v); ok {
			return s
		}
	}
	first, _ := StringValue(raw["firstName"])
	last, _ := StringValue(raw["lastName"])
	if full := strings.TrimSpace(first + " " + last); full != "" {
		return full
	}
	return email
}

func firstString(raw map[string]interface{}, aliases ...string) string {
	for _, alias := range aliases {
		if s, ok := lookup(raw, alias); ok && s != "" {
			return s
		}
	}
	return ""
}

func lookup(raw map[string]interface{}, path string) (string, bool) {
	if rest, nested := strings.CutPrefix(path, "user."); nested {
		user, ok := raw["user"].(map[string]interface{})
		if !ok {
			return "", false
		}
		return StringValue(user[rest])
	}
	return StringValue(raw[path])
}

// StringValue accepts strings and the numeric ids some backends return
func StringValue(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}
