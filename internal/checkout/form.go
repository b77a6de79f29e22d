package checkout

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

// Form field names, as reported in ErrValidation.Fields
const (
	FieldName          = "name"
	FieldEmail         = "email"
	FieldAddress       = "address"
	FieldCity          = "city"
	FieldPhone         = "phone"
	FieldPaymentMethod = "paymentMethod"
	FieldCardNumber    = "cardNumber"
	FieldCardExpiry    = "cardExpiry"
	FieldCardCVV       = "cardCVV"
)

var (
	emailPattern  = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)
	phonePattern  = regexp.MustCompile(`^03[0-9]{9}$`)
	cardPattern   = regexp.MustCompile(`^[0-9]{16}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cvvPattern    = regexp.MustCompile(`^[0-9]{3}$`)
)

func digits(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			if b.Len() == max {
				break
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber keeps at most 16 digits, grouped by four
func FormatCardNumber(s string) string {
	d := digits(s, 16)
	var b strings.Builder
	for i, r := range d {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiry keeps at most 4 digits and inserts the MM/YY separator
func FormatExpiry(s string) string {
	d := digits(s, 4)
	if len(d) > 2 {
		return d[:2] + "/" + d[2:]
	}
	return d
}

// FormatCVV keeps at most 3 digits
func FormatCVV(s string) string {
	return digits(s, 3)
}

// FormatPhone keeps at most 11 digits
func FormatPhone(s string) string {
	return digits(s, 11)
}

// Validate checks every field at once and reports all failures together.
// Card fields are checked only for card payments.
func Validate(form domain.CheckoutForm) error {
	fields := map[string]string{}

	if strings.TrimSpace(form.Name) == "" {
		fields[FieldName] = "Full name required"
	}
	if !emailPattern.MatchString(strings.TrimSpace(form.Email)) {
		fields[FieldEmail] = "Valid email required"
	}
	if strings.TrimSpace(form.Address) == "" {
		fields[FieldAddress] = "Address required"
	}
	if strings.TrimSpace(form.City) == "" {
		fields[FieldCity] = "City required"
	}
	if !phonePattern.MatchString(strings.TrimSpace(form.Phone)) {
		fields[FieldPhone] = "Enter valid phone (03XXXXXXXXX)"
	}

	switch form.PaymentMethod {
	case domain.PaymentCOD:
	case domain.PaymentCard:
		if !cardPattern.MatchString(stripSeparators(form.CardNumber)) {
			fields[FieldCardNumber] = "Card number must be 16 digits"
		}
		if !expiryPattern.MatchString(form.CardExpiry) {
			fields[FieldCardExpiry] = "Expiry must be in MM/YY format"
		}
		if !cvvPattern.MatchString(form.CardCVV) {
			fields[FieldCardCVV] = "CVV must be 3 digits"
		}
	default:
		fields[FieldPaymentMethod] = "Select a payment method"
	}

	if len(fields) > 0 {
		return &errors.ErrValidation{Fields: fields}
	}
	return nil
}

// stripSeparators drops whitespace and dashes from a card number
func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, s)
}
