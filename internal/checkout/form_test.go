package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

func validForm() domain.CheckoutForm {
	return domain.CheckoutForm{
		Name:          "Ada Lovelace",
		Email:         "ada@example.com",
		Address:       "1 Analytical Way",
		City:          "Lahore",
		Phone:         "03001234567",
		PaymentMethod: domain.PaymentCOD,
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		return map[string]string{}
	}
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestFormatCardNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"4111111111111111extra", "4111 1111 1111 1111"},
		{"4111 1111 1111 11112222", "4111 1111 1111 1111"},
		{"4111-1111", "4111 1111"},
		{"411", "411"},
		{"41111", "4111 1"},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCardNumber(tt.input))
		})
	}
}

func TestFormatExpiryCVVPhone(t *testing.T) {
	assert.Equal(t, "12/34", FormatExpiry("1234"))
	assert.Equal(t, "12/34", FormatExpiry("12/345"))
	assert.Equal(t, "12", FormatExpiry("12"))
	assert.Equal(t, "1", FormatExpiry("1a"))
	assert.Equal(t, "123", FormatCVV("12345"))
	assert.Equal(t, "03001234567", FormatPhone("0300-123-4567-89"))
}

func TestValidatePhone(t *testing.T) {
	form := validForm()
	form.Phone = "12345"
	assert.Contains(t, fieldErrors(t, Validate(form)), FieldPhone)

	form.Phone = "03001234567"
	assert.NotContains(t, fieldErrors(t, Validate(form)), FieldPhone)
}

func TestValidateReportsAllFields(t *testing.T) {
	form := domain.CheckoutForm{PaymentMethod: domain.PaymentCard, Email: "not-an-email", CardNumber: "4111", CardExpiry: "13/24", CardCVV: "1"}

	fields := fieldErrors(t, Validate(form))

	assert.Equal(t, "Full name required", fields[FieldName])
	assert.Equal(t, "Valid email required", fields[FieldEmail])
	assert.Equal(t, "Address required", fields[FieldAddress])
	assert.Equal(t, "City required", fields[FieldCity])
	assert.Equal(t, "Enter valid phone (03XXXXXXXXX)", fields[FieldPhone])
	assert.Equal(t, "Card number must be 16 digits", fields[FieldCardNumber])
	assert.Equal(t, "Expiry must be in MM/YY format", fields[FieldCardExpiry])
	assert.Equal(t, "CVV must be 3 digits", fields[FieldCardCVV])
}

func TestValidateCardFieldsOnlyForCard(t *testing.T) {
	form := validForm()
	form.CardNumber = "garbage"
	require.NoError(t, Validate(form))

	form.PaymentMethod = domain.PaymentCard
	form.CardNumber = "4111 1111 1111 1111"
	form.CardExpiry = "01/29"
	form.CardCVV = "123"
	require.NoError(t, Validate(form))

	form.CardExpiry = "00/29"
	assert.Contains(t, fieldErrors(t, Validate(form)), FieldCardExpiry)
}

func TestValidateEmail(t *testing.T) {
	form := validForm()
	for _, email := range []string{"a.b-c@example.co.uk", "x_y@mail.io"} {
		form.Email = email
		assert.NotContains(t, fieldErrors(t, Validate(form)), FieldEmail, email)
	}
	for _, email := range []string{"a@b", "@example.com", "a@example.toolong", "a b@example.com"} {
		form.Email = email
		assert.Contains(t, fieldErrors(t, Validate(form)), FieldEmail, email)
	}
}

func TestValidateCardNumberSeparators(t *testing.T) {
	form := validForm()
	form.PaymentMethod = domain.PaymentCard
	form.CardExpiry = "01/29"
	form.CardCVV = "123"

	for _, number := range []string{"4111111111111111", "4111\t1111 1111 1111", "4111-1111-1111-1111", " 4111 1111\n1111 1111 "} {
		form.CardNumber = number
		assert.NotContains(t, fieldErrors(t, Validate(form)), FieldCardNumber, number)
	}
	for _, number := range []string{"4111 1111 1111 111", "4111-1111-1111-11112", "4111.1111.1111.1111"} {
		form.CardNumber = number
		assert.Contains(t, fieldErrors(t, Validate(form)), FieldCardNumber, number)
	}
}
