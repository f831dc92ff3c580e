package plancatalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashram-web/satsang-server/app/models"
)

func TestPaymentMethodForPrice(t *testing.T) {
	assert.Equal(t, models.PaymentMethodNone, PaymentMethodForPrice(0))
	assert.Equal(t, models.PaymentMethodAutopay, PaymentMethodForPrice(1))
	assert.Equal(t, models.PaymentMethodAutopay, PaymentMethodForPrice(300))
	assert.Equal(t, models.PaymentMethodAutopay, PaymentMethodForPrice(DefaultAutopayMaxPrice))
	assert.Equal(t, models.PaymentMethodManual, PaymentMethodForPrice(DefaultAutopayMaxPrice+1))
	assert.Equal(t, models.PaymentMethodManual, PaymentMethodForPrice(50000))
}

func TestPaymentMethodForPriceConfiguredThreshold(t *testing.T) {
	t.Setenv("AUTOPAY_MAX_PRICE", "500")

	assert.Equal(t, models.PaymentMethodAutopay, PaymentMethodForPrice(500))
	assert.Equal(t, models.PaymentMethodManual, PaymentMethodForPrice(501))
}

func TestPaymentMethodForPriceIgnoresBadThreshold(t *testing.T) {
	t.Setenv("AUTOPAY_MAX_PRICE", "not-a-number")

	assert.Equal(t, models.PaymentMethodAutopay, PaymentMethodForPrice(DefaultAutopayMaxPrice))
	assert.Equal(t, models.PaymentMethodManual, PaymentMethodForPrice(DefaultAutopayMaxPrice+1))
}
