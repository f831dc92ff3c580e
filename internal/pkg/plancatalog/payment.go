package plancatalog

import (
	"strconv"

	"github.com/ashram-web/satsang-server/app/models"
	"github.com/ashram-web/satsang-server/internal/pkg/env"
)

// DefaultAutopayMaxPrice is the highest price (paise) still collected via
// recurring autopay when AUTOPAY_MAX_PRICE is not configured.
const DefaultAutopayMaxPrice = int64(2100)

// AutopayMaxPrice returns the configured autopay threshold.
func AutopayMaxPrice() int64 {
	raw := env.GetEnv("AUTOPAY_MAX_PRICE", "")
	if raw == "" {
		return DefaultAutopayMaxPrice
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return DefaultAutopayMaxPrice
	}
	return v
}

// PaymentMethodForPrice routes a plan price to the payment flow the external
// payment collaborator must use. The threshold is a single configured value
// so the rule stays consistent when new tiers land between existing prices.
func PaymentMethodForPrice(price int64) string {
	switch {
	case price == 0:
		return models.PaymentMethodNone
	case price <= AutopayMaxPrice():
		return models.PaymentMethodAutopay
	default:
		return models.PaymentMethodManual
	}
}
