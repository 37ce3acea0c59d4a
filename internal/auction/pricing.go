package auction

import "github.com/shopspring/decimal"

const monetaryPrecision int32 = 2

var (
	buyerPremiumRate = decimal.RequireFromString("0.12")
	insuranceRate    = decimal.RequireFromString("0.02")
	shippingFee      = decimal.NewFromInt(195)
)

// Quote is the buyer's amount due for a won lot
type Quote struct {
	HammerPrice  float64 `json:"hammer_price"`
	BuyerPremium float64 `json:"buyer_premium"`
	Insurance    float64 `json:"insurance"`
	Shipping     float64 `json:"shipping"`
	Total        float64 `json:"total"`
}

// ComputeTotal derives premium, insurance, shipping and total from the hammer price.
// Shipping is only charged for a positive hammer price.
func ComputeTotal(hammerPrice float64) Quote {
	hammer := decimal.NewFromFloat(hammerPrice).Round(monetaryPrecision)

	premium := hammer.Mul(buyerPremiumRate).Round(monetaryPrecision)
	insurance := hammer.Mul(insuranceRate).Round(monetaryPrecision)
	shipping := decimal.Zero
	if hammer.IsPositive() {
		shipping = shippingFee
	}
	total := hammer.Add(premium).Add(insurance).Add(shipping)

	return Quote{
		HammerPrice:  hammer.InexactFloat64(),
		BuyerPremium: premium.InexactFloat64(),
		Insurance:    insurance.InexactFloat64(),
		Shipping:     shipping.InexactFloat64(),
		Total:        total.InexactFloat64(),
	}
}
