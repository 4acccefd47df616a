package claim

import (
	"github.com/shopspring/decimal"
)

// FinancialBreakdown is the derived refund/fee/logistics view of a claim.
// NetSellerImpact is negative for a net loss to the seller; the sign is part
// of the contract because downstream displays color by it.
type FinancialBreakdown struct {
	RefundedProduct  decimal.Decimal `json:"refunded_product"`
	RefundedShipping decimal.Decimal `json:"refunded_shipping"`
	FeeRefunded      decimal.Decimal `json:"fee_refunded"`
	LogisticsCost    decimal.Decimal `json:"logistics_cost"`
	NetSellerImpact  decimal.Decimal `json:"net_seller_impact"`
}

// FinancialImpactCalculator derives the breakdown from a claim's nested
/// payment and shipment sub-records. Every operation is null-safe: absent
// fields count as zero.
type FinancialImpactCalculator struct{}

func NewFinancialImpactCalculator() *FinancialImpactCalculator {
	return &FinancialImpactCalculator{}
}

func (c *FinancialImpactCalculator) Calculate(payment *Payment, shipment *Shipment) FinancialBreakdown {
	productPrice := amountOrZero(paymentField(payment, func(p *Payment) *decimal.Decimal { return p.ProductPrice }))
	totalRefunded := amountOrZero(paymentField(payment, func(p *Payment) *decimal.Decimal { return p.TotalRefunded }))
	saleFee := amountOrZero(paymentField(payment, func(p *Payment) *decimal.Decimal { return p.SaleFee }))

	var originalCost, returnCost decimal.Decimal
	if shipment != nil {
		originalCost = amountOrZero(shipment.OriginalCost)
		returnCost = amountOrZero(shipment.ReturnCost)
	}

	refundedProduct := decimal.Min(totalRefunded, productPrice)
	refundedShipping := decimal.Max(decimal.Zero, totalRefunded.Sub(refundedProduct))

	var feeRefunded decimal.Decimal
	if productPrice.IsPositive() {
		feeRefunded = saleFee.Mul(refundedProduct.Div(productPrice))
	}

	logisticsCost := returnCost.Add(originalCost)
	netImpact := productPrice.Sub(feeRefunded).Add(logisticsCost).Neg()

	return FinancialBreakdown{
		RefundedProduct:  refundedProduct,
		RefundedShipping: refundedShipping,
		FeeRefunded:      feeRefunded,
		LogisticsCost:    logisticsCost,
		NetSellerImpact:  netImpact,
	}
}

func paymentField(p *Payment, pick func(*Payment) *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	return pick(p)
}

func amountOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
