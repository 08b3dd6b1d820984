package commission

// ZeroCommissionFee implements Model with zero commission.
type ZeroCommissionFee struct{}

// NewZeroCommissionFee creates a new zero commission fee.
func NewZeroCommissionFee() Model {
	return &ZeroCommissionFee{}
}

// Calculate returns 0 for any contract count.
func (c *ZeroCommissionFee) Calculate(contracts float64) float64 {
	return 0.0
}
