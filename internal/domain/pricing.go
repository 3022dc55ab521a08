package domain

// ShippingRate is the flat shipping charge applied to an order subtotal.
const ShippingRate = 0.02

// CartLine pairs an order item with the product it references, which is
// everything needed to price the line.
type CartLine struct {
	Item    *OrderItem `json:"item"`
	Product *Product   `json:"product"`
}

// Total returns quantity times the product's effective price.
func (l CartLine) Total() float64 {
	return float64(l.Item.Quantity) * l.Product.EffectivePrice()
}

// Subtotal sums the line totals of all lines in a cart.
func Subtotal(lines []CartLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.Total()
	}
	return total
}

// ShippingPrice derives the shipping charge from a subtotal.
func ShippingPrice(subtotal float64) float64 {
	return subtotal * ShippingRate
}

// GrandTotal is the amount the buyer pays: subtotal plus shipping.
func GrandTotal(subtotal float64) float64 {
	return subtotal + ShippingPrice(subtotal)
}
