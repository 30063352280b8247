package rotation

import "github.com/verte-zerg/rotaenot/internal/anglemath"

// Basket is the angular catch zone an angle falls into.
type Basket int

// Baskets.
const (
	BasketNone Basket = iota
	BasketLeft
	BasketRight
)

// Fixed basket zones, inclusive on both ends: left is 270±45, right is 90±45.
const (
	leftBasketMin  = 225.0
	leftBasketMax  = 315.0
	rightBasketMin = 45.0
	rightBasketMax = 135.0
)

func (b Basket) String() string {
	switch b {
	case BasketLeft:
		return "left"
	case BasketRight:
		return "right"
	default:
		return "none"
	}
}

// BasketFor returns the basket containing angle. The zones are fixed and do
// not scale with any caller-side basket width.
func BasketFor(angle float64) Basket {
	a := anglemath.Normalize(angle)
	switch {
	case a >= leftBasketMin && a <= leftBasketMax:
		return BasketLeft
	case a >= rightBasketMin && a <= rightBasketMax:
		return BasketRight
	default:
		return BasketNone
	}
}
