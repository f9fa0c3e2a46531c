package cart

// Snapshot is the product information captured when a line is added. The
// price is frozen at add time: catalog changes never retroactively alter
// a cart's totals within the session.
type Snapshot struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Image     string `json:"image"`
	Category  string `json:"category"`
}

// Line is one purchasable configuration in the cart. The identity of a
// line is the (product, size, color) triple; quantity is always >= 1 for
// a line that exists.
type Line struct {
	Snapshot
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
}

func (l Line) matches(productID, size, color string) bool {
	return l.ProductID == productID && l.Size == size && l.Color == color
}

// Cart holds the lines of one browsing session. The zero value is an
// empty, closed cart. Totals are derived on every read and never stored.
type Cart struct {
	Lines []Line `json:"items"`
	Open  bool   `json:"open"`
}

func (c *Cart) add(snap Snapshot, size, color string) {
	for i := range c.Lines {
		if c.Lines[i].matches(snap.ProductID, size, color) {
			c.Lines[i].Quantity++
			c.Open = true
			return
		}
	}

	c.Lines = append(c.Lines, Line{Snapshot: snap, Size: size, Color: color, Quantity: 1})
	c.Open = true
}

func (c *Cart) removeLine(productID, size, color string) {
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if !l.matches(productID, size, color) {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
}

// removeProduct drops every variant of the product, matching the coarse
// removal the storefront drawer has always offered.
func (c *Cart) removeProduct(productID string) {
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
}

func (c *Cart) setQuantity(productID, size, color string, quantity int) {
	if quantity <= 0 {
		c.removeLine(productID, size, color)
		return
	}

	for i := range c.Lines {
		if c.Lines[i].matches(productID, size, color) {
			c.Lines[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) clear() {
	c.Lines = nil
}

func (c Cart) TotalItems() int {
	var n int
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) TotalPrice() int {
	var sum int
	for _, l := range c.Lines {
		sum += l.Price * l.Quantity
	}
	return sum
}

func (c Cart) copy() Cart {
	out := Cart{Open: c.Open}
	if len(c.Lines) > 0 {
		out.Lines = make([]Line, len(c.Lines))
		copy(out.Lines, c.Lines)
	}
	return out
}
