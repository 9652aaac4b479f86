package models

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&Variant{},
		&Cart{},
		&CartItem{},
		&WishlistItem{},
		&ShippingProvider{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&Coupon{},
		&SupportTicket{},
		&TicketMessage{},
		&Banner{},
	}
}
