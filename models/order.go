package models

import "time"

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:    {OrderConfirmed: true, OrderCancelled: true},
	OrderConfirmed:  {OrderProcessing: true, OrderCancelled: true},
	OrderProcessing: {OrderShipped: true, OrderCancelled: true},
	OrderShipped:    {OrderDelivered: true},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	return orderTransitions[s][next]
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// PaymentStatus tracks whether an order has been paid for
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Address is a postal address embedded in orders
type Address struct {
	FullName   string `json:"fullName" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// Order is a placed purchase with a snapshot of its items
type Order struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	TenantID           string            `gorm:"not null;index" json:"-"`
	OrderNumber        string            `gorm:"not null;uniqueIndex" json:"orderNumber"`
	UserID             uint              `gorm:"not null;index" json:"userId"`
	User               *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items              []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal           float64           `gorm:"not null" json:"subtotal"`
	Discount           float64           `gorm:"not null;default:0" json:"discount"`
	ShippingCost       float64           `gorm:"not null;default:0" json:"shippingCost"`
	Total              float64           `gorm:"not null" json:"total"`
	CouponCode         *string           `json:"couponCode"`
	Status             OrderStatus       `gorm:"not null;default:'pending';index" json:"status"`
	PaymentStatus      PaymentStatus     `gorm:"not null;default:'pending'" json:"paymentStatus"`
	PaymentMethod      string            `gorm:"not null;default:'cod'" json:"paymentMethod"`
	ShippingAddress    Address           `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	ShippingProviderID *uint             `json:"shippingProviderId"`
	ShippingProvider   *ShippingProvider `gorm:"foreignKey:ShippingProviderID" json:"shippingProvider,omitempty"`
	TrackingNumber     *string           `json:"trackingNumber"`
	Notes              string            `json:"notes,omitempty"`
	CancelReason       string            `json:"cancelReason,omitempty"`
	DeliveredAt        *time.Time        `json:"deliveredAt"`
	CancelledAt        *time.Time        `json:"cancelledAt"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a snapshot of a purchased variant
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"orderId"`
	ProductID uint    `gorm:"not null;index" json:"productId"`
	VariantID uint    `gorm:"not null" json:"variantId"`
	Name      string  `gorm:"not null" json:"name"`
	SKU       string  `gorm:"not null" json:"sku"`
	Color     string  `json:"color,omitempty"`
	Size      string  `json:"size,omitempty"`
	Quantity  int     `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price     float64 `gorm:"not null" json:"price"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// Payment records an attempt to pay for an order
type Payment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TenantID      string    `gorm:"not null;index" json:"-"`
	OrderID       uint      `gorm:"not null;index" json:"orderId"`
	UserID        uint      `gorm:"not null;index" json:"userId"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Method        string    `gorm:"not null" json:"method"` // cod, card, upi, wallet, netbanking
	Status        string    `gorm:"not null;default:'pending'" json:"status"`
	TransactionID *string   `json:"transactionId"`
	FailureReason string    `json:"failureReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

const (
	PaymentRecordPending   = "pending"
	PaymentRecordCompleted = "completed"
	PaymentRecordFailed    = "failed"
	PaymentRecordRefunded  = "refunded"
)

// PaymentMethods lists accepted payment methods
var PaymentMethods = []string{"cod", "card", "upi", "wallet", "netbanking"}
