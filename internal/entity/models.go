package entity

import (
	"time"
)

// Product represents a product in the store. Stock is only ever mutated by
// the checkout reconciliation; admin CRUD covers everything else.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock"`
}

// User is a registered account. HashedPassword is a bcrypt digest and is
// never serialized.
type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"`
	IsAdmin        bool   `json:"is_admin"`
}

// Review is a rating (1..5) with an optional comment, attached to one
// product by one user. Username is denormalized for display.
type Review struct {
	ID        int64     `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderItem is a line item within an order. Price is the price-at-purchase
// snapshot, decoupled from the product's current price.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order represents a completed purchase. Orders are immutable once created.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Items      []OrderItem `json:"items"`
	TotalPrice float64     `json:"total_price"`
	CreatedAt  time.Time   `json:"created_at"`
}

// --- Events ---

// Event represents a domain event.
type Event interface {
	EventType() string
}

// OrderPlaced is emitted after a checkout commits with at least one accepted
// line. OrderID and UserID are empty for guest checkouts, which consume
// stock without an order record.
type OrderPlaced struct {
	OrderID    string      `json:"order_id"`
	UserID     string      `json:"user_id"`
	Items      []OrderItem `json:"items"`
	TotalPrice float64     `json:"total_price"`
	PlacedAt   time.Time   `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// ProductStockDepleted is emitted when a checkout drives a product's stock
// to zero.
type ProductStockDepleted struct {
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	DepletedAt time.Time `json:"depleted_at"`
}

func (e ProductStockDepleted) EventType() string { return "ProductStockDepleted" }
