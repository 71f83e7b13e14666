package models

import "time"

// Order is the immutable snapshot written when a cart is confirmed.
type Order struct {
	ID            int64       `gorm:"column:id;primaryKey;autoIncrement"`
	CartID        int64       `gorm:"column:cart_id;not null;uniqueIndex:ux_orders_cart_id"`
	UserID        int64       `gorm:"column:user_id;not null;index:idx_orders_user_id"`
	TotalPrice    int64       `gorm:"column:total_price;not null"`
	TotalQuantity int64       `gorm:"column:total_quantity;not null"`
	CreatedAt     time.Time   `gorm:"column:created_at;autoCreateTime"`
	Lines         []OrderLine `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// OrderLine copies the book fields at confirmation so later catalog edits do not
// rewrite history.
type OrderLine struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID    int64  `gorm:"column:order_id;not null;index:idx_order_lines_order_id"`
	BookID     int64  `gorm:"column:book_id;not null"`
	BookName   string `gorm:"column:book_name;not null"`
	BookAuthor string `gorm:"column:book_author;not null"`
	UnitPrice  int64  `gorm:"column:unit_price;not null"`
	Quantity   int64  `gorm:"column:quantity;not null"`
	Price      int64  `gorm:"column:price;not null"`
}
