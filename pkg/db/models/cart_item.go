package models

import "time"

// CartItem is one book line of a cart. Price is Quantity times the book price
// at the time the line was written.
type CartItem struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CartID    int64     `gorm:"column:cart_id;not null;uniqueIndex:ux_cart_items_cart_book,priority:1"`
	BookID    int64     `gorm:"column:book_id;not null;uniqueIndex:ux_cart_items_cart_book,priority:2;index:idx_cart_items_book_id"`
	Quantity  int64     `gorm:"column:quantity;not null;check:chk_cart_items_quantity,quantity > 0"`
	Price     int64     `gorm:"column:price;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
	Book      *Book     `gorm:"foreignKey:BookID;references:ID;constraint:OnDelete:CASCADE"`
}
