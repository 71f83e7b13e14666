package models

import "time"

// Book is a catalog entry. Price is stored in minor units.
type Book struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null"`
	Author    string    `gorm:"column:author;not null"`
	Price     int64     `gorm:"column:price;not null;check:chk_books_price,price >= 0"`
	Quantity  int64     `gorm:"column:quantity;not null;default:0;check:chk_books_quantity,quantity >= 0"`
	UserID    int64     `gorm:"column:user_id;not null;index:idx_books_user_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
