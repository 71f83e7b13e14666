package models

import "time"

// Cart aggregates the items a user intends to buy. TotalPrice and TotalQuantity
// always equal the sums over Items once a mutation commits.
type Cart struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        int64      `gorm:"column:user_id;not null;index:idx_carts_user_id;uniqueIndex:ux_carts_open_user,where:is_ordered = false"`
	TotalPrice    int64      `gorm:"column:total_price;not null;default:0;check:chk_carts_totals,total_price >= 0 AND total_quantity >= 0"`
	TotalQuantity int64      `gorm:"column:total_quantity;not null;default:0"`
	IsOrdered     bool       `gorm:"column:is_ordered;not null;default:false"`
	OrderedAt     *time.Time `gorm:"column:ordered_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	Items         []CartItem `gorm:"foreignKey:CartID;references:ID;constraint:OnDelete:CASCADE"`
}
