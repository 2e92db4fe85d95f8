package db

// Category 定义了文章标签模型。同一文章不能重复携带同一标签。
type Category struct {
	ID       uint   `gorm:"primaryKey"`
	PostID   uint   `gorm:"not null;uniqueIndex:idx_categories_post_category"`
	Category string `gorm:"not null;uniqueIndex:idx_categories_post_category"`
}
