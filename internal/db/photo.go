package db

// Photo 定义了文章附带的图片引用。
type Photo struct {
	ID     uint   `gorm:"primaryKey"`
	PostID uint   `gorm:"not null;index"`
	URL    string `gorm:"not null"`
	Alt    string
}
