package db

// PostHistory 记录文章更新前的标量字段快照，按插入顺序追加，永不修改。
// 标签与图片关联不在快照范围内，更新时被整体替换。
type PostHistory struct {
	ID          uint   `gorm:"primaryKey"`
	PostID      uint   `gorm:"not null;index"`
	Slug        string `gorm:"not null"`
	EntryType   string `gorm:"not null"`
	Name        string
	Content     string `gorm:"type:text"`
	ContentType string
	ClientID    string
	BookmarkOf  string
	CreatedAt   string `gorm:"not null"`
	UpdatedAt   string `gorm:"not null"`
}

// TableName 指定自定义表名。
func (PostHistory) TableName() string {
	return "post_history"
}
