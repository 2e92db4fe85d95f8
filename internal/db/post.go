package db

// Post 定义了文章模型。时间戳以 ISO-8601 文本持久化，便于直接检查。
type Post struct {
	ID          uint   `gorm:"primaryKey"`
	Slug        string `gorm:"uniqueIndex;not null"`
	EntryType   string `gorm:"not null"`
	Name        string
	Content     string `gorm:"type:text"`
	ContentType string
	ClientID    string
	BookmarkOf  string
	CreatedAt   string `gorm:"not null"`
	UpdatedAt   string `gorm:"not null"`

	Categories []Category `gorm:"constraint:OnDelete:CASCADE"`
	Photos     []Photo    `gorm:"constraint:OnDelete:CASCADE"`
}

// CategoryNames 返回文章携带的标签名称列表。
func (p *Post) CategoryNames() []string {
	names := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		names = append(names, c.Category)
	}
	return names
}
