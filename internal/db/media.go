package db

// Media 记录一次媒体上传的元数据。HexDigest 是净化后字节的 sha256 摘要，
// 同一摘要只对应一份物理存储。
type Media struct {
	ID          uint   `gorm:"primaryKey"`
	HexDigest   string `gorm:"uniqueIndex;not null"`
	Filename    string
	ContentType string
	CreatedAt   string `gorm:"not null"`
	UpdatedAt   string `gorm:"not null"`
}

// TableName 指定自定义表名。
func (Media) TableName() string {
	return "media"
}
