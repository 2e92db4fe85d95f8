package db

// OriginalBlob 保存创建文章时的原始请求字节，与文章一一对应，写入后不再变更。
type OriginalBlob struct {
	ID       uint   `gorm:"primaryKey"`
	PostID   uint   `gorm:"not null;uniqueIndex"`
	PostBlob []byte `gorm:"type:blob;not null"`
}
