// Package blob provides the content-addressed storage backend used by the
// media store. Blobs are keyed by the hex digest of their content, so storing
// identical content twice is a no-op.
package blob

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound 表示指定摘要对应的 blob 不存在。
var ErrNotFound = errors.New("blob not found")

// Store 抽象 blob 后端。任何满足该契约的对象存储都可以接入媒体存储。
type Store interface {
	Put(hexDigest string, data []byte) error
	Get(hexDigest string) ([]byte, error)
	Exists(hexDigest string) (bool, error)
}

// FileStore 把 blob 写入本地文件系统，按摘要前两位分目录，避免单目录文件过多。
type FileStore struct {
	root string
}

// NewFileStore 创建文件系统 blob 存储，目录不存在时自动创建。
func NewFileStore(root string) (*FileStore, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, errors.New("blob store root is required")
	}
	if err := os.MkdirAll(trimmed, 0o755); err != nil {
		return nil, fmt.Errorf("create blob store root: %w", err)
	}
	return &FileStore{root: trimmed}, nil
}

func (s *FileStore) path(hexDigest string) (string, error) {
	if len(hexDigest) < 3 || strings.ContainsAny(hexDigest, "/\\.") {
		return "", fmt.Errorf("invalid blob digest %q", hexDigest)
	}
	return filepath.Join(s.root, hexDigest[:2], hexDigest), nil
}

// Put 写入一个 blob。先写临时文件再重命名，保证并发读取不会看到半个文件。
func (s *FileStore) Put(hexDigest string, data []byte) error {
	target, err := s.path(hexDigest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), hexDigest+".tmp-*")
	if err != nil {
		return fmt.Errorf("create blob temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close blob temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish blob: %w", err)
	}
	return nil
}

// Get 读取一个 blob 的全部字节。
func (s *FileStore) Get(hexDigest string) ([]byte, error) {
	target, err := s.path(hexDigest)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// Exists 检查摘要对应的 blob 是否已存在。
func (s *FileStore) Exists(hexDigest string) (bool, error) {
	target, err := s.path(hexDigest)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MemoryStore 是测试用的内存实现。
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore 创建空的内存 blob 存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(hexDigest string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[hexDigest] = stored
	return nil
}

func (s *MemoryStore) Get(hexDigest string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[hexDigest]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *MemoryStore) Exists(hexDigest string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[hexDigest]
	return ok, nil
}
