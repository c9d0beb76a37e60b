package storage

import "sync"

// Store 本地持久化存储。每个状态容器占用一个键，读写都是整个快照：
// load 时一次性读入，之后每次变更把完整状态写回，不做增量。
type Store interface {
	// Get 读取键对应的快照并反序列化到 v。键不存在时返回 (false, nil)。
	Get(key string, v any) (bool, error)
	// Set 序列化 v 并整体覆盖写入。
	Set(key string, v any) error
	// Delete 删除键。键不存在不算错误。
	Delete(key string) error
}

// MemoryStore 进程内存储，测试用。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore 创建空的内存存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key string, v any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := unmarshalSnapshot(raw, v); err != nil {
		return false, err
	}
	return true, nil
}

func (m *MemoryStore) Set(key string, v any) error {
	raw, err := marshalSnapshot(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}
