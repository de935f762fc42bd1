// Package mocks 提供测试用的接口模拟实现
package mocks

import (
	"sync"

	"github.com/dep2p/go-kad/pkg/interfaces"
	"github.com/dep2p/go-kad/pkg/types"
)

// MockStaleHandler 模拟 StaleContactHandler 接口实现
type MockStaleHandler struct {
	mu sync.Mutex

	// 可覆盖的方法
	OnStaleContactFunc func(stale, pending types.Contact)

	// 调用记录
	Calls []StaleContactCall
}

// StaleContactCall 记录 OnStaleContact 调用
type StaleContactCall struct {
	Stale   types.Contact
	Pending types.Contact
}

var _ interfaces.StaleContactHandler = (*MockStaleHandler)(nil)

// NewMockStaleHandler 创建 MockStaleHandler
func NewMockStaleHandler() *MockStaleHandler {
	return &MockStaleHandler{}
}

// OnStaleContact 满桶回调
func (m *MockStaleHandler) OnStaleContact(stale, pending types.Contact) {
	m.mu.Lock()
	m.Calls = append(m.Calls, StaleContactCall{Stale: stale, Pending: pending})
	fn := m.OnStaleContactFunc
	m.mu.Unlock()

	if fn != nil {
		fn(stale, pending)
	}
}

// CallCount 返回调用次数
func (m *MockStaleHandler) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall 返回最后一次调用
func (m *MockStaleHandler) LastCall() (StaleContactCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return StaleContactCall{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
