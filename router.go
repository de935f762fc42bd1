package kad

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-kad/internal/routing"
	"github.com/dep2p/go-kad/pkg/interfaces"
	"github.com/dep2p/go-kad/pkg/lib/log"
	"github.com/dep2p/go-kad/pkg/types"
)

var logger = log.Logger("kad")

const (
	// startTimeout Fx App 启动超时
	startTimeout = 30 * time.Second

	// stopTimeout Fx App 停止超时
	stopTimeout = 10 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              Router
// ════════════════════════════════════════════════════════════════════════════

// Router 本地节点的路由入口
//
// 持有以本地节点为锚点的路由表。路由表操作在 Start 前即可使用；
// Start 只启动生命周期相关的后台任务（如桶刷新循环）。
type Router struct {
	local types.Contact
	table *routing.RoutingTable
	app   *fx.App

	mu      sync.Mutex
	started bool
	closed  bool
}

// New 创建监听于 host:port 的本地节点路由器
//
// 本地 ID 为 SHA-256("host:port")，可用 WithLocalID 覆盖。
func New(host string, port uint16, opts ...Option) (*Router, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	local := types.NewContact(host, port)
	if o.localID != nil {
		local = types.NewContactWithID(host, port, *o.localID)
	}

	r := &Router{local: local}
	r.app = buildApp(r, o)
	if err := r.app.Err(); err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	logger.Debug("路由器已创建", "local", local.String())
	return r, nil
}

// Start 启动路由器
func (r *Router) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRouterClosed
	}
	if r.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := r.app.Start(startCtx); err != nil {
		logger.Error("路由器启动失败", "error", err)
		return fmt.Errorf("start failed: %w", err)
	}

	r.started = true
	logger.Info("路由器已启动", "local", r.local.String())
	return nil
}

// Stop 停止路由器
//
// 停止后不能再次启动。
func (r *Router) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	if !r.started {
		return ErrNotStarted
	}

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	r.closed = true
	r.started = false
	if err := r.app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop failed: %w", err)
	}

	logger.Info("路由器已停止")
	return nil
}

// Local 返回本地节点
func (r *Router) Local() types.Contact {
	return r.local
}

// LocalID 返回本地节点标识符
func (r *Router) LocalID() types.Key {
	return r.local.ID
}

// Table 返回路由表接口
func (r *Router) Table() interfaces.RoutingTable {
	return r.table
}

// ════════════════════════════════════════════════════════════════════════════
//                              路由表操作
// ════════════════════════════════════════════════════════════════════════════

// Observe 记录收到来自 contact 的消息
func (r *Router) Observe(contact types.Contact) (types.ObserveResult, error) {
	return r.table.Observe(contact)
}

// Remove 移除确认离开的节点
func (r *Router) Remove(contact types.Contact) bool {
	return r.table.Remove(contact)
}

// GetClosestNodes 返回距离 target 最近的至多 count 个节点
func (r *Router) GetClosestNodes(target types.Key, count int) []types.ContactDistance {
	return r.table.GetClosestNodes(target, count)
}

// ClosestContacts 与 GetClosestNodes 相同，但只返回节点
func (r *Router) ClosestContacts(target types.Key, count int) []types.Contact {
	found := r.table.GetClosestNodes(target, count)
	contacts := make([]types.Contact, len(found))
	for i, cd := range found {
		contacts[i] = cd.Contact
	}
	return contacts
}

// Replace 存活检测失败后用 pending 替换 stale
func (r *Router) Replace(stale, pending types.Contact) error {
	return r.table.Replace(stale, pending)
}

// KeepAlive 存活检测成功后保留 stale 并丢弃 pending
func (r *Router) KeepAlive(stale, pending types.Contact) error {
	return r.table.KeepAlive(stale, pending)
}

// Size 返回已知节点数量
func (r *Router) Size() int {
	return r.table.Size()
}
