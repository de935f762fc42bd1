package interfaces

import (
	"github.com/dep2p/go-kad/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
// RoutingTable 接口
// ════════════════════════════════════════════════════════════════════════════

// RoutingTable 定义 Kademlia 路由表接口
//
// 对应 internal/routing/ 实现。所有方法都不做网络 I/O，也不阻塞。
type RoutingTable interface {
	// LocalID 返回路由表锚定的本地标识符
	LocalID() types.Key

	// BucketIndex 返回 id 所属的 K 桶索引
	//
	// 索引为 XOR(localID, id) 最高置位的位序。id 等于 LocalID 时返回 ErrInvalidIdentifier。
	BucketIndex(id types.Key) (int, error)

	// Observe 记录收到来自 contact 的消息
	//
	// 桶满时返回 ObservePending，由 StaleContactHandler 驱动后续的存活检测。
	Observe(contact types.Contact) (types.ObserveResult, error)

	// Remove 移除已确认离开的节点，节点不存在时为空操作
	Remove(contact types.Contact) bool

	// GetClosestNodes 返回距离 target 最近的至多 count 个节点（升序）
	GetClosestNodes(target types.Key, count int) []types.ContactDistance

	// LeastRecentlySeen 返回指定桶中最久未活跃的节点
	LeastRecentlySeen(index int) (types.Contact, bool)

	// Replace 存活检测失败后，用 contact 替换 old
	Replace(old, contact types.Contact) error

	// KeepAlive 存活检测成功后，刷新 stale 并丢弃等待中的 pending
	KeepAlive(stale, pending types.Contact) error

	// Size 返回路由表中的节点总数
	Size() int
}

// ════════════════════════════════════════════════════════════════════════════
// StaleContactHandler 接口
// ════════════════════════════════════════════════════════════════════════════

// StaleContactHandler 满桶驱逐策略的回调
//
// 满桶收到新节点时，路由表在释放所有锁之后调用 OnStaleContact。
// 实现方应异步 ping stale，然后回调 RoutingTable.Replace 或 RoutingTable.KeepAlive；
// 不得在回调中阻塞等待网络往返。
type StaleContactHandler interface {
	OnStaleContact(stale, pending types.Contact)
}

// StaleContactHandlerFunc 函数适配器
type StaleContactHandlerFunc func(stale, pending types.Contact)

// OnStaleContact 实现 StaleContactHandler
func (f StaleContactHandlerFunc) OnStaleContact(stale, pending types.Contact) {
	f(stale, pending)
}
