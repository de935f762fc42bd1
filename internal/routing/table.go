package routing

import (
	"sync"

	"github.com/dep2p/go-kad/pkg/interfaces"
	"github.com/dep2p/go-kad/pkg/lib/log"
	"github.com/dep2p/go-kad/pkg/types"
)

var logger = log.Logger("routing")

// ============================================================================
//                              路由表
// ============================================================================

// RoutingTable 路由表
//
// 以本地标识符为锚点，按桶索引持有 KeyBits 个 K 桶，桶在第一次使用时创建、从不销毁。
//
// 并发模型：
//   - mu 只保护桶槽位的查找与惰性创建（双重检查）
//   - 每个桶有自己的锁，写操作任一时刻至多持有一个桶的写锁
//   - GetClosestNodes 逐桶读取快照，不持有跨桶的锁
//   - StaleHandler 回调在释放所有锁之后调用
type RoutingTable struct {
	// 本地节点 ID
	localID types.Key

	cfg *Config

	// K 桶槽位（未使用时为 nil）
	buckets [types.KeyBits]*Bucket

	mu sync.RWMutex
}

// 确保实现接口
var _ interfaces.RoutingTable = (*RoutingTable)(nil)

// New 创建锚定于 localID 的空路由表
//
// cfg 为 nil 时使用 DefaultConfig()。
func New(localID types.Key, cfg *Config) (*RoutingTable, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if localID.IsEmpty() {
		return nil, newRoutingError("new", ErrInvalidConfig, "local id is empty")
	}

	return &RoutingTable{
		localID: localID,
		cfg:     cfg.withDefaults(),
	}, nil
}

// LocalID 返回本地节点标识符
func (rt *RoutingTable) LocalID() types.Key {
	return rt.localID
}

// Config 返回路由表配置
func (rt *RoutingTable) Config() Config {
	return *rt.cfg
}

// BucketIndex 计算 id 所属的桶索引
//
// 返回 XOR(localID, id) 最高置位的位序，即 KeyBits - 1 - 前导零位数。
func (rt *RoutingTable) BucketIndex(id types.Key) (int, error) {
	idx := bucketIndexOf(rt.localID, id)
	if idx < 0 {
		return -1, newRoutingError("bucket_index", ErrInvalidIdentifier, "")
	}
	return idx, nil
}

// bucket 返回第 idx 个桶，create 为 true 时按需创建
func (rt *RoutingTable) bucket(idx int, create bool) *Bucket {
	rt.mu.RLock()
	b := rt.buckets[idx]
	rt.mu.RUnlock()
	if b != nil || !create {
		return b
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if b = rt.buckets[idx]; b != nil {
		return b
	}
	b = newBucket(rt.cfg.BucketSize, rt.cfg.ReplacementCacheSize, rt.cfg.Clock)
	rt.buckets[idx] = b
	rt.cfg.Metrics.bucketCreated()
	logger.Debug("创建 K 桶", "index", idx)
	return b
}

// Bucket 返回第 index 个桶，尚未创建或越界时返回 nil
func (rt *RoutingTable) Bucket(index int) *Bucket {
	if index < 0 || index >= types.KeyBits {
		return nil
	}
	return rt.bucket(index, false)
}

// BucketFor 返回 id 所属的桶（可能为 nil）
func (rt *RoutingTable) BucketFor(id types.Key) (*Bucket, error) {
	idx, err := rt.BucketIndex(id)
	if err != nil {
		return nil, err
	}
	return rt.bucket(idx, false), nil
}

// Observe 记录收到来自 contact 的消息
//
// contact 为本地节点时返回 ErrInvalidIdentifier。
// 桶满时返回 ObservePending 并通知 StaleHandler。
func (rt *RoutingTable) Observe(contact types.Contact) (types.ObserveResult, error) {
	idx, err := rt.BucketIndex(contact.ID)
	if err != nil {
		logger.Warn("拒绝将本地节点加入路由表", "addr", contact.Address())
		return types.ObserveRejected, newRoutingError("observe", ErrInvalidIdentifier, contact.Address())
	}

	b := rt.bucket(idx, true)
	res := b.Observe(contact)

	rt.cfg.Metrics.observed(res)
	if res == types.ObserveAdded {
		rt.cfg.Metrics.setContacts(rt.Size())
	}

	if res == types.ObservePending {
		stale, ok := b.LeastRecentlySeen()
		logger.Debug("K 桶已满，等待存活检测",
			"index", idx,
			"stale", stale.String(),
			"pending", contact.String())
		if ok && rt.cfg.StaleHandler != nil {
			rt.cfg.StaleHandler.OnStaleContact(stale, contact)
		}
	}

	return res, nil
}

// Remove 移除节点
//
// 桶不存在或节点不存在时为空操作，返回 false。
func (rt *RoutingTable) Remove(contact types.Contact) bool {
	idx := bucketIndexOf(rt.localID, contact.ID)
	if idx < 0 {
		return false
	}

	b := rt.bucket(idx, false)
	if b == nil {
		return false
	}

	removed := b.Remove(contact.ID)
	if removed {
		rt.cfg.Metrics.setContacts(rt.Size())
	}
	return removed
}

// LeastRecentlySeen 返回第 index 个桶中最久未活跃的节点
func (rt *RoutingTable) LeastRecentlySeen(index int) (types.Contact, bool) {
	b := rt.Bucket(index)
	if b == nil {
		return types.Contact{}, false
	}
	return b.LeastRecentlySeen()
}

// Replace 存活检测确认 old 无响应后，用 contact 替换 old
//
// 两者必须属于同一个桶，否则返回 ErrBucketMismatch。
func (rt *RoutingTable) Replace(old, contact types.Contact) error {
	oldIdx := bucketIndexOf(rt.localID, old.ID)
	newIdx := bucketIndexOf(rt.localID, contact.ID)
	if oldIdx < 0 || newIdx < 0 {
		return newRoutingError("replace", ErrInvalidIdentifier, "")
	}
	if oldIdx != newIdx {
		return newRoutingError("replace", ErrBucketMismatch, "")
	}

	b := rt.bucket(oldIdx, false)
	if b == nil || !b.Replace(old.ID, contact) {
		return newRoutingError("replace", ErrContactNotFound, old.Address())
	}

	rt.cfg.Metrics.evicted()
	logger.Debug("驱逐无响应节点", "index", oldIdx, "old", old.String(), "new", contact.String())
	return nil
}

// KeepAlive 存活检测确认 stale 仍在线
//
// stale 被刷新为最近活跃，pending 从替换缓存丢弃（桶"已满且健康"）。
func (rt *RoutingTable) KeepAlive(stale, pending types.Contact) error {
	idx := bucketIndexOf(rt.localID, stale.ID)
	if idx < 0 {
		return newRoutingError("keep_alive", ErrInvalidIdentifier, "")
	}

	b := rt.bucket(idx, false)
	if b == nil || !b.Touch(stale.ID) {
		return newRoutingError("keep_alive", ErrContactNotFound, stale.Address())
	}
	b.Discard(pending.ID)
	return nil
}

// GetClosestNodes 返回距离 target 最近的至多 count 个节点及其距离
//
// 从 target 所属的桶开始向两侧外扩（index-1, index+1, index-2, ...），
// 候选数达到 count 且任何未访问桶的距离下界都大于当前第 count 近的距离时停止。
// 结果按距离升序，距离相同时按标识符字节序；不包含本地节点。
// 节点不足 count 个时返回全部，这不是错误。
func (rt *RoutingTable) GetClosestNodes(target types.Key, count int) []types.ContactDistance {
	result := []types.ContactDistance{}
	if count <= 0 {
		return result
	}

	targetIdx := bucketIndexOf(rt.localID, target)

	rt.mu.RLock()
	snapshot := rt.buckets
	rt.mu.RUnlock()

	collect := func(idx int) {
		b := snapshot[idx]
		if b == nil {
			return
		}
		for _, c := range b.Contacts() {
			result = append(result, types.ContactDistance{
				Contact:  c,
				Distance: c.DistanceToKey(target),
			})
		}
	}

	if targetIdx >= 0 {
		collect(targetIdx)
	}

	lo, hi := targetIdx-1, targetIdx+1
	for {
		floor, ok := remainingFloor(lo, hi, targetIdx)
		if !ok {
			break
		}
		if len(result) >= count {
			types.SortContactDistances(result)
			result = result[:count]
			if floor.Compare(result[count-1].Distance) > 0 {
				break
			}
		}
		if lo >= 0 {
			collect(lo)
			lo--
		}
		if hi < types.KeyBits {
			collect(hi)
			hi++
		}
	}

	types.SortContactDistances(result)
	if len(result) > count {
		result = result[:count]
	}

	rt.cfg.Metrics.closestServed(len(result))
	return result
}

// Size 返回路由表中的节点总数
func (rt *RoutingTable) Size() int {
	total := 0
	for _, b := range rt.activeBuckets() {
		total += b.Size()
	}
	return total
}

// BucketCount 返回已创建的桶数量
func (rt *RoutingTable) BucketCount() int {
	return len(rt.activeBuckets())
}

// Contacts 返回所有节点
func (rt *RoutingTable) Contacts() []types.Contact {
	var all []types.Contact
	for _, b := range rt.activeBuckets() {
		all = append(all, b.Contacts()...)
	}
	return all
}

// activeBuckets 返回已创建桶的快照
func (rt *RoutingTable) activeBuckets() []*Bucket {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	var active []*Bucket
	for _, b := range rt.buckets {
		if b != nil {
			active = append(active, b)
		}
	}
	return active
}

// BucketsNeedingRefresh 返回超过 RefreshInterval 未刷新的桶索引
func (rt *RoutingTable) BucketsNeedingRefresh() []int {
	rt.mu.RLock()
	snapshot := rt.buckets
	rt.mu.RUnlock()

	var indices []int
	for i, b := range snapshot {
		if b != nil && b.NeedRefresh(rt.cfg.RefreshInterval) {
			indices = append(indices, i)
		}
	}
	return indices
}

// MarkBucketRefreshed 标记桶已刷新
func (rt *RoutingTable) MarkBucketRefreshed(index int) {
	if b := rt.Bucket(index); b != nil {
		b.MarkRefreshed()
	}
}

// RandomKeyInBucket 生成一个落入第 index 个桶的随机标识符，用于桶刷新查找
func (rt *RoutingTable) RandomKeyInBucket(index int) (types.Key, error) {
	return randomKeyInBucket(rt.localID, index)
}
