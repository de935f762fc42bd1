package routing

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/dep2p/go-kad/pkg/types"
)

// ============================================================================
//                              K 桶
// ============================================================================

// Bucket K 桶
//
// 保存至多 capacity 个与本地节点处于同一距离区间的 Contact。
// entries 按活跃度排序：下标 0 为最久未活跃，末尾为最近活跃。
//
// 桶满时不直接驱逐：新节点进入替换缓存，最久未活跃节点作为候选，
// 由传输层完成存活检测后通过 Replace 或 Discard 给出结论。
type Bucket struct {
	capacity int

	// 节点列表（最久未活跃在前）
	entries []types.Contact

	// 替换缓存（桶满时暂存的候选节点），容量为 0 时为 nil
	replacements *simplelru.LRU[types.Key, types.Contact]

	// 最后刷新时间
	lastRefresh time.Time
	clock       clock.Clock

	mu sync.RWMutex
}

// NewBucket 创建容量为 capacity 的 K 桶，替换缓存容量同为 capacity
func NewBucket(capacity int) *Bucket {
	return newBucket(capacity, capacity, clock.New())
}

func newBucket(capacity, cacheSize int, clk clock.Clock) *Bucket {
	b := &Bucket{
		capacity:    capacity,
		entries:     make([]types.Contact, 0, capacity),
		clock:       clk,
		lastRefresh: clk.Now(),
	}
	if cacheSize > 0 {
		// 仅在 size <= 0 时出错，这里已排除
		b.replacements, _ = simplelru.NewLRU[types.Key, types.Contact](cacheSize, nil)
	}
	return b
}

// indexOf 返回 id 在 entries 中的下标，不存在返回 -1（需持有锁）
func (b *Bucket) indexOf(id types.Key) int {
	for i := range b.entries {
		if b.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// moveToTail 把下标 i 的节点移到最近活跃位置（需持有写锁）
func (b *Bucket) moveToTail(i int) {
	c := b.entries[i]
	copy(b.entries[i:], b.entries[i+1:])
	b.entries[len(b.entries)-1] = c
}

// removeAt 删除下标 i 的节点（需持有写锁）
func (b *Bucket) removeAt(i int) {
	b.entries = append(b.entries[:i], b.entries[i+1:]...)
}

func (b *Bucket) dropReplacement(id types.Key) bool {
	if b.replacements == nil {
		return false
	}
	return b.replacements.Remove(id)
}

// Observe 记录收到来自 c 的消息
//
//   - 已存在：移到最近活跃位置，内容不变
//   - 不存在且未满：追加到最近活跃位置
//   - 不存在且已满：放入替换缓存，等待对 LeastRecentlySeen 的存活检测
func (b *Bucket) Observe(c types.Contact) types.ObserveResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.indexOf(c.ID); i >= 0 {
		b.moveToTail(i)
		return types.ObserveRefreshed
	}

	if len(b.entries) < b.capacity {
		b.entries = append(b.entries, c)
		b.dropReplacement(c.ID)
		return types.ObserveAdded
	}

	if b.replacements != nil {
		b.replacements.Add(c.ID, c)
	}
	return types.ObservePending
}

// Touch 若 id 存在则移到最近活跃位置
func (b *Bucket) Touch(id types.Key) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	b.moveToTail(i)
	return true
}

// LeastRecentlySeen 返回最久未活跃的节点（驱逐候选）
func (b *Bucket) LeastRecentlySeen() (types.Contact, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.entries) == 0 {
		return types.Contact{}, false
	}
	return b.entries[0], true
}

// Replace 存活检测确认 old 无响应后，用 c 替换 old
//
// c 被追加到最近活跃位置并从替换缓存移除。old 不存在时不做任何修改并返回 false。
func (b *Bucket) Replace(old types.Key, c types.Contact) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(old)
	if i < 0 {
		return false
	}
	b.removeAt(i)

	if j := b.indexOf(c.ID); j >= 0 {
		// c 已在 Remove 时从替换缓存提升进来
		b.moveToTail(j)
	} else {
		b.entries = append(b.entries, c)
	}
	b.dropReplacement(c.ID)
	return true
}

// Discard 存活检测确认旧节点仍在线后，丢弃等待中的候选节点
func (b *Bucket) Discard(id types.Key) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropReplacement(id)
}

// Remove 按 id 移除节点，不存在时为空操作
//
// 移除的是桶内节点时，替换缓存中最近加入的候选节点会被提升到空出的位置。
func (b *Bucket) Remove(id types.Key) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.indexOf(id); i >= 0 {
		b.removeAt(i)
		b.promote()
		return true
	}

	return b.dropReplacement(id)
}

// promote 从替换缓存提升最近加入的候选节点（需持有写锁）
func (b *Bucket) promote() {
	if b.replacements == nil || b.replacements.Len() == 0 {
		return
	}
	keys := b.replacements.Keys()
	newest := keys[len(keys)-1]
	c, ok := b.replacements.Peek(newest)
	b.replacements.Remove(newest)
	if ok {
		b.entries = append(b.entries, c)
	}
}

// Closest 返回本桶内距离 target 最近的至多 limit 个节点（升序）
func (b *Bucket) Closest(target types.Key, limit int) []types.Contact {
	if limit <= 0 {
		return []types.Contact{}
	}

	result := b.Contacts()
	types.SortByDistance(result, target)
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Contacts 返回所有节点副本，最久未活跃在前
func (b *Bucket) Contacts() []types.Contact {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]types.Contact, len(b.entries))
	copy(result, b.entries)
	return result
}

// Pending 返回替换缓存中的候选节点，最早加入在前
func (b *Bucket) Pending() []types.Contact {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.replacements == nil {
		return nil
	}
	keys := b.replacements.Keys()
	result := make([]types.Contact, 0, len(keys))
	for _, k := range keys {
		if c, ok := b.replacements.Peek(k); ok {
			result = append(result, c)
		}
	}
	return result
}

// Get 获取节点
func (b *Bucket) Get(id types.Key) (types.Contact, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i := b.indexOf(id); i >= 0 {
		return b.entries[i], true
	}
	return types.Contact{}, false
}

// Contains 检查节点是否在桶内（不含替换缓存）
func (b *Bucket) Contains(id types.Key) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.indexOf(id) >= 0
}

// Size 返回桶中节点数量
func (b *Bucket) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Capacity 返回桶容量 K
func (b *Bucket) Capacity() int {
	return b.capacity
}

// IsFull 检查桶是否已满
func (b *Bucket) IsFull() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries) >= b.capacity
}

// NeedRefresh 检查距上次刷新是否已超过 interval
func (b *Bucket) NeedRefresh(interval time.Duration) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.clock.Since(b.lastRefresh) > interval
}

// MarkRefreshed 标记已刷新
func (b *Bucket) MarkRefreshed() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastRefresh = b.clock.Now()
}

// LastRefresh 返回最后刷新时间
func (b *Bucket) LastRefresh() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastRefresh
}
