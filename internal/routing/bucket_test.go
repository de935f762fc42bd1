package routing

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-kad/pkg/types"
)

// localhostContacts 返回 127.0.0.1 上从 firstPort 开始的 n 个 Contact
func localhostContacts(firstPort uint16, n int) []types.Contact {
	contacts := make([]types.Contact, n)
	for i := range contacts {
		contacts[i] = types.NewContact("127.0.0.1", firstPort+uint16(i))
	}
	return contacts
}

func ids(contacts []types.Contact) []types.Key {
	out := make([]types.Key, len(contacts))
	for i, c := range contacts {
		out[i] = c.ID
	}
	return out
}

// ============================================================================
// Bucket 基础功能测试
// ============================================================================

// TestBucket_New 测试创建新的 Bucket
func TestBucket_New(t *testing.T) {
	b := NewBucket(4)

	require.NotNil(t, b)
	assert.Equal(t, 0, b.Size())
	assert.Equal(t, 4, b.Capacity())
	assert.False(t, b.IsFull())
	assert.Empty(t, b.Contacts())
	assert.Empty(t, b.Pending())

	_, ok := b.LeastRecentlySeen()
	assert.False(t, ok)

	t.Log("✅ 新建 Bucket 初始化正确")
}

// TestBucket_ObserveAppendsAtTail 测试新节点追加到最近活跃位置
func TestBucket_ObserveAppendsAtTail(t *testing.T) {
	b := NewBucket(4)
	contacts := localhostContacts(9001, 3)

	for _, c := range contacts {
		assert.Equal(t, types.ObserveAdded, b.Observe(c))
	}

	assert.Equal(t, ids(contacts), ids(b.Contacts()))
	lrs, ok := b.LeastRecentlySeen()
	require.True(t, ok)
	assert.Equal(t, contacts[0], lrs)
}

// TestBucket_ObserveRefreshesRecency 测试重复观察只更新活跃度
func TestBucket_ObserveRefreshesRecency(t *testing.T) {
	b := NewBucket(4)
	contacts := localhostContacts(9001, 3)
	for _, c := range contacts {
		b.Observe(c)
	}

	lrs, _ := b.LeastRecentlySeen()
	assert.Equal(t, contacts[0], lrs)

	assert.Equal(t, types.ObserveRefreshed, b.Observe(contacts[0]))
	assert.Equal(t, 3, b.Size(), "大小不应该改变")

	lrs, _ = b.LeastRecentlySeen()
	assert.Equal(t, contacts[1], lrs)
	assert.Equal(t, []types.Key{contacts[1].ID, contacts[2].ID, contacts[0].ID}, ids(b.Contacts()))

	t.Log("✅ 重复节点移动到最近活跃位置")
}

// TestBucket_ObserveKeepsContent 测试刷新不改写已存节点内容
func TestBucket_ObserveKeepsContent(t *testing.T) {
	b := NewBucket(4)
	c := types.NewContact("127.0.0.1", 9001)
	b.Observe(c)

	moved := types.NewContactWithID("10.0.0.9", 1234, c.ID)
	assert.Equal(t, types.ObserveRefreshed, b.Observe(moved))

	got, ok := b.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, c, got)
}

// TestBucket_FullScenario 测试 K=4 时插入 9001..9005
func TestBucket_FullScenario(t *testing.T) {
	b := NewBucket(4)
	contacts := localhostContacts(9001, 5)

	for _, c := range contacts[:4] {
		assert.Equal(t, types.ObserveAdded, b.Observe(c))
	}
	assert.True(t, b.IsFull())

	assert.Equal(t, types.ObservePending, b.Observe(contacts[4]))
	assert.Equal(t, 4, b.Size())
	assert.False(t, b.Contains(contacts[4].ID))
	assert.Equal(t, []types.Contact{contacts[4]}, b.Pending())

	lrs, ok := b.LeastRecentlySeen()
	require.True(t, ok)
	assert.Equal(t, contacts[0], lrs, "最先插入的节点应为驱逐候选")

	t.Log("✅ 满桶不静默驱逐，候选为最久未活跃节点")
}

// TestBucket_NeverExceedsCapacity 测试任意观察序列后不超过容量
func TestBucket_NeverExceedsCapacity(t *testing.T) {
	b := NewBucket(5)
	contacts := localhostContacts(7000, 40)

	for round := 0; round < 3; round++ {
		for i, c := range contacts {
			b.Observe(c)
			if i%3 == 0 {
				b.Observe(contacts[i/2])
			}
			assert.LessOrEqual(t, b.Size(), 5)
		}
	}

	seen := map[types.Key]bool{}
	for _, c := range b.Contacts() {
		assert.False(t, seen[c.ID], "重复节点 %s", c)
		seen[c.ID] = true
	}
}

// ============================================================================
// 两阶段驱逐测试
// ============================================================================

// TestBucket_ReplaceAfterFailedPing 测试存活检测失败后的替换
func TestBucket_ReplaceAfterFailedPing(t *testing.T) {
	b := NewBucket(4)
	contacts := localhostContacts(9001, 5)
	for _, c := range contacts {
		b.Observe(c)
	}

	stale, _ := b.LeastRecentlySeen()
	assert.True(t, b.Replace(stale.ID, contacts[4]))

	assert.Equal(t, 4, b.Size())
	assert.False(t, b.Contains(contacts[0].ID))
	assert.True(t, b.Contains(contacts[4].ID))
	assert.Empty(t, b.Pending())

	lrs, _ := b.LeastRecentlySeen()
	assert.Equal(t, contacts[1], lrs)
	all := b.Contacts()
	assert.Equal(t, contacts[4], all[len(all)-1], "替换节点位于最近活跃位置")
}

// TestBucket_ReplaceMissingOld 测试 old 不存在时不做修改
func TestBucket_ReplaceMissingOld(t *testing.T) {
	b := NewBucket(4)
	contacts := localhostContacts(9001, 2)
	b.Observe(contacts[0])

	assert.False(t, b.Replace(contacts[1].ID, types.NewContact("127.0.0.1", 9999)))
	assert.Equal(t, 1, b.Size())
}

// TestBucket_DiscardAfterSuccessfulPing 测试存活检测成功后丢弃候选
func TestBucket_DiscardAfterSuccessfulPing(t *testing.T) {
	b := NewBucket(4)
	contacts := localhostContacts(9001, 5)
	for _, c := range contacts {
		b.Observe(c)
	}

	stale, _ := b.LeastRecentlySeen()
	assert.True(t, b.Touch(stale.ID))
	assert.True(t, b.Discard(contacts[4].ID))
	assert.False(t, b.Discard(contacts[4].ID))

	assert.Equal(t, 4, b.Size())
	assert.False(t, b.Contains(contacts[4].ID))
	assert.Empty(t, b.Pending())

	lrs, _ := b.LeastRecentlySeen()
	assert.Equal(t, contacts[1], lrs)
}

// TestBucket_ReplacementCacheBounded 测试替换缓存容量受限
func TestBucket_ReplacementCacheBounded(t *testing.T) {
	b := newBucket(2, 3, clock.New())
	contacts := localhostContacts(9001, 10)
	for _, c := range contacts {
		b.Observe(c)
	}

	pending := b.Pending()
	assert.Len(t, pending, 3)
	assert.Equal(t, ids(contacts[7:]), ids(pending), "保留最近加入的候选")
}

// TestBucket_NoReplacementCache 测试缓存容量为 0
func TestBucket_NoReplacementCache(t *testing.T) {
	b := newBucket(1, 0, clock.New())
	contacts := localhostContacts(9001, 2)
	b.Observe(contacts[0])

	assert.Equal(t, types.ObservePending, b.Observe(contacts[1]))
	assert.Nil(t, b.Pending())
	assert.False(t, b.Discard(contacts[1].ID))
	assert.True(t, b.Replace(contacts[0].ID, contacts[1]))
	assert.True(t, b.Contains(contacts[1].ID))
}

// ============================================================================
// 移除测试
// ============================================================================

// TestBucket_RemoveIdempotent 测试重复移除
func TestBucket_RemoveIdempotent(t *testing.T) {
	b := NewBucket(4)
	contacts := localhostContacts(9001, 3)
	for _, c := range contacts {
		b.Observe(c)
	}

	assert.True(t, b.Remove(contacts[1].ID))
	assert.False(t, b.Remove(contacts[1].ID), "第二次移除应为空操作")
	assert.Equal(t, 2, b.Size())
	assert.Equal(t, []types.Key{contacts[0].ID, contacts[2].ID}, ids(b.Contacts()))
}

// TestBucket_RemovePromotesReplacement 测试移除后提升候选节点
func TestBucket_RemovePromotesReplacement(t *testing.T) {
	b := NewBucket(4)
	contacts := localhostContacts(9001, 6)
	for _, c := range contacts {
		b.Observe(c)
	}
	require.Len(t, b.Pending(), 2)

	assert.True(t, b.Remove(contacts[2].ID))

	assert.Equal(t, 4, b.Size())
	assert.True(t, b.Contains(contacts[5].ID), "最近加入的候选被提升")
	assert.Equal(t, []types.Contact{contacts[4]}, b.Pending())

	// 被提升的候选仍可作为 Replace 的目标
	assert.True(t, b.Replace(contacts[0].ID, contacts[5]))
	assert.Equal(t, 3, b.Size())
	all := b.Contacts()
	assert.Equal(t, contacts[5], all[len(all)-1])
}

// TestBucket_RemovePendingOnly 测试移除仅在替换缓存中的节点
func TestBucket_RemovePendingOnly(t *testing.T) {
	b := NewBucket(1)
	contacts := localhostContacts(9001, 2)
	b.Observe(contacts[0])
	b.Observe(contacts[1])

	assert.True(t, b.Remove(contacts[1].ID))
	assert.False(t, b.Remove(contacts[1].ID))
	assert.Empty(t, b.Pending())
	assert.Equal(t, 1, b.Size())
}

// ============================================================================
// 查询与刷新测试
// ============================================================================

// TestBucket_Closest 测试桶内最近节点
func TestBucket_Closest(t *testing.T) {
	b := NewBucket(20)
	contacts := localhostContacts(8000, 15)
	for _, c := range contacts {
		b.Observe(c)
	}
	target := types.NewKey("target")

	got := b.Closest(target, 5)
	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].DistanceToKey(target).Less(got[i].DistanceToKey(target)))
	}

	expected := b.Contacts()
	types.SortByDistance(expected, target)
	assert.Equal(t, expected[:5], got)

	assert.Len(t, b.Closest(target, 100), 15)
	assert.Empty(t, b.Closest(target, 0))
}

// TestBucket_Refresh 测试刷新时间
func TestBucket_Refresh(t *testing.T) {
	mock := clock.NewMock()
	b := newBucket(4, 4, mock)

	assert.False(t, b.NeedRefresh(time.Hour))

	mock.Add(2 * time.Hour)
	assert.True(t, b.NeedRefresh(time.Hour))

	b.MarkRefreshed()
	assert.False(t, b.NeedRefresh(time.Hour))
	assert.Equal(t, mock.Now(), b.LastRefresh())
}
