package routing

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-kad/pkg/types"
)

// ============================================================================
// 指标测试
// ============================================================================

// TestMetrics_RoutingTable 测试路由表操作更新指标
func TestMetrics_RoutingTable(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.BucketSize = 4
	cfg.Metrics = m
	rt, err := New(localContact.ID, cfg)
	require.NoError(t, err)

	contacts := portsInBucket(t, rt, types.KeyBits-1, 9001, 5)
	for _, c := range contacts {
		_, err := rt.Observe(c)
		require.NoError(t, err)
	}
	_, err = rt.Observe(contacts[1])
	require.NoError(t, err)

	assert.Equal(t, float64(4), testutil.ToFloat64(m.contacts))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.buckets))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.observes.WithLabelValues("added")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.observes.WithLabelValues("pending")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.observes.WithLabelValues("refreshed")))

	require.NoError(t, rt.Replace(contacts[0], contacts[4]))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.evictions))

	rt.Remove(contacts[2])
	assert.Equal(t, float64(3), testutil.ToFloat64(m.contacts))

	rt.GetClosestNodes(rt.LocalID(), 2)
	assert.Equal(t, 1, testutil.CollectAndCount(m.closest))

	t.Log("✅ 路由表指标更新正确")
}

// TestMetrics_DuplicateRegistration 测试重复注册返回错误
func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	var are prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &are)
}

// TestMetrics_NilSafe 测试未配置指标时方法为空操作
func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.setContacts(1)
		m.bucketCreated()
		m.observed(types.ObserveAdded)
		m.evicted()
		m.closestServed(3)
	})
}
