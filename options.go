package kad

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-kad/internal/routing"
	"github.com/dep2p/go-kad/pkg/interfaces"
	"github.com/dep2p/go-kad/pkg/types"
)

// Option 用户配置选项函数
type Option func(*options) error

// RefreshFunc 桶刷新回调，由网络层对 target 发起节点查找
type RefreshFunc = routing.RefreshFunc

// options 内部选项结构
type options struct {
	// K 桶容量
	bucketSize int

	// 替换缓存容量（nil 表示与 K 相同）
	replacementCacheSize *int

	// 桶刷新
	refreshInterval time.Duration
	refreshFunc     RefreshFunc

	clock clock.Clock

	// 覆盖由地址派生的本地 ID
	localID *types.Key

	staleHandler interfaces.StaleContactHandler
	registerer   prometheus.Registerer
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{}
}

// toRoutingConfig 转换为路由表配置
func (o *options) toRoutingConfig() *routing.Config {
	cfg := routing.DefaultConfig()

	if o.bucketSize > 0 {
		cfg.BucketSize = o.bucketSize
		cfg.ReplacementCacheSize = o.bucketSize
	}
	if o.replacementCacheSize != nil {
		cfg.ReplacementCacheSize = *o.replacementCacheSize
	}
	if o.refreshInterval > 0 {
		cfg.RefreshInterval = o.refreshInterval
	}
	if o.clock != nil {
		cfg.Clock = o.clock
	}

	return cfg
}

// ════════════════════════════════════════════════════════════════════════════
//                              路由表选项
// ════════════════════════════════════════════════════════════════════════════

// WithBucketSize 设置 K 桶容量（K）
//
// 替换缓存容量默认随之设为相同值，可用 WithReplacementCacheSize 覆盖。
func WithBucketSize(k int) Option {
	return func(o *options) error {
		if k <= 0 {
			return fmt.Errorf("%w: bucket size must be positive, got %d", ErrInvalidConfig, k)
		}
		o.bucketSize = k
		return nil
	}
}

// WithReplacementCacheSize 设置每个桶的替换缓存容量，0 表示不缓存
func WithReplacementCacheSize(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("%w: replacement cache size must not be negative, got %d", ErrInvalidConfig, n)
		}
		o.replacementCacheSize = &n
		return nil
	}
}

// WithRefreshInterval 设置桶刷新间隔
func WithRefreshInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("%w: refresh interval must be positive, got %s", ErrInvalidConfig, d)
		}
		o.refreshInterval = d
		return nil
	}
}

// WithRefreshFunc 设置桶刷新回调
//
// 设置后 Start 会启动刷新循环，定期为过期桶生成随机目标并回调 fn。
func WithRefreshFunc(fn RefreshFunc) Option {
	return func(o *options) error {
		o.refreshFunc = fn
		return nil
	}
}

// WithClock 设置时钟（测试时使用 clock.NewMock()）
func WithClock(c clock.Clock) Option {
	return func(o *options) error {
		o.clock = c
		return nil
	}
}

// WithLocalID 直接指定本地节点 ID
//
// 默认本地 ID 为 SHA-256("host:port")。
func WithLocalID(id types.Key) Option {
	return func(o *options) error {
		if id.IsEmpty() {
			return fmt.Errorf("%w: local id is empty", ErrInvalidConfig)
		}
		o.localID = &id
		return nil
	}
}

// WithStaleHandler 设置满桶回调
//
// 满桶收到新节点时回调 handler，由其 ping 最久未活跃节点，
// 再调用 Router.Replace 或 Router.KeepAlive。
func WithStaleHandler(handler interfaces.StaleContactHandler) Option {
	return func(o *options) error {
		o.staleHandler = handler
		return nil
	}
}

// WithMetricsRegisterer 设置 Prometheus 注册器，nil 表示不采集指标
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}
