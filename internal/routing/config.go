package routing

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/dep2p/go-kad/pkg/interfaces"
)

const (
	// DefaultBucketSize 默认 K 桶容量
	DefaultBucketSize = 20

	// DefaultRefreshInterval 默认桶刷新间隔
	DefaultRefreshInterval = 1 * time.Hour
)

// Config 路由表配置
type Config struct {
	// BucketSize K 桶容量（K）
	BucketSize int

	// ReplacementCacheSize 每个桶的替换缓存容量，0 表示不缓存候选节点
	ReplacementCacheSize int

	// RefreshInterval 桶刷新间隔，超过此时间未刷新的桶由 BucketsNeedingRefresh 返回
	RefreshInterval time.Duration

	// Clock 时钟，测试时可替换为 clock.NewMock()
	Clock clock.Clock

	// StaleHandler 满桶回调（可选）
	StaleHandler interfaces.StaleContactHandler

	// Metrics Prometheus 指标（可选）
	Metrics *Metrics
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		BucketSize:           DefaultBucketSize,
		ReplacementCacheSize: DefaultBucketSize,
		RefreshInterval:      DefaultRefreshInterval,
		Clock:                clock.New(),
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	var err error
	if c.BucketSize <= 0 {
		err = multierr.Append(err, errors.New("bucket size must be positive"))
	}
	if c.ReplacementCacheSize < 0 {
		err = multierr.Append(err, errors.New("replacement cache size must not be negative"))
	}
	if c.RefreshInterval <= 0 {
		err = multierr.Append(err, errors.New("refresh interval must be positive"))
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// withDefaults 返回填充了缺省字段的副本
func (c *Config) withDefaults() *Config {
	cp := *c
	if cp.Clock == nil {
		cp.Clock = clock.New()
	}
	return &cp
}
