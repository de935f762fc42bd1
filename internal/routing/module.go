package routing

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-kad/pkg/interfaces"
	"github.com/dep2p/go-kad/pkg/types"
)

// Module 路由表 Fx 模块
var Module = fx.Module("routing",
	fx.Provide(
		NewFromParams,
	),
	fx.Invoke(registerLifecycle),
)

// Params 路由表依赖参数
type Params struct {
	fx.In

	LocalID      types.Key                      `name:"local_id"`
	Config       *Config                        `optional:"true"`
	Registerer   prometheus.Registerer          `optional:"true"`
	StaleHandler interfaces.StaleContactHandler `optional:"true"`
	RefreshFunc  RefreshFunc                    `optional:"true"`
}

// Result 路由表导出结果
type Result struct {
	fx.Out

	Table          *RoutingTable
	TableInterface interfaces.RoutingTable
	Refresher      *Refresher
}

// NewFromParams 从 Fx 参数创建路由表
//
// Config 中未设置的 StaleHandler / Metrics 由注入的依赖补齐。
func NewFromParams(p Params) (Result, error) {
	cfg := DefaultConfig()
	if p.Config != nil {
		cp := *p.Config
		cfg = &cp
	}

	if cfg.StaleHandler == nil && p.StaleHandler != nil {
		cfg.StaleHandler = p.StaleHandler
	}

	if cfg.Metrics == nil && p.Registerer != nil {
		m, err := NewMetrics(p.Registerer)
		if err != nil {
			return Result{}, newRoutingError("new", err, "register metrics")
		}
		cfg.Metrics = m
	}

	rt, err := New(p.LocalID, cfg)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Table:          rt,
		TableInterface: rt,
		Refresher:      refresherFor(rt, p.RefreshFunc),
	}, nil
}

// refresherFor 未提供 RefreshFunc 时返回 nil，不启动刷新循环
func refresherFor(rt *RoutingTable, fn RefreshFunc) *Refresher {
	if fn == nil {
		return nil
	}
	return NewRefresher(rt, fn)
}

// lifecycleParams 路由表生命周期参数
type lifecycleParams struct {
	fx.In

	LC        fx.Lifecycle
	Table     *RoutingTable
	Refresher *Refresher
}

// registerLifecycle 注册路由表生命周期钩子
func registerLifecycle(p lifecycleParams) {
	p.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			cfg := p.Table.Config()
			logger.Info("路由表已就绪",
				"localID", p.Table.LocalID().ShortString(),
				"bucketSize", cfg.BucketSize,
				"refreshInterval", cfg.RefreshInterval)
			if p.Refresher != nil {
				p.Refresher.Start()
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			if p.Refresher != nil {
				p.Refresher.Stop()
			}
			logger.Info("路由表已停止",
				"contacts", p.Table.Size(),
				"buckets", p.Table.BucketCount())
			return nil
		},
	})
}
