package kad

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-kad/internal/routing"
	"github.com/dep2p/go-kad/pkg/interfaces"
	"github.com/dep2p/go-kad/pkg/types"
)

// buildApp 组装 Fx 应用
//
// 模块顺序：
//  1. 本地 ID 与路由表配置
//  2. 可选依赖（指标注册器、满桶回调、刷新回调）
//  3. routing.Module
//  4. Router 组件注入
func buildApp(r *Router, o *options) *fx.App {
	localID := r.local.ID
	cfg := o.toRoutingConfig()

	modules := []fx.Option{
		fx.Provide(fx.Annotate(
			func() types.Key { return localID },
			fx.ResultTags(`name:"local_id"`),
		)),
		fx.Supply(cfg),
	}

	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}
	if o.staleHandler != nil {
		handler := o.staleHandler
		modules = append(modules, fx.Provide(func() interfaces.StaleContactHandler { return handler }))
	}
	if o.refreshFunc != nil {
		fn := o.refreshFunc
		modules = append(modules, fx.Provide(func() routing.RefreshFunc { return fn }))
	}

	modules = append(modules,
		routing.Module,
		fx.Invoke(func(table *routing.RoutingTable) {
			r.table = table
		}),
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	return fx.New(modules...)
}
