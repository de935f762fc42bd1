package routing

import (
	"context"
	"sync"
	"time"

	"github.com/dep2p/go-kad/pkg/types"
)

// RefreshFunc 对 target 发起一次节点查找以刷新第 index 个桶
//
// 由网络层实现；路由表核心只负责选出需要刷新的桶与目标键。
type RefreshFunc func(ctx context.Context, index int, target types.Key)

// Refresher 桶刷新器
//
// 定时检查超过 RefreshInterval 未刷新的桶，为每个桶生成一个随机目标键
// 并回调 RefreshFunc，随后标记该桶已刷新。
type Refresher struct {
	table *RoutingTable
	fn    RefreshFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// NewRefresher 创建桶刷新器
func NewRefresher(table *RoutingTable, fn RefreshFunc) *Refresher {
	return &Refresher{
		table: table,
		fn:    fn,
	}
}

// checkInterval 返回检查周期
func (r *Refresher) checkInterval() time.Duration {
	interval := r.table.cfg.RefreshInterval / 4
	if interval <= 0 {
		interval = r.table.cfg.RefreshInterval
	}
	return interval
}

// Start 启动刷新循环
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())
	ticker := r.table.cfg.Clock.Ticker(r.checkInterval())
	r.running = true

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.RefreshOnce(r.ctx)
			case <-r.ctx.Done():
				return
			}
		}
	}()
}

// Stop 停止刷新循环并等待其退出
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.cancel()
	r.mu.Unlock()

	r.wg.Wait()
}

// RefreshOnce 刷新所有过期桶，返回刷新的桶数量
func (r *Refresher) RefreshOnce(ctx context.Context) int {
	refreshed := 0
	for _, idx := range r.table.BucketsNeedingRefresh() {
		if ctx.Err() != nil {
			break
		}

		target, err := r.table.RandomKeyInBucket(idx)
		if err != nil {
			logger.Warn("生成刷新目标失败", "index", idx, "error", err)
			continue
		}

		logger.Debug("刷新 K 桶", "index", idx, "target", target.ShortString())
		if r.fn != nil {
			r.fn(ctx, idx, target)
		}
		r.table.MarkBucketRefreshed(idx)
		refreshed++
	}
	return refreshed
}
