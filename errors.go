package kad

import (
	"errors"

	"github.com/dep2p/go-kad/internal/routing"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrAlreadyStarted 路由器已启动
	ErrAlreadyStarted = errors.New("router already started")

	// ErrNotStarted 路由器未启动
	ErrNotStarted = errors.New("router not started")

	// ErrRouterClosed 路由器已关闭
	ErrRouterClosed = errors.New("router closed")

	// ────────────────────────────────────────────────────────────────────────
	// 路由表错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrInvalidIdentifier 把本地节点当作远端节点传入
	ErrInvalidIdentifier = routing.ErrInvalidIdentifier

	// ErrBucketMismatch 替换双方不属于同一个桶
	ErrBucketMismatch = routing.ErrBucketMismatch

	// ErrContactNotFound 节点不在路由表中
	ErrContactNotFound = routing.ErrContactNotFound

	// ErrBucketIndexOutOfRange 桶索引越界
	ErrBucketIndexOutOfRange = routing.ErrBucketIndexOutOfRange

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = routing.ErrInvalidConfig
)
