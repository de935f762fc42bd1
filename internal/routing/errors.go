package routing

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrInvalidIdentifier 把本地节点当作远端节点传入
	//
	// 节点从不路由到自己，调用方应保证不发出此类调用。
	ErrInvalidIdentifier = errors.New("routing: invalid identifier: local node cannot be a routing entry")

	// ErrBucketMismatch 替换双方不属于同一个桶
	ErrBucketMismatch = errors.New("routing: contacts map to different buckets")

	// ErrContactNotFound 节点不在路由表中
	ErrContactNotFound = errors.New("routing: contact not found")

	// ErrBucketIndexOutOfRange 桶索引越界
	ErrBucketIndexOutOfRange = errors.New("routing: bucket index out of range")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("routing: invalid config")
)

// RoutingError 路由表错误类型
type RoutingError struct {
	Op      string // 操作名称
	Err     error  // 底层错误
	Message string // 错误消息
}

// Error 实现 error 接口
func (e *RoutingError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("routing %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("routing %s: %v", e.Op, e.Err)
}

// Unwrap 实现错误解包
func (e *RoutingError) Unwrap() error {
	return e.Err
}

// newRoutingError 创建路由表错误
func newRoutingError(op string, err error, message string) *RoutingError {
	return &RoutingError{
		Op:      op,
		Err:     err,
		Message: message,
	}
}
