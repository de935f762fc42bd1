package types

// ============================================================================
//                              ObserveResult - 观察结果
// ============================================================================

// ObserveResult 路由表观察一个 Contact 后的结果
type ObserveResult int

const (
	// ObserveRejected 观察被拒绝（只伴随错误返回）
	ObserveRejected ObserveResult = iota
	// ObserveAdded 新节点已加入桶尾（最近活跃位置）
	ObserveAdded
	// ObserveRefreshed 节点已存在，仅更新为最近活跃
	ObserveRefreshed
	// ObservePending 桶已满，新节点进入替换缓存，等待对最久未活跃节点的存活检测
	ObservePending
)

// String 返回观察结果的字符串表示
func (r ObserveResult) String() string {
	switch r {
	case ObserveAdded:
		return "added"
	case ObserveRefreshed:
		return "refreshed"
	case ObservePending:
		return "pending"
	default:
		return "rejected"
	}
}
