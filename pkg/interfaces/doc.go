// Package interfaces 定义 go-kad 对外的接口契约
//
// 传输层（外部协作者）只依赖本包与 pkg/types，不依赖 internal 实现：
//   - routing.go - RoutingTable 路由表、StaleContactHandler 满桶驱逐回调
//
// # 两阶段驱逐
//
//  1. 传输层对每条入站消息调用 RoutingTable.Observe
//  2. 桶满时路由表回调 StaleContactHandler.OnStaleContact(stale, pending)
//  3. 传输层异步 ping stale：
//     - 失败：RoutingTable.Replace(stale, pending)
//     - 成功：RoutingTable.KeepAlive(stale, pending)
package interfaces
