// Package routing 实现 Kademlia 路由表核心
//
// # 模块概述
//
// routing 以本地节点标识符为锚点，把已知节点按 XOR 距离组织进 K 桶，
// 回答"距离某个键最近的 N 个节点"查询。不做任何网络 I/O：
// 传输层观察到节点后调用 Observe，确认节点离开后调用 Remove，
// 构造 FIND_NODE / FIND_VALUE 响应时调用 GetClosestNodes。
//
// # 桶索引
//
// 桶索引为 XOR(localID, id) 最高置位的位序（0..KeyBits-1），
// 索引越小距离本地节点越近。本地节点自身没有桶索引，传入时返回
// ErrInvalidIdentifier。
//
// # 满桶驱逐（两阶段）
//
//  1. 满桶收到新节点：新节点进入替换缓存，Observe 返回 ObservePending，
//     并回调 StaleContactHandler.OnStaleContact(最久未活跃节点, 新节点)
//  2. 传输层异步 ping 最久未活跃节点：
//     - 无响应：Replace(stale, pending)
//     - 有响应：KeepAlive(stale, pending)
//
// 核心从不等待网络往返；超时由传输层负责。
//
// # 最近节点查询
//
// GetClosestNodes 从目标所属桶开始向两侧外扩。设目标桶为 t，桶 i 中节点到目标的
// 距离下界为：i == t 时 0，i < t 时 2^t，i > t 时 2^i。已收集 count 个候选且
// 所有未访问桶的下界都大于第 count 近的距离时提前停止。
//
// # 并发
//
//   - 写操作任一时刻至多持有一个桶的写锁
//   - 查询对桶槽位做快照，逐桶读取，不持有跨桶的锁
//
// # Fx 模块
//
//	fx.New(
//	    fx.Provide(fx.Annotate(func() types.Key { return id }, fx.ResultTags(`name:"local_id"`))),
//	    routing.Module,
//	)
package routing
