// Package kad 提供 Kademlia 节点标识与路由核心
//
// kad 负责节点标识符的 XOR 距离计算、K 桶路由表的维护，以及
// "距离某个键最近的 N 个节点"查询。网络传输、消息编解码、值存储、
// 存活检测的具体实现都不在本包范围内，由调用方实现并回调本包。
//
// # 快速开始
//
//	r, err := kad.New("127.0.0.1", 9000, kad.WithBucketSize(20))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := r.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Stop(ctx)
//
//	// 收到任意消息时
//	r.Observe(types.NewContact("10.0.0.2", 9000))
//
//	// 构造 FIND_NODE 响应
//	closest := r.ClosestContacts(target, 20)
//
// # 满桶驱逐
//
// 满桶收到新节点时，新节点进入替换缓存，WithStaleHandler 设置的回调
// 收到 (最久未活跃节点, 新节点)。回调方 ping 前者后：
//
//   - 无响应：r.Replace(stale, pending)
//   - 有响应：r.KeepAlive(stale, pending)
//
// # 桶刷新
//
// 设置 WithRefreshFunc 后，Start 启动刷新循环：超过刷新间隔未活跃的桶
// 会得到一个落入该桶的随机目标键，由回调方发起节点查找。
//
// # 日志
//
// 日志级别由环境变量 KAD_LOG_LEVEL 控制（例如 "routing=debug,warn"），
// KAD_LOG_FORMAT=json 输出 JSON。
package kad
