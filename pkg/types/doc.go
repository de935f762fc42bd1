// Package types 定义 go-kad 的基础类型
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在路由核心与传输层之间传递数据。
//
// # 文件组织
//
//   - key.go     - Key（节点/键标识符）、Distance（XOR 距离）
//   - contact.go - Contact（地址 + 标识符）、按距离排序
//   - enums.go   - ObserveResult（路由表观察结果）
//
// # 距离与顺序
//
// Key 与 Distance 都按大端无符号整数比较。Contact 没有内在顺序，
// 排序总是相对一个显式目标进行：
//
//	types.SortByDistance(contacts, target)
package types
