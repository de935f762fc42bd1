// Package lib 包含基础设施工具库
//
// 本目录包含与路由核心无关的通用工具库：
//
//   - log: 基于 slog 的分组件日志
//
// # 与 pkg/ 其他目录的关系
//
//   - interfaces/: 路由表与满桶回调接口
//   - types/: 标识符、Contact 等公共类型
//   - lib/: 基础设施工具库（本目录）
package lib
