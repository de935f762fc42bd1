package types

import (
	"fmt"
	"net"
	"sort"
	"strconv"
)

// ============================================================================
//                              Contact - 节点联系信息
// ============================================================================

// Contact 已知节点的网络地址与标识符
//
// Contact 是值类型，创建后不再修改；需要更新状态时先移除再重新观察。
// Contact 本身没有全局顺序，"远近"总是相对一个显式目标 Key 而言，
// 见 SortByDistance。
type Contact struct {
	// Host 主机（IP 或域名）
	Host string

	// Port 端口
	Port uint16

	// ID 节点标识符
	ID Key
}

// NewContact 由地址派生标识符创建 Contact
//
// ID = NewKey(Address())，纯计算，无 I/O。
func NewContact(host string, port uint16) Contact {
	c := Contact{Host: host, Port: port}
	c.ID = NewKey(c.Address())
	return c
}

// NewContactWithID 使用外部提供的标识符创建 Contact
//
// 用于通过查询响应发现的节点，其 ID 由对端给出。
func NewContactWithID(host string, port uint16, id Key) Contact {
	return Contact{Host: host, Port: port, ID: id}
}

// Address 返回规范地址 "host:port"
//
// 用于传输层拨号与日志显示，不参与身份判定。
func (c Contact) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

// DistanceTo 计算与另一个 Contact 的 XOR 距离
func (c Contact) DistanceTo(other Contact) Distance {
	return c.ID.Distance(other.ID)
}

// DistanceToKey 计算到目标 Key 的 XOR 距离
func (c Contact) DistanceToKey(target Key) Distance {
	return c.ID.Distance(target)
}

// Equal 地址与标识符都相同才视为相等
func (c Contact) Equal(other Contact) bool {
	return c.ID == other.ID && c.Host == other.Host && c.Port == other.Port
}

// IsEmpty 检查是否为零值
func (c Contact) IsEmpty() bool {
	return c.ID.IsEmpty() && c.Host == "" && c.Port == 0
}

// String 返回可读表示
func (c Contact) String() string {
	return fmt.Sprintf("%s@%s", c.ID.ShortString(), c.Address())
}

// ============================================================================
//                              排序
// ============================================================================

// SortByDistance 按到 target 的距离升序原地排序
//
// 距离相同时按标识符字节序排序，保证结果确定。
func SortByDistance(contacts []Contact, target Key) {
	sort.Slice(contacts, func(i, j int) bool {
		return lessByDistance(contacts[i].ID, contacts[j].ID, target)
	})
}

// ContactDistance Contact 及其到某个目标的距离
type ContactDistance struct {
	Contact  Contact
	Distance Distance
}

// SortContactDistances 按距离升序原地排序
func SortContactDistances(items []ContactDistance) {
	sort.Slice(items, func(i, j int) bool {
		if c := items[i].Distance.Compare(items[j].Distance); c != 0 {
			return c < 0
		}
		return items[i].Contact.ID.Compare(items[j].Contact.ID) < 0
	})
}

func lessByDistance(a, b, target Key) bool {
	if c := CompareDistance(a, b, target); c != 0 {
		return c < 0
	}
	return a.Compare(b) < 0
}
