package types

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/bits"

	"github.com/minio/sha256-simd"
	"github.com/mr-tron/base58"
)

// ============================================================================
//                              Key - 节点/键标识
// ============================================================================

const (
	// KeySize 标识符字节长度（SHA-256 输出长度）
	KeySize = sha256.Size

	// KeyBits 标识符位数，同时也是 K 桶数量
	KeyBits = KeySize * 8
)

// Key 节点与键共用的标识符
//
// 由 SHA-256 单向哈希派生，定长 KeySize 字节。
// 值类型、不可变，可直接作为 map 键使用。
//
// 外部表示格式：
//   - String(): Base58 编码
//   - ShortString(): Base58 前缀（日志简短标识）
type Key [KeySize]byte

// EmptyKey 空标识符
var EmptyKey Key

// ErrInvalidKey 无效的标识符
var ErrInvalidKey = errors.New("invalid key: must be 32 bytes")

// NewKey 对 seed 的 UTF-8 字节做 SHA-256，得到确定性的标识符
//
// 哈希输出长度与 KeySize 不一致属于内部不变量被破坏，直接 panic。
func NewKey(seed string) Key {
	sum := sha256.Sum256([]byte(seed))
	if len(sum) != KeySize {
		panic("types: hash length mismatch")
	}
	return Key(sum)
}

// KeyFromBytes 从字节切片创建 Key
func KeyFromBytes(b []byte) (Key, error) {
	if len(b) != KeySize {
		return EmptyKey, ErrInvalidKey
	}
	var k Key
	copy(k[:], b)
	return k, nil
}

// ParseKey 从 Base58 字符串解析 Key
func ParseKey(s string) (Key, error) {
	if s == "" {
		return EmptyKey, ErrInvalidKey
	}
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyKey, ErrInvalidKey
	}
	return KeyFromBytes(b)
}

// String 返回 Base58 字符串表示
func (k Key) String() string {
	if k.IsEmpty() {
		return ""
	}
	return base58.Encode(k[:])
}

// ShortString 返回 Base58 前 8 个字符，用于日志
func (k Key) ShortString() string {
	s := k.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// Bytes 返回字节切片副本
func (k Key) Bytes() []byte {
	b := make([]byte, KeySize)
	copy(b, k[:])
	return b
}

// IsEmpty 检查是否为全零值
func (k Key) IsEmpty() bool {
	return k == EmptyKey
}

// Equal 比较两个 Key 是否相等
func (k Key) Equal(other Key) bool {
	return k == other
}

// Compare 按大端无符号整数比较
//
// 返回 -1、0、1。
func (k Key) Compare(other Key) int {
	return bytes.Compare(k[:], other[:])
}

// Distance 计算与 other 的 XOR 距离
func (k Key) Distance(other Key) Distance {
	var d Distance
	for i := 0; i < KeySize; i++ {
		d[i] = k[i] ^ other[i]
	}
	return d
}

// ============================================================================
//                              Distance - XOR 距离
// ============================================================================

// Distance XOR 距离
//
// 与 Key 同构（同一字节空间），语义不同：数值越小越近。
type Distance [KeySize]byte

// ZeroDistance 零距离
var ZeroDistance Distance

// Compare 按大端无符号整数比较两个距离
func (d Distance) Compare(other Distance) int {
	return bytes.Compare(d[:], other[:])
}

// Less 检查 d 是否严格小于 other
func (d Distance) Less(other Distance) bool {
	return d.Compare(other) < 0
}

// IsZero 检查是否为零距离
func (d Distance) IsZero() bool {
	return d == ZeroDistance
}

// Xor 距离之间的按位异或
//
// 满足 d(a,b) ⊕ d(b,c) == d(a,c)。
func (d Distance) Xor(other Distance) Distance {
	var r Distance
	for i := 0; i < KeySize; i++ {
		r[i] = d[i] ^ other[i]
	}
	return r
}

// LeadingZeros 前导零位数
//
// 即两个标识符的共同前缀长度；零距离返回 KeyBits。
func (d Distance) LeadingZeros() int {
	for i, b := range d {
		if b != 0 {
			return i*8 + bits.LeadingZeros8(b)
		}
	}
	return KeyBits
}

// HighestBit 最高置位的位序（从最低位起 0 计数）
//
// 零距离返回 -1。
func (d Distance) HighestBit() int {
	return KeyBits - 1 - d.LeadingZeros()
}

// PowerOfTwo 返回仅第 bit 位为 1 的距离值（2^bit）
//
// bit 超出 [0, KeyBits) 时返回零距离。
func PowerOfTwo(bit int) Distance {
	var d Distance
	if bit < 0 || bit >= KeyBits {
		return d
	}
	d[KeySize-1-bit/8] = 1 << (bit % 8)
	return d
}

// String 返回距离的十六进制前缀表示
func (d Distance) String() string {
	return hex.EncodeToString(d[:8])
}

// CompareDistance 比较 a 和 b 到 target 的距离
//
// 返回：
//
//	-1 如果 dist(a, target) < dist(b, target)
//	 0 如果 a == b
//	 1 如果 dist(a, target) > dist(b, target)
func CompareDistance(a, b, target Key) int {
	return a.Distance(target).Compare(b.Distance(target))
}
