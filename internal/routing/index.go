package routing

import (
	"crypto/rand"
	"fmt"

	"github.com/dep2p/go-kad/pkg/types"
)

// bucketIndexOf 返回 id 相对 local 的桶索引
//
// 索引为 XOR 距离最高置位的位序（从最低位起 0 计数），
// 等价于 KeyBits - 1 - 共同前缀长度。id == local 时返回 -1。
func bucketIndexOf(local, id types.Key) int {
	return local.Distance(id).HighestBit()
}

// distanceFloor 返回桶 index 中任意节点到目标的距离下界
//
// targetIndex 为目标相对本地节点的桶索引（目标即本地节点时为 -1）。
// 设 c 位于桶 i，则 d(c,t) = d(local,c) ⊕ d(local,t)：
//   - i == targetIndex：最高位相消，下界为 0
//   - i <  targetIndex：最高位为 targetIndex，下界 2^targetIndex
//   - i >  targetIndex：最高位为 i，下界 2^i
func distanceFloor(index, targetIndex int) types.Distance {
	switch {
	case index == targetIndex:
		return types.ZeroDistance
	case index < targetIndex:
		return types.PowerOfTwo(targetIndex)
	default:
		return types.PowerOfTwo(index)
	}
}

// remainingFloor 返回所有未访问桶的距离下界最小值
//
// 外扩遍历中 lo 向下、hi 向上推进，lo < 0 且 hi >= KeyBits 时不再有未访问的桶。
func remainingFloor(lo, hi, targetIndex int) (types.Distance, bool) {
	switch {
	case lo >= 0:
		// lo < targetIndex 的桶下界都是 2^targetIndex，不大于任何 hi 侧下界
		return distanceFloor(lo, targetIndex), true
	case hi < types.KeyBits:
		return distanceFloor(hi, targetIndex), true
	default:
		return types.Distance{}, false
	}
}

// randomKeyInBucket 生成一个落入 local 第 index 个桶的随机标识符
//
// 用于桶刷新：对该随机键发起一次节点查找。
func randomKeyInBucket(local types.Key, index int) (types.Key, error) {
	if index < 0 || index >= types.KeyBits {
		return types.EmptyKey, fmt.Errorf("%w: %d", ErrBucketIndexOutOfRange, index)
	}

	var d types.Distance
	if _, err := rand.Read(d[:]); err != nil {
		return types.EmptyKey, err
	}

	// 清除 index 以上的位，置位 index
	byteIdx := types.KeySize - 1 - index/8
	for i := 0; i < byteIdx; i++ {
		d[i] = 0
	}
	bit := byte(1) << (index % 8)
	d[byteIdx] &= bit - 1
	d[byteIdx] |= bit

	var k types.Key
	for i := range k {
		k[i] = local[i] ^ d[i]
	}
	return k, nil
}
