package combat

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand"
)

// RandomGenerator 随机数生成器接口
// 战斗数学全部通过注入的生成器取随机数，保证固定种子下可复现
type RandomGenerator interface {
	// Next 生成下一个随机数 (0-1)
	Next() float64
	// NextInt 生成 [min, max) 范围内的随机整数
	NextInt(min, max int) int
}

// CryptoRandomGenerator 加密安全的随机数生成器
type CryptoRandomGenerator struct{}

// NewCryptoRandomGenerator 创建加密随机数生成器
func NewCryptoRandomGenerator() *CryptoRandomGenerator {
	return &CryptoRandomGenerator{}
}

// Next 生成下一个随机数 (0-1)
func (g *CryptoRandomGenerator) Next() float64 {
	max := big.NewInt(1000000)
	n, _ := rand.Int(rand.Reader, max)
	return float64(n.Int64()) / 1000000.0
}

// NextInt 生成指定范围内的随机整数
func (g *CryptoRandomGenerator) NextInt(min, max int) int {
	if min >= max {
		return min
	}
	diff := big.NewInt(int64(max - min))
	n, _ := rand.Int(rand.Reader, diff)
	return min + int(n.Int64())
}

// SeededRandomGenerator 带种子的伪随机生成器（测试和回放用）
type SeededRandomGenerator struct {
	r *mathrand.Rand
}

// NewSeededRandomGenerator 创建带种子的生成器
func NewSeededRandomGenerator(seed int64) *SeededRandomGenerator {
	return &SeededRandomGenerator{r: mathrand.New(mathrand.NewSource(seed))}
}

// Next 生成下一个随机数 (0-1)
func (g *SeededRandomGenerator) Next() float64 {
	return g.r.Float64()
}

// NextInt 生成指定范围内的随机整数
func (g *SeededRandomGenerator) NextInt(min, max int) int {
	if min >= max {
		return min
	}
	return min + g.r.Intn(max-min)
}

// FixedRandomGenerator 固定值生成器（测试用，Next恒返回Value）
type FixedRandomGenerator struct {
	Value float64
	Int   int
}

// Next 返回固定值
func (g *FixedRandomGenerator) Next() float64 {
	return g.Value
}

// NextInt 返回 min+Int（越界时返回min）
func (g *FixedRandomGenerator) NextInt(min, max int) int {
	if min+g.Int >= max {
		return min
	}
	return min + g.Int
}

// uniform 生成 [lo, hi] 区间内的随机因子
func uniform(rng RandomGenerator, lo, hi float64) float64 {
	return lo + rng.Next()*(hi-lo)
}
