package game

import (
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

func GenID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("Failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// Rand 是核心用到的随机数接口。实现必须可以并发调用；
// *rand.Rand 不满足这一点，WithRand 与会话服务会用 LockedRand 包装注入的随机源
type Rand interface {
	IntN(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// 包级函数并发安全，多个会话可以共用
type globalRand struct{}

func (globalRand) IntN(n int) int                     { return rand.IntN(n) }
func (globalRand) Float64() float64                   { return rand.Float64() }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// DefaultRand 返回并发安全的全局随机源
func DefaultRand() Rand {
	return globalRand{}
}

type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

// LockedRand 用互斥锁包装随机源，使其可以被多个会话共用。
// 已经并发安全的随机源原样返回
func LockedRand(r Rand) Rand {
	switch r.(type) {
	case nil:
		return globalRand{}
	case globalRand, *lockedRand:
		return r
	}
	return &lockedRand{r: r}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Shuffle 在持锁期间调用 swap，swap 不能再使用同一个随机源
func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
