package order

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/google/uuid"
)

const (
	numberCapacity = 1_000_000
	numberFPR      = 0.001
)

// NumberGenerator issues human-readable order numbers of the form
// ORD-20260131-3FA85F64. A bloom filter of issued numbers catches the rare
// in-process collision before it ever reaches the database; the unique index
// on orders.number is the backstop.
type NumberGenerator struct {
	mu     sync.Mutex
	issued *bloom.BloomFilter
	now    func() time.Time
}

// NewNumberGenerator creates a generator using the real clock.
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{
		issued: bloom.NewWithEstimates(numberCapacity, numberFPR),
		now:    time.Now,
	}
}

// Next returns a fresh order number, never one issued by this process before.
func (g *NumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	day := g.now().UTC().Format("20060102")
	for {
		n := fmt.Sprintf("ORD-%s-%s", day, randomSuffix())
		if g.issued.TestString(n) {
			continue
		}
		g.issued.AddString(n)
		return n
	}
}

// randomSuffix returns 8 uppercase hex characters of UUID entropy.
func randomSuffix() string {
	id := uuid.New()
	return strings.ToUpper(hex.EncodeToString(id[:4]))
}
