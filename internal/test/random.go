package test

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomAmount returns a positive amount with two decimal places in
// [minCents, maxCents] hundredths.
func RandomAmount(minCents, maxCents int64) decimal.Decimal {
	if minCents <= 0 {
		minCents = 1
	}
	if maxCents < minCents {
		maxCents = minCents
	}
	cents := minCents + randomInt63n(maxCents-minCents+1)
	return decimal.New(cents, -2)
}

// RandomASCIIString returns a pseudo-random alphanumeric string of length n.
func RandomASCIIString(n int) string {
	if n <= 0 {
		n = 1
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = asciiLetters[randomInt63n(int64(len(asciiLetters)))]
	}
	return string(buf)
}

func randomInt63n(n int64) int64 {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Int63n(n)
}
