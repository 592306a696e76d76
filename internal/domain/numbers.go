package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

const (
	NumbersPerTicket = 7
	MinNumber        = 1
	MaxNumber        = 49
)

var (
	ErrWrongNumberCount = fmt.Errorf("exactly %d numbers are required", NumbersPerTicket)
	ErrNumberOutOfRange = fmt.Errorf("numbers must be between %d and %d", MinNumber, MaxNumber)
	ErrDuplicateNumbers = errors.New("numbers must be distinct")
)

// Numbers is a 7/49 combination kept in ascending order.
type Numbers []int

func (n Numbers) Validate() error {
	if len(n) != NumbersPerTicket {
		return ErrWrongNumberCount
	}
	seen := make(map[int]struct{}, len(n))
	for _, v := range n {
		if v < MinNumber || v > MaxNumber {
			return ErrNumberOutOfRange
		}
		if _, ok := seen[v]; ok {
			return ErrDuplicateNumbers
		}
		seen[v] = struct{}{}
	}
	return nil
}

// Sorted returns an ascending copy.
func (n Numbers) Sorted() Numbers {
	out := make(Numbers, len(n))
	copy(out, n)
	sort.Ints(out)
	return out
}

// GenerateNumbers draws a random combination without repetition.
func GenerateNumbers(rng *rand.Rand) Numbers {
	pool := rng.Perm(MaxNumber - MinNumber + 1)[:NumbersPerTicket]
	out := make(Numbers, NumbersPerTicket)
	for i, v := range pool {
		out[i] = v + MinNumber
	}
	sort.Ints(out)
	return out
}

// MatchCount returns how many of the ticket numbers were drawn.
func MatchCount(ticket, winning Numbers) int {
	drawn := make(map[int]struct{}, len(winning))
	for _, v := range winning {
		drawn[v] = struct{}{}
	}
	matches := 0
	for _, v := range ticket {
		if _, ok := drawn[v]; ok {
			matches++
		}
	}
	return matches
}
