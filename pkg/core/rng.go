package core

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// NewTaskRand seeds a per-task random source from OS entropy mixed with
// the task's index, so that concurrent tasks never share a seed.
func NewTaskRand(taskIndex int) *rand.Rand {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// crypto/rand failure is effectively unrecoverable on supported
		// platforms; fall back to a distinguishable but still varying seed.
		binary.LittleEndian.PutUint64(buf[:], uint64(taskIndex)+1)
	}
	seed := binary.LittleEndian.Uint64(buf[:]) ^ uint64(taskIndex)*0x9E3779B97F4A7C15
	return rand.New(rand.NewSource(int64(seed)))
}
