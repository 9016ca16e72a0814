package core

import (
	"encoding/binary"
	"errors"
	"math/bits"
)

const (
	pcg32Multiplier = 6364136223846793005
	pcg32FloatUnit  = 1.0 / (1 << 32)
)

var errPCG32State = errors.New("pcg32: invalid snapshot length")

// PCG32 為 64-bit 狀態、32-bit 輸出的 PCG (XSH RR) 產生器。
// 介面設計對齊 PCG64 版本，便於在 core.Core 中互換。
type PCG32 struct {
	state uint64
	inc   uint64
}

func newPCG32WithSeed(seed int64) *PCG32 {
	r := &PCG32{}
	r.initWithSeed(seed, 1)
	return r
}

// Uint64 回傳非負整數uint64亂數
func (r *PCG32) Uint64() uint64 {
	return (uint64(r.nextUint32()) << 32) | uint64(r.nextUint32())
}

// Float64 回傳 [0,1) 的浮點亂數（32-bit 精度）。
func (r *PCG32) Float64() float64 {
	return float64(r.nextUint32()) * pcg32FloatUnit
}

// Snapshot 取得當下內部狀態 (state, inc) 共 16 bytes
func (r *PCG32) Snapshot() ([]byte, error) {
	b := make([]byte, 0, 16)
	b = binary.BigEndian.AppendUint64(b, r.state)
	b = binary.BigEndian.AppendUint64(b, r.inc)
	return b, nil
}

// Restore 由 Snapshot 的輸出還原
func (r *PCG32) Restore(data []byte) error {
	if len(data) != 16 {
		return errPCG32State
	}
	r.state = binary.BigEndian.Uint64(data[:8])
	r.inc = binary.BigEndian.Uint64(data[8:])
	return nil
}

func (r *PCG32) initWithSeed(baseSeed int64, seq uint64) {
	// PCG 建議的初始化流程：先用 stream 初始化一次，再加 seed，最後再 step。
	r.state = 0
	r.inc = (seq << 1) | 1
	r.nextUint32()
	r.state += uint64(baseSeed)
	r.nextUint32()
}

func (r *PCG32) nextUint32() uint32 {
	oldstate := r.state
	r.state = oldstate*pcg32Multiplier + r.inc
	xorshifted := uint32(((oldstate >> 18) ^ oldstate) >> 27)
	rot := uint32(oldstate >> 59)
	return bits.RotateLeft32(xorshifted, -int(rot))
}
