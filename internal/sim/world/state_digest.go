package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func digestWriteString(h hashWriter, tmp *[8]byte, s string) {
	digestWriteU64(h, tmp, uint64(len(s)))
	h.Write([]byte(s))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// stateDigest hashes everything that influences future ticks: clock flags,
// counters, RNG state, every entity and the ownership grid.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	h.Write([]byte{boolByte(w.started), boolByte(w.paused), boolByte(w.over)})
	digestWriteU64(h, &tmp, w.nextID)
	digestWriteI64(h, &tmp, int64(w.colorIndex))
	digestWriteI64(h, &tmp, int64(w.scores.letter))
	digestWriteI64(h, &tmp, int64(w.scores.number))
	if state, err := w.rngSrc.MarshalBinary(); err == nil {
		h.Write(state)
	}

	for _, e := range w.reg.order {
		w.digestEntity(h, &tmp, e)
	}
	for _, owner := range w.ownerGrid() {
		digestWriteU64(h, &tmp, owner)
	}
	for _, s := range w.scores.Entries() {
		digestWriteString(h, &tmp, s.Name)
		digestWriteI64(h, &tmp, int64(s.Score))
		digestWriteI64(h, &tmp, int64(s.Kills))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (w *World) digestEntity(h hashWriter, tmp *[8]byte, e *Entity) {
	digestWriteU64(h, tmp, e.ID)
	h.Write([]byte{byte(e.Role), boolByte(e.Moving)})
	digestWriteString(h, tmp, e.Name)
	digestWriteI64(h, tmp, int64(e.Pos.X))
	digestWriteI64(h, tmp, int64(e.Pos.Y))
	digestWriteI64(h, tmp, int64(e.Dir.DX))
	digestWriteI64(h, tmp, int64(e.Dir.DY))
	digestWriteU64(h, tmp, uint64(len(e.Trail)))
	for _, c := range e.Trail {
		digestWriteI64(h, tmp, int64(c.X))
		digestWriteI64(h, tmp, int64(c.Y))
	}
	digestWriteU64(h, tmp, uint64(len(e.Territory)))
	if b := e.Bot; b != nil {
		digestWriteU64(h, tmp, math.Float64bits(b.BaseAggression))
		for _, v := range []int{
			b.TrailCheckCounter, b.TrailCheckThreshold, b.TrailCheckRadius,
			b.DirChangeCounter, b.DirChangeThreshold, b.MaxTrailLength,
		} {
			digestWriteI64(h, tmp, int64(v))
		}
	}
}
