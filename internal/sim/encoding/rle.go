package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeOwners run-length encodes a row-major grid of owner ids (0 = unowned)
// into base64(varint pairs). Pairs are (owner_id, run_len).
func EncodeOwners(ids []uint64) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(ids) {
		id := ids[i]
		run := 1
		for j := i + 1; j < len(ids) && ids[j] == id; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], id)
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeOwners reverses EncodeOwners. maxCells bounds the decoded length so a
// hostile payload cannot force a huge allocation; pass 0 for no bound.
func DecodeOwners(b64 string, maxCells int) ([]uint64, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint64
	for i := 0; i < len(raw); {
		id, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if run == 0 {
			return nil, fmt.Errorf("zero run at %d", i)
		}
		if maxCells > 0 && uint64(len(out))+run > uint64(maxCells) {
			return nil, fmt.Errorf("grid exceeds %d cells", maxCells)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, id)
		}
	}
	return out, nil
}
