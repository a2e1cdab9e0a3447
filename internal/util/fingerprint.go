package util

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"time"
)

// FingerprintSource is the subset of a reading that identifies its content
type FingerprintSource interface {
	FingerprintFields() (kind, id, name, description string, at time.Time)
}

// ReadingsFingerprint calculates a CRC32 fingerprint of an ordered reading
// list. Two lists with the same content in the same order share a fingerprint.
func ReadingsFingerprint[T FingerprintSource](readings []T) string {
	h := crc32.NewIEEE()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(len(readings)))
	h.Write(buf[:])

	for _, r := range readings {
		kind, id, name, description, at := r.FingerprintFields()
		writeField(h, kind)
		writeField(h, id)
		writeField(h, name)
		writeField(h, description)
		binary.LittleEndian.PutUint64(buf[:], uint64(at.UnixMilli()))
		h.Write(buf[:])
	}
	return fmt.Sprintf("%08x", h.Sum32())
}

func writeField(w io.Writer, s string) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(len(s)))
	w.Write(buf[:])
	io.WriteString(w, s)
}

// BytesFingerprint calculates the CRC32 fingerprint of a file's content
func BytesFingerprint(data []byte) string {
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE(data))
}
