// Package glb reads and writes the binary glTF container.
package glb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	Magic   = 0x46546C67 // "glTF"
	Version = 2

	ChunkJSON = 0x4E4F534A // "JSON"
	ChunkBIN  = 0x004E4942 // "BIN\0"

	HeaderSize      = 12
	ChunkHeaderSize = 8
)

var (
	ErrInvalidHeader = errors.New("glb: invalid header")
	ErrInvalidChunk  = errors.New("glb: invalid chunk")
	ErrTooLarge      = errors.New("glb: container exceeds 4 GiB")
)

type header struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type chunkHeader struct {
	Length uint32
	Type   uint32
}

func padding(n int) int {
	return (4 - n%4) % 4
}

// Size returns the total container length for the given chunk payloads.
func Size(jsonLen, binLen int) int {
	return HeaderSize + ChunkHeaderSize*2 + jsonLen + padding(jsonLen) + binLen + padding(binLen)
}

// Write writes a container with a JSON chunk padded with spaces and a BIN
// chunk padded with zeros. The BIN chunk is written even when bin is empty.
func Write(w io.Writer, json, bin []byte) error {
	total := Size(len(json), len(bin))
	if int64(total) > math.MaxUint32 {
		return ErrTooLarge
	}
	jsonPad := padding(len(json))
	binPad := padding(len(bin))

	h := header{Magic: Magic, Version: Version, Length: uint32(total)}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	if err := writeChunk(w, ChunkJSON, json, jsonPad, ' '); err != nil {
		return err
	}
	return writeChunk(w, ChunkBIN, bin, binPad, 0)
}

func writeChunk(w io.Writer, typ uint32, data []byte, pad int, fill byte) error {
	ch := chunkHeader{Length: uint32(len(data) + pad), Type: typ}
	if err := binary.Write(w, binary.LittleEndian, &ch); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if pad == 0 {
		return nil
	}
	p := [3]byte{fill, fill, fill}
	_, err := w.Write(p[:pad])
	return err
}

// Read parses a container. Padding is kept in the returned chunks.
// A missing BIN chunk yields a nil bin.
func Read(r io.Reader) (json, bin []byte, err error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if h.Magic != Magic || h.Version != Version || h.Length < HeaderSize+ChunkHeaderSize {
		return nil, nil, fmt.Errorf("%w: magic=%#x version=%d length=%d", ErrInvalidHeader, h.Magic, h.Version, h.Length)
	}
	remaining := int(h.Length) - HeaderSize

	json, remaining, err = readChunk(r, ChunkJSON, remaining)
	if err != nil {
		return nil, nil, err
	}
	if remaining == 0 {
		return json, nil, nil
	}
	bin, remaining, err = readChunk(r, ChunkBIN, remaining)
	if err != nil {
		return nil, nil, err
	}
	if remaining != 0 {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidChunk, remaining)
	}
	return json, bin, nil
}

func readChunk(r io.Reader, typ uint32, remaining int) ([]byte, int, error) {
	var ch chunkHeader
	if remaining < ChunkHeaderSize {
		return nil, 0, fmt.Errorf("%w: truncated chunk header", ErrInvalidChunk)
	}
	if err := binary.Read(r, binary.LittleEndian, &ch); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidChunk, err)
	}
	remaining -= ChunkHeaderSize
	if ch.Type != typ {
		return nil, 0, fmt.Errorf("%w: type %#x, want %#x", ErrInvalidChunk, ch.Type, typ)
	}
	if ch.Length%4 != 0 || int(ch.Length) > remaining {
		return nil, 0, fmt.Errorf("%w: length %d", ErrInvalidChunk, ch.Length)
	}
	data := make([]byte, ch.Length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidChunk, err)
	}
	return data, remaining - int(ch.Length), nil
}
