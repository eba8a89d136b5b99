package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/OneOfOne/xxhash"
	"github.com/pierrec/lz4/v3"
)

// DataPack is the length-prefixed, compressed payload framing used by
// every bulk buffer/image transfer (spec §4.1): `{u64 compressed_size;
// bytes}`. Compression is required here and forbidden on control frames —
// callers never call these two functions from a plain request/reply path.
//
// Compression uses github.com/pierrec/lz4/v3 frame format (lz4.NewWriter/NewReader), the same
// library aistore's transport package reaches for via api/apc's
// compression enum (teacher: rockstar-0000-aistore).

// WriteDataPack compresses raw and writes it as {u64 size; bytes}. A
// compression failure aborts the transfer but, per spec §4.1, does not
// touch the underlying connection's validity.
func (c *Conn) WriteDataPack(raw []byte) error {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return fmt.Errorf("wire: compression failed: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("wire: compression failed: %w", err)
	}
	compressed := buf.Bytes()
	if err := c.WriteU64(uint64(len(compressed))); err != nil {
		return err
	}
	if len(compressed) == 0 {
		return nil
	}
	if _, err := c.w.Write(compressed); err != nil {
		return c.fail(err)
	}
	return nil
}

// ReadDataPack reads a dataPack and decompresses it into a buffer of
// exactly wantLen bytes. wantLen comes from the command framing (the
// region/size the caller already agreed on), not from the wire, since the
// dataPack only carries the compressed length.
func (c *Conn) ReadDataPack(wantLen int) ([]byte, error) {
	csize, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	compressed := make([]byte, csize)
	if csize > 0 {
		if _, err := io.ReadFull(c.r, compressed); err != nil {
			return nil, c.fail(err)
		}
	}
	out := make([]byte, wantLen)
	zr := lz4.NewReader(bytes.NewReader(compressed))
	n, err := io.ReadFull(zr, out)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("wire: decompression failed: %w", err)
	}
	return out[:n], nil
}

// Checksum64 is a best-effort diagnostic over a decompressed bulk payload
// (spec SPEC_FULL.md §4.1 ADD): it supplements, never replaces, the
// protocol's own framing. No transfer path in this repository calls it, so
// nothing is compared or logged.
func Checksum64(b []byte) uint64 { return xxhash.Checksum64(b) }
