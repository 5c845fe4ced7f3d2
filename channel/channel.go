//
// channel.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package channel implements the byte-stream channel abstraction
// with typed read and write helpers.
package channel

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/ot"
)

// All multi-byte integers are sent in the host's native byte order.
var bo = binary.NativeEndian

const (
	// MaxDataSize defines the maximum length of length-prefixed data.
	MaxDataSize = 1 << 30
)

var (
	// ErrIO marks all transport failures.
	ErrIO = errors.New("channel I/O")

	_ ot.IO  = &Channel{}
	_ Stream = &Channel{}
)

// Stream defines the byte-stream transport between two parties.
type Stream interface {
	io.Reader
	io.Writer

	// Flush flushes any pending data in the stream.
	Flush() error
}

// Block512 implements a 512 bit block.
type Block512 [64]byte

// Channel implements typed read and write helpers over a Stream.
type Channel struct {
	s   Stream
	buf [64]byte
}

// New creates a new channel for the stream.
func New(s Stream) *Channel {
	return &Channel{
		s: s,
	}
}

// Stream returns the channel's underlying stream.
func (c *Channel) Stream() Stream {
	return c.s
}

func ioError(err error, op string) error {
	return errors.Mark(errors.Wrap(err, op), ErrIO)
}

// Read implements io.Reader.
func (c *Channel) Read(p []byte) (int, error) {
	n, err := c.s.Read(p)
	if err != nil && err != io.EOF {
		err = ioError(err, "read")
	}
	return n, err
}

// Write implements io.Writer.
func (c *Channel) Write(p []byte) (int, error) {
	n, err := c.s.Write(p)
	if err != nil {
		err = ioError(err, "write")
	}
	return n, err
}

// Flush flushes any pending data in the channel.
func (c *Channel) Flush() error {
	if err := c.s.Flush(); err != nil {
		return ioError(err, "flush")
	}
	return nil
}

// WriteBytes writes the bytes to the channel.
func (c *Channel) WriteBytes(data []byte) error {
	_, err := c.s.Write(data)
	if err != nil {
		return ioError(err, "write bytes")
	}
	return nil
}

// ReadBytesInto fills data from the channel.
func (c *Channel) ReadBytesInto(data []byte) error {
	_, err := io.ReadFull(c.s, data)
	if err != nil {
		return ioError(err, "read bytes")
	}
	return nil
}

// ReadBytes reads n bytes from the channel.
func (c *Channel) ReadBytes(n int) ([]byte, error) {
	data := make([]byte, n)
	if err := c.ReadBytesInto(data); err != nil {
		return nil, err
	}
	return data, nil
}

// WriteU8 writes an uint8 value.
func (c *Channel) WriteU8(v uint8) error {
	c.buf[0] = v
	return c.WriteBytes(c.buf[:1])
}

// ReadU8 reads an uint8 value.
func (c *Channel) ReadU8() (uint8, error) {
	if err := c.ReadBytesInto(c.buf[:1]); err != nil {
		return 0, err
	}
	return c.buf[0], nil
}

// WriteBool writes a bool value as a single byte.
func (c *Channel) WriteBool(v bool) error {
	if v {
		return c.WriteU8(1)
	}
	return c.WriteU8(0)
}

// ReadBool reads a bool value.
func (c *Channel) ReadBool() (bool, error) {
	v, err := c.ReadU8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// WriteU16 writes an uint16 value.
func (c *Channel) WriteU16(v uint16) error {
	bo.PutUint16(c.buf[:2], v)
	return c.WriteBytes(c.buf[:2])
}

// ReadU16 reads an uint16 value.
func (c *Channel) ReadU16() (uint16, error) {
	if err := c.ReadBytesInto(c.buf[:2]); err != nil {
		return 0, err
	}
	return bo.Uint16(c.buf[:2]), nil
}

// WriteU32 writes an uint32 value.
func (c *Channel) WriteU32(v uint32) error {
	bo.PutUint32(c.buf[:4], v)
	return c.WriteBytes(c.buf[:4])
}

// ReadU32 reads an uint32 value.
func (c *Channel) ReadU32() (uint32, error) {
	if err := c.ReadBytesInto(c.buf[:4]); err != nil {
		return 0, err
	}
	return bo.Uint32(c.buf[:4]), nil
}

// WriteU64 writes an uint64 value.
func (c *Channel) WriteU64(v uint64) error {
	bo.PutUint64(c.buf[:8], v)
	return c.WriteBytes(c.buf[:8])
}

// ReadU64 reads an uint64 value.
func (c *Channel) ReadU64() (uint64, error) {
	if err := c.ReadBytesInto(c.buf[:8]); err != nil {
		return 0, err
	}
	return bo.Uint64(c.buf[:8]), nil
}

// WriteUsize writes a size value. Sizes are sent as 64-bit values.
func (c *Channel) WriteUsize(v int) error {
	if v < 0 {
		return errors.Newf("negative size %d", v)
	}
	return c.WriteU64(uint64(v))
}

// ReadUsize reads a size value.
func (c *Channel) ReadUsize() (int, error) {
	v, err := c.ReadU64()
	if err != nil {
		return 0, err
	}
	if v > MaxDataSize {
		return 0, errors.Mark(errors.Newf("size %d too large", v), ErrIO)
	}
	return int(v), nil
}

// WriteBlock writes a 128-bit block.
func (c *Channel) WriteBlock(v ot.Label) error {
	var data ot.LabelData
	v.GetData(&data)
	return c.WriteBytes(data[:])
}

// ReadBlock reads a 128-bit block.
func (c *Channel) ReadBlock() (ot.Label, error) {
	var data ot.LabelData
	var result ot.Label

	if err := c.ReadBytesInto(data[:]); err != nil {
		return result, err
	}
	result.SetData(&data)
	return result, nil
}

// WriteBlocks writes the 128-bit blocks.
func (c *Channel) WriteBlocks(v []ot.Label) error {
	for _, b := range v {
		if err := c.WriteBlock(b); err != nil {
			return err
		}
	}
	return nil
}

// ReadBlocks reads n 128-bit blocks.
func (c *Channel) ReadBlocks(n int) ([]ot.Label, error) {
	result := make([]ot.Label, n)
	for i := 0; i < n; i++ {
		b, err := c.ReadBlock()
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

// WriteBlock512 writes a 512-bit block.
func (c *Channel) WriteBlock512(v Block512) error {
	return c.WriteBytes(v[:])
}

// ReadBlock512 reads a 512-bit block.
func (c *Channel) ReadBlock512() (Block512, error) {
	var result Block512
	err := c.ReadBytesInto(result[:])
	return result, err
}

// WriteData writes length-prefixed binary data.
func (c *Channel) WriteData(data []byte) error {
	if err := c.WriteUsize(len(data)); err != nil {
		return err
	}
	return c.WriteBytes(data)
}

// ReadData reads length-prefixed binary data.
func (c *Channel) ReadData() ([]byte, error) {
	n, err := c.ReadUsize()
	if err != nil {
		return nil, err
	}
	return c.ReadBytes(n)
}
