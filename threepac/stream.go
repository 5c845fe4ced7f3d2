//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package threepac

import (
	"github.com/markkurossi/gcmpc/channel"
)

// sender implements the garbler's stream to the evaluator. The
// garbled tables, output rows, and input commitments are written
// through the sender.
type sender interface {
	channel.Stream

	// SendHash sends the verification checkpoint to the evaluator.
	SendHash() error
}

var (
	_ sender = &hashSender{}
	_ sender = &equalitySender{}
)

// hashSender alternates between sending and hashing chunks of
// AlternateEvery bytes. The two garblers start at opposite phases so
// that every chunk is sent by one garbler and hashed by the other.
type hashSender struct {
	ch          *channel.Channel
	h           channel.UniversalHash
	every       int
	bytesHashed int
}

func newHashSender(ch *channel.Channel, h channel.UniversalHash,
	every int, id PartyID) *hashSender {

	s := &hashSender{
		ch:    ch,
		h:     h,
		every: every,
	}
	if id == IDGarbler1 {
		s.bytesHashed = every
	}
	return s
}

// Read implements io.Reader.
func (s *hashSender) Read(data []byte) (int, error) {
	return s.ch.Read(data)
}

// Write implements io.Writer.
func (s *hashSender) Write(data []byte) (int, error) {
	var written int
	for len(data) > 0 {
		var n int
		if s.bytesHashed < s.every {
			n = min(s.every-s.bytesHashed, len(data))
			s.h.Write(data[:n])
		} else {
			n = min(2*s.every-s.bytesHashed, len(data))
			if _, err := s.ch.Write(data[:n]); err != nil {
				return written, err
			}
		}
		s.bytesHashed += n
		if s.bytesHashed == 2*s.every {
			s.bytesHashed = 0
		}
		written += n
		data = data[n:]
	}
	return written, nil
}

// Flush implements channel.Stream.Flush.
func (s *hashSender) Flush() error {
	return s.ch.Flush()
}

// SendHash sends the digest of the hashed chunks and resets the
// digest.
func (s *hashSender) SendHash() error {
	if err := s.ch.WriteBytes(s.h.Sum()); err != nil {
		return err
	}
	s.h.Reset()
	return s.ch.Flush()
}

// equalitySender sends all data to the evaluator.
type equalitySender struct {
	ch *channel.Channel
}

// Read implements io.Reader.
func (s *equalitySender) Read(data []byte) (int, error) {
	return s.ch.Read(data)
}

// Write implements io.Writer.
func (s *equalitySender) Write(data []byte) (int, error) {
	return s.ch.Write(data)
}

// Flush implements channel.Stream.Flush.
func (s *equalitySender) Flush() error {
	return s.ch.Flush()
}

// SendHash implements sender.SendHash. The evaluator compares the
// data as it is read so the checkpoint only flushes the stream.
func (s *equalitySender) SendHash() error {
	return s.ch.Flush()
}
