//
// Copyright (c) 2022-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bytes"
	"crypto/aes"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/fancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyInputs(t *testing.T, d *fancy.Dummy, bits []uint16) []fancy.Item {
	moduli := make([]uint16, len(bits))
	for i := range moduli {
		moduli[i] = 2
	}
	ws, err := d.EncodeMany(bits, moduli)
	require.NoError(t, err)
	return ws
}

func TestBuilderAdd(t *testing.T) {
	b := NewBuilder()
	x := b.Input("x", 8)
	y := b.Input("y", 8)
	circ := b.Compile(b.Add(x, y))

	assert.Equal(t, 1+6, circ.Stats[AND])

	for _, tc := range [][2]int64{{0, 0}, {1, 1}, {200, 100}, {255, 255}, {17, 38}} {
		out, err := circ.Compute([]*big.Int{big.NewInt(tc[0]), big.NewInt(tc[1])})
		require.NoError(t, err)
		assert.Equal(t, (tc[0]+tc[1])%256, out[0].Int64())
	}
}

func TestBuilderShifts(t *testing.T) {
	b := NewBuilder()
	x := b.Input("x", 8)
	circ := b.Compile(b.RotR(x, 3), b.ShR(x, 3), b.Const(0xa5, 8),
		b.INVW(x))

	out, err := circ.Compute([]*big.Int{big.NewInt(0xb1)})
	require.NoError(t, err)
	assert.Equal(t, int64(0x36), out[0].Int64())
	assert.Equal(t, int64(0x16), out[1].Int64())
	assert.Equal(t, int64(0xa5), out[2].Int64())
	assert.Equal(t, int64(0x4e), out[3].Int64())
}

func TestEvalDummy(t *testing.T) {
	circ, err := Parse(strings.NewReader(bristolFashion))
	require.NoError(t, err)

	for x := int64(0); x < 4; x++ {
		for y := int64(0); y < 2; y++ {
			inputs := []*big.Int{big.NewInt(x), big.NewInt(y)}
			expected, err := circ.Compute(inputs)
			require.NoError(t, err)

			bits, err := circ.Inputs.Bits(inputs)
			require.NoError(t, err)

			d := fancy.NewDummy()
			ws := dummyInputs(t, d, bits)
			out, ok, err := Eval[fancy.Item](circ, d, ws[:2], ws[2:])
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, expected, circ.Outputs.Join(out))

			out, err = EvalReveal[fancy.Item](circ, d, ws[:2], ws[2:])
			require.NoError(t, err)
			assert.Equal(t, expected, circ.Outputs.Join(out))
		}
	}
}

func TestEvalErrors(t *testing.T) {
	circ, err := Parse(strings.NewReader(bristol))
	require.NoError(t, err)

	d := fancy.NewDummy()
	ws := dummyInputs(t, d, []uint16{1, 1})

	_, _, err = Eval[fancy.Item](circ, d, ws[:1], nil)
	assert.Error(t, err)

	circ.Gates[0].Input1 = 2
	_, _, err = Eval[fancy.Item](circ, d, ws[:1], ws[1:])
	assert.ErrorIs(t, err, ErrUnsetWire)
}

func TestSHA256(t *testing.T) {
	circ := NewSHA256Compression()
	assert.Equal(t, 768, circ.Inputs.Size())
	assert.Equal(t, 256, circ.Outputs.Size())

	msg := []byte("abc")
	block, err := PadBlock(msg)
	require.NoError(t, err)
	inputs := []*big.Int{
		PackWords(SHA256IV),
		PackWords(BlockWords(block)),
	}
	expected := sha256.Sum256(msg)

	out, err := circ.Compute(inputs)
	require.NoError(t, err)
	assert.Equal(t, expected[:], SHA256Digest(out[0]))

	bits, err := circ.Inputs.Bits(inputs)
	require.NoError(t, err)
	d := fancy.NewDummy()
	ws := dummyInputs(t, d, bits)
	result, ok, err := Eval[fancy.Item](circ, d, ws[:256], ws[256:])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, expected[:], SHA256Digest(circ.Outputs.Join(result)[0]))
}

func TestSHA1(t *testing.T) {
	circ := NewSHA1Compression()
	assert.Equal(t, 672, circ.Inputs.Size())
	assert.Equal(t, 160, circ.Outputs.Size())

	for _, msg := range []string{
		"",
		"abc",
		"The quick brown fox jumps over the lazy dog",
	} {
		block, err := PadBlock([]byte(msg))
		require.NoError(t, err)
		inputs := []*big.Int{
			PackWords(SHA1IV),
			PackWords(BlockWords(block)),
		}
		expected := sha1.Sum([]byte(msg))

		out, err := circ.Compute(inputs)
		require.NoError(t, err)
		assert.Equal(t, expected[:], SHA1Digest(out[0]), msg)

		bits, err := circ.Inputs.Bits(inputs)
		require.NoError(t, err)
		d := fancy.NewDummy()
		ws := dummyInputs(t, d, bits)
		result, ok, err := Eval[fancy.Item](circ, d, ws[:160], ws[160:])
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, expected[:],
			SHA1Digest(circ.Outputs.Join(result)[0]), msg)
	}
}

func TestAES(t *testing.T) {
	circ := NewAES128()
	assert.Equal(t, 256, circ.Inputs.Size())
	assert.Equal(t, 128, circ.Outputs.Size())

	tests := []struct {
		key       string
		plaintext string
	}{
		{
			key:       "000102030405060708090a0b0c0d0e0f",
			plaintext: "00112233445566778899aabbccddeeff",
		},
		{
			key:       "2b7e151628aed2a6abf7158809cf4f3c",
			plaintext: "6bc1bee22e409f96e93d7e117393172a",
		},
		{
			key:       "00000000000000000000000000000000",
			plaintext: "00000000000000000000000000000000",
		},
	}
	for _, test := range tests {
		key, err := hex.DecodeString(test.key)
		require.NoError(t, err)
		plaintext, err := hex.DecodeString(test.plaintext)
		require.NoError(t, err)

		cipher, err := aes.NewCipher(key)
		require.NoError(t, err)
		expected := make([]byte, aes.BlockSize)
		cipher.Encrypt(expected, plaintext)

		inputs := []*big.Int{AESBlock(key), AESBlock(plaintext)}
		out, err := circ.Compute(inputs)
		require.NoError(t, err)
		assert.Equal(t, expected, AESBytes(out[0]), test.key)
	}
}

func TestAESEval(t *testing.T) {
	circ := NewAES128()

	key := []byte("YELLOW SUBMARINE")
	plaintext := []byte("garbled circuits")
	cipher, err := aes.NewCipher(key)
	require.NoError(t, err)
	expected := make([]byte, aes.BlockSize)
	cipher.Encrypt(expected, plaintext)

	bits, err := circ.Inputs.Bits([]*big.Int{
		AESBlock(key), AESBlock(plaintext),
	})
	require.NoError(t, err)
	d := fancy.NewDummy()
	ws := dummyInputs(t, d, bits)
	result, ok, err := Eval[fancy.Item](circ, d, ws[:128], ws[128:])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, expected, AESBytes(circ.Outputs.Join(result)[0]))
}

func TestPadBlock(t *testing.T) {
	block, err := PadBlock(make([]byte, MaxBlockMessage))
	require.NoError(t, err)
	assert.Len(t, block, 64)
	assert.Equal(t, byte(0x80), block[MaxBlockMessage])

	_, err = PadBlock(make([]byte, MaxBlockMessage+1))
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestTimingLateTracks(t *testing.T) {
	timing := NewTiming()

	a, _ := channel.Pipe()
	track := channel.NewTrack(a)
	time.Sleep(20 * time.Millisecond)
	_, err := track.Write(make([]byte, 512))
	require.NoError(t, err)

	timing.AddTracks(track)
	phase := timing.Phase("Eval")
	assert.GreaterOrEqual(t, phase.Duration(), 20*time.Millisecond)
	assert.Equal(t, timing.Start, phase.Start)
	assert.Equal(t, uint64(512), phase.Sent)
}

func TestTiming(t *testing.T) {
	a, b := channel.Pipe()
	ta := channel.NewTrack(a)
	tb := channel.NewTrack(b)

	_, err := ta.Write(make([]byte, 2000))
	require.NoError(t, err)
	_, err = tb.Read(make([]byte, 1000))
	require.NoError(t, err)

	timing := NewTiming(ta, tb)
	timing.Phase("Init")
	timing.Phase("Eval").Step("OT", 0)

	phase := timing.Phases[0]
	assert.Equal(t, uint64(2000), phase.Sent)
	assert.Equal(t, uint64(1000), phase.Rcvd)
	assert.Equal(t, uint64(0), timing.Phases[1].Sent)

	var buf bytes.Buffer
	timing.Print(&buf)
	assert.Contains(t, buf.String(), "Eval")
	assert.Contains(t, buf.String(), "OT")
	assert.Contains(t, buf.String(), "2kB")
	assert.Contains(t, buf.String(), "1kB")

	assert.Equal(t, "1MB", FileSize(1500000).String())
	assert.Equal(t, "999B", FileSize(999).String())
}
