package herkulex

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeTorqueOn(t *testing.T) {
	frame := Encode(0x01, CommandRAMWrite, 0x34, 0x01, 0x60)

	c1 := byte(0x0A^0x01^0x03^0x34^0x01^0x60) & 0xFE
	c2 := ^c1 & 0xFE
	require.Equal(t, []byte{0xFF, 0xFF, 0x0A, 0x01, 0x03, c1, c2, 0x34, 0x01, 0x60}, frame)
	require.Equal(t, []byte{0xFF, 0xFF, 0x0A, 0x01, 0x03, 0x5C, 0xA2, 0x34, 0x01, 0x60}, frame)
}

func TestEncode(t *testing.T) {
	testCases := []struct {
		name    string
		packet  Packet
		size    int
		payload []byte
	}{
		{"no payload", Packet{ID: 0xFD, Command: CommandReboot}, 7, nil},
		{"stat", Packet{ID: 0, Command: CommandStat}, 7, nil},
		{"ram read", Packet{ID: 12, Command: CommandRAMRead, Payload: []byte{0x3A, 0x02}}, 9, []byte{0x3A, 0x02}},
		{"broadcast sjog", Packet{ID: BroadcastID, Command: CommandSJog, Payload: []byte{0x59, 0x00, 0x02, 0x04, 0x01}}, 12, []byte{0x59, 0x00, 0x02, 0x04, 0x01}},
		{"large payload", Packet{ID: 3, Command: CommandSJog, Payload: bytes.Repeat([]byte{0xA5}, 213)}, 220, bytes.Repeat([]byte{0xA5}, 213)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			frame := tc.packet.Bytes()
			require.Len(t, frame, tc.size)
			require.Equal(t, byte(0xFF), frame[0])
			require.Equal(t, byte(0xFF), frame[1])
			require.Equal(t, byte(tc.size), frame[2])
			require.Equal(t, byte(tc.packet.ID), frame[3])
			require.Equal(t, byte(tc.packet.Command), frame[4])
			require.Zero(t, frame[5]&0x01)
			require.Zero(t, frame[6]&0x01)
			require.True(t, Validate(frame))

			p, err := Decode(frame)
			require.NoError(t, err)
			require.Equal(t, tc.packet.ID, p.ID)
			require.Equal(t, tc.packet.Command, p.Command)
			require.Equal(t, tc.payload, p.Payload)

			var buf bytes.Buffer
			n, err := tc.packet.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, int64(tc.size), n)
			require.Equal(t, frame, buf.Bytes())
		})
	}
}

func TestChecksumSkipsHeaderAndSlots(t *testing.T) {
	frame := Encode(0x05, CommandRAMRead, 0x40, 0x02)

	other := append([]byte(nil), frame...)
	other[0], other[1] = 0x00, 0x12
	other[5], other[6] = 0x77, 0x33
	require.Equal(t, Checksum1(frame), Checksum1(other))
	require.Equal(t, Checksum2(0x5C), byte(0xA2))
}

func TestValidateDetectsFlippedByte(t *testing.T) {
	frame := Encode(0x07, CommandSJog, 0x59, 0xFF, 0x01, 0x14, 0x07)

	for i := range frame {
		if i == 0 || i == 1 {
			continue
		}

		corrupted := append([]byte(nil), frame...)
		corrupted[i] ^= 0xFF
		require.False(t, Validate(corrupted), "offset %d", i)

		corrupted = append([]byte(nil), frame...)
		corrupted[i] ^= 0x02
		require.False(t, Validate(corrupted), "offset %d", i)
	}
}

func TestValidateIgnoresLowBitAndHeader(t *testing.T) {
	frame := Encode(0x07, CommandRAMWrite, 0x35, 0x01, 0x04)

	// The low bit is masked out of the checksum.
	corrupted := append([]byte(nil), frame...)
	corrupted[9] ^= 0x01
	require.True(t, Validate(corrupted))

	corrupted = append([]byte(nil), frame...)
	corrupted[0], corrupted[1] = 0x00, 0x00
	require.True(t, Validate(corrupted))
}

func TestValidateShortBuffers(t *testing.T) {
	require.False(t, Validate(nil))
	require.False(t, Validate([]byte{}))
	require.False(t, Validate(Encode(1, CommandStat)[:6]))

	_, err := Decode([]byte{0xFF, 0xFF, 0x07})
	require.ErrorIs(t, err, ErrShortPacket)

	frame := Encode(1, CommandStat)
	frame[6] ^= 0x10
	_, err = Decode(frame)
	require.ErrorIs(t, err, ErrChecksum)
}
