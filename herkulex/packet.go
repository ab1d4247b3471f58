package herkulex

import "io"

// Packet is a HerkuleX frame:
//
//	0xFF 0xFF | size | id | command | checksum1 | checksum2 | payload...
type Packet struct {
	ID      ID
	Command Command
	Payload []byte
}

// Encode builds the frame bytes of the given command.
func Encode(id ID, cmd Command, payload ...byte) []byte {
	p := Packet{ID: id, Command: cmd, Payload: payload}
	return p.Bytes()
}

// Bytes returns encoded bytes for sending.
func (p *Packet) Bytes() []byte {
	b := make([]byte, MinPacketSize+len(p.Payload))
	b[0], b[1] = HeaderByte, HeaderByte
	b[offsetSize] = byte(len(b))
	b[offsetID] = byte(p.ID)
	b[offsetCommand] = byte(p.Command)
	copy(b[offsetPayload:], p.Payload)

	b[offsetChecksum1] = Checksum1(b)
	b[offsetChecksum2] = Checksum2(b[offsetChecksum1])
	return b
}

// WriteTo writes encoded bytes.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Bytes())
	return int64(n), err
}

// Checksum1 folds with XOR every byte of an assembled frame but the header and the checksum slots.
// The low bit is always cleared.
func Checksum1(frame []byte) byte {
	var c byte
	for i, b := range frame {
		switch i {
		case 0, 1, offsetChecksum1, offsetChecksum2:
			continue
		}
		c ^= b
	}
	return c & 0xFE
}

func Checksum2(checksum1 byte) byte {
	return ^checksum1 & 0xFE
}

// Validate checks the frame length and both checksums.
// The header, the size field and the id are not checked.
func Validate(raw []byte) bool {
	return validate(raw) == nil
}

func validate(raw []byte) error {
	if len(raw) < MinPacketSize {
		return ErrShortPacket
	}

	c1 := Checksum1(raw)
	if c1 != raw[offsetChecksum1] || Checksum2(c1) != raw[offsetChecksum2] {
		return ErrChecksum
	}
	return nil
}

// Decode validates raw and returns the packet it holds.
func Decode(raw []byte) (Packet, error) {
	if err := validate(raw); err != nil {
		return Packet{}, err
	}

	p := Packet{
		ID:      ID(raw[offsetID]),
		Command: Command(raw[offsetCommand]),
	}
	if len(raw) > MinPacketSize {
		p.Payload = make([]byte, len(raw)-MinPacketSize)
		copy(p.Payload, raw[offsetPayload:])
	}
	return p, nil
}
