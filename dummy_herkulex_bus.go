package herkulexd

import (
	"slices"
	"sync"
	"time"

	"github.com/mdouchement/herkulexd/herkulex"
	"github.com/mdouchement/logger"
)

// A DummyBus simulates HerkuleX servos behind a herkulex.Transport.
// It should only be used for dev & tests.
type DummyBus struct {
	sync    sync.Mutex
	servos  map[herkulex.ID]*DummyServo
	pending []byte
	now     func() time.Time
	log     logger.Logger
}

// DummyServo is the simulated state of a servo.
type DummyServo struct {
	ID        herkulex.ID
	Model     uint8
	AckPolicy herkulex.AckPolicy
	Torque    byte
	LED       byte
	Status    herkulex.Status
	Speed     int
	NextID    herkulex.ID // Applied on reboot

	from     int
	to       int
	start    time.Time
	duration time.Duration
}

func NewDummyBus(ids ...herkulex.ID) *DummyBus {
	b := &DummyBus{
		servos: make(map[herkulex.ID]*DummyServo, len(ids)),
		now:    time.Now,
	}
	for _, id := range ids {
		b.servos[id] = &DummyServo{
			ID:        id,
			Model:     herkulex.ModelDRS0101,
			AckPolicy: herkulex.AckReadOnly,
			NextID:    id,
			from:      herkulex.CenterPosition,
			to:        herkulex.CenterPosition,
		}
	}

	return b
}

func (b *DummyBus) SetLogger(l logger.Logger) {
	b.log = l
}

func (b *DummyBus) Port() string {
	return "x-testing"
}

func (b *DummyBus) Close() error {
	return nil
}

// Servo returns a copy of the simulated servo state.
func (b *DummyBus) Servo(id herkulex.ID) (DummyServo, bool) {
	b.sync.Lock()
	defer b.sync.Unlock()

	s, ok := b.servos[id]
	if !ok {
		return DummyServo{}, false
	}
	return *s, true
}

// Position returns the simulated position of the servo at the current time.
func (s *DummyServo) Position(now time.Time) int {
	elapsed := now.Sub(s.start)
	if s.duration <= 0 || elapsed >= s.duration {
		return s.to
	}

	return s.from + int(float64(s.to-s.from)*float64(elapsed)/float64(s.duration))
}

func (b *DummyBus) Write(p []byte) (int, error) {
	b.sync.Lock()
	defer b.sync.Unlock()

	b.pending = nil // Unread responses are discarded like the serial input buffer.

	packet, err := herkulex.Decode(p)
	if err != nil {
		if b.log != nil {
			b.log.WithError(err).Debug("Dropped invalid frame")
		}
		return len(p), nil
	}

	switch packet.Command {
	case herkulex.CommandRAMWrite, herkulex.CommandEEPWrite:
		b.write(packet)
	case herkulex.CommandSJog:
		b.jog(packet)
	case herkulex.CommandReboot:
		b.reboot(packet)
	case herkulex.CommandRAMRead, herkulex.CommandEEPRead, herkulex.CommandStat:
		b.read(packet)
	default:
		if b.log != nil {
			b.log.Debugf("Unsupported command %s", packet.Command)
		}
	}

	return len(p), nil
}

// Drain returns the pending responses without waiting.
func (b *DummyBus) Drain(time.Duration) ([]byte, error) {
	b.sync.Lock()
	defer b.sync.Unlock()

	response := b.pending
	b.pending = nil
	return response, nil
}

func (b *DummyBus) targets(id herkulex.ID) []*DummyServo {
	if id == herkulex.BroadcastID {
		servos := make([]*DummyServo, 0, len(b.servos))
		for _, s := range b.servos {
			servos = append(servos, s)
		}
		return servos
	}

	if s, ok := b.servos[id]; ok {
		return []*DummyServo{s}
	}
	return nil
}

func (b *DummyBus) write(p herkulex.Packet) {
	if len(p.Payload) < 3 {
		return
	}
	address, values := herkulex.Register(p.Payload[0]), p.Payload[2:]

	for _, s := range b.targets(p.ID) {
		if p.Command == herkulex.CommandEEPWrite {
			if address == herkulex.RegisterID {
				s.NextID = herkulex.ID(values[0])
			}
		} else {
			switch address {
			case herkulex.RegisterAckPolicy:
				s.AckPolicy = herkulex.AckPolicy(values[0])
			case herkulex.RegisterStatusError:
				s.Status = herkulex.StatusOK
			case herkulex.RegisterTorqueControl:
				s.Torque = values[0]
			case herkulex.RegisterLEDControl:
				s.LED = values[0]
			}
		}

		b.ack(p, s)
	}
}

func (b *DummyBus) jog(p herkulex.Packet) {
	if len(p.Payload) < 1+herkulex.BatchEntrySize {
		return
	}

	now := b.now()
	duration := herkulex.TicksToPlayTime(p.Payload[0])
	for entry := range slices.Chunk(p.Payload[1:], herkulex.BatchEntrySize) {
		if len(entry) < herkulex.BatchEntrySize {
			break
		}

		s, ok := b.servos[herkulex.ID(entry[3])]
		if !ok || s.Torque == 0 {
			continue
		}

		if entry[2]&0x02 != 0 {
			s.Speed = herkulex.DecodeSpeed(entry[0], entry[1])
			continue
		}

		s.from = s.Position(now)
		s.to = int(entry[1]&0x03)<<8 | int(entry[0])
		s.start = now
		s.duration = duration
		s.Speed = 0
	}
}

func (b *DummyBus) reboot(p herkulex.Packet) {
	s, ok := b.servos[p.ID]
	if !ok {
		return
	}

	delete(b.servos, s.ID)
	s.ID = s.NextID
	s.Torque = 0
	s.Speed = 0
	s.AckPolicy = herkulex.AckReadOnly
	b.servos[s.ID] = s
}

func (b *DummyBus) read(p herkulex.Packet) {
	s, ok := b.servos[p.ID]
	if !ok || s.AckPolicy == herkulex.AckNone {
		return
	}

	payload := []byte{}
	if p.Command != herkulex.CommandStat {
		if len(p.Payload) < 2 {
			return
		}

		var value uint16
		switch herkulex.Register(p.Payload[0]) {
		case herkulex.RegisterAbsolutePosition:
			value = uint16(s.Position(b.now()))
		case herkulex.RegisterDifferential:
			value = herkulex.EncodeSpeed(s.Speed)
		case herkulex.RegisterModel:
			value = uint16(s.Model)
		}

		payload = append(payload, p.Payload[0], p.Payload[1], byte(value))
		if p.Payload[1] > 1 {
			payload = append(payload, byte(value>>8))
		}
	}
	payload = append(payload, byte(s.Status), 0x00)

	b.pending = append(b.pending, herkulex.Encode(s.ID, p.Command|0x40, payload...)...)
}

// ack answers write commands when the servo always replies.
func (b *DummyBus) ack(p herkulex.Packet, s *DummyServo) {
	if p.ID == herkulex.BroadcastID || s.AckPolicy != herkulex.AckAlways {
		return
	}

	b.pending = append(b.pending, herkulex.Encode(s.ID, p.Command|0x40, byte(s.Status), 0x00)...)
}
