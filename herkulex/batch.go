package herkulex

import (
	"fmt"
	"time"
)

// A Batch accumulates per-servo JOG entries played together by a single S_JOG frame.
// A Batch is owned by its caller and is not safe for concurrent use.
type Batch struct {
	capacity int
	data     []byte
}

// NewBatch returns an empty batch holding up to capacity entries.
func NewBatch(capacity int) (*Batch, error) {
	if capacity < 1 || capacity > MaxBatchEntries {
		return nil, fmt.Errorf("%d: %w", capacity, ErrBatchCapacity)
	}

	return &Batch{
		capacity: capacity,
		data:     make([]byte, 0, capacity*BatchEntrySize),
	}, nil
}

// Reset drops every accumulated entry.
func (b *Batch) Reset() {
	b.data = b.data[:0]
}

// Len returns the number of accumulated entries.
func (b *Batch) Len() int {
	return len(b.data) / BatchEntrySize
}

func (b *Batch) Cap() int {
	return b.capacity
}

// AddMove adds a position entry.
func (b *Batch) AddMove(id ID, position int, led LED) error {
	if err := checkUnit(id); err != nil {
		return fmt.Errorf("batch_move: %w", err)
	}
	if !ValidPosition(position) {
		return fmt.Errorf("batch_move: %d: %w", position, ErrPositionRange)
	}

	b.add(id, uint16(position), led.jogSet(false))
	return nil
}

// AddAngle adds a position entry expressed in degrees.
func (b *Batch) AddAngle(id ID, angle float64, led LED) error {
	if !ValidAngle(angle) {
		return fmt.Errorf("batch_angle: %.2f: %w", angle, ErrAngleRange)
	}

	return b.AddMove(id, AngleToPosition(angle), led)
}

// AddSpeed adds a continuous rotation entry.
func (b *Batch) AddSpeed(id ID, speed int, led LED) error {
	if err := checkUnit(id); err != nil {
		return fmt.Errorf("batch_speed: %w", err)
	}
	if !ValidSpeed(speed) {
		return fmt.Errorf("batch_speed: %d: %w", speed, ErrSpeedRange)
	}

	b.add(id, EncodeSpeed(speed), led.jogSet(true))
	return nil
}

// add appends one entry, the entry is dropped when the batch is full.
func (b *Batch) add(id ID, value uint16, set byte) {
	if b.Len() >= b.capacity {
		return
	}

	b.data = append(b.data, byte(value), byte(value>>8), set, byte(id))
}

// Flush builds the broadcast S_JOG packet and empties the batch.
// An empty batch is left untouched and ErrEmptyBatch is returned.
// Any other batch is consumed, even when playTime is out of range.
func (b *Batch) Flush(playTime time.Duration) (Packet, error) {
	if b.Len() == 0 {
		return Packet{}, ErrEmptyBatch
	}
	defer b.Reset()

	ticks, err := PlayTimeToTicks(playTime)
	if err != nil {
		return Packet{}, err
	}

	payload := make([]byte, 0, 1+len(b.data))
	payload = append(payload, ticks)
	payload = append(payload, b.data...)

	return Packet{
		ID:      BroadcastID,
		Command: CommandSJog,
		Payload: payload,
	}, nil
}
