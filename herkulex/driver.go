package herkulex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mdouchement/logger"
)

var (
	ErrNotFound      = errors.New("servo bus not found/plugged")
	ErrInvalidID     = errors.New("invalid servo id")
	ErrBroadcast     = errors.New("broadcast id not allowed")
	ErrSameID        = errors.New("old and new ids are the same")
	ErrPositionRange = errors.New("position out of range")
	ErrSpeedRange    = errors.New("speed out of range")
	ErrAngleRange    = errors.New("angle out of range")
	ErrPlayTimeRange = errors.New("play time out of range")
	ErrAckPolicy     = errors.New("invalid ack policy")
	ErrEmptyBatch    = errors.New("empty batch")
	ErrBatchCapacity = errors.New("invalid batch capacity")
	ErrPacketSize    = errors.New("packet too large")
	ErrNoResponse    = errors.New("no response")
	ErrShortPacket   = errors.New("packet too short")
	ErrChecksum      = errors.New("checksum mismatch")
)

// A Driver talks to the servos of one bus.
// Requests are serialized: at most one request is in flight on the transport.
type Driver struct {
	sync      sync.Mutex
	transport Transport
	window    time.Duration
	wakeUp    time.Duration
	settle    time.Duration
	log       logger.Logger
}

func New(t Transport) *Driver {
	return &Driver{
		transport: t,
		window:    DefaultResponseWindow,
		wakeUp:    DefaultWakeUpDelay,
		settle:    DefaultSettleDelay,
	}
}

// Open opens the given serial port.
func Open(port string, baudrate int) (*Driver, error) {
	s, err := OpenSerial(port, baudrate)
	if err != nil {
		return nil, err
	}

	return New(s), nil
}

// OpenAuto opens the first discovered USB-serial bridge.
func OpenAuto(baudrate int) (*Driver, error) {
	s, err := OpenSerialAuto(baudrate)
	if err != nil {
		return nil, err
	}

	return New(s), nil
}

func (d *Driver) SetLogger(l logger.Logger) {
	d.log = l
}

// SetResponseWindow sets how long a read request waits for the servo response.
func (d *Driver) SetResponseWindow(window time.Duration) {
	d.window = window
}

// SetDelays sets the delays used by Initialize.
func (d *Driver) SetDelays(wakeUp, settle time.Duration) {
	d.wakeUp = wakeUp
	d.settle = settle
}

func (d *Driver) Port() string {
	if p, ok := d.transport.(interface{ Port() string }); ok {
		return p.Port()
	}
	return "n/a"
}

func (d *Driver) Close() error {
	return d.transport.Close()
}

// Initialize clears the errors of every servo, makes them reply to read commands only and enables their torque.
func (d *Driver) Initialize() error {
	time.Sleep(d.wakeUp)

	if err := d.ClearError(BroadcastID); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	time.Sleep(d.settle)

	if err := d.SetAckPolicy(AckReadOnly); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	time.Sleep(d.settle)

	if err := d.TorqueOn(BroadcastID); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	time.Sleep(d.settle)

	return nil
}

// SetAckPolicy sets the ack policy of every servo.
func (d *Driver) SetAckPolicy(policy AckPolicy) error {
	if !policy.Valid() {
		return fmt.Errorf("set_ack_policy: %d: %w", policy, ErrAckPolicy)
	}

	return d.writeRegister("set_ack_policy", BroadcastID, CommandRAMWrite, RegisterAckPolicy, byte(policy))
}

func (d *Driver) ClearError(id ID) error {
	return d.writeRegister("clear_error", id, CommandRAMWrite, RegisterStatusError, 0x00, 0x00)
}

func (d *Driver) TorqueOn(id ID) error {
	return d.writeRegister("torque_on", id, CommandRAMWrite, RegisterTorqueControl, torqueOn)
}

func (d *Driver) TorqueOff(id ID) error {
	return d.writeRegister("torque_off", id, CommandRAMWrite, RegisterTorqueControl, torqueFree)
}

// SetLED lights the LED of the servo with the given colors.
func (d *Driver) SetLED(id ID, led LED) error {
	return d.writeRegister("set_led", id, CommandRAMWrite, RegisterLEDControl, led.register())
}

// WriteRAM writes one byte in a volatile register.
func (d *Driver) WriteRAM(id ID, address Register, value byte) error {
	return d.writeRegister("write_ram", id, CommandRAMWrite, address, value)
}

// WriteEEP writes one byte in a non-volatile register.
func (d *Driver) WriteEEP(id ID, address Register, value byte) error {
	return d.writeRegister("write_eep", id, CommandEEPWrite, address, value)
}

// MoveTo moves the servo to position within the play time.
func (d *Driver) MoveTo(id ID, position int, playTime time.Duration, led LED) error {
	if !ValidPosition(position) {
		return fmt.Errorf("move: %d: %w", position, ErrPositionRange)
	}

	return d.jog("move", id, uint16(position), playTime, led.jogSet(false))
}

// MoveToAngle moves the servo to angle (degrees) within the play time.
func (d *Driver) MoveToAngle(id ID, angle float64, playTime time.Duration, led LED) error {
	if !ValidAngle(angle) {
		return fmt.Errorf("move_angle: %.2f: %w", angle, ErrAngleRange)
	}

	return d.MoveTo(id, AngleToPosition(angle), playTime, led)
}

// SetSpeed makes the servo turn continuously.
// Negative speeds turn clockwise.
func (d *Driver) SetSpeed(id ID, speed int, playTime time.Duration, led LED) error {
	if !ValidSpeed(speed) {
		return fmt.Errorf("set_speed: %d: %w", speed, ErrSpeedRange)
	}

	return d.jog("set_speed", id, EncodeSpeed(speed), playTime, led.jogSet(true))
}

// FlushBatch plays every entry of the batch with the same play time.
// The batch is consumed whenever it holds at least one entry.
func (d *Driver) FlushBatch(b *Batch, playTime time.Duration) error {
	p, err := b.Flush(playTime)
	if err != nil {
		return fmt.Errorf("flush_batch: %w", err)
	}

	if err = d.send(p); err != nil {
		return fmt.Errorf("flush_batch: %w", err)
	}
	return nil
}

func (d *Driver) Reboot(id ID) error {
	if err := checkUnit(id); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}

	if err := d.send(Packet{ID: id, Command: CommandReboot}); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}
	return nil
}

// Position returns the absolute position [0,1023] of the servo.
func (d *Driver) Position(id ID) (int, error) {
	response, err := d.readRegister(id, CommandRAMRead, RegisterAbsolutePosition, 2)
	if err != nil {
		return 0, fmt.Errorf("position: %w", err)
	}

	return decodePosition(response[offsetValue], response[offsetValue+1]), nil
}

// Angle returns the position of the servo in degrees.
func (d *Driver) Angle(id ID) (float64, error) {
	position, err := d.Position(id)
	if err != nil {
		return 0, err
	}

	return PositionToAngle(position), nil
}

// Speed returns the current speed [-1023,1023] of the servo.
func (d *Driver) Speed(id ID) (int, error) {
	response, err := d.readRegister(id, CommandRAMRead, RegisterDifferential, 2)
	if err != nil {
		return 0, fmt.Errorf("speed: %w", err)
	}

	return DecodeSpeed(response[offsetValue], response[offsetValue+1]), nil
}

func (d *Driver) Status(id ID) (Status, error) {
	if err := checkUnit(id); err != nil {
		return StatusOK, fmt.Errorf("status: %w", err)
	}

	response, err := d.exchange(Packet{ID: id, Command: CommandStat})
	if err != nil {
		return StatusOK, fmt.Errorf("status: %w", err)
	}
	if len(response) <= offsetStatus {
		return StatusOK, fmt.Errorf("status: %w", ErrShortPacket)
	}

	return Status(response[offsetStatus]), nil
}

// Model returns the model identifier (see ModelName) of the servo.
func (d *Driver) Model(id ID) (uint8, error) {
	if err := checkUnit(id); err != nil {
		return 0, fmt.Errorf("model: %w", err)
	}

	response, err := d.exchange(Packet{
		ID:      id,
		Command: CommandEEPRead,
		Payload: []byte{byte(RegisterModel), 1},
	})
	if err != nil {
		return 0, fmt.Errorf("model: %w", err)
	}
	if len(response) <= offsetModel {
		return 0, fmt.Errorf("model: %w", ErrShortPacket)
	}

	return response[offsetModel], nil
}

// ChangeID writes a new id in the EEP of the servo then reboots it so the new id is applied.
// Make sure that the servo is the only one using oldID on the bus.
func (d *Driver) ChangeID(oldID, newID ID) error {
	if err := checkUnit(oldID); err != nil {
		return fmt.Errorf("change_id: old: %w", err)
	}
	if err := checkUnit(newID); err != nil {
		return fmt.Errorf("change_id: new: %w", err)
	}
	if oldID == newID {
		return fmt.Errorf("change_id: %w", ErrSameID)
	}

	if _, err := d.Position(oldID); err != nil {
		return fmt.Errorf("change_id: servo %d: %w", oldID, err)
	}

	if err := d.writeRegister("change_id", oldID, CommandEEPWrite, RegisterID, byte(newID)); err != nil {
		return err
	}

	return d.Reboot(oldID)
}

// ScanIDs returns the ids of every servo answering on the bus.
func (d *Driver) ScanIDs(ctx context.Context) ([]ID, error) {
	return d.ScanRange(ctx, 0, MaxID)
}

// ScanRange returns the ids in [first,last] answering on the bus.
// Each probe costs one response window.
func (d *Driver) ScanRange(ctx context.Context, first, last ID) ([]ID, error) {
	last = min(last, MaxID)

	var ids []ID
	for id := int(first); id <= int(last); id++ {
		if err := ctx.Err(); err != nil {
			return ids, err
		}

		_, err := d.Position(ID(id))
		if err == nil {
			ids = append(ids, ID(id))
			continue
		}
		if !IsResponseError(err) {
			return ids, fmt.Errorf("scan: %w", err)
		}
	}

	return ids, nil
}

// IsResponseError reports whether err comes from a missing or garbled response.
func IsResponseError(err error) bool {
	return errors.Is(err, ErrNoResponse) || errors.Is(err, ErrShortPacket) || errors.Is(err, ErrChecksum)
}

//
//
//

func checkID(id ID) error {
	if !id.Valid() {
		return fmt.Errorf("%d: %w", id, ErrInvalidID)
	}
	return nil
}

// checkUnit rejects ids not addressing exactly one servo.
func checkUnit(id ID) error {
	if err := checkID(id); err != nil {
		return err
	}
	if id.IsBroadcast() {
		return ErrBroadcast
	}
	return nil
}

func (d *Driver) jog(op string, id ID, value uint16, playTime time.Duration, set byte) error {
	if err := checkID(id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ticks, err := PlayTimeToTicks(playTime)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, playTime, err)
	}

	err = d.send(Packet{
		ID:      id,
		Command: CommandSJog,
		Payload: []byte{ticks, byte(value), byte(value >> 8), set, byte(id)},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// writeRegister sends [address, length, values...].
func (d *Driver) writeRegister(op string, id ID, cmd Command, address Register, values ...byte) error {
	if err := checkID(id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	payload := make([]byte, 0, 2+len(values))
	payload = append(payload, byte(address), byte(len(values)))
	payload = append(payload, values...)

	if err := d.send(Packet{ID: id, Command: cmd, Payload: payload}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// readRegister requests length bytes at address and ensures the response holds them.
func (d *Driver) readRegister(id ID, cmd Command, address Register, length int) ([]byte, error) {
	if err := checkUnit(id); err != nil {
		return nil, err
	}

	response, err := d.exchange(Packet{
		ID:      id,
		Command: cmd,
		Payload: []byte{byte(address), byte(length)},
	})
	if err != nil {
		return nil, err
	}
	if len(response) < offsetValue+length {
		return nil, ErrShortPacket
	}

	return response, nil
}

func (d *Driver) send(p Packet) error {
	d.sync.Lock()
	defer d.sync.Unlock()

	return d.write(p)
}

// exchange writes the request, waits for the response window and validates what has been received.
func (d *Driver) exchange(p Packet) ([]byte, error) {
	d.sync.Lock()
	defer d.sync.Unlock()

	if err := d.write(p); err != nil {
		return nil, err
	}

	response, err := d.transport.Drain(d.window)
	if err != nil {
		return nil, fmt.Errorf("drain: %w", err)
	}

	if d.log != nil {
		d.log.Debugf("RX % X", response)
	}

	if len(response) == 0 {
		return nil, ErrNoResponse
	}

	if err = validate(response); err != nil {
		return nil, err
	}

	return response, nil
}

func (d *Driver) write(p Packet) error {
	if len(p.Payload) > MaxPayloadSize {
		return ErrPacketSize
	}

	frame := p.Bytes()
	if d.log != nil {
		d.log.Debugf("TX %s % X", p.Command, frame)
	}

	n, err := d.transport.Write(frame)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if n != len(frame) && d.log != nil {
		d.log.Warnf("Invalid write: %d of %d", n, len(frame))
	}

	return nil
}
