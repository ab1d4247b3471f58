package herkulex

import (
	"context"
	"time"
)

// Compat exposes the driver with the historical sentinel results:
// rejected inputs are silently ignored and failed reads return a sentinel
// (-1 for position and model, 0 for angle and speed, StatusOK for status, false for ChangeID).
// A failed read cannot be told apart from a servo returning the sentinel value, use the Driver when it matters.
type Compat struct {
	driver *Driver
	batch  *Batch
}

func NewCompat(d *Driver) *Compat {
	b, _ := NewBatch(MaxBatchEntries)
	return &Compat{
		driver: d,
		batch:  b,
	}
}

// Driver returns the wrapped driver.
func (c *Compat) Driver() *Driver {
	return c.driver
}

func (c *Compat) Initialize() {
	c.driver.Initialize()
}

func (c *Compat) SetAckPolicy(policy AckPolicy) {
	c.driver.SetAckPolicy(policy)
}

func (c *Compat) ClearError(id ID) {
	c.driver.ClearError(id)
}

func (c *Compat) TorqueOn(id ID) {
	c.driver.TorqueOn(id)
}

func (c *Compat) TorqueOff(id ID) {
	c.driver.TorqueOff(id)
}

func (c *Compat) MoveTo(id ID, position int, playTimeMs int, led LED) {
	c.driver.MoveTo(id, position, milliseconds(playTimeMs), led)
}

func (c *Compat) MoveToAngle(id ID, angle float64, playTimeMs int, led LED) {
	c.driver.MoveToAngle(id, angle, milliseconds(playTimeMs), led)
}

func (c *Compat) SetSpeed(id ID, speed int, playTimeMs int, led LED) {
	c.driver.SetSpeed(id, speed, milliseconds(playTimeMs), led)
}

// GetPosition returns -1 on failure.
func (c *Compat) GetPosition(id ID) int {
	position, err := c.driver.Position(id)
	if err != nil {
		return -1
	}
	return position
}

// GetAngle returns 0 on failure.
func (c *Compat) GetAngle(id ID) float64 {
	angle, err := c.driver.Angle(id)
	if err != nil {
		return 0
	}
	return angle
}

// GetSpeed returns 0 on failure.
func (c *Compat) GetSpeed(id ID) int {
	speed, err := c.driver.Speed(id)
	if err != nil {
		return 0
	}
	return speed
}

// GetStatus returns StatusOK on failure.
func (c *Compat) GetStatus(id ID) Status {
	status, err := c.driver.Status(id)
	if err != nil {
		return StatusOK
	}
	return status
}

// GetModel returns -1 on failure.
func (c *Compat) GetModel(id ID) int {
	model, err := c.driver.Model(id)
	if err != nil {
		return -1
	}
	return int(model)
}

func (c *Compat) ChangeID(oldID, newID ID) bool {
	return c.driver.ChangeID(oldID, newID) == nil
}

func (c *Compat) AddBatchMove(id ID, position int, led LED) {
	c.batch.AddMove(id, position, led)
}

func (c *Compat) AddBatchAngle(id ID, angle float64, led LED) {
	c.batch.AddAngle(id, angle, led)
}

func (c *Compat) AddBatchSpeed(id ID, speed int, led LED) {
	c.batch.AddSpeed(id, speed, led)
}

// BatchLen returns the number of pending batch entries.
func (c *Compat) BatchLen() int {
	return c.batch.Len()
}

func (c *Compat) FlushBatch(playTimeMs int) {
	c.driver.FlushBatch(c.batch, milliseconds(playTimeMs))
}

func (c *Compat) SetLED(id ID, led LED) {
	c.driver.SetLED(id, led)
}

func (c *Compat) Reboot(id ID) {
	c.driver.Reboot(id)
}

func (c *Compat) WriteRAMRegister(id ID, address Register, value byte) {
	c.driver.WriteRAM(id, address, value)
}

func (c *Compat) WriteEEPRegister(id ID, address Register, value byte) {
	c.driver.WriteEEP(id, address, value)
}

// ScanIDs returns every id answering a position read.
func (c *Compat) ScanIDs() []ID {
	ids, _ := c.driver.ScanIDs(context.Background())
	return ids
}

func milliseconds(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
