package herkulexd

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/mdouchement/herkulexd/herkulex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	sync sync.Mutex
	now  time.Time
}

func (c *testClock) Now() time.Time {
	c.sync.Lock()
	defer c.sync.Unlock()

	return c.now
}

func (c *testClock) Add(d time.Duration) {
	c.sync.Lock()
	defer c.sync.Unlock()

	c.now = c.now.Add(d)
}

func newTestBus(ids ...herkulex.ID) (*DummyBus, *herkulex.Driver, *testClock) {
	clock := &testClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	bus := NewDummyBus(ids...)
	bus.now = clock.Now

	driver := herkulex.New(bus)
	driver.SetResponseWindow(0)
	driver.SetDelays(0, 0)

	return bus, driver, clock
}

func TestDummyBus_Initialize(t *testing.T) {
	bus, driver, _ := newTestBus(1, 2)

	require.NoError(t, driver.Initialize())

	for _, id := range []herkulex.ID{1, 2} {
		servo, ok := bus.Servo(id)
		require.True(t, ok)
		assert.Equal(t, byte(0x60), servo.Torque)
		assert.Equal(t, herkulex.AckReadOnly, servo.AckPolicy)
		assert.Equal(t, herkulex.StatusOK, servo.Status)
	}
}

func TestDummyBus_Move(t *testing.T) {
	_, driver, clock := newTestBus(1)

	// Torque is off, the servo does not move.
	require.NoError(t, driver.MoveTo(1, 800, time.Second, herkulex.LEDBlue))
	clock.Add(2 * time.Second)
	position, err := driver.Position(1)
	require.NoError(t, err)
	assert.Equal(t, herkulex.CenterPosition, position)

	require.NoError(t, driver.TorqueOn(1))
	require.NoError(t, driver.MoveTo(1, 800, 1120*time.Millisecond, herkulex.LEDBlue))

	clock.Add(560 * time.Millisecond)
	position, err = driver.Position(1)
	require.NoError(t, err)
	assert.Equal(t, 656, position)

	clock.Add(time.Second)
	position, err = driver.Position(1)
	require.NoError(t, err)
	assert.Equal(t, 800, position)

	angle, err := driver.Angle(1)
	require.NoError(t, err)
	assert.InDelta(t, 93.6, angle, herkulex.AngleStep)
}

func TestDummyBus_Speed(t *testing.T) {
	_, driver, _ := newTestBus(1)
	require.NoError(t, driver.TorqueOn(1))

	for _, expected := range []int{300, -512, 0, herkulex.MaxSpeed} {
		require.NoError(t, driver.SetSpeed(1, expected, 0, 0))

		speed, err := driver.Speed(1)
		require.NoError(t, err)
		assert.Equal(t, expected, speed)
	}
}

func TestDummyBus_Status(t *testing.T) {
	bus, driver, _ := newTestBus(1)

	bus.servos[1].Status = herkulex.StatusOverload | herkulex.StatusTempLimit
	status, err := driver.Status(1)
	require.NoError(t, err)
	assert.True(t, status.HasError())
	assert.Equal(t, "temperature limit, overload", status.String())

	require.NoError(t, driver.ClearError(1))
	status, err = driver.Status(1)
	require.NoError(t, err)
	assert.Equal(t, herkulex.StatusOK, status)

	model, err := driver.Model(1)
	require.NoError(t, err)
	assert.Equal(t, "DRS-0101", herkulex.ModelName(model))

	_, err = driver.Status(3)
	assert.ErrorIs(t, err, herkulex.ErrNoResponse)
}

func TestDummyBus_AckPolicy(t *testing.T) {
	bus, driver, _ := newTestBus(1)

	require.NoError(t, driver.SetAckPolicy(herkulex.AckNone))
	_, err := driver.Position(1)
	assert.ErrorIs(t, err, herkulex.ErrNoResponse)

	require.NoError(t, driver.SetAckPolicy(herkulex.AckAlways))
	require.NoError(t, driver.SetLED(1, herkulex.LEDRed))

	// Acknowledgement of the LED write is still pending on the bus.
	pending, err := bus.Drain(0)
	require.NoError(t, err)
	assert.True(t, herkulex.Validate(pending))
}

func TestDummyBus_ChangeID(t *testing.T) {
	bus, driver, _ := newTestBus(1, 2)

	require.NoError(t, driver.ChangeID(2, 7))

	_, ok := bus.Servo(2)
	assert.False(t, ok)
	servo, ok := bus.Servo(7)
	require.True(t, ok)
	assert.Equal(t, herkulex.ID(7), servo.ID)

	ids, err := driver.ScanRange(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []herkulex.ID{1, 7}, ids)

	err = driver.ChangeID(2, 8)
	assert.ErrorIs(t, err, herkulex.ErrNoResponse)
}

func TestDummyBus_Scan(t *testing.T) {
	_, driver, _ := newTestBus(3, 200)

	ids, err := driver.ScanIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []herkulex.ID{3, 200}, ids)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = driver.ScanIDs(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDummyBus_Compat(t *testing.T) {
	_, driver, clock := newTestBus(1, 2)
	servo := herkulex.NewCompat(driver)

	servo.Initialize()
	servo.AddBatchAngle(1, 45, herkulex.LEDGreen)
	servo.AddBatchMove(2, 100, 0)
	assert.Equal(t, 2, servo.BatchLen())
	servo.FlushBatch(0)
	assert.Equal(t, 0, servo.BatchLen())

	clock.Add(time.Millisecond)
	assert.Equal(t, 650, servo.GetPosition(1))
	assert.Equal(t, 100, servo.GetPosition(2))
	assert.Equal(t, -1, servo.GetPosition(9))
	assert.Equal(t, herkulex.StatusOK, servo.GetStatus(1))
	assert.True(t, servo.ChangeID(2, 3))
	assert.Equal(t, []herkulex.ID{1, 3}, servo.ScanIDs())
}

func TestConnect_Dummy(t *testing.T) {
	cfg := testingConfig(t)

	driver, err := Connect(cfg, true, NewLogger(io.Discard, true))
	require.NoError(t, err)
	defer driver.Close()

	assert.Equal(t, "x-testing", driver.Port())
	require.NoError(t, Setup(cfg, driver))

	ids, err := driver.ScanRange(context.Background(), 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []herkulex.ID{1, 2}, ids)
}
