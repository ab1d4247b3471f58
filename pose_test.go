package herkulexd

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mdouchement/herkulexd/herkulex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testingConfig(t *testing.T) Config {
	t.Helper()

	cfg, err := Parse(strings.NewReader(testConfig))
	require.NoError(t, err)
	return cfg
}

func TestPoser(t *testing.T) {
	poser, err := NewPoser(testingConfig(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"rest", "wave"}, poser.Names())
	assert.Equal(t, 500*time.Millisecond, poser.PlayTime())

	b, err := poser.Batch("wave")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())

	packet, err := b.Flush(poser.PlayTime())
	require.NoError(t, err)
	assert.Equal(t, herkulex.BroadcastID, packet.ID)
	assert.Equal(t, herkulex.CommandSJog, packet.Command)
	assert.Equal(t, []byte{
		44,                     // 500ms
		0x8A, 0x02, 0x04, 0x01, // head: 650, green
		0xEA, 0x00, 0x18, 0x02, // arm: 234, red & blue
	}, packet.Payload)
}

func TestPoser_NotFound(t *testing.T) {
	poser, err := NewPoser(testingConfig(t))
	require.NoError(t, err)

	_, err = poser.Batch("dance")
	assert.True(t, errors.Is(err, ErrNotFoundPose))

	err = poser.Play(nil, "dance")
	assert.ErrorIs(t, err, ErrNotFoundPose)
}

func TestPoser_Play(t *testing.T) {
	cfg := testingConfig(t)
	poser, err := NewPoser(cfg)
	require.NoError(t, err)

	bus, driver, clock := newTestBus(1, 2)
	require.NoError(t, Setup(cfg, driver))

	require.NoError(t, poser.Play(driver, "wave"))

	position, err := driver.Position(1)
	require.NoError(t, err)
	assert.Equal(t, herkulex.CenterPosition, position)

	clock.Add(time.Second)

	position, err = driver.Position(1)
	require.NoError(t, err)
	assert.Equal(t, 650, position)

	angle, err := driver.Angle(2)
	require.NoError(t, err)
	assert.InDelta(t, -90.5, angle, herkulex.AngleStep)

	servo, ok := bus.Servo(2)
	require.True(t, ok)
	assert.Equal(t, herkulex.AckAlways, servo.AckPolicy)
}
