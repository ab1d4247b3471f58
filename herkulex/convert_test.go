package herkulex

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAngleRoundTrip(t *testing.T) {
	for i := -16699; i <= 16700; i++ {
		angle := float64(i) / 100
		require.True(t, ValidAngle(angle))

		back := PositionToAngle(AngleToPosition(angle))
		require.LessOrEqual(t, math.Abs(back-angle), AngleStep, "angle %.2f", angle)
	}
}

func TestAngleToPosition(t *testing.T) {
	require.Equal(t, CenterPosition, AngleToPosition(0))
	require.Equal(t, 512+277, AngleToPosition(90))
	require.Equal(t, 512-277, AngleToPosition(-90))
	require.Equal(t, 1023, AngleToPosition(166.075))
	require.InDelta(t, 0.0, PositionToAngle(512), 1e-9)
	require.InDelta(t, -166.4, PositionToAngle(0), 1e-9)
}

func TestValidAngle(t *testing.T) {
	require.True(t, ValidAngle(167))
	require.True(t, ValidAngle(-166.99))
	require.False(t, ValidAngle(-167))
	require.False(t, ValidAngle(167.1))
	require.False(t, ValidAngle(math.NaN()))
}

func TestSpeedRoundTrip(t *testing.T) {
	for speed := -MaxSpeed; speed <= MaxSpeed; speed++ {
		v := EncodeSpeed(speed)
		require.Equal(t, speed, DecodeSpeed(byte(v), byte(v>>8)), "speed %d", speed)
	}

	require.Equal(t, uint16(0x0000), EncodeSpeed(0))
	require.Equal(t, uint16(0x03FF), EncodeSpeed(1023))
	require.Equal(t, uint16(0x43FF), EncodeSpeed(-1023))
	require.Equal(t, uint16(0x4001), EncodeSpeed(-1))

	require.False(t, ValidSpeed(1024))
	require.False(t, ValidSpeed(-1024))
	require.True(t, ValidSpeed(-1023))
}

func TestPlayTimeToTicks(t *testing.T) {
	testCases := []struct {
		playTime time.Duration
		ticks    uint8
	}{
		{0, 0},
		{11 * time.Millisecond, 0},
		{12 * time.Millisecond, 1},
		{100 * time.Millisecond, 8},
		{1000 * time.Millisecond, 89},
		{MaxPlayTime, 255},
	}

	for _, tc := range testCases {
		t.Run(tc.playTime.String(), func(t *testing.T) {
			ticks, err := PlayTimeToTicks(tc.playTime)
			require.NoError(t, err)
			require.Equal(t, tc.ticks, ticks)
		})
	}

	_, err := PlayTimeToTicks(MaxPlayTime + time.Millisecond)
	require.ErrorIs(t, err, ErrPlayTimeRange)
	_, err = PlayTimeToTicks(-time.Millisecond)
	require.ErrorIs(t, err, ErrPlayTimeRange)

	require.Equal(t, MaxPlayTime, TicksToPlayTime(255))
	require.Equal(t, 112*time.Millisecond, TicksToPlayTime(10))
}

func TestLED(t *testing.T) {
	require.Equal(t, byte(0x00), LED(0).register())
	require.Equal(t, byte(0x01), LEDGreen.register())
	require.Equal(t, byte(0x02), LEDBlue.register())
	require.Equal(t, byte(0x04), LEDRed.register())
	require.Equal(t, byte(0x05), (LEDRed | LEDGreen).register())
	require.Equal(t, byte(0x07), (LEDRed | LEDGreen | LEDBlue).register())

	require.Equal(t, byte(0x14), (LEDRed | LEDGreen).jogSet(false))
	require.Equal(t, byte(0x16), (LEDRed | LEDGreen).jogSet(true))
	require.Equal(t, byte(0x00), LED(0x03).jogSet(false))

	led, err := ParseLED("Red", " blue")
	require.NoError(t, err)
	require.Equal(t, LEDRed|LEDBlue, led)
	require.Equal(t, "red|blue", led.String())
	require.Equal(t, "off", LED(0).String())

	_, err = ParseLED("purple")
	require.Error(t, err)
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "ok", StatusOK.String())
	require.False(t, StatusOK.HasError())
	require.True(t, (StatusOverload | StatusTempLimit).HasError())
	require.Equal(t, "temperature limit, overload", (StatusOverload | StatusTempLimit).String())
}

func TestParseAckPolicy(t *testing.T) {
	for s, expected := range map[string]AckPolicy{"none": AckNone, "read": AckReadOnly, "Always": AckAlways} {
		policy, err := ParseAckPolicy(s)
		require.NoError(t, err)
		require.Equal(t, expected, policy)
	}

	_, err := ParseAckPolicy("sometimes")
	require.ErrorIs(t, err, ErrAckPolicy)
	require.False(t, AckPolicy(3).Valid())
}
