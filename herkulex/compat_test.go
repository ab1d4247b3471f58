package herkulex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompatSentinels(t *testing.T) {
	d, m := newTestDriver()
	c := NewCompat(d)

	require.Equal(t, -1, c.GetPosition(1))
	require.Equal(t, -1, c.GetPosition(BroadcastID))
	require.Equal(t, 0.0, c.GetAngle(1))
	require.Equal(t, 0, c.GetSpeed(1))
	require.Equal(t, StatusOK, c.GetStatus(1))
	require.Equal(t, -1, c.GetModel(1))
	require.False(t, c.ChangeID(1, 2))
	require.Empty(t, c.ScanIDs())

	m.respond = replies(ack(1, CommandStat, 0x20, 0x00))
	require.Equal(t, StatusDriverFault, c.GetStatus(1))
}

func TestCompatIgnoresRejectedInputs(t *testing.T) {
	d, m := newTestDriver()
	c := NewCompat(d)

	c.MoveTo(1, 1024, 100, LEDRed)
	c.MoveTo(1, -1, 100, LEDRed)
	c.SetSpeed(1, 1024, 100, LEDRed)
	c.MoveToAngle(1, 167.1, 100, LEDRed)
	c.MoveTo(1, 512, 2857, LEDRed)
	c.SetAckPolicy(7)
	c.Reboot(BroadcastID)
	require.Empty(t, m.writes)

	c.MoveTo(1, 512, 100, LEDRed)
	require.Len(t, m.writes, 1)
}

func TestCompatBatch(t *testing.T) {
	d, m := newTestDriver()
	c := NewCompat(d)

	c.FlushBatch(1000)
	require.Empty(t, m.writes)

	c.AddBatchMove(0, 512, LEDRed)
	c.AddBatchAngle(1, 90.5, LEDGreen)
	c.AddBatchSpeed(2, -300, LEDBlue)
	c.AddBatchMove(3, 2000, LEDBlue)
	require.Equal(t, 3, c.BatchLen())

	c.FlushBatch(3000)
	require.Empty(t, m.writes)
	require.Zero(t, c.BatchLen())

	c.AddBatchMove(0, 512, LEDRed)
	c.FlushBatch(1000)
	require.Len(t, m.writes, 1)
	require.Zero(t, c.BatchLen())
}
