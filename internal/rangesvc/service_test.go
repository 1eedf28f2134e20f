package rangesvc

import (
	"encoding/binary"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	payloads [][]byte
}

func (c *captureNotifier) Write(b []byte) (int, error) {
	cp := make([]byte, len(b))
	copy(cp, b)
	c.payloads = append(c.payloads, cp)
	return len(b), nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := NewStore(defaults())
	require.NoError(t, err)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return New(st, log)
}

func TestPublishStoresLatest(t *testing.T) {
	svc := newTestService(t)

	assert.Equal(t, uint16(0), svc.RangeMM())
	svc.Publish(321)
	assert.Equal(t, uint16(321), svc.RangeMM())
	svc.Publish(45)
	assert.Equal(t, uint16(45), svc.RangeMM())
}

func TestPublishNotifiesOnlySubscribed(t *testing.T) {
	svc := newTestService(t)
	n := &captureNotifier{}

	// Not subscribed: stored, nothing pushed.
	svc.Publish(100)
	assert.Empty(t, n.payloads)

	svc.Subscribe(n)
	assert.True(t, svc.Subscribed())
	svc.Publish(750)
	require.Len(t, n.payloads, 1)
	assert.Equal(t, uint16(750), binary.LittleEndian.Uint16(n.payloads[0]))

	svc.Unsubscribe()
	assert.False(t, svc.Subscribed())
	svc.Publish(800)
	assert.Len(t, n.payloads, 1)

	// The reading itself keeps updating regardless.
	assert.Equal(t, uint16(800), svc.RangeMM())
}

func TestUnsubscribeIdempotent(t *testing.T) {
	svc := newTestService(t)

	svc.Unsubscribe()
	svc.Unsubscribe()
	assert.False(t, svc.Subscribed())
}

func TestWriteConfig(t *testing.T) {
	svc := newTestService(t)

	next := Settings{SampleIntervalMS: 50, NotifyIntervalMS: 200, MaxRangeMM: 900, MinRangeMM: 100}
	require.NoError(t, svc.WriteConfig(next.Marshal()))
	assert.Equal(t, next, svc.Config())
}

func TestWriteConfigRejectsBadLength(t *testing.T) {
	svc := newTestService(t)
	before := svc.Config()

	err := svc.WriteConfig([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidLength)
	assert.Equal(t, before, svc.Config())
}

func TestWriteConfigRejectsBadValues(t *testing.T) {
	svc := newTestService(t)
	before := svc.Config()

	bad := Settings{SampleIntervalMS: 100, NotifyIntervalMS: 100, MaxRangeMM: 50, MinRangeMM: 800}
	err := svc.WriteConfig(bad.Marshal())
	assert.ErrorIs(t, err, ErrValueNotAllowed)
	assert.Equal(t, before, svc.Config())
}
