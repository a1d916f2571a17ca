package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptHappyPath(t *testing.T) {
	a := NewAttempt("order_1")
	require.Equal(t, StageCreated, a.Stage)
	require.False(t, a.Stage.Terminal())

	a, err := a.CapturePayment("pay_1")
	require.NoError(t, err)
	assert.Equal(t, StageGatewayPaid, a.Stage)
	assert.Equal(t, "pay_1", a.PaymentID)
	assert.False(t, a.Stage.Terminal())

	a, err = a.Persist()
	require.NoError(t, err)
	assert.Equal(t, StagePersisted, a.Stage)
	assert.True(t, a.Stage.Terminal())
}

func TestAttemptRejectAndOrphan(t *testing.T) {
	paid, err := NewAttempt("order_1").CapturePayment("pay_1")
	require.NoError(t, err)

	rejected, err := paid.Reject()
	require.NoError(t, err)
	assert.Equal(t, StageRejected, rejected.Stage)
	assert.True(t, rejected.Stage.Terminal())

	orphaned, err := paid.Orphan()
	require.NoError(t, err)
	assert.Equal(t, StageOrphaned, orphaned.Stage)
	assert.True(t, orphaned.Stage.Terminal())
}

func TestAttemptInvalidTransitions(t *testing.T) {
	fresh := NewAttempt("order_1")

	_, err := fresh.Persist()
	assert.ErrorIs(t, err, ErrInvalidTransition, "cannot persist before payment")

	_, err = fresh.Reject()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = fresh.Orphan()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	paid, err := fresh.CapturePayment("pay_1")
	require.NoError(t, err)

	_, err = paid.CapturePayment("pay_2")
	assert.ErrorIs(t, err, ErrInvalidTransition, "one payment per attempt")

	done, err := paid.Persist()
	require.NoError(t, err)

	_, err = done.Reject()
	assert.ErrorIs(t, err, ErrInvalidTransition, "terminal stages admit no transition")
	_, err = done.Orphan()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = done.Persist()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
