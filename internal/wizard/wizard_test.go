package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWizardHappyPath(t *testing.T) {
	w := New(DemoCatalog())
	assert.Equal(t, StepDoctor, w.Step())
	assert.False(t, w.CanAdvance())
	assert.ErrorIs(t, w.Next(), ErrCannotAdvance)

	require.NoError(t, w.SelectDoctor(2))
	require.NoError(t, w.Next())
	assert.Equal(t, StepDate, w.Step())

	require.NoError(t, w.SelectDate("28"))
	require.NoError(t, w.Next())

	assert.False(t, w.CanAdvance())
	require.NoError(t, w.SelectTime("02:30 PM"))
	require.NoError(t, w.Next())
	assert.Equal(t, StepConfirm, w.Step())
	assert.False(t, w.CanAdvance())
	assert.ErrorIs(t, w.Next(), ErrCannotAdvance)

	sum, err := w.Finish()
	require.NoError(t, err)
	assert.Equal(t, "Dr. James Rodriguez", sum.Doctor.Name)
	assert.Equal(t, "Tue", sum.Date.Day)
	assert.Equal(t, "02:30 PM", sum.Time)
	assert.Equal(t, StepDoctor, w.Step())
}

func TestWizardRejectsUnavailableAndUnknown(t *testing.T) {
	w := New(DemoCatalog())
	assert.ErrorIs(t, w.SelectDoctor(9), ErrUnknownChoice)
	require.NoError(t, w.SelectDoctor(1))
	require.NoError(t, w.Next())

	assert.ErrorIs(t, w.SelectDate("29"), ErrDateUnavailable)
	assert.ErrorIs(t, w.SelectDate("01"), ErrUnknownChoice)
	assert.False(t, w.CanAdvance())

	assert.ErrorIs(t, w.SelectTime("04:00 PM"), ErrUnknownChoice)
}

func TestWizardBackAndReset(t *testing.T) {
	w := New(DemoCatalog())
	assert.False(t, w.Back())

	require.NoError(t, w.SelectDoctor(1))
	require.NoError(t, w.Next())
	require.NoError(t, w.SelectDate("27"))
	require.NoError(t, w.Next())

	assert.True(t, w.Back())
	assert.Equal(t, StepDate, w.Step())
	assert.True(t, w.CanAdvance(), "choices survive going back")

	_, err := w.Finish()
	assert.ErrorIs(t, err, ErrNotConfirming)

	w.Reset()
	assert.Equal(t, StepDoctor, w.Step())
	assert.False(t, w.CanAdvance())
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "confirm", StepConfirm.String())
	assert.Equal(t, "step(9)", Step(9).String())
}
