package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstraintStateReservationIsIdempotentPerKey(t *testing.T) {
	state := NewConstraintState()
	day := Monday
	slot := TimeSlot{Start: "09:00", End: "10:00"}

	assert.True(t, state.TryReserveTeacher("t1", day, slot))
	assert.False(t, state.TryReserveTeacher("t1", day, slot), "second reservation of the same key must fail without mutation")
	assert.False(t, state.IsTeacherFree("t1", day, slot))
}

func TestConstraintStateReleaseFreesKey(t *testing.T) {
	state := NewConstraintState()
	day := Tuesday
	slot := TimeSlot{Start: "10:00", End: "11:00"}

	state.TryReserveRoom("r1", day, slot)
	assert.False(t, state.IsRoomFree("r1", day, slot))

	state.ReleaseRoom("r1", day, slot)
	assert.True(t, state.IsRoomFree("r1", day, slot))
}

func TestConstraintStateWorkloadAccumulates(t *testing.T) {
	state := NewConstraintState()
	state.AddWorkload("t1", 1)
	state.AddWorkload("t1", 2)
	assert.Equal(t, 3, state.TeacherWorkload("t1"))
}

func TestConstraintStateDemandCountersAreIndependentPerBatch(t *testing.T) {
	state := NewConstraintState()
	state.AddPractical("ml-lab", "B1")
	assert.Equal(t, 1, state.PracticalsScheduled("ml-lab", "B1"))
	assert.Equal(t, 0, state.PracticalsScheduled("ml-lab", "B2"))
}
