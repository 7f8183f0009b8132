package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	snapshot *Snapshot
	err      error
}

func (f fakeRepository) LoadSnapshot(ctx context.Context, departmentID ID) (*Snapshot, error) {
	return f.snapshot, f.err
}

type fakeTimetableStore struct {
	saved [][]Timetable
}

func (f *fakeTimetableStore) Save(ctx context.Context, timetables []Timetable) ([]ID, error) {
	f.saved = append(f.saved, timetables)
	ids := make([]ID, len(timetables))
	for i := range timetables {
		ids[i] = ID("tt-" + itoa(i))
	}
	return ids, nil
}

func oneYearDepartment(year Year, numBatches int) Department {
	return Department{
		ID:    "dept-1",
		Name:  "Computer Engineering",
		Years: map[Year]YearConfig{year: {NumBatches: numBatches}},
	}
}

func TestGenerateScenarioAMinimalFeasible(t *testing.T) {
	dept := oneYearDepartment(YearTE, 1)
	snapshot := &Snapshot{
		Department: dept,
		Subjects: []Subject{
			{ID: "ml", Code: "ML", Year: YearTE, Kind: SubjectLecture, LecturesPerWeek: 3},
			{ID: "ml-lab", Code: "ML-Lab", Year: YearTE, Kind: SubjectPractical, PracticalsPerWeek: 1, ConsecutiveSlots: 2},
		},
		Teachers: []Teacher{{ID: "tch", Code: "TCH"}},
		Rooms: []Room{
			{ID: "r101", Number: "R101", Kind: RoomClassroom, Capacity: 60},
			{ID: "l201", Number: "L201", Kind: RoomLab, Capacity: 30},
		},
	}

	store := &fakeTimetableStore{}
	tts, err := Generate(context.Background(), fakeRepository{snapshot: snapshot}, store, FixedClock{At: time.Unix(0, 0)}, "dept-1", "2026")
	require.NoError(t, err)

	var te Timetable
	for _, tt := range tts {
		if tt.Year == YearTE {
			te = tt
		}
	}
	require.NotEmpty(t, te.Year)
	assert.Empty(t, te.Warnings)
	assert.Equal(t, 3, te.Main.CountLectures("ml"))

	b1 := te.Batches[BatchTag("B1")]
	require.NotNil(t, b1)
	practicalCount := 0
	for _, day := range te.Main.Shape.Days {
		for _, slot := range te.Main.Shape.TimeSlots {
			if b1.At(day, slot).Kind == CellPractical {
				practicalCount++
			}
		}
	}
	assert.Equal(t, 2, practicalCount, "one 2-slot practical group expected")
}

func TestGenerateScenarioBUnsatPracticalWithoutLabRoom(t *testing.T) {
	dept := oneYearDepartment(YearTE, 1)
	snapshot := &Snapshot{
		Department: dept,
		Subjects: []Subject{
			{ID: "ml", Code: "ML", Year: YearTE, Kind: SubjectLecture, LecturesPerWeek: 3},
			{ID: "ml-lab", Code: "ML-Lab", Year: YearTE, Kind: SubjectPractical, PracticalsPerWeek: 1, ConsecutiveSlots: 2},
		},
		Teachers: []Teacher{{ID: "tch", Code: "TCH"}},
		Rooms:    []Room{{ID: "r101", Number: "R101", Kind: RoomClassroom, Capacity: 60}},
	}

	store := &fakeTimetableStore{}
	tts, err := Generate(context.Background(), fakeRepository{snapshot: snapshot}, store, FixedClock{At: time.Unix(0, 0)}, "dept-1", "2026")
	require.NoError(t, err)

	var te Timetable
	for _, tt := range tts {
		if tt.Year == YearTE {
			te = tt
		}
	}
	require.Len(t, te.Warnings, 1)
	assert.Equal(t, "UnfillableDemand", te.Warnings[0].Kind)
	assert.Equal(t, ID("ml-lab"), te.Warnings[0].Subject.ID)
	assert.Equal(t, BatchTag("B1"), te.Warnings[0].Batch)
	assert.Equal(t, 1, te.Warnings[0].Remaining)
	assert.Equal(t, 3, te.Main.CountLectures("ml"))

	b1 := te.Batches[BatchTag("B1")]
	practicalCount := 0
	for _, day := range te.Main.Shape.Days {
		for _, slot := range te.Main.Shape.TimeSlots {
			if b1.At(day, slot).Kind == CellPractical {
				practicalCount++
			}
		}
	}
	assert.Equal(t, 0, practicalCount)
}

func TestGenerateScenarioCTeacherContentionAcrossBatches(t *testing.T) {
	dept := oneYearDepartment(YearSE, 2)
	snapshot := &Snapshot{
		Department: dept,
		Subjects: []Subject{
			{ID: "p", Code: "P", Year: YearSE, Kind: SubjectPractical, PracticalsPerWeek: 1, ConsecutiveSlots: 2},
		},
		Teachers: []Teacher{{ID: "tch", Code: "TCH"}},
		Rooms: []Room{
			{ID: "l201", Number: "L201", Kind: RoomLab, Capacity: 30},
			{ID: "l202", Number: "L202", Kind: RoomLab, Capacity: 30},
		},
	}

	store := &fakeTimetableStore{}
	tts, err := Generate(context.Background(), fakeRepository{snapshot: snapshot}, store, FixedClock{At: time.Unix(0, 0)}, "dept-1", "2026")
	require.NoError(t, err)

	var se Timetable
	for _, tt := range tts {
		if tt.Year == YearSE {
			se = tt
		}
	}
	assert.Empty(t, se.Warnings)

	b1 := se.Batches[BatchTag("B1")]
	b2 := se.Batches[BatchTag("B2")]

	for _, day := range se.Main.Shape.Days {
		for _, slot := range se.Main.Shape.TimeSlots {
			c1 := b1.At(day, slot)
			c2 := b2.At(day, slot)
			if c1.Kind == CellPractical && c2.Kind == CellPractical {
				t.Fatalf("teacher %s cannot teach both batches at %s %s simultaneously", c1.TeacherID, day, slot.Start)
			}
		}
	}
}

func TestGenerateScenarioDWorkloadCap(t *testing.T) {
	dept := oneYearDepartment(YearBE, 1)
	snapshot := &Snapshot{
		Department: dept,
		Subjects: []Subject{
			{ID: "sub-a", Code: "A", Year: YearBE, Kind: SubjectLecture, LecturesPerWeek: 3},
			{ID: "sub-b", Code: "B", Year: YearBE, Kind: SubjectLecture, LecturesPerWeek: 3},
		},
		Teachers: []Teacher{{ID: "tch", Code: "TCH", MaxWeeklyHours: 4}},
		Rooms:    []Room{{ID: "r101", Number: "R101", Kind: RoomClassroom, Capacity: 60}},
	}

	store := &fakeTimetableStore{}
	tts, err := Generate(context.Background(), fakeRepository{snapshot: snapshot}, store, FixedClock{At: time.Unix(0, 0)}, "dept-1", "2026")
	require.NoError(t, err)

	var be Timetable
	for _, tt := range tts {
		if tt.Year == YearBE {
			be = tt
		}
	}

	total := be.Main.CountLectures("sub-a") + be.Main.CountLectures("sub-b")
	assert.Equal(t, 4, total)

	var remaining int
	for _, w := range be.Warnings {
		remaining += w.Remaining
	}
	assert.Equal(t, 2, remaining)
}

func TestGenerateScenarioEBreakSafety(t *testing.T) {
	dept := oneYearDepartment(YearSE, 1)
	snapshot := &Snapshot{
		Department: dept,
		Subjects: []Subject{
			{ID: "ml", Code: "ML", Year: YearSE, Kind: SubjectLecture, LecturesPerWeek: 3},
			{ID: "ml-lab", Code: "ML-Lab", Year: YearSE, Kind: SubjectPractical, PracticalsPerWeek: 1, ConsecutiveSlots: 2},
		},
		Teachers: []Teacher{{ID: "tch", Code: "TCH"}},
		Rooms: []Room{
			{ID: "r101", Number: "R101", Kind: RoomClassroom, Capacity: 60},
			{ID: "l201", Number: "L201", Kind: RoomLab, Capacity: 30},
		},
	}

	store := &fakeTimetableStore{}
	tts, err := Generate(context.Background(), fakeRepository{snapshot: snapshot}, store, FixedClock{At: time.Unix(0, 0)}, "dept-1", "2026")
	require.NoError(t, err)

	breakSlots := []TimeSlot{{Start: "11:00", End: "11:15"}, {Start: "13:15", End: "13:45"}}
	for _, tt := range tts {
		for _, day := range tt.Main.Shape.Days {
			for _, slot := range breakSlots {
				assert.Equal(t, CellBreak, tt.Main.At(day, slot).Kind)
				for _, batch := range tt.BatchOrder {
					assert.Equal(t, CellBreak, tt.Batches[batch].At(day, slot).Kind)
				}
			}
		}
	}
}

func TestGenerateScenarioFDeterminism(t *testing.T) {
	dept := oneYearDepartment(YearTE, 1)
	snapshot := &Snapshot{
		Department: dept,
		Subjects: []Subject{
			{ID: "ml", Code: "ML", Year: YearTE, Kind: SubjectLecture, LecturesPerWeek: 3},
			{ID: "ml-lab", Code: "ML-Lab", Year: YearTE, Kind: SubjectPractical, PracticalsPerWeek: 1, ConsecutiveSlots: 2},
		},
		Teachers: []Teacher{{ID: "tch", Code: "TCH"}},
		Rooms: []Room{
			{ID: "r101", Number: "R101", Kind: RoomClassroom, Capacity: 60},
			{ID: "l201", Number: "L201", Kind: RoomLab, Capacity: 30},
		},
	}

	clock := FixedClock{At: time.Unix(0, 0)}
	first, err := Generate(context.Background(), fakeRepository{snapshot: snapshot}, &fakeTimetableStore{}, clock, "dept-1", "2026")
	require.NoError(t, err)
	second, err := Generate(context.Background(), fakeRepository{snapshot: snapshot}, &fakeTimetableStore{}, clock, "dept-1", "2026")
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Formatted, second[i].Formatted)
		assert.Equal(t, first[i].Warnings, second[i].Warnings)
	}
}

func TestGenerateFailsWithEmptyInputWhenNoSubjects(t *testing.T) {
	snapshot := &Snapshot{
		Department: oneYearDepartment(YearSE, 1),
		Teachers:   []Teacher{{ID: "tch", Code: "TCH"}},
		Rooms:      []Room{{ID: "r101", Number: "R101", Kind: RoomClassroom, Capacity: 60}},
	}

	_, err := Generate(context.Background(), fakeRepository{snapshot: snapshot}, &fakeTimetableStore{}, SystemClock{}, "dept-1", "2026")
	require.Error(t, err)
	schedErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindEmptyInput, schedErr.Kind)
}

func TestGenerateFailsWithNotFoundWhenDepartmentMissing(t *testing.T) {
	_, err := Generate(context.Background(), fakeRepository{snapshot: nil}, &fakeTimetableStore{}, SystemClock{}, "missing", "2026")
	require.Error(t, err)
	schedErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, schedErr.Kind)
}

func TestGenerateAbortsWhenContextCancelled(t *testing.T) {
	dept := oneYearDepartment(YearSE, 1)
	snapshot := &Snapshot{
		Department: dept,
		Subjects: []Subject{
			{ID: "ml", Code: "ML", Year: YearSE, Kind: SubjectLecture, LecturesPerWeek: 3},
		},
		Teachers: []Teacher{{ID: "tch", Code: "TCH"}},
		Rooms:    []Room{{ID: "r101", Number: "R101", Kind: RoomClassroom, Capacity: 60}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, fakeRepository{snapshot: snapshot}, &fakeTimetableStore{}, SystemClock{}, "dept-1", "2026")
	require.Error(t, err)
	schedErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindAborted, schedErr.Kind)
}
