package scheduler

import (
	"context"
	"sort"
)

const (
	defaultMaxWeeklyHours  = 20
	defaultLecturesPerWeek = 3
	defaultPracticalsPerWeek = 1
	defaultConsecutiveSlots = 2
	defaultPriority        = 5
	defaultBatchSize       = 30
)

// Generate runs the full pipeline for a department: load a snapshot,
// then for each year SE/TE/BE schedule lectures then practicals, format
// the resulting grids, and persist. Hard errors abort the call with no
// partial emission; UnfillableDemand is never an error, it rides on the
// returned Timetable's Warnings.
func Generate(ctx context.Context, repo Repository, store TimetableStore, clock Clock, departmentID ID, academicYear string) ([]Timetable, error) {
	snapshot, err := repo.LoadSnapshot(ctx, departmentID)
	if err != nil {
		if asErr, ok := err.(*Error); ok {
			return nil, asErr
		}
		return nil, ErrNotFound(err.Error())
	}
	if snapshot == nil {
		return nil, ErrNotFound("department not found")
	}

	if len(snapshot.Subjects) == 0 {
		return nil, ErrEmptyInput("subjects")
	}
	if len(snapshot.Teachers) == 0 {
		return nil, ErrEmptyInput("teachers")
	}
	if len(snapshot.Rooms) == 0 {
		return nil, ErrEmptyInput("rooms")
	}

	if err := validateInput(*snapshot); err != nil {
		return nil, err
	}

	shape := DefaultShape()
	if snapshot.Department.Shape != nil {
		shape = *snapshot.Department.Shape
	}

	if err := validateShape(shape, snapshot.Subjects); err != nil {
		return nil, err
	}

	codes := NewCodeIndex(*snapshot)

	var timetables []Timetable
	state := NewConstraintState()
	for _, year := range Years {
		if shouldAbort(ctx) {
			return nil, ErrAborted()
		}

		subjects := snapshot.SubjectsForYear(year)
		batches := batchTags(snapshot.Department, year)

		main := NewGrid(shape)
		batchGrids := make(map[BatchTag]*Grid, len(batches))
		for _, b := range batches {
			batchGrids[b] = NewGrid(shape)
		}

		var warnings []Warning
		warnings = append(warnings, scheduleLectures(ctx, shape, main, subjects, snapshot.Teachers, snapshot.Rooms, snapshot.Department, state)...)
		warnings = append(warnings, schedulePracticals(ctx, shape, main, batchGrids, batches, subjects, snapshot.Teachers, snapshot.Rooms, snapshot.Department, state)...)
		if shouldAbort(ctx) {
			return nil, ErrAborted()
		}

		formatted := Combine(shape, year, main, batchGrids, batches, codes)

		timetables = append(timetables, Timetable{
			DepartmentID: departmentID,
			AcademicYear: academicYear,
			Year:         year,
			Main:         main,
			Batches:      batchGrids,
			BatchOrder:   batches,
			Formatted:    formatted,
			Codes:        codes,
			CreatedAt:    clock.Now(),
			Warnings:     warnings,
		})
	}

	ids, err := store.Save(ctx, timetables)
	if err != nil {
		return nil, ErrInternal("failed to save generated timetables", err)
	}
	for i := range timetables {
		if i < len(ids) {
			timetables[i].ID = ids[i]
		}
	}

	return timetables, nil
}

func shouldAbort(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func validateInput(snapshot Snapshot) error {
	for year, cfg := range snapshot.Department.Years {
		if cfg.NumBatches < 1 {
			return ErrInvalidInput("department.years[" + string(year) + "].num_batches must be >= 1")
		}
	}
	return nil
}

func validateShape(shape TimeTableShape, subjects []Subject) error {
	for _, subj := range subjects {
		if subj.Kind != SubjectPractical {
			continue
		}
		length := consecutiveSlots(subj)
		if length < 1 {
			return ErrInvalidShape("subject " + subj.Code + " consecutive_slots must be >= 1")
		}
		if len(shape.PracticalGroups(length)) == 0 {
			return ErrInvalidShape("subject " + subj.Code + " has no practical_slot_group of length " + itoa(length))
		}
	}
	return nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func batchTags(dept Department, year Year) []BatchTag {
	n := dept.Years[year].NumBatches
	if n < 1 {
		n = 1
	}
	tags := make([]BatchTag, n)
	for i := 0; i < n; i++ {
		tags[i] = BatchTag("B" + itoa(i+1))
	}
	return tags
}

func lecturesPerWeek(s Subject) int {
	if s.LecturesPerWeek > 0 {
		return s.LecturesPerWeek
	}
	return defaultLecturesPerWeek
}

func practicalsPerWeek(s Subject) int {
	if s.PracticalsPerWeek > 0 {
		return s.PracticalsPerWeek
	}
	return defaultPracticalsPerWeek
}

func consecutiveSlots(s Subject) int {
	if s.ConsecutiveSlots > 0 {
		return s.ConsecutiveSlots
	}
	return defaultConsecutiveSlots
}

func maxWeeklyHours(t Teacher) int {
	if t.MaxWeeklyHours > 0 {
		return t.MaxWeeklyHours
	}
	return defaultMaxWeeklyHours
}

func batchSize(dept Department) int {
	if dept.BatchSize > 0 {
		return dept.BatchSize
	}
	return defaultBatchSize
}

func priorityOf(dept Department, subjectID ID) int {
	if dept.PriorityBySub != nil {
		if p, ok := dept.PriorityBySub[subjectID]; ok {
			return p
		}
	}
	return defaultPriority
}

// sortSubjects orders candidates by priority descending, ties by code
// ascending, for deterministic iteration.
func sortSubjects(dept Department, subjects []Subject) []Subject {
	sorted := append([]Subject(nil), subjects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := priorityOf(dept, sorted[i].ID), priorityOf(dept, sorted[j].ID)
		if pi != pj {
			return pi > pj
		}
		return sorted[i].Code < sorted[j].Code
	})
	return sorted
}

// eligibleTeachersForLecture returns teachers eligible for subject S,
// ordered: preferred_teacher_id first, then ascending current workload,
// then by code.
func eligibleTeachersForLecture(subj Subject, teachers []Teacher, state *ConstraintState, day Day, slot TimeSlot) []Teacher {
	var candidates []Teacher
	for _, t := range teachers {
		if !teacherAllowed(t, subj.ID) {
			continue
		}
		if state.TeacherWorkload(t.ID) >= maxWeeklyHours(t) {
			continue
		}
		if !state.IsTeacherFree(t.ID, day, slot) {
			continue
		}
		candidates = append(candidates, t)
	}
	sortTeachers(candidates, subj.PreferredTeacherID, state)
	return candidates
}

// eligibleTeachersForPracticalGroup requires availability and workload
// headroom across every slot of the group.
func eligibleTeachersForPracticalGroup(subj Subject, teachers []Teacher, state *ConstraintState, day Day, group []TimeSlot) []Teacher {
	var candidates []Teacher
	for _, t := range teachers {
		if !teacherAllowed(t, subj.ID) {
			continue
		}
		if state.TeacherWorkload(t.ID)+len(group) > maxWeeklyHours(t) {
			continue
		}
		free := true
		for _, slot := range group {
			if !state.IsTeacherFree(t.ID, day, slot) {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		candidates = append(candidates, t)
	}
	sortTeachers(candidates, subj.PreferredTeacherID, state)
	return candidates
}

func teacherAllowed(t Teacher, subjectID ID) bool {
	if len(t.AllowedSubjects) == 0 {
		return true
	}
	return t.AllowedSubjects[subjectID]
}

func sortTeachers(teachers []Teacher, preferredID ID, state *ConstraintState) {
	sort.SliceStable(teachers, func(i, j int) bool {
		pi := teachers[i].ID == preferredID
		pj := teachers[j].ID == preferredID
		if pi != pj {
			return pi
		}
		wi, wj := state.TeacherWorkload(teachers[i].ID), state.TeacherWorkload(teachers[j].ID)
		if wi != wj {
			return wi < wj
		}
		return teachers[i].Code < teachers[j].Code
	})
}

// eligibleLectureRooms returns CLASSROOM/LECTURE_HALL rooms free at
// (day, slot), ordered by ascending capacity then number.
func eligibleLectureRooms(rooms []Room, state *ConstraintState, day Day, slot TimeSlot) []Room {
	var candidates []Room
	for _, r := range rooms {
		if r.Kind != RoomClassroom && r.Kind != RoomLectureHall {
			continue
		}
		if !state.IsRoomFree(r.ID, day, slot) {
			continue
		}
		candidates = append(candidates, r)
	}
	sortRooms(candidates)
	return candidates
}

// eligiblePracticalRooms returns LAB/COMPUTER_LAB rooms free across the
// whole group and with capacity >= minCapacity, ordered by ascending
// capacity then number.
func eligiblePracticalRooms(rooms []Room, state *ConstraintState, day Day, group []TimeSlot, minCapacity int) []Room {
	var candidates []Room
	for _, r := range rooms {
		if r.Kind != RoomLab && r.Kind != RoomComputerLab {
			continue
		}
		if r.Capacity < minCapacity {
			continue
		}
		free := true
		for _, slot := range group {
			if !state.IsRoomFree(r.ID, day, slot) {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		candidates = append(candidates, r)
	}
	sortRooms(candidates)
	return candidates
}

func sortRooms(rooms []Room) {
	sort.SliceStable(rooms, func(i, j int) bool {
		if rooms[i].Capacity != rooms[j].Capacity {
			return rooms[i].Capacity < rooms[j].Capacity
		}
		return rooms[i].Number < rooms[j].Number
	})
}

// scheduleLectures places lectures shared across all batches of a year
// into the Main grid. It never backtracks across subjects: a subject
// whose demand cannot be fully satisfied emits an UnfillableDemand
// warning and the engine moves on to the next subject.
func scheduleLectures(ctx context.Context, shape TimeTableShape, main *Grid, subjects []Subject, teachers []Teacher, rooms []Room, dept Department, state *ConstraintState) []Warning {
	var warnings []Warning
	candidates := filterKind(subjects, SubjectLecture)
	sorted := sortSubjects(dept, candidates)

	for _, subj := range sorted {
		demand := lecturesPerWeek(subj)
		for state.LecturesScheduled(subj.ID) < demand {
			if shouldAbort(ctx) {
				return warnings
			}
			placed := false
		dayLoop:
			for _, day := range shape.Days {
				if main.HasSubjectOnDay(day, subj.ID) {
					continue
				}
				for _, slot := range shape.TimeSlots {
					if shape.IsBreak(slot) {
						continue
					}
					if !main.At(day, slot).IsEmpty() {
						continue
					}
					teacherCandidates := eligibleTeachersForLecture(subj, teachers, state, day, slot)
					if len(teacherCandidates) == 0 {
						continue
					}
					roomCandidates := eligibleLectureRooms(rooms, state, day, slot)
					if len(roomCandidates) == 0 {
						continue
					}
					teacher := teacherCandidates[0]
					room := roomCandidates[0]
					main.Set(day, slot, NewLecture(subj.ID, teacher.ID, room.ID))
					state.TryReserveTeacher(teacher.ID, day, slot)
					state.TryReserveRoom(room.ID, day, slot)
					state.AddWorkload(teacher.ID, 1)
					state.AddLecture(subj.ID)
					placed = true
					break dayLoop
				}
			}
			if !placed {
				warnings = append(warnings, Warning{
					Kind:      "UnfillableDemand",
					Subject:   subj,
					Remaining: demand - state.LecturesScheduled(subj.ID),
				})
				break
			}
		}
	}
	return warnings
}

// schedulePracticals places per-batch practicals into each batch grid,
// requiring consecutive-slot blocks drawn from the shape's precomputed
// practical_slot_groups. No cross-subject backtracking: a batch's
// unmet demand emits an UnfillableDemand warning.
func schedulePracticals(ctx context.Context, shape TimeTableShape, main *Grid, batchGrids map[BatchTag]*Grid, batches []BatchTag, subjects []Subject, teachers []Teacher, rooms []Room, dept Department, state *ConstraintState) []Warning {
	var warnings []Warning
	candidates := filterKind(subjects, SubjectPractical)
	sorted := sortSubjects(dept, candidates)
	minCapacity := batchSize(dept)

	for _, subj := range sorted {
		length := consecutiveSlots(subj)
		groups := shape.PracticalGroups(length)
		demand := practicalsPerWeek(subj)

		for _, batch := range batches {
			grid := batchGrids[batch]
			for state.PracticalsScheduled(subj.ID, batch) < demand {
				if shouldAbort(ctx) {
					return warnings
				}
				placed := tryPlacePractical(shape, main, grid, batch, subj, teachers, rooms, state, groups, minCapacity)
				if !placed {
					warnings = append(warnings, Warning{
						Kind:      "UnfillableDemand",
						Subject:   subj,
						Remaining: demand - state.PracticalsScheduled(subj.ID, batch),
						Batch:     batch,
					})
					break
				}
			}
		}
	}
	return warnings
}

func tryPlacePractical(shape TimeTableShape, main *Grid, grid *Grid, batch BatchTag, subj Subject, teachers []Teacher, rooms []Room, state *ConstraintState, groups [][]TimeSlot, minCapacity int) bool {
	for _, day := range shape.Days {
		for _, group := range groups {
			if !groupIsOpen(shape, main, grid, day, group) {
				continue
			}
			teacherCandidates := eligibleTeachersForPracticalGroup(subj, teachers, state, day, group)
			if len(teacherCandidates) == 0 {
				continue
			}
			roomCandidates := eligiblePracticalRooms(rooms, state, day, group, minCapacity)
			if len(roomCandidates) == 0 {
				continue
			}
			teacher := teacherCandidates[0]
			room := roomCandidates[0]
			cell := NewPractical(subj.ID, teacher.ID, room.ID, batch)
			for _, slot := range group {
				grid.Set(day, slot, cell)
				state.TryReserveTeacher(teacher.ID, day, slot)
				state.TryReserveRoom(room.ID, day, slot)
			}
			state.AddWorkload(teacher.ID, len(group))
			state.AddPractical(subj.ID, batch)
			return true
		}
	}
	return false
}

func groupIsOpen(shape TimeTableShape, main *Grid, grid *Grid, day Day, group []TimeSlot) bool {
	for _, slot := range group {
		if shape.IsBreak(slot) {
			return false
		}
		if !main.At(day, slot).IsEmpty() {
			return false
		}
		if !grid.At(day, slot).IsEmpty() {
			return false
		}
	}
	return true
}

func filterKind(subjects []Subject, kind SubjectKind) []Subject {
	var out []Subject
	for _, s := range subjects {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
