package scheduler

import "strings"

// FormattedView is the rendering-ready output of Combine: time_slot ->
// day -> rendered cell text.
type FormattedView map[string]map[Day]string

// Combine collapses one year's Main grid and batch grids into a single
// day x slot view. It is a pure function of the grids plus the
// code/number lookup tables derived from the snapshot.
func Combine(shape TimeTableShape, year Year, main *Grid, batches map[BatchTag]*Grid, batchOrder []BatchTag, codes CodeIndex) FormattedView {
	subjectCode := codes.SubjectCodes
	teacherCode := codes.TeacherCodes
	roomNumber := codes.RoomNumbers

	view := make(FormattedView, len(shape.TimeSlots))
	for _, slot := range shape.TimeSlots {
		row := make(map[Day]string, len(shape.Days))
		for _, day := range shape.Days {
			row[day] = renderCell(shape, year, main, batches, batchOrder, day, slot, subjectCode, teacherCode, roomNumber)
		}
		view[slot.Start] = row
	}
	return view
}

func renderCell(shape TimeTableShape, year Year, main *Grid, batches map[BatchTag]*Grid, batchOrder []BatchTag, day Day, slot TimeSlot, subjectCode, teacherCode, roomNumber map[ID]string) string {
	if shape.IsBreak(slot) {
		return "BREAK"
	}

	mainCell := main.At(day, slot)
	if mainCell.Kind == CellLecture {
		return formatEntry(string(year), "Main", subjectCode[mainCell.SubjectID], teacherCode[mainCell.TeacherID], roomNumber[mainCell.RoomID])
	}

	var entries []string
	for _, batch := range batchOrder {
		grid, ok := batches[batch]
		if !ok {
			continue
		}
		cell := grid.At(day, slot)
		if cell.Kind != CellPractical {
			continue
		}
		entries = append(entries, formatEntry(string(year), string(batch), subjectCode[cell.SubjectID], teacherCode[cell.TeacherID], roomNumber[cell.RoomID]))
	}
	if len(entries) == 0 {
		return "-"
	}
	return strings.Join(entries, "\n")
}

func formatEntry(year, cohort, subjectCode, teacherCode, roomNumber string) string {
	return year + " (" + cohort + "): " + subjectCode + " - " + teacherCode + " (" + roomNumber + ")"
}

// CodeIndex resolves internal IDs to the human-readable codes/numbers the
// wire contract surfaces for grid cells and warnings. Built once per
// Generate call and shared across every year's grids, since it never
// changes within one run.
type CodeIndex struct {
	SubjectCodes map[ID]string
	TeacherCodes map[ID]string
	RoomNumbers  map[ID]string
}

// NewCodeIndex builds a CodeIndex from a loaded snapshot.
func NewCodeIndex(snapshot Snapshot) CodeIndex {
	return CodeIndex{
		SubjectCodes: indexSubjectCodes(snapshot.Subjects),
		TeacherCodes: indexTeacherCodes(snapshot.Teachers),
		RoomNumbers:  indexRoomNumbers(snapshot.Rooms),
	}
}

func indexSubjectCodes(subjects []Subject) map[ID]string {
	out := make(map[ID]string, len(subjects))
	for _, s := range subjects {
		out[s.ID] = s.Code
	}
	return out
}

func indexTeacherCodes(teachers []Teacher) map[ID]string {
	out := make(map[ID]string, len(teachers))
	for _, t := range teachers {
		out[t.ID] = t.Code
	}
	return out
}

func indexRoomNumbers(rooms []Room) map[ID]string {
	out := make(map[ID]string, len(rooms))
	for _, r := range rooms {
		out[r.ID] = r.Number
	}
	return out
}
