package models

import "time"

// RoomKind enumerates the bookable space categories a timetable may assign.
type RoomKind string

const (
	RoomKindClassroom   RoomKind = "CLASSROOM"
	RoomKindLectureHall RoomKind = "LECTURE_HALL"
	RoomKindLab         RoomKind = "LAB"
	RoomKindComputerLab RoomKind = "COMPUTER_LAB"
)

// Room is a bookable teaching space.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Number    string    `db:"number" json:"number"`
	Kind      RoomKind  `db:"kind" json:"kind"`
	Capacity  int       `db:"capacity" json:"capacity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures supported filters for listing rooms.
type RoomFilter struct {
	Kind      RoomKind
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
