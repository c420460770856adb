package postgres

import (
	"time"

	"github.com/example/reservation-scheduler/internal/persistence"
)

type reservationRow struct {
	ID           string    `gorm:"column:id;primaryKey"`
	RoomID       string    `gorm:"column:room_id"`
	TeacherID    string    `gorm:"column:teacher_id"`
	ActivityID   *string   `gorm:"column:activity_id"`
	StartAt      time.Time `gorm:"column:start_at"`
	EndAt        time.Time `gorm:"column:end_at"`
	StateCode    string    `gorm:"column:state_code"`
	ApprovedBy   *string   `gorm:"column:approved_by"`
	RejectedBy   *string   `gorm:"column:rejected_by"`
	CanceledBy   *string   `gorm:"column:canceled_by"`
	RejectReason *string   `gorm:"column:reject_reason"`
	CancelReason *string   `gorm:"column:cancel_reason"`
	Observations *string   `gorm:"column:observations"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (reservationRow) TableName() string { return "reservations" }

func newReservationRow(r persistence.Reservation) reservationRow {
	return reservationRow{
		ID:           r.ID,
		RoomID:       r.RoomID,
		TeacherID:    r.TeacherID,
		ActivityID:   r.ActivityID,
		StartAt:      r.StartTime.UTC(),
		EndAt:        r.EndTime.UTC(),
		StateCode:    r.StateCode,
		ApprovedBy:   r.ApprovedBy,
		RejectedBy:   r.RejectedBy,
		CanceledBy:   r.CanceledBy,
		RejectReason: r.RejectReason,
		CancelReason: r.CancelReason,
		Observations: r.Observations,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func (row reservationRow) model() persistence.Reservation {
	return persistence.Reservation{
		ID:           row.ID,
		RoomID:       row.RoomID,
		TeacherID:    row.TeacherID,
		ActivityID:   row.ActivityID,
		StartTime:    row.StartAt.UTC(),
		EndTime:      row.EndAt.UTC(),
		StateCode:    row.StateCode,
		ApprovedBy:   row.ApprovedBy,
		RejectedBy:   row.RejectedBy,
		CanceledBy:   row.CanceledBy,
		RejectReason: row.RejectReason,
		CancelReason: row.CancelReason,
		Observations: row.Observations,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

type roomRow struct {
	ID     string `gorm:"column:id;primaryKey"`
	Name   string `gorm:"column:name"`
	Active bool   `gorm:"column:active"`
}

func (roomRow) TableName() string { return "rooms" }

type personRow struct {
	ID          string `gorm:"column:id;primaryKey"`
	DisplayName string `gorm:"column:display_name"`
	Active      bool   `gorm:"column:active"`
	Teaching    bool   `gorm:"column:teaching"`
}

func (personRow) TableName() string { return "people" }

type activityRow struct {
	ID     string `gorm:"column:id;primaryKey"`
	Name   string `gorm:"column:name"`
	Active bool   `gorm:"column:active"`
}

func (activityRow) TableName() string { return "activities" }

type stateRow struct {
	Code    string `gorm:"column:code;primaryKey"`
	Name    string `gorm:"column:name"`
	Initial bool   `gorm:"column:initial"`
}

func (stateRow) TableName() string { return "reservation_states" }

func (row stateRow) model() persistence.ReservationState {
	return persistence.ReservationState{Code: row.Code, Name: row.Name, Initial: row.Initial}
}
