package http

import (
	"strings"
	"time"

	"github.com/example/reservation-scheduler/internal/application"
	"github.com/example/reservation-scheduler/internal/lifecycle"
	"github.com/example/reservation-scheduler/internal/recurrence"
)

type reservationRequest struct {
	RoomID       string     `json:"room_id" binding:"required"`
	TeacherID    string     `json:"teacher_id" binding:"required"`
	ActivityID   string     `json:"activity_id"`
	StartTime    *time.Time `json:"start_time" binding:"required"`
	EndTime      *time.Time `json:"end_time" binding:"required"`
	StateCode    string     `json:"state"`
	Observations string     `json:"observations"`
}

func (r reservationRequest) toInput() application.ReservationInput {
	input := application.ReservationInput{
		RoomID:       strings.TrimSpace(r.RoomID),
		TeacherID:    strings.TrimSpace(r.TeacherID),
		ActivityID:   strings.TrimSpace(r.ActivityID),
		StateCode:    lifecycle.State(strings.ToUpper(strings.TrimSpace(r.StateCode))),
		Observations: r.Observations,
	}
	if r.StartTime != nil {
		input.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		input.EndTime = *r.EndTime
	}
	return input
}

type reservationPatchRequest struct {
	RoomID       *string    `json:"room_id"`
	TeacherID    *string    `json:"teacher_id"`
	ActivityID   *string    `json:"activity_id"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Observations *string    `json:"observations"`
}

func (r reservationPatchRequest) toPatch() application.ReservationPatch {
	return application.ReservationPatch{
		RoomID:       trimmed(r.RoomID),
		TeacherID:    trimmed(r.TeacherID),
		ActivityID:   trimmed(r.ActivityID),
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Observations: r.Observations,
	}
}

type recurrenceRequest struct {
	Frequency      string     `json:"frequency" binding:"required"`
	Interval       int        `json:"interval" binding:"gte=0"`
	DaysOfWeek     []string   `json:"days_of_week"`
	Until          *time.Time `json:"until"`
	MaxOccurrences int        `json:"max_occurrences" binding:"gte=0"`
}

// toRule defaults a missing interval to 1. Frequency is checked by the
// recurrence engine.
func (r recurrenceRequest) toRule() (recurrence.Rule, error) {
	rule := recurrence.Rule{
		Frequency:      recurrence.Frequency(strings.ToUpper(strings.TrimSpace(r.Frequency))),
		Interval:       r.Interval,
		Until:          r.Until,
		MaxOccurrences: r.MaxOccurrences,
	}
	if rule.Interval == 0 {
		rule.Interval = 1
	}
	for _, name := range r.DaysOfWeek {
		day, err := recurrence.ParseWeekday(name)
		if err != nil {
			return recurrence.Rule{}, &application.ValidationError{FieldErrors: map[string]string{"recurrence.days_of_week": "invalid weekday " + name}}
		}
		rule.DaysOfWeek = append(rule.DaysOfWeek, day)
	}
	return rule, nil
}

type recurringReservationRequest struct {
	reservationRequest
	Recurrence *recurrenceRequest `json:"recurrence" binding:"required"`
}

type bulkCreateRequest struct {
	Reservations []reservationRequest `json:"reservations" binding:"required"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type transitionRequest struct {
	Reason string `json:"reason"`
}

type conflictQueryRequest struct {
	RoomID     string             `json:"room_id"`
	TeacherID  string             `json:"teacher_id"`
	StartTime  *time.Time         `json:"start_time" binding:"required"`
	EndTime    *time.Time         `json:"end_time" binding:"required"`
	ExcludeID  string             `json:"exclude_id"`
	Recurrence *recurrenceRequest `json:"recurrence"`
}

func (r conflictQueryRequest) toQuery() (application.ConflictQuery, error) {
	query := application.ConflictQuery{
		RoomID:    strings.TrimSpace(r.RoomID),
		TeacherID: strings.TrimSpace(r.TeacherID),
		StartTime: *r.StartTime,
		EndTime:   *r.EndTime,
		ExcludeID: strings.TrimSpace(r.ExcludeID),
	}
	if r.Recurrence != nil {
		rule, err := r.Recurrence.toRule()
		if err != nil {
			return application.ConflictQuery{}, err
		}
		query.Recurrence = &rule
	}
	return query, nil
}

// searchQuery binds the reservation search parameters. Times are RFC 3339.
type searchQuery struct {
	RoomID     string   `form:"room_id"`
	TeacherID  string   `form:"teacher_id"`
	ActivityID string   `form:"activity_id"`
	States     []string `form:"state"`
	From       string   `form:"from"`
	To         string   `form:"to"`
	EndsBy     string   `form:"ends_by"`
	ExcludeID  string   `form:"exclude_id"`
	Limit      int      `form:"limit" binding:"gte=0"`
	Offset     int      `form:"offset" binding:"gte=0"`
}

func (q searchQuery) toFilter() (application.ReservationFilter, error) {
	filter := application.ReservationFilter{
		RoomID:     strings.TrimSpace(q.RoomID),
		TeacherID:  strings.TrimSpace(q.TeacherID),
		ActivityID: strings.TrimSpace(q.ActivityID),
		ExcludeID:  strings.TrimSpace(q.ExcludeID),
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	for _, raw := range q.States {
		for _, code := range strings.Split(raw, ",") {
			if code = strings.TrimSpace(code); code != "" {
				filter.States = append(filter.States, lifecycle.State(strings.ToUpper(code)))
			}
		}
	}

	var err error
	if filter.From, err = optionalTime(q.From); err != nil {
		return filter, err
	}
	if filter.To, err = optionalTime(q.To); err != nil {
		return filter, err
	}
	if filter.EndsBy, err = optionalTime(q.EndsBy); err != nil {
		return filter, err
	}
	return filter, nil
}

type reservationDTO struct {
	ID           string `json:"id"`
	RoomID       string `json:"room_id"`
	TeacherID    string `json:"teacher_id"`
	ActivityID   string `json:"activity_id,omitempty"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	State        string `json:"state"`
	ApprovedBy   string `json:"approved_by,omitempty"`
	RejectedBy   string `json:"rejected_by,omitempty"`
	CanceledBy   string `json:"canceled_by,omitempty"`
	RejectReason string `json:"reject_reason,omitempty"`
	CancelReason string `json:"cancel_reason,omitempty"`
	Observations string `json:"observations,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type listReservationsResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

type bulkItemErrorDTO struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

type bulkCreateResponse struct {
	Requested    int                `json:"requested"`
	CreatedCount int                `json:"created_count"`
	Created      []reservationDTO   `json:"created"`
	Errors       []bulkItemErrorDTO `json:"errors"`
}

type bulkDeleteResponse struct {
	DeletedCount int      `json:"deleted_count"`
	IDs          []string `json:"ids"`
}

type conflictDTO struct {
	Kind        string         `json:"kind"`
	Reservation reservationDTO `json:"reservation"`
}

type recurrentConflictDTO struct {
	OccurrenceIndex int            `json:"occurrence_index"`
	Start           string         `json:"start_time"`
	End             string         `json:"end_time"`
	Kind            string         `json:"kind"`
	Reservation     reservationDTO `json:"reservation"`
}

type conflictReportResponse struct {
	Punctual  []conflictDTO          `json:"punctual"`
	Recurrent []recurrentConflictDTO `json:"recurrent"`
	Total     int                    `json:"total"`
}

type statisticsResponse struct {
	Total         int            `json:"total"`
	ByState       map[string]int `json:"by_state"`
	BookedMinutes int64          `json:"booked_minutes"`
}

func toReservationDTO(r application.Reservation) reservationDTO {
	return reservationDTO{
		ID:           r.ID,
		RoomID:       r.RoomID,
		TeacherID:    r.TeacherID,
		ActivityID:   r.ActivityID,
		StartTime:    formatTime(r.StartTime),
		EndTime:      formatTime(r.EndTime),
		State:        string(r.StateCode),
		ApprovedBy:   r.ApprovedBy,
		RejectedBy:   r.RejectedBy,
		CanceledBy:   r.CanceledBy,
		RejectReason: r.RejectReason,
		CancelReason: r.CancelReason,
		Observations: r.Observations,
		CreatedAt:    formatTime(r.CreatedAt),
		UpdatedAt:    formatTime(r.UpdatedAt),
	}
}

func toReservationDTOs(reservations []application.Reservation) []reservationDTO {
	out := make([]reservationDTO, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, toReservationDTO(r))
	}
	return out
}

func toBulkCreateResponse(result application.BulkCreateResult) bulkCreateResponse {
	resp := bulkCreateResponse{
		Requested:    result.Requested,
		CreatedCount: result.CreatedCount,
		Created:      toReservationDTOs(result.Created),
		Errors:       make([]bulkItemErrorDTO, 0, len(result.Errors)),
	}
	for _, item := range result.Errors {
		dto := bulkItemErrorDTO{Index: item.Index, Reason: item.Reason}
		if item.Err != nil {
			dto.Error = item.Err.Error()
		}
		resp.Errors = append(resp.Errors, dto)
	}
	return resp
}

func toConflictReportResponse(report application.ConflictReport) conflictReportResponse {
	resp := conflictReportResponse{
		Punctual:  make([]conflictDTO, 0, len(report.Punctual)),
		Recurrent: make([]recurrentConflictDTO, 0, len(report.Recurrent)),
		Total:     report.Total,
	}
	for _, c := range report.Punctual {
		resp.Punctual = append(resp.Punctual, conflictDTO{Kind: string(c.Kind), Reservation: toReservationDTO(c.Reservation)})
	}
	for _, c := range report.Recurrent {
		resp.Recurrent = append(resp.Recurrent, recurrentConflictDTO{
			OccurrenceIndex: c.OccurrenceIndex,
			Start:           formatTime(c.Start),
			End:             formatTime(c.End),
			Kind:            string(c.Kind),
			Reservation:     toReservationDTO(c.Reservation),
		})
	}
	return resp
}

func toStatisticsResponse(stats application.ReservationStatistics) statisticsResponse {
	byState := make(map[string]int, len(stats.ByState))
	for state, count := range stats.ByState {
		byState[string(state)] = count
	}
	return statisticsResponse{Total: stats.Total, ByState: byState, BookedMinutes: stats.BookedMinutes}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func optionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errInvalidQuery
	}
	return &t, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}
