// Package http exposes the reservation scheduler over a gin router.
//
// Every endpoint under /api/v1 expects an HS256 bearer token whose subject
// is the acting person's id. The `admin` claim unlocks approvals, rejections,
// completions and catalog writes.
//
//   - POST /reservations, GET/PUT/DELETE /reservations/{id}: single
//     reservations exchanging the `reservationDTO` payload defined in
//     reservation_dto.go.
//   - POST /reservations/{id}/approve|reject|cancel|complete: lifecycle moves.
//     Reject and cancel accept {"reason"}; the principal is recorded as actor.
//   - POST /reservations/bulk, /reservations/recurring: best-effort batches
//     answering with created reservations and per-item errors.
//   - POST /reservations/bulk-delete: all-or-nothing deletion by id.
//   - POST /reservations/conflicts: conflict diagnostics without writing.
//   - GET /reservations, /reservations/statistics: filtered search and
//     aggregates; GET /reservations/upcoming and /reservations/current.
//   - GET /rooms|teachers|activities/{id}/reservations: per entity listings,
//     future only unless include_past=true.
//   - GET /rooms/{id}/calendar.ics, /teachers/{id}/calendar.ics: iCalendar feeds.
//   - POST/PUT /rooms, /people, /activities: catalog maintenance.
//
// Errors share the `errorResponse` shape from responder.go.
package http
