package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fieldservice/models"
	"fieldservice/services/scheduling"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAvailability struct {
	result *models.AvailabilityResult
	err    error
	got    models.AvailabilityQuery
}

func (s *stubAvailability) QueryAvailability(_ context.Context, q models.AvailabilityQuery) (*models.AvailabilityResult, error) {
	s.got = q
	return s.result, s.err
}

func (s *stubAvailability) ListPolicies() []models.PolicyView {
	return []models.PolicyView{{Name: "visit", IntervalMinutes: 60, Default: true}}
}

type stubBlackouts struct {
	created models.BlackoutInput
	deleted string
	filter  models.BlackoutFilter
	err     error
}

func (s *stubBlackouts) CreateBlackout(_ context.Context, in models.BlackoutInput) (*models.BlackoutWindow, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &models.BlackoutWindow{ID: "rec42"}, nil
}

func (s *stubBlackouts) ListBlackouts(_ context.Context, f models.BlackoutFilter) ([]models.BlackoutWindow, error) {
	s.filter = f
	return nil, s.err
}

func (s *stubBlackouts) DeleteBlackout(_ context.Context, id string) error {
	s.deleted = id
	return s.err
}

type stubBooking struct {
	req models.BookingRequest
	err error
}

func (s *stubBooking) BookAppointment(_ context.Context, req models.BookingRequest) (*models.BookingConfirmation, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingConfirmation{ServiceID: req.ServiceID, Date: req.Date, Slot: req.Slot, Policy: "visit",
		Appointment: time.Date(2024, 6, 11, 8, 0, 0, 0, time.UTC)}, nil
}

func (s *stubBooking) GetServiceAppointment(_ context.Context, id string) (*models.ServiceRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.ServiceRecord{ID: id}, nil
}

func schedErr(kind scheduling.Kind, msg string, cause error) error {
	return &scheduling.Error{Kind: kind, Message: msg, Err: cause}
}

func newRouter(a scheduling.AvailabilityService, b scheduling.BlackoutService, k scheduling.BookingService) *gin.Engine {
	r := gin.New()
	av, bl, ap := NewAvailabilityHandler(a), NewBlackoutHandler(b, time.UTC), NewAppointmentHandler(k)
	r.GET("/api/availability", av.GetAvailabilityHandler)
	r.GET("/api/policies", av.ListPoliciesHandler)
	r.GET("/api/admin/blackouts", bl.ListBlackoutsHandler)
	r.POST("/api/admin/blackouts", bl.CreateBlackoutHandler)
	r.DELETE("/api/admin/blackouts", bl.DeleteBlackoutHandler)
	r.DELETE("/api/admin/blackouts/:id", bl.DeleteBlackoutHandler)
	r.GET("/api/services/:id/appointment", ap.GetAppointmentHandler)
	r.PUT("/api/services/:id/appointment", ap.BookAppointmentHandler)
	return r
}

func serve(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetAvailability(t *testing.T) {
	avail := &stubAvailability{result: &models.AvailabilityResult{
		Date:           models.CalendarDate{Year: 2024, Month: time.June, Day: 11},
		Policy:         "visit",
		OccupiedSlots:  []models.TimeSlot{models.NewTimeSlot(8, 0)},
		AvailableSlots: []models.TimeSlot{models.NewTimeSlot(9, 0)},
		BlackoutCount:  1,
	}}
	r := newRouter(avail, &stubBlackouts{}, &stubBooking{})

	w := serve(r, http.MethodGet, "/api/availability?date=2024-06-11&policy=visit", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-06-11", avail.got.Date)
	assert.Equal(t, "visit", avail.got.Policy)
	assert.Contains(t, w.Body.String(), `"date":"2024-06-11"`)
	assert.Contains(t, w.Body.String(), `"occupiedSlots":["08:00"]`)
	assert.Contains(t, w.Body.String(), `"availableSlots":["09:00"]`)
}

func TestGetAvailabilityMissingDate(t *testing.T) {
	avail := &stubAvailability{err: schedErr(scheduling.KindInvalidDate, "date is required (YYYY-MM-DD)", nil)}
	r := newRouter(avail, &stubBlackouts{}, &stubBooking{})

	w := serve(r, http.MethodGet, "/api/availability?policy=visit", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"date is required (YYYY-MM-DD)"}`, w.Body.String())
	assert.Equal(t, "", avail.got.Date)
	assert.Equal(t, "visit", avail.got.Policy)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		kind   scheduling.Kind
		status int
	}{
		{scheduling.KindInvalidDate, http.StatusBadRequest},
		{scheduling.KindInvalidPolicy, http.StatusBadRequest},
		{scheduling.KindNotFound, http.StatusNotFound},
		{scheduling.KindSlotUnavailable, http.StatusConflict},
		{scheduling.KindUpstreamUnavailable, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			avail := &stubAvailability{err: schedErr(tt.kind, "boom", errors.New("cause"))}
			w := serve(newRouter(avail, &stubBlackouts{}, &stubBooking{}), http.MethodGet, "/api/availability?date=x", "")
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"error":"boom"`)
		})
	}
}

func TestUpstreamErrorCarriesDetails(t *testing.T) {
	avail := &stubAvailability{err: schedErr(scheduling.KindUpstreamUnavailable, "could not load appointments", errors.New("airtable: status 503"))}
	w := serve(newRouter(avail, &stubBlackouts{}, &stubBooking{}), http.MethodGet, "/api/availability?date=2024-06-11", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"could not load appointments","details":"airtable: status 503"}`, w.Body.String())
}

func TestNonSchedulingErrorIs500(t *testing.T) {
	avail := &stubAvailability{err: errors.New("surprise")}
	w := serve(newRouter(avail, &stubBlackouts{}, &stubBooking{}), http.MethodGet, "/api/availability?date=2024-06-11", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "surprise")
}

func TestListPolicies(t *testing.T) {
	w := serve(newRouter(&stubAvailability{}, &stubBlackouts{}, &stubBooking{}), http.MethodGet, "/api/policies", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"visit"`)
}

func TestCreateBlackout(t *testing.T) {
	bl := &stubBlackouts{}
	r := newRouter(&stubAvailability{}, bl, &stubBooking{})

	w := serve(r, http.MethodPost, "/api/admin/blackouts",
		`{"start":"2024-06-11T08:00:00Z","end":"2024-06-11T10:00:00Z","reason":"formación"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"rec42"`)
	assert.Equal(t, "formación", bl.created.Reason)

	w = serve(r, http.MethodPost, "/api/admin/blackouts", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBlackoutInvalidRange(t *testing.T) {
	bl := &stubBlackouts{err: schedErr(scheduling.KindInvalidRange, "end must be after start", nil)}
	w := serve(newRouter(&stubAvailability{}, bl, &stubBooking{}), http.MethodPost, "/api/admin/blackouts",
		`{"start":"2024-06-11T10:00:00Z","end":"2024-06-11T10:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"end must be after start"}`, w.Body.String())
}

func TestListBlackouts(t *testing.T) {
	bl := &stubBlackouts{}
	r := newRouter(&stubAvailability{}, bl, &stubBooking{})

	w := serve(r, http.MethodGet, "/api/admin/blackouts?from=2024-06-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"blackouts":[]}`, w.Body.String())
	assert.True(t, bl.filter.OverlapsFrom.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, bl.filter.OverlapsTo.IsZero())

	w = serve(r, http.MethodGet, "/api/admin/blackouts?to=2024-06-02T08:30", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bl.filter.OverlapsTo.Equal(time.Date(2024, 6, 2, 8, 30, 0, 0, time.UTC)))

	w = serve(r, http.MethodGet, "/api/admin/blackouts?to=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteBlackout(t *testing.T) {
	bl := &stubBlackouts{}
	r := newRouter(&stubAvailability{}, bl, &stubBooking{})

	w := serve(r, http.MethodDelete, "/api/admin/blackouts?id=rec1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"rec1"}`, w.Body.String())

	w = serve(r, http.MethodDelete, "/api/admin/blackouts/rec2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rec2", bl.deleted)

	bl.err = schedErr(scheduling.KindNotFound, "blackout window not found", nil)
	w = serve(r, http.MethodDelete, "/api/admin/blackouts/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookAppointment(t *testing.T) {
	bk := &stubBooking{}
	r := newRouter(&stubAvailability{}, &stubBlackouts{}, bk)

	w := serve(r, http.MethodPut, "/api/services/recA/appointment", `{"date":"2024-06-11","slot":"10:00"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "recA", bk.req.ServiceID)
	assert.Contains(t, w.Body.String(), `"id":"recA"`)
	assert.Contains(t, w.Body.String(), `"appointment":"2024-06-11T08:00:00Z"`)

	bk.err = schedErr(scheduling.KindSlotUnavailable, "the selected slot is no longer available", nil)
	w = serve(r, http.MethodPut, "/api/services/recA/appointment", `{"date":"2024-06-11","slot":"10:00"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetAppointment(t *testing.T) {
	bk := &stubBooking{}
	r := newRouter(&stubAvailability{}, &stubBlackouts{}, bk)

	w := serve(r, http.MethodGet, "/api/services/recA/appointment", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"recA"}`, w.Body.String())

	bk.err = schedErr(scheduling.KindNotFound, "service not found", nil)
	w = serve(r, http.MethodGet, "/api/services/recB/appointment", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
