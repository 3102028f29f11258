// File: database/repository/records/airtable.go
package recordsRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldservice/database/airtable"
	"fieldservice/models"

	"go.uber.org/zap"
)

// AirtableTables names the tables and fields the store reads and writes.
type AirtableTables struct {
	Services         string
	AppointmentField string
	CustomerField    string
	StatusField      string
	Blackouts        string
	StartField       string
	EndField         string
	ReasonField      string
}

// DefaultAirtableTables matches the production base layout.
func DefaultAirtableTables() AirtableTables {
	return AirtableTables{
		Services:         "Servicios",
		AppointmentField: "Cita técnico",
		CustomerField:    "Cliente",
		StatusField:      "Estado",
		Blackouts:        "Bloqueos",
		StartField:       "Inicio",
		EndField:         "Fin",
		ReasonField:      "Motivo",
	}
}

type airtableStore struct {
	client *airtable.Client
	tables AirtableTables
	logger *zap.Logger
}

// NewAirtableStore builds a RecordStore on top of an Airtable base.
func NewAirtableStore(client *airtable.Client, tables AirtableTables, logger *zap.Logger) RecordStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &airtableStore{client: client, tables: tables, logger: logger}
}

func (s *airtableStore) ListAppointments(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	field := fieldRef(s.tables.AppointmentField)
	formula := fmt.Sprintf("AND(%s != '', NOT(IS_BEFORE(%s, '%s')), IS_BEFORE(%s, '%s'))",
		field, field, formulaTime(from), field, formulaTime(to))

	recs, err := s.client.List(ctx, s.tables.Services, airtable.ListParams{
		Formula: formula,
		Fields:  []string{s.tables.AppointmentField},
	})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	// An unreadable appointment would show its slot as free, so it fails the whole listing.
	appointments := make([]models.Appointment, 0, len(recs))
	for _, rec := range recs {
		at, ok, err := parseTimeField(rec, s.tables.AppointmentField)
		if err != nil {
			return nil, fmt.Errorf("list appointments: record %s: %w", rec.ID, err)
		}
		if !ok {
			continue
		}
		appointments = append(appointments, models.Appointment{ServiceID: rec.ID, At: at})
	}
	return appointments, nil
}

func (s *airtableStore) GetService(ctx context.Context, id string) (*models.ServiceRecord, error) {
	rec, err := s.client.Get(ctx, s.tables.Services, id)
	if err != nil {
		return nil, mapAirtableError("get service", err)
	}
	svc := &models.ServiceRecord{
		ID:       rec.ID,
		Customer: stringField(*rec, s.tables.CustomerField),
		Status:   stringField(*rec, s.tables.StatusField),
	}
	if at, ok := s.timeField(*rec, s.tables.AppointmentField); ok {
		svc.AppointmentAt = &at
	}
	return svc, nil
}

func (s *airtableStore) SetAppointment(ctx context.Context, id string, at time.Time) error {
	_, err := s.client.Update(ctx, s.tables.Services, id, map[string]interface{}{
		s.tables.AppointmentField: at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return mapAirtableError("set appointment", err)
	}
	return nil
}

func (s *airtableStore) ListBlackouts(ctx context.Context, filter models.BlackoutFilter) ([]models.BlackoutWindow, error) {
	start, end := fieldRef(s.tables.StartField), fieldRef(s.tables.EndField)

	var terms []string
	if !filter.OverlapsFrom.IsZero() {
		terms = append(terms, fmt.Sprintf("IS_AFTER(%s, '%s')", end, formulaTime(filter.OverlapsFrom)))
	}
	if !filter.OverlapsTo.IsZero() {
		terms = append(terms, fmt.Sprintf("IS_BEFORE(%s, '%s')", start, formulaTime(filter.OverlapsTo)))
	}
	if !filter.EndedBefore.IsZero() {
		terms = append(terms, fmt.Sprintf("NOT(IS_AFTER(%s, '%s'))", end, formulaTime(filter.EndedBefore)))
	}
	params := airtable.ListParams{SortBy: s.tables.StartField, SortDesc: true}
	if len(terms) > 0 {
		params.Formula = "AND(" + strings.Join(terms, ", ") + ")"
	}

	recs, err := s.client.List(ctx, s.tables.Blackouts, params)
	if err != nil {
		return nil, fmt.Errorf("list blackouts: %w", err)
	}

	windows := make([]models.BlackoutWindow, 0, len(recs))
	for _, rec := range recs {
		from, okStart := s.timeField(rec, s.tables.StartField)
		to, okEnd := s.timeField(rec, s.tables.EndField)
		if !okStart || !okEnd {
			continue
		}
		w := models.BlackoutWindow{
			ID:     rec.ID,
			Start:  from,
			End:    to,
			Reason: stringField(rec, s.tables.ReasonField),
		}
		if created, err := time.Parse(time.RFC3339Nano, rec.CreatedTime); err == nil {
			w.CreatedAt = created
		}
		windows = append(windows, w)
	}
	return windows, nil
}

func (s *airtableStore) CreateBlackout(ctx context.Context, w models.BlackoutWindow) (string, error) {
	fields := map[string]interface{}{
		s.tables.StartField: w.Start.UTC().Format(time.RFC3339),
		s.tables.EndField:   w.End.UTC().Format(time.RFC3339),
	}
	if w.Reason != "" {
		fields[s.tables.ReasonField] = w.Reason
	}
	rec, err := s.client.Create(ctx, s.tables.Blackouts, fields)
	if err != nil {
		return "", fmt.Errorf("create blackout: %w", err)
	}
	return rec.ID, nil
}

func (s *airtableStore) DeleteBlackout(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, s.tables.Blackouts, id); err != nil {
		return mapAirtableError("delete blackout", err)
	}
	return nil
}

func (s *airtableStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, s.tables.Blackouts)
}

// timeField reads an ISO-8601 date-time field. Empty and malformed values are skipped.
func (s *airtableStore) timeField(rec airtable.Record, name string) (time.Time, bool) {
	t, ok, err := parseTimeField(rec, name)
	if err != nil {
		s.logger.Warn("airtable: skipping malformed date-time field",
			zap.String("record", rec.ID), zap.String("field", name), zap.Error(err))
		return time.Time{}, false
	}
	return t, ok
}

// parseTimeField reports ok=false for an empty field and an error for a malformed one.
func parseTimeField(rec airtable.Record, name string) (time.Time, bool, error) {
	raw := stringField(rec, name)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("malformed %s value %q: %w", name, raw, err)
	}
	return t, true, nil
}

func stringField(rec airtable.Record, name string) string {
	if v, ok := rec.Fields[name].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func fieldRef(name string) string {
	return "{" + name + "}"
}

func formulaTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func mapAirtableError(op string, err error) error {
	if errors.Is(err, airtable.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
