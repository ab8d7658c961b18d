package ehr

import (
	"context"
	"time"
)

type Service struct {
	repo     Repository
	sessions *SessionStore
	newID    IDGenerator
	now      func() time.Time
}

func NewService(repo Repository, sessions *SessionStore) *Service {
	return &Service{repo: repo, sessions: sessions, newID: UUIDGenerator(), now: time.Now}
}

// WithClock sets the clock used for entry defaults and change times.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithIDGenerator replaces the entry id source for new sessions.
func (s *Service) WithIDGenerator(gen IDGenerator) *Service {
	s.newID = gen
	return s
}

func (s *Service) prepare(r *EHR, draft bool, actor string) error {
	*r = StripEntryIDs(*r)
	if r.Notation == "" {
		r.Notation = NotationFDI
	}
	if err := Validate(*r, draft); err != nil {
		return err
	}
	r.Status = StatusComplete
	if draft {
		r.Status = StatusDraft
	}
	r.UpdatedBy = actor
	return nil
}

func (s *Service) Create(ctx context.Context, r *EHR, draft bool, actor string) error {
	if err := s.prepare(r, draft, actor); err != nil {
		return err
	}
	return s.repo.Create(ctx, r)
}

// Update saves r over the stored record and logs each changed field
// against actor.
func (s *Service) Update(ctx context.Context, r *EHR, draft bool, actor string) ([]ChangeLog, error) {
	if err := s.prepare(r, draft, actor); err != nil {
		return nil, err
	}
	before, err := s.repo.GetByID(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	changes := Diff(*before, *r, actor, s.now())
	if err := s.repo.Update(ctx, r, changes); err != nil {
		return nil, err
	}
	return changes, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*EHR, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ListByPatient returns a patient's records; zero lists every record.
func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]EHR, error) {
	return s.repo.List(ctx, patientID)
}

// Timeline merges the change history of one record with the record itself.
func (s *Service) Timeline(ctx context.Context, id int64) ([]TimelineEvent, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	logs, err := s.repo.ListChanges(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return BuildTimeline(logs, []EHR{*rec}), nil
}

// PatientTimeline covers every record written for a patient.
func (s *Service) PatientTimeline(ctx context.Context, patientID int64) ([]TimelineEvent, error) {
	recs, err := s.repo.List(ctx, patientID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	logs := []ChangeLog{}
	if len(ids) > 0 {
		if logs, err = s.repo.ListChanges(ctx, ids); err != nil {
			return nil, err
		}
	}
	return BuildTimeline(logs, recs), nil
}

// -- Editing sessions --

// SessionView is what the editor page renders.
type SessionView struct {
	ID     string       `json:"id"`
	EHRID  int64        `json:"ehrId"`
	Record EHR          `json:"record"`
	Chart  []ChartTooth `json:"chart"`
}

func viewOf(sess *Session) SessionView {
	rec := sess.Editor.Record()
	return SessionView{ID: sess.ID, EHRID: sess.EHRID, Record: rec, Chart: Chart(rec.Teeth, rec.Notation)}
}

// OpenSession starts editing the stored record ehrID, or a blank record for
// the patient and appointment when ehrID is zero.
func (s *Service) OpenSession(ctx context.Context, ehrID, patientID, appointmentID int64, actor string) (SessionView, error) {
	base := EHR{PatientID: patientID, AppointmentID: appointmentID, Status: StatusDraft, Notation: NotationFDI}
	if ehrID != 0 {
		rec, err := s.repo.GetByID(ctx, ehrID)
		if err != nil {
			return SessionView{}, err
		}
		base = *rec
	}
	sess := s.sessions.Open(ehrID, actor, NewEditor(base, s.newID, s.now))
	return viewOf(sess), nil
}

func (s *Service) Session(id string) (SessionView, error) {
	var v SessionView
	err := s.sessions.Do(id, func(sess *Session) error {
		v = viewOf(sess)
		return nil
	})
	return v, err
}

// Edit applies fn to the session's editor and returns fn's result.
func (s *Service) Edit(id string, fn func(*Editor) (interface{}, error)) (interface{}, error) {
	var out interface{}
	err := s.sessions.Do(id, func(sess *Session) error {
		var err error
		out, err = fn(sess.Editor)
		return err
	})
	return out, err
}

// SaveSession validates and stores the session's record. The session stays
// open and later saves update the same record.
func (s *Service) SaveSession(ctx context.Context, id string, draft bool, actor string) (*EHR, error) {
	var saved *EHR
	err := s.sessions.Do(id, func(sess *Session) error {
		rec := sess.Editor.Payload()
		rec.ID = sess.EHRID
		if sess.EHRID == 0 {
			if err := s.Create(ctx, &rec, draft, actor); err != nil {
				return err
			}
			sess.EHRID = rec.ID
		} else if _, err := s.Update(ctx, &rec, draft, actor); err != nil {
			return err
		}
		saved = &rec
		return nil
	})
	return saved, err
}

func (s *Service) CloseSession(id string) error {
	return s.sessions.Close(id)
}
