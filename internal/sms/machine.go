package sms

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"geoguard-backend/internal/apperror"
	"geoguard-backend/internal/geo"
	"geoguard-backend/internal/model"
	"geoguard-backend/internal/parse"
	"geoguard-backend/internal/resolver"
	"geoguard-backend/internal/store"
	"geoguard-backend/internal/tracking"
)

// Repository is the subset of the store the state machine needs.
type Repository interface {
	store.Directory
	store.AttendanceLog
	store.SessionStore
}

// HeartbeatProcessor records a location report.
type HeartbeatProcessor interface {
	Process(ctx context.Context, hb tracking.Heartbeat) (tracking.Result, error)
}

// Options configures a StateMachine.
type Options struct {
	PublicURL   string
	SessionTTL  time.Duration
	Location    *time.Location
	CountryCode string
}

// Outcome is what a webhook call produced. Reply is the text sent back to the worker.
type Outcome struct {
	Status       Status   `json:"status"`
	SessionToken string   `json:"sessionId,omitempty"`
	IsInside     *bool    `json:"isInside,omitempty"`
	Distance     *float64 `json:"distance,omitempty"`
	Reply        string   `json:"-"`
}

// DayStatus is a worker's check-in state for the current local day.
type DayStatus struct {
	CheckedIn  bool `json:"checkedIn"`
	CheckedOut bool `json:"checkedOut"`
}

// LocationSubmission is a browser-captured position for a session link.
type LocationSubmission struct {
	Token    string
	Point    geo.Point
	Accuracy *float64
	Method   model.LocationMethod
}

// StateMachine drives the SMS check-in/check-out flow. Session creation and
// consumption for a phone are serialized; different phones proceed in parallel.
type StateMachine struct {
	repo      Repository
	processor HeartbeatProcessor
	resolver  resolver.Resolver
	sender    Sender
	opts      Options
	locks     *keyedMutex
	now       func() time.Time
}

// NewStateMachine wires the state machine.
func NewStateMachine(repo Repository, processor HeartbeatProcessor, res resolver.Resolver, sender Sender, opts Options) *StateMachine {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 10 * time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &StateMachine{
		repo:      repo,
		processor: processor,
		resolver:  res,
		sender:    sender,
		opts:      opts,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

// HandleCommand processes an inbound command SMS. Text that carries cell tower
// identifiers is treated as a cell report.
func (m *StateMachine) HandleCommand(ctx context.Context, from, text string) (Outcome, error) {
	if parse.LooksLikeCellReport(text) {
		return m.HandleCellReport(ctx, from, text)
	}

	phone := parse.NormalizePhone(from, m.opts.CountryCode)
	worker, out, err := m.lookup(ctx, phone)
	if worker == nil {
		return out, err
	}

	switch parse.ParseCommand(text) {
	case parse.KeywordCheckIn:
		return m.requestLocation(ctx, phone, *worker, model.CommandCheckIn)
	case parse.KeywordCheckOut:
		return m.requestLocation(ctx, phone, *worker, model.CommandCheckOut)
	case parse.KeywordStatus:
		day, err := m.TodayStatus(ctx, worker.ID)
		if err != nil {
			return m.fail(ctx, phone, err)
		}
		return m.respond(ctx, phone, Outcome{Status: StatusStatusSent, Reply: statusMessage(day)}), nil
	case parse.KeywordHelp:
		return m.respond(ctx, phone, Outcome{Status: StatusHelpSent, Reply: msgHelp}), nil
	default:
		return m.respond(ctx, phone, Outcome{Status: StatusInvalidCommand, Reply: msgInvalidCommand}), nil
	}
}

// HandleCellReport processes an SMS carrying cell tower identifiers. A phone
// holding an open session fulfils it; otherwise the report is a plain heartbeat.
func (m *StateMachine) HandleCellReport(ctx context.Context, from, text string) (Outcome, error) {
	phone := parse.NormalizePhone(from, m.opts.CountryCode)

	report, err := parse.ParseCellReport(text)
	if err != nil {
		log.Printf("[sms] invalid cell report from %s: %v", phone, err)
		return m.respond(ctx, phone, Outcome{Status: StatusInvalidFormat, Reply: msgInvalidFormat}), nil
	}

	worker, out, err := m.lookup(ctx, phone)
	if worker == nil {
		return out, err
	}

	unlock := m.locks.Lock(phone)
	defer unlock()

	loc, err := m.resolver.Resolve(ctx, resolver.CellQuery{
		CID: report.CID,
		LAC: report.LAC,
		MCC: report.MCC,
		MNC: report.MNC,
	})
	if err != nil {
		log.Printf("[sms] could not resolve cell report for %s: %v", phone, err)
		return m.respond(ctx, phone, Outcome{Status: StatusLocationUnresolved, Reply: msgUnresolved}), nil
	}

	now := m.now()
	cmd := model.CommandNone
	session, ok, err := m.repo.ActiveSessionForPhone(ctx, phone, now)
	if err != nil {
		return m.fail(ctx, phone, err)
	}
	if ok {
		consumed, err := m.repo.ConsumeSession(ctx, session.Token, now)
		switch {
		case err == nil:
			cmd = consumed.Command
		case errors.Is(err, apperror.ErrSessionExpired), errors.Is(err, apperror.ErrSessionConsumed):
			log.Printf("[sms] session for %s closed before cell report arrived; recording plain heartbeat", phone)
		default:
			return m.fail(ctx, phone, err)
		}
	}

	return m.record(ctx, phone, tracking.Heartbeat{
		WorkerID:   worker.ID,
		Coordinate: geo.Point{Lat: loc.Lat, Lng: loc.Lng},
		Timestamp:  now,
		Method:     model.MethodCell,
		Accuracy:   loc.Accuracy,
		Command:    cmd,
	})
}

// SubmitLocation fulfils a session with a browser-captured position. Unknown,
// expired and used tokens are rejected without touching attendance.
func (m *StateMachine) SubmitLocation(ctx context.Context, sub LocationSubmission) (Outcome, error) {
	token, err := uuid.Parse(sub.Token)
	if err != nil {
		return Outcome{Status: StatusSessionInvalid}, apperror.ErrSessionNotFound
	}
	if err := sub.Point.Validate(); err != nil {
		return Outcome{Status: StatusError}, apperror.Validation("Invalid coordinates")
	}
	if sub.Method == "" {
		sub.Method = model.MethodGPS
	}
	if !sub.Method.Valid() {
		return Outcome{Status: StatusError}, apperror.Validation("Invalid location method")
	}

	now := m.now()
	session, err := m.repo.ConsumeSession(ctx, token, now)
	if err != nil {
		out := Outcome{Status: sessionStatus(err)}
		if session.Phone != "" {
			out.Reply = sessionRejectedMessage(out.Status)
			out = m.respond(ctx, session.Phone, out)
		}
		return out, err
	}

	unlock := m.locks.Lock(session.Phone)
	defer unlock()

	worker, err := m.repo.FindWorkerByPhone(ctx, session.Phone)
	if err != nil {
		return Outcome{Status: StatusError}, err
	}

	return m.record(ctx, session.Phone, tracking.Heartbeat{
		WorkerID:   worker.ID,
		Coordinate: sub.Point,
		Timestamp:  now,
		Method:     sub.Method,
		Accuracy:   sub.Accuracy,
		Command:    session.Command,
	})
}

// TodayStatus derives the worker's check-in state from today's log entries in
// the configured timezone.
func (m *StateMachine) TodayStatus(ctx context.Context, workerID uuid.UUID) (DayStatus, error) {
	local := m.now().In(m.opts.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, m.opts.Location)
	end := start.AddDate(0, 0, 1)

	cmds, err := m.repo.CommandsBetween(ctx, workerID, start, end)
	if err != nil {
		return DayStatus{}, err
	}

	var day DayStatus
	for _, c := range cmds {
		switch c {
		case model.CommandCheckIn:
			day.CheckedIn = true
		case model.CommandCheckOut:
			day.CheckedOut = true
		}
	}
	return day, nil
}

func (m *StateMachine) requestLocation(ctx context.Context, phone string, worker model.Worker, cmd model.Command) (Outcome, error) {
	if worker.SiteID == nil {
		return m.respond(ctx, phone, Outcome{Status: StatusNotAssigned, Reply: msgNotAssigned}), nil
	}

	unlock := m.locks.Lock(phone)
	defer unlock()

	day, err := m.TodayStatus(ctx, worker.ID)
	if err != nil {
		return m.fail(ctx, phone, err)
	}
	switch {
	case cmd == model.CommandCheckIn && day.CheckedIn:
		return m.respond(ctx, phone, Outcome{Status: StatusAlreadyCheckedIn, Reply: msgAlreadyCheckedIn}), nil
	case cmd == model.CommandCheckOut && !day.CheckedIn:
		return m.respond(ctx, phone, Outcome{Status: StatusNotCheckedIn, Reply: msgNotCheckedIn}), nil
	case cmd == model.CommandCheckOut && day.CheckedOut:
		return m.respond(ctx, phone, Outcome{Status: StatusAlreadyCheckedOut, Reply: msgAlreadyCheckedOut}), nil
	}

	now := m.now()
	session := &model.SmsSession{
		Token:     uuid.New(),
		Phone:     phone,
		Command:   cmd,
		State:     model.SessionRequested,
		CreatedAt: now,
		ExpiresAt: now.Add(m.opts.SessionTTL),
	}
	if err := m.repo.CreateSession(ctx, session); err != nil {
		return m.fail(ctx, phone, err)
	}

	link := fmt.Sprintf("%s/location?session=%s", m.opts.PublicURL, session.Token)
	return m.respond(ctx, phone, Outcome{
		Status:       StatusLocationRequested,
		SessionToken: session.Token.String(),
		Reply:        locationRequestMessage(cmd, link, m.opts.SessionTTL),
	}), nil
}

func (m *StateMachine) record(ctx context.Context, phone string, hb tracking.Heartbeat) (Outcome, error) {
	res, err := m.processor.Process(ctx, hb)
	if err != nil {
		return m.fail(ctx, phone, err)
	}
	inside, distance := res.IsInside, res.Distance
	return m.respond(ctx, phone, Outcome{
		Status:   StatusAttendanceRecorded,
		IsInside: &inside,
		Distance: &distance,
		Reply:    recordedMessage(hb.Command, res.IsInside, res.Distance),
	}), nil
}

// lookup finds the active worker for phone. A nil worker means the sender was
// already answered and out/err should be returned as is.
func (m *StateMachine) lookup(ctx context.Context, phone string) (*model.Worker, Outcome, error) {
	notRegistered := Outcome{Status: StatusNotRegistered, Reply: msgNotRegistered}
	if phone == "" {
		return nil, notRegistered, nil
	}

	worker, err := m.repo.FindWorkerByPhone(ctx, phone)
	if errors.Is(err, apperror.ErrWorkerNotFound) || (err == nil && !worker.IsActive) {
		return nil, m.respond(ctx, phone, notRegistered), nil
	}
	if err != nil {
		out, err := m.fail(ctx, phone, err)
		return nil, out, err
	}
	return &worker, Outcome{}, nil
}

func (m *StateMachine) fail(ctx context.Context, phone string, err error) (Outcome, error) {
	log.Printf("[sms] request from %s failed: %v", phone, err)
	return m.respond(ctx, phone, Outcome{Status: StatusError, Reply: msgError}), err
}

// respond sends out.Reply to phone. Delivery failures are logged only.
func (m *StateMachine) respond(ctx context.Context, phone string, out Outcome) Outcome {
	if phone == "" || out.Reply == "" {
		return out
	}
	if err := m.sender.Send(ctx, phone, out.Reply); err != nil {
		log.Printf("[sms] failed to send reply to %s: %v", phone, err)
	}
	return out
}

func sessionStatus(err error) Status {
	switch {
	case errors.Is(err, apperror.ErrSessionExpired):
		return StatusSessionExpired
	case errors.Is(err, apperror.ErrSessionConsumed):
		return StatusSessionUsed
	case errors.Is(err, apperror.ErrSessionNotFound):
		return StatusSessionInvalid
	}
	return StatusError
}
