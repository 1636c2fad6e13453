package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"crm-backend/internal/domain"
	"crm-backend/pkg/xerrors"
)

// In-memory doubles for the repository interfaces. They implement exactly
// the semantics the SQL layer promises: ownership scoping, unique
// (user_id, event_type) settings, exact-pair thread matching.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, xerrors.ErrEmailAlreadyInUse
		}
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	u.CreatedAt = time.Now()
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, xerrors.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (r *fakeUserRepo) ListUsers(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return xerrors.ErrUserNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) UpdateCompanyInfo(_ context.Context, id, companyName, companyLogo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.CompanyName = companyName
	u.CompanyLogo = companyLogo
	return nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return xerrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeContactRepo struct {
	mu       sync.Mutex
	contacts map[string]*domain.Contact
}

func newFakeContactRepo(contacts ...*domain.Contact) *fakeContactRepo {
	r := &fakeContactRepo{contacts: make(map[string]*domain.Contact)}
	for _, c := range contacts {
		r.contacts[c.ID] = c
	}
	return r
}

func (r *fakeContactRepo) CreateContact(_ context.Context, c *domain.Contact) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = fmt.Sprintf("contact-%d", len(r.contacts)+1)
	}
	c.CreatedAt = time.Now()
	r.contacts[c.ID] = c
	return c, nil
}

func (r *fakeContactRepo) GetContact(_ context.Context, id, ownerID string) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.CreatedBy != ownerID {
		return nil, xerrors.ErrContactNotFound
	}
	return c, nil
}

func (r *fakeContactRepo) ListContacts(_ context.Context, ownerID string, status *domain.ContactStatus, limit, offset int) ([]*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Contact
	for _, c := range r.contacts {
		if c.CreatedBy == ownerID && (status == nil || c.Status == *status) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeContactRepo) CountContacts(ctx context.Context, ownerID string, status *domain.ContactStatus) (int, error) {
	list, _ := r.ListContacts(ctx, ownerID, status, 0, 0)
	return len(list), nil
}

func (r *fakeContactRepo) UpdateContact(_ context.Context, c *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.contacts[c.ID]
	if !ok || existing.CreatedBy != c.CreatedBy {
		return xerrors.ErrContactNotFound
	}
	r.contacts[c.ID] = c
	return nil
}

func (r *fakeContactRepo) DeleteContact(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.CreatedBy != ownerID {
		return xerrors.ErrContactNotFound
	}
	delete(r.contacts, id)
	return nil
}

type fakeEstimateRepo struct {
	mu        sync.Mutex
	estimates map[string]*domain.Estimate
}

func newFakeEstimateRepo(estimates ...*domain.Estimate) *fakeEstimateRepo {
	r := &fakeEstimateRepo{estimates: make(map[string]*domain.Estimate)}
	for _, e := range estimates {
		r.estimates[e.ID] = e
	}
	return r
}

func (r *fakeEstimateRepo) CreateEstimate(_ context.Context, e *domain.Estimate) (*domain.Estimate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = fmt.Sprintf("estimate-%d", len(r.estimates)+1)
	}
	if e.Status == "" {
		e.Status = domain.EstimatePending
	}
	e.CreatedAt = time.Now()
	r.estimates[e.ID] = e
	return e, nil
}

func (r *fakeEstimateRepo) GetEstimate(_ context.Context, id, ownerID string) (*domain.Estimate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.estimates[id]
	if !ok || e.CreatedBy != ownerID {
		return nil, xerrors.ErrEstimateNotFound
	}
	return e, nil
}

func (r *fakeEstimateRepo) ListEstimates(_ context.Context, ownerID string, status *domain.EstimateStatus, limit, offset int) ([]*domain.Estimate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Estimate
	for _, e := range r.estimates {
		if e.CreatedBy == ownerID && (status == nil || e.Status == *status) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEstimateRepo) CountEstimates(ctx context.Context, ownerID string, status *domain.EstimateStatus) (int, error) {
	list, _ := r.ListEstimates(ctx, ownerID, status, 0, 0)
	return len(list), nil
}

func (r *fakeEstimateRepo) UpdateEstimate(_ context.Context, e *domain.Estimate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.estimates[e.ID]
	if !ok || existing.CreatedBy != e.CreatedBy {
		return xerrors.ErrEstimateNotFound
	}
	r.estimates[e.ID] = e
	return nil
}

func (r *fakeEstimateRepo) UpdateEstimateStatus(_ context.Context, id, ownerID string, status domain.EstimateStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.estimates[id]
	if !ok || e.CreatedBy != ownerID {
		return xerrors.ErrEstimateNotFound
	}
	e.Status = status
	return nil
}

func (r *fakeEstimateRepo) EstimateMetrics(_ context.Context, ownerID string, since time.Time) (*domain.EstimateMetrics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var m domain.EstimateMetrics
	for _, e := range r.estimates {
		if e.CreatedBy != ownerID || e.CreatedAt.Before(since) {
			continue
		}
		m.EstimatesCreated++
		m.TotalGrossBids += e.Price
		if e.Status == domain.EstimateAccepted {
			m.AcceptedEstimates++
		}
	}
	return &m, nil
}

func (r *fakeEstimateRepo) DeleteEstimate(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.estimates[id]
	if !ok || e.CreatedBy != ownerID {
		return xerrors.ErrEstimateNotFound
	}
	delete(r.estimates, id)
	return nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
}

func newFakeJobRepo(jobs ...*domain.Job) *fakeJobRepo {
	r := &fakeJobRepo{jobs: make(map[string]*domain.Job)}
	for _, j := range jobs {
		r.jobs[j.ID] = j
	}
	return r
}

func (r *fakeJobRepo) CreateJob(_ context.Context, j *domain.Job) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.ID == "" {
		j.ID = fmt.Sprintf("job-%d", len(r.jobs)+1)
	}
	if j.Status == "" {
		j.Status = domain.JobOpen
	}
	j.CreatedAt = time.Now()
	r.jobs[j.ID] = j
	return j, nil
}

func (r *fakeJobRepo) GetJob(_ context.Context, id, ownerID string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.CreatedBy != ownerID {
		return nil, xerrors.ErrNotFound
	}
	return j, nil
}

func (r *fakeJobRepo) ListJobs(_ context.Context, ownerID string, status *domain.JobStatus, limit, offset int) ([]*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Job
	for _, j := range r.jobs {
		if j.CreatedBy == ownerID && (status == nil || j.Status == *status) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) CountJobs(ctx context.Context, ownerID string, status *domain.JobStatus) (int, error) {
	list, _ := r.ListJobs(ctx, ownerID, status, 0, 0)
	return len(list), nil
}

func (r *fakeJobRepo) UpdateJob(_ context.Context, j *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.jobs[j.ID]
	if !ok || existing.CreatedBy != j.CreatedBy {
		return xerrors.ErrNotFound
	}
	r.jobs[j.ID] = j
	return nil
}

func (r *fakeJobRepo) JobMetrics(_ context.Context, ownerID string, since time.Time) (*domain.JobMetrics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var m domain.JobMetrics
	for _, j := range r.jobs {
		if j.CreatedBy != ownerID {
			continue
		}
		switch j.Status {
		case domain.JobCompleted:
			if !j.CreatedAt.Before(since) {
				m.CompletedJobsCount++
				m.GrossClosedDealsAmount += j.Price
			}
		case domain.JobOpen, domain.JobInProgress:
			m.OpenJobsCount++
		}
	}
	return &m, nil
}

func (r *fakeJobRepo) DeleteJob(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.CreatedBy != ownerID {
		return xerrors.ErrNotFound
	}
	delete(r.jobs, id)
	return nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*domain.Notification
	settings      map[string]*domain.NotificationSetting // userID|eventType
	failCreate    bool
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{settings: make(map[string]*domain.NotificationSetting)}
}

func settingKey(userID string, t domain.EventType) string {
	return userID + "|" + string(t)
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return nil, fmt.Errorf("insert failed")
	}
	if n.ID == "" {
		n.ID = fmt.Sprintf("notification-%d", len(r.notifications)+1)
	}
	n.CreatedAt = time.Now()
	r.notifications = append(r.notifications, n)
	return n, nil
}

func (r *fakeNotificationRepo) ListNotifications(_ context.Context, userID string, isRead *bool, limit, offset int) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID && (isRead == nil || n.IsRead == *isRead) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountNotifications(ctx context.Context, userID string, isRead *bool) (int, error) {
	list, _ := r.ListNotifications(ctx, userID, isRead, 0, 0)
	return len(list), nil
}

func (r *fakeNotificationRepo) MarkNotificationAsRead(_ context.Context, id, userID string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return n, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *fakeNotificationRepo) MarkAllNotificationsAsRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) DeleteNotification(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return xerrors.ErrNotFound
}

func (r *fakeNotificationRepo) ListSettings(_ context.Context, userID string) ([]*domain.NotificationSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.NotificationSetting
	for _, t := range domain.KnownEventTypes() {
		if s, ok := r.settings[settingKey(userID, t)]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) GetSetting(_ context.Context, userID string, t domain.EventType) (*domain.NotificationSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[settingKey(userID, t)]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return s, nil
}

func (r *fakeNotificationRepo) SeedDefaultSettings(_ context.Context, userID string, types []domain.EventType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range types {
		key := settingKey(userID, t)
		if _, ok := r.settings[key]; ok {
			continue
		}
		r.settings[key] = &domain.NotificationSetting{
			ID:           key,
			UserID:       userID,
			EventType:    t,
			EmailEnabled: domain.DefaultEmailEnabled,
			SMSEnabled:   domain.DefaultSMSEnabled,
			AppEnabled:   domain.DefaultAppEnabled,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
	}
	return nil
}

func (r *fakeNotificationRepo) UpsertSetting(_ context.Context, userID string, upd domain.SettingUpdate) (*domain.NotificationSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := settingKey(userID, upd.EventType)
	s, ok := r.settings[key]
	if !ok {
		s = &domain.NotificationSetting{
			ID:           key,
			UserID:       userID,
			EventType:    upd.EventType,
			EmailEnabled: domain.DefaultEmailEnabled,
			SMSEnabled:   domain.DefaultSMSEnabled,
			AppEnabled:   domain.DefaultAppEnabled,
			CreatedAt:    time.Now(),
		}
		r.settings[key] = s
	}
	if upd.EmailEnabled != nil {
		s.EmailEnabled = *upd.EmailEnabled
	}
	if upd.SMSEnabled != nil {
		s.SMSEnabled = *upd.SMSEnabled
	}
	if upd.AppEnabled != nil {
		s.AppEnabled = *upd.AppEnabled
	}
	s.UpdatedAt = time.Now()
	return s, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*domain.AIMessage
	seq      int
}

func newFakeMessageRepo() *fakeMessageRepo { return &fakeMessageRepo{} }

func (r *fakeMessageRepo) InsertMessage(_ context.Context, m *domain.AIMessage) (*domain.AIMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m.ID = fmt.Sprintf("message-%d", r.seq)
	// Strictly increasing timestamps keep ordering assertions deterministic.
	m.CreatedAt = time.Unix(int64(r.seq), 0)
	r.messages = append(r.messages, m)
	return m, nil
}

func sameKey(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeMessageRepo) ListThreadMessages(_ context.Context, userID, contactID string, estimateID *string) ([]*domain.AIMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AIMessage
	for _, m := range r.messages {
		if m.UserID != userID || m.ContactID == nil || *m.ContactID != contactID {
			continue
		}
		if !sameKey(m.EstimateID, estimateID) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMessageRepo) DistinctThreadKeys(_ context.Context, userID string) ([]domain.ThreadKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []domain.ThreadKey
	for _, m := range r.messages {
		if m.UserID != userID {
			continue
		}
		found := false
		for _, k := range keys {
			if sameKey(k.ContactID, m.ContactID) && sameKey(k.EstimateID, m.EstimateID) {
				found = true
				break
			}
		}
		if !found {
			keys = append(keys, domain.ThreadKey{ContactID: m.ContactID, EstimateID: m.EstimateID})
		}
	}
	return keys, nil
}

func (r *fakeMessageRepo) LatestThreadMessage(_ context.Context, userID string, key domain.ThreadKey) (*domain.AIMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.AIMessage
	for _, m := range r.messages {
		if m.UserID != userID || !sameKey(m.ContactID, key.ContactID) || !sameKey(m.EstimateID, key.EstimateID) {
			continue
		}
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) {
			latest = m
		}
	}
	return latest, nil
}

func (r *fakeMessageRepo) DeleteAllMessages(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keep []*domain.AIMessage
	for _, m := range r.messages {
		if m.UserID != userID {
			keep = append(keep, m)
		}
	}
	r.messages = keep
	return nil
}

type fakeCalendarRepo struct {
	mu     sync.Mutex
	events []*domain.CalendarEvent
}

func newFakeCalendarRepo() *fakeCalendarRepo { return &fakeCalendarRepo{} }

func (r *fakeCalendarRepo) CreateEvent(_ context.Context, e *domain.CalendarEvent) (*domain.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = fmt.Sprintf("event-%d", len(r.events)+1)
	}
	e.CreatedAt = time.Now()
	r.events = append(r.events, e)
	return e, nil
}

func (r *fakeCalendarRepo) ListEvents(_ context.Context, ownerID string, from, to *time.Time) ([]*domain.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.CalendarEvent
	for _, e := range r.events {
		if e.CreatedBy != ownerID {
			continue
		}
		if from != nil && e.StartTime.Before(*from) {
			continue
		}
		if to != nil && e.StartTime.After(*to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeCalendarRepo) GetEvent(_ context.Context, id, ownerID string) (*domain.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id && e.CreatedBy == ownerID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *fakeCalendarRepo) ListRelatedEvents(_ context.Context, ownerID, relatedID string, eventType domain.CalendarEventType) ([]*domain.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.CalendarEvent
	for _, e := range r.events {
		if e.CreatedBy != ownerID || e.EventType != eventType {
			continue
		}
		if e.RelatedID == nil || *e.RelatedID != relatedID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *fakeCalendarRepo) UpdateEvent(_ context.Context, e *domain.CalendarEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.events {
		if existing.ID == e.ID && existing.CreatedBy == e.CreatedBy {
			r.events[i] = e
			return nil
		}
	}
	return xerrors.ErrNotFound
}

func (r *fakeCalendarRepo) DeleteEvent(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.events {
		if e.ID == id && e.CreatedBy == ownerID {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return nil
		}
	}
	return xerrors.ErrNotFound
}

func (r *fakeCalendarRepo) Events() []*domain.CalendarEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.CalendarEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Channel doubles.

type fakeEmailSender struct {
	mu    sync.Mutex
	sent  []string // recipient addresses
	fails bool
}

func (f *fakeEmailSender) SendNotificationEmail(_ context.Context, to, _, _ string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return !f.fails
}

type fakeSMSSender struct {
	mu    sync.Mutex
	sent  []string // phone numbers
	fails bool
}

func (f *fakeSMSSender) SendNotificationSMS(_ context.Context, phone, _, _ string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, phone)
	return !f.fails
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []domain.WSEvent
}

func (f *fakeBroadcaster) Publish(e domain.WSEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeBroadcaster) Events() []domain.WSEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.WSEvent, len(f.events))
	copy(out, f.events)
	return out
}
