package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ngolib/internal/payment"
	"ngolib/internal/session"
	"ngolib/internal/utils"
	"ngolib/pkg/types"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type resetRow struct {
	userID    int64
	expiresAt time.Time
}

type contactRow struct {
	id        string
	senderID  *int64
	recipient string
	subject   string
	body      string
	delivered bool
}

// memStore satisfies every store interface the server depends on.
type memStore struct {
	mu sync.Mutex

	users    map[int64]*types.User
	nextUser int64

	ngos     []*types.NGO
	contacts map[int64]*types.NGOContact

	tags     []*types.Tag
	ngoPairs []*types.TagPair
	oppPairs []*types.TagPair

	opps []*types.Opportunity

	donations     []*types.Donation
	subscriptions map[int64]*types.Subscription
	follows       map[[2]int64]bool

	admins  map[int64]int64
	actions []*types.AdminAction

	resets      map[string]resetRow
	contactMsgs []*contactRow
	images      map[int64][]byte
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[int64]*types.User),
		contacts:      make(map[int64]*types.NGOContact),
		subscriptions: make(map[int64]*types.Subscription),
		follows:       make(map[[2]int64]bool),
		admins:        make(map[int64]int64),
		resets:        make(map[string]resetRow),
		images:        make(map[int64][]byte),
	}
}

func (m *memStore) User(_ context.Context, userID int64) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UserByEmail(_ context.Context, email string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, types.ErrUserNotFound
}

func (m *memStore) Create(_ context.Context, user *types.User, ngo *types.NewNGO) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return 0, types.ErrEmailInUse
		}
	}

	m.nextUser++
	user.ID = m.nextUser
	cp := *user
	m.users[user.ID] = &cp

	if ngo != nil {
		n := &types.NGO{
			ID:     int64(len(m.ngos) + 1),
			UserID: user.ID,
			Name:   ngo.Name,
		}
		if ngo.ContactEmail != "" {
			n.ContactEmail = utils.StringPtr(ngo.ContactEmail)
		}
		m.ngos = append(m.ngos, n)
		m.contacts[user.ID] = &types.NGOContact{NGOID: n.ID, ContactEmail: n.ContactEmail}
	}

	return user.ID, nil
}

func (m *memStore) UpdatePassword(_ context.Context, userID int64, pwHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return types.ErrUserNotFound
	}
	u.PwHash = pwHash
	return nil
}

func (m *memStore) AllNGOs(context.Context) ([]*types.NGO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.NGO, 0, len(m.ngos))
	for _, n := range m.ngos {
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) DisplayInfo(_ context.Context, ngoID int64) (*types.NGO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.ngos {
		if n.ID == ngoID {
			cp := *n
			return &cp, nil
		}
	}
	return nil, types.ErrNGONotFound
}

func (m *memStore) ContactByOwner(_ context.Context, userID int64) (*types.NGOContact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contacts[userID]
	if !ok {
		return nil, types.ErrNGONotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) PendingVerifications(context.Context) ([]*types.NGO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.NGO, 0)
	for _, n := range m.ngos {
		if !n.Verified {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) SetVerified(_ context.Context, ngoID int64, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.ngos {
		if n.ID == ngoID {
			n.Verified = types.Bit(verified)
			return nil
		}
	}
	return types.ErrNGONotFound
}

func (m *memStore) AllTags(context.Context) ([]*types.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*types.Tag(nil), m.tags...), nil
}

func (m *memStore) NGOPairs(_ context.Context, ngoIDs ...int64) ([]*types.TagPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(ngoIDs) == 0 {
		return append([]*types.TagPair(nil), m.ngoPairs...), nil
	}

	out := make([]*types.TagPair, 0)
	for _, p := range m.ngoPairs {
		for _, id := range ngoIDs {
			if p.EntityID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (m *memStore) OpportunityPairs(context.Context) ([]*types.TagPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*types.TagPair(nil), m.oppPairs...), nil
}

func (m *memStore) CreateTag(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tags {
		if t.Tag == name {
			return 0, types.ErrDuplicateTag
		}
	}

	id := int64(len(m.tags) + 1)
	m.tags = append(m.tags, &types.Tag{ID: id, Tag: name})
	return id, nil
}

func (m *memStore) DeleteTag(_ context.Context, tagID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.ngoPairs {
		if p.TagID == tagID {
			return types.ErrTagInUse
		}
	}

	for i, t := range m.tags {
		if t.ID == tagID {
			m.tags = append(m.tags[:i], m.tags[i+1:]...)
			return nil
		}
	}
	return types.ErrTagNotFound
}

func (m *memStore) AllOpportunities(context.Context) ([]*types.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.Opportunity, 0, len(m.opps))
	for _, o := range m.opps {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) CreateOpportunity(_ context.Context, opp *types.Opportunity, tagIDs []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	opp.ID = int64(len(m.opps) + 1)
	cp := *opp
	m.opps = append(m.opps, &cp)

	for _, id := range tagIDs {
		m.oppPairs = append(m.oppPairs, &types.TagPair{EntityID: opp.ID, TagID: id})
	}
	return opp.ID, nil
}

func (m *memStore) CreateDonation(_ context.Context, userID, ngoID int64, amount types.Amount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for _, n := range m.ngos {
		if n.ID == ngoID {
			found = true
		}
	}
	if !found {
		return types.ErrNGONotFound
	}

	m.donations = append(m.donations, &types.Donation{UserID: userID, NGOID: ngoID, Amount: amount})
	return nil
}

func (m *memStore) CancelSubscription(_ context.Context, userID, ngoID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, s := range m.subscriptions {
		if s.UserID == userID && s.NGOID == ngoID {
			s.Status = types.SubscriptionCanceled
			n++
		}
	}
	return n, nil
}

func (m *memStore) UpdateSubscriptionStatus(_ context.Context, id int64, status types.SubscriptionStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.subscriptions[id]
	if !ok {
		return 0, types.ErrSubscriptionNotFound
	}
	s.Status = status
	return s.NGOID, nil
}

func (m *memStore) Follow(_ context.Context, userID, ngoID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.ngos {
		if n.ID == ngoID {
			m.follows[[2]int64{userID, ngoID}] = true
			return nil
		}
	}
	return types.ErrNGONotFound
}

func (m *memStore) Unfollow(_ context.Context, userID, ngoID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := [2]int64{userID, ngoID}
	if !m.follows[key] {
		return 0, nil
	}
	delete(m.follows, key)
	return 1, nil
}

func (m *memStore) AdminID(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.admins[userID]
	if !ok {
		return 0, types.ErrAdminNotFound
	}
	return id, nil
}

func (m *memStore) LogAction(_ context.Context, action *types.AdminAction) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	action.ID = int64(len(m.actions) + 1)
	m.actions = append(m.actions, action)
	return action.ID, nil
}

func (m *memStore) StoreToken(_ context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for h, row := range m.resets {
		if row.userID == userID {
			delete(m.resets, h)
		}
	}
	m.resets[tokenHash] = resetRow{userID: userID, expiresAt: expiresAt}
	return nil
}

func (m *memStore) UserByToken(_ context.Context, tokenHash string, now time.Time) (*types.PasswordReset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.resets[tokenHash]
	if !ok || !row.expiresAt.After(now) {
		return nil, types.ErrResetTokenInvalid
	}

	u, ok := m.users[row.userID]
	if !ok {
		return nil, types.ErrResetTokenInvalid
	}

	return &types.PasswordReset{UserID: u.ID, Email: u.Email, ExpiresAt: row.expiresAt}, nil
}

func (m *memStore) TokenByUser(_ context.Context, userID int64, now time.Time) (*types.PasswordReset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for h, row := range m.resets {
		if row.userID != userID || !row.expiresAt.After(now) {
			continue
		}
		u, ok := m.users[userID]
		if !ok {
			break
		}
		return &types.PasswordReset{UserID: u.ID, Email: u.Email, TokenHash: h, ExpiresAt: row.expiresAt}, nil
	}

	return nil, types.ErrResetTokenInvalid
}

func (m *memStore) ConsumeToken(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for h, row := range m.resets {
		if row.userID == userID {
			delete(m.resets, h)
		}
	}
	return nil
}

func (m *memStore) RecordContactMessage(_ context.Context, senderID *int64, recipient, subject, body string, delivered bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := &contactRow{
		id:        utils.NanoID(),
		senderID:  senderID,
		recipient: recipient,
		subject:   subject,
		body:      body,
		delivered: delivered,
	}
	m.contactMsgs = append(m.contactMsgs, row)
	return row.id, nil
}

func (m *memStore) MarkDelivered(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.contactMsgs {
		if row.id == id {
			row.delivered = true
		}
	}
	return nil
}

func (m *memStore) StoreImage(_ context.Context, userID int64, image []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return 0, nil
	}
	m.images[userID] = image
	return 1, nil
}

func (m *memStore) Image(_ context.Context, userID int64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	img, ok := m.images[userID]
	if !ok {
		return nil, types.ErrImageNotFound
	}
	return img, nil
}

// addUser inserts a user with the given password and role.
func (m *memStore) addUser(t *testing.T, email, password string, role types.Role) *types.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := &types.User{
		Username: utils.StringPtr(strings.Split(email, "@")[0]),
		Email:    email,
		PwHash:   string(hash),
		Type:     string(role),
	}
	_, err = m.Create(context.Background(), u, nil)
	require.NoError(t, err)

	return u
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakePayments struct {
	charged []types.Amount
	err     error
}

func (f *fakePayments) Charge(_ context.Context, _, _ int64, amount types.Amount) (*payment.Intent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.charged = append(f.charged, amount)
	return &payment.Intent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

type fakeProfiles struct {
	profiles map[int64]any
}

func (f *fakeProfiles) Build(_ context.Context, userID int64) (any, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return p, nil
}

type testEnv struct {
	service  *Service
	handler  http.Handler
	store    *memStore
	mailer   *fakeMailer
	profiles *fakeProfiles
	hook     *test.Hook
}

func newTestEnv(t *testing.T, opts ...func(*Deps)) *testEnv {
	t.Helper()

	logger, hook := test.NewNullLogger()

	cookies := sessions.NewFilesystemStore(t.TempDir(), securecookie.GenerateRandomKey(32))
	cookies.Options = &sessions.Options{Path: "/", MaxAge: 3600, HttpOnly: true}

	store := newMemStore()
	mailer := &fakeMailer{}
	profiles := &fakeProfiles{profiles: make(map[int64]any)}

	deps := Deps{
		Users:         store,
		NGOs:          store,
		Tags:          store,
		Opportunities: store,
		Donations:     store,
		Subscriptions: store,
		Followers:     store,
		Admins:        store,
		Resets:        store,
		Contacts:      store,
		Images:        store,
		Profiles:      profiles,
		Sessions:      session.NewManager(logger, cookies, "ngolib_session"),
		Mailer:        mailer,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	config := &types.Config{
		PublicBaseURL:    "http://localhost:3000",
		ContactInbox:     "inbox@ngolib.test",
		ResetTokenTTLMin: 60,
	}

	s, err := New(config, logger, deps)
	require.NoError(t, err)
	s.now = func() time.Time { return testNow }

	return &testEnv{
		service:  s,
		handler:  s.Handler(),
		store:    store,
		mailer:   mailer,
		profiles: profiles,
		hook:     hook,
	}
}

// do sends a request with an optional JSON body and cookies.
func (e *testEnv) do(method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

// login creates a user of role and returns its session cookies.
func (e *testEnv) login(t *testing.T, email string, role types.Role) (*types.User, []*http.Cookie) {
	t.Helper()

	u := e.store.addUser(t, email, "secret", role)

	rec := e.do(http.MethodPost, "/api/auth/login", `{"email":"`+email+`","password":"secret"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return u, rec.Result().Cookies()
}
