package service

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

// inlineQueue runs tasks synchronously so tests can observe side effects.
type inlineQueue struct {
	names []string
	keys  []string
	drop  bool
}

func (q *inlineQueue) Enqueue(t ports.Task) bool {
	if q.drop {
		return false
	}
	q.names = append(q.names, t.Name)
	q.keys = append(q.keys, t.Key)
	_ = t.Run(context.Background())
	return true
}

type sentMail struct {
	to, subject, body string
}

type stubMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *stubMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

var digitsRe = regexp.MustCompile(`\d{6}`)
var hexTokenRe = regexp.MustCompile(`[0-9a-f]{64}`)

// lastCode extracts the passcode from the most recent email.
func (m *stubMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return digitsRe.FindString(m.sent[len(m.sent)-1].body)
}

func (m *stubMailer) lastToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return hexTokenRe.FindString(m.sent[len(m.sent)-1].body)
}

// ── users ─────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
		if u.Role == domain.RoleSuperadmin && existing.Role == domain.RoleSuperadmin {
			return domain.ErrSuperadminExists
		}
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, f domain.UserFilter) ([]*domain.User, int64, error) {
	var out []*domain.User
	for _, u := range r.users {
		if f.Role == "" || u.Role == f.Role {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) ExistsWithRole(_ context.Context, role domain.Role) (bool, error) {
	for _, u := range r.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, u := range r.users {
		out[u.Role]++
	}
	return out, nil
}

// ── otp ───────────────────────────────────────────────────────────────────────

type stubOTPRepo struct {
	codes map[string]*domain.OTP
}

func newStubOTPRepo() *stubOTPRepo {
	return &stubOTPRepo{codes: make(map[string]*domain.OTP)}
}

func otpKey(email, purpose string) string { return purpose + "|" + email }

func (r *stubOTPRepo) Replace(_ context.Context, o *domain.OTP) error {
	c := *o
	r.codes[otpKey(o.Email, o.Purpose)] = &c
	return nil
}

func (r *stubOTPRepo) Find(_ context.Context, email string, purpose domain.OTPPurpose) (*domain.OTP, error) {
	o, ok := r.codes[otpKey(email, purpose)]
	if !ok {
		return nil, domain.ErrOTPNotFound
	}
	c := *o
	return &c, nil
}

func (r *stubOTPRepo) Consume(_ context.Context, id string, at time.Time) (bool, error) {
	for _, o := range r.codes {
		if o.ID == id {
			if o.ConsumedAt != nil {
				return false, nil
			}
			t := at
			o.ConsumedAt = &t
			return true, nil
		}
	}
	return false, nil
}

type stubCooldown struct {
	seen map[string]bool
}

func (c *stubCooldown) Allow(_ context.Context, key string) (bool, error) {
	if c.seen == nil {
		c.seen = map[string]bool{}
	}
	if c.seen[key] {
		return false, nil
	}
	c.seen[key] = true
	return true, nil
}

type stubAttempts struct {
	counts map[string]int64
}

func (a *stubAttempts) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if a.counts == nil {
		a.counts = map[string]int64{}
	}
	a.counts[key]++
	return a.counts[key], nil
}

func (a *stubAttempts) Reset(_ context.Context, key string) error {
	delete(a.counts, key)
	return nil
}

// ── password resets ───────────────────────────────────────────────────────────

type stubResetRepo struct {
	resets []*domain.PasswordReset
}

func (r *stubResetRepo) Create(_ context.Context, pr *domain.PasswordReset) error {
	c := *pr
	r.resets = append(r.resets, &c)
	return nil
}

func (r *stubResetRepo) ListActive(_ context.Context, userID string) ([]*domain.PasswordReset, error) {
	var out []*domain.PasswordReset
	for _, pr := range r.resets {
		if pr.UserID == userID && pr.UsedAt == nil {
			c := *pr
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubResetRepo) MarkUsed(_ context.Context, id string) error {
	for _, pr := range r.resets {
		if pr.ID == id {
			now := time.Now()
			pr.UsedAt = &now
		}
	}
	return nil
}

// ── tokens ────────────────────────────────────────────────────────────────────

type stubTokens struct{}

func (stubTokens) Encode(id string, role domain.Role) (string, error) { return id + ":" + role, nil }

func (stubTokens) Decode(raw string) (domain.Principal, bool) {
	id, role, ok := strings.Cut(raw, ":")
	if !ok {
		return domain.Principal{}, false
	}
	return domain.Principal{ID: id, Role: role}, true
}

func (stubTokens) IssueChannel(p domain.Principal, channel string) (string, error) {
	return p.ID + ":" + p.Role + "@" + channel, nil
}

func (stubTokens) VerifyChannel(raw, channel string) (domain.Principal, bool) {
	rest, ch, ok := strings.Cut(raw, "@")
	if !ok || ch != channel {
		return domain.Principal{}, false
	}
	return stubTokens{}.Decode(rest)
}

// ── rooms, cars, bookings ─────────────────────────────────────────────────────

type stubRoomRepo struct {
	rooms   map[string]*domain.Room
	deleted []string
}

func newStubRoomRepo(rooms ...*domain.Room) *stubRoomRepo {
	r := &stubRoomRepo{rooms: make(map[string]*domain.Room)}
	for _, room := range rooms {
		c := *room
		r.rooms[room.ID] = &c
	}
	return r
}

func (r *stubRoomRepo) Create(_ context.Context, room *domain.Room) error {
	for _, existing := range r.rooms {
		if existing.OwnerID == room.OwnerID {
			return domain.ErrRoomAlreadyOwned
		}
	}
	c := *room
	r.rooms[room.ID] = &c
	return nil
}

func (r *stubRoomRepo) FindByID(_ context.Context, id string) (*domain.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	c := *room
	return &c, nil
}

func (r *stubRoomRepo) FindByOwner(_ context.Context, ownerID string) (*domain.Room, error) {
	for _, room := range r.rooms {
		if room.OwnerID == ownerID {
			c := *room
			return &c, nil
		}
	}
	return nil, domain.ErrRoomNotFound
}

func (r *stubRoomRepo) List(_ context.Context, f domain.RoomFilter) ([]*domain.Room, int64, error) {
	var out []*domain.Room
	for _, room := range r.rooms {
		if f.ActiveOnly && !room.IsActive {
			continue
		}
		c := *room
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

func (r *stubRoomRepo) Update(_ context.Context, room *domain.Room) error {
	c := *room
	r.rooms[room.ID] = &c
	return nil
}

func (r *stubRoomRepo) SetActive(_ context.Context, id string, active bool) error {
	room, ok := r.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.IsActive = active
	return nil
}

func (r *stubRoomRepo) Delete(_ context.Context, id string) error {
	delete(r.rooms, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubRoomRepo) Count(_ context.Context) (int64, int64, error) {
	var active int64
	for _, room := range r.rooms {
		if room.IsActive {
			active++
		}
	}
	return int64(len(r.rooms)), active, nil
}

type stubCarRepo struct {
	cars map[string]*domain.Car
}

func newStubCarRepo(cars ...*domain.Car) *stubCarRepo {
	r := &stubCarRepo{cars: make(map[string]*domain.Car)}
	for _, c := range cars {
		cp := *c
		r.cars[c.ID] = &cp
	}
	return r
}

func (r *stubCarRepo) Create(_ context.Context, c *domain.Car) error {
	cp := *c
	r.cars[c.ID] = &cp
	return nil
}

func (r *stubCarRepo) FindByID(_ context.Context, id string) (*domain.Car, error) {
	c, ok := r.cars[id]
	if !ok {
		return nil, domain.ErrCarNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCarRepo) List(_ context.Context, f domain.CarFilter) ([]*domain.Car, int64, error) {
	var out []*domain.Car
	for _, c := range r.cars {
		if f.RoomID != "" && c.RoomID != f.RoomID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *stubCarRepo) Update(_ context.Context, c *domain.Car) error {
	cp := *c
	r.cars[c.ID] = &cp
	return nil
}

func (r *stubCarRepo) SetStatus(_ context.Context, id string, status domain.CarStatus) error {
	c, ok := r.cars[id]
	if !ok {
		return domain.ErrCarNotFound
	}
	c.Status = status
	return nil
}

func (r *stubCarRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.cars[id]; !ok {
		return domain.ErrCarNotFound
	}
	delete(r.cars, id)
	return nil
}

func (r *stubCarRepo) Count(_ context.Context) (int64, error) { return int64(len(r.cars)), nil }

type stubBookingRepo struct {
	bookings map[string]*domain.Booking
	lastList domain.BookingFilter
}

func newStubBookingRepo(bookings ...*domain.Booking) *stubBookingRepo {
	r := &stubBookingRepo{bookings: make(map[string]*domain.Booking)}
	for _, b := range bookings {
		cp := *b
		r.bookings[b.ID] = &cp
	}
	return r
}

func (r *stubBookingRepo) Create(_ context.Context, b *domain.Booking) error {
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *stubBookingRepo) FindByID(_ context.Context, id string) (*domain.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *stubBookingRepo) List(_ context.Context, f domain.BookingFilter) ([]*domain.Booking, int64, error) {
	r.lastList = f
	var out []*domain.Booking
	for _, b := range r.bookings {
		if (f.UserID == "" || b.UserID == f.UserID) && (f.RoomID == "" || b.RoomID == f.RoomID) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubBookingRepo) UpdateStatus(_ context.Context, id string, status domain.BookingStatus) error {
	b, ok := r.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (r *stubBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, b := range r.bookings {
		out[b.Status]++
	}
	return out, nil
}

// ── notifications and realtime ────────────────────────────────────────────────

type stubNotifier struct {
	sent []ports.NotifyInput
}

func (n *stubNotifier) Notify(_ context.Context, in ports.NotifyInput) (*domain.Notification, error) {
	n.sent = append(n.sent, in)
	return &domain.Notification{UserID: in.UserID, Title: in.Title}, nil
}

type published struct {
	channel, event string
	payload        any
}

type stubRealtime struct {
	events []published
}

func (r *stubRealtime) Publish(_ context.Context, channel, event string, payload any) {
	r.events = append(r.events, published{channel, event, payload})
}

func (r *stubRealtime) AuthorizeChannel(context.Context, domain.Principal, string) error { return nil }

func (r *stubRealtime) IssueChannelToken(context.Context, domain.Principal, string) (string, error) {
	return "", nil
}

func (r *stubRealtime) Subscribe(context.Context, string, string) (ports.Subscription, error) {
	return nil, nil
}

type stubChatRepo struct {
	convs    map[string]*domain.Conversation
	messages []*domain.Message
}

func newStubChatRepo(convs ...*domain.Conversation) *stubChatRepo {
	r := &stubChatRepo{convs: make(map[string]*domain.Conversation)}
	for _, c := range convs {
		cp := *c
		r.convs[c.ID] = &cp
	}
	return r
}

func (r *stubChatRepo) CreateConversation(_ context.Context, c *domain.Conversation) error {
	cp := *c
	r.convs[c.ID] = &cp
	return nil
}

func (r *stubChatRepo) FindConversation(_ context.Context, id string) (*domain.Conversation, error) {
	c, ok := r.convs[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubChatRepo) FindConversationByRoomAndUser(_ context.Context, roomID, userID string) (*domain.Conversation, error) {
	for _, c := range r.convs {
		if c.RoomID == roomID && c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrConversationNotFound
}

func (r *stubChatRepo) ListConversations(_ context.Context, id string) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	for _, c := range r.convs {
		if c.IsParticipant(id) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubChatRepo) ListMessages(_ context.Context, convID string, _ *time.Time, limit int) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range r.messages {
		if m.ConversationID == convID && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubChatRepo) AddMessage(_ context.Context, m *domain.Message) error {
	cp := *m
	r.messages = append(r.messages, &cp)
	if c, ok := r.convs[m.ConversationID]; ok {
		c.LastMessage = &cp.Content
		c.LastMessageAt = &cp.CreatedAt
	}
	return nil
}

func (r *stubChatRepo) MarkRead(_ context.Context, convID, readerID string) (int64, error) {
	var n int64
	for _, m := range r.messages {
		if m.ConversationID == convID && m.SenderID != readerID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}
