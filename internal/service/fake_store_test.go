package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"vibecircles.web/internal/model"
	"vibecircles.web/internal/repository"
)

// memoryStore in-memory MessageStore and UserStore. Returned rows are copies,
// like rows scanned from Postgres.
type memoryStore struct {
	mu       sync.Mutex
	nextID   int64
	messages map[int64]*model.Message
	users    map[int64]*model.UserProfile

	// failures by method name
	failures map[string]error
	// hook run inside Create before the FK check
	beforeCreate func()
}

func newMemoryStore(users ...*model.UserProfile) *memoryStore {
	s := &memoryStore{
		messages: make(map[int64]*model.Message),
		users:    make(map[int64]*model.UserProfile),
		failures: make(map[string]error),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memoryStore) fail(method string) error {
	return s.failures[method]
}

func (s *memoryStore) Create(_ context.Context, msg *model.Message) error {
	if s.beforeCreate != nil {
		s.beforeCreate()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Create"); err != nil {
		return err
	}
	if _, ok := s.users[msg.SenderID]; !ok {
		return repository.ErrUserNotFound
	}
	if _, ok := s.users[msg.ReceiverID]; !ok {
		return repository.ErrUserNotFound
	}
	s.nextID++
	msg.ID = s.nextID
	stored := *msg
	s.messages[msg.ID] = &stored
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, id int64) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetByID"); err != nil {
		return nil, err
	}
	m, ok := s.messages[id]
	if !ok {
		return nil, repository.ErrMessageNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *memoryStore) GetWithSender(_ context.Context, id int64) (*model.MessageWithSender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetWithSender"); err != nil {
		return nil, err
	}
	m, ok := s.messages[id]
	if !ok {
		return nil, repository.ErrMessageNotFound
	}
	return s.withSender(m), nil
}

func (s *memoryStore) ListConversations(_ context.Context, userID int64) ([]*model.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListConversations"); err != nil {
		return nil, err
	}

	byPartner := make(map[int64]*model.ConversationSummary)
	lastIDs := make(map[int64]int64)
	for _, m := range s.messages {
		if m.SenderID == m.ReceiverID || (m.SenderID != userID && m.ReceiverID != userID) {
			continue
		}
		partnerID := m.SenderID
		if partnerID == userID {
			partnerID = m.ReceiverID
		}
		u, ok := s.users[partnerID]
		if !ok {
			continue
		}

		conv, seen := byPartner[partnerID]
		if !seen {
			conv = &model.ConversationSummary{ID: partnerID, Username: u.Username, FullName: u.FullName, AvatarURL: u.AvatarURL}
			byPartner[partnerID] = conv
		}
		newer := m.CreatedAt.After(conv.LastMessageTime) ||
			(m.CreatedAt.Equal(conv.LastMessageTime) && m.ID > lastIDs[partnerID])
		if !seen || newer {
			conv.LastMessage = m.Content
			conv.LastMessageTime = m.CreatedAt
			lastIDs[partnerID] = m.ID
		}
		if m.IsUnreadFor(userID) {
			conv.UnreadCount++
		}
	}

	out := make([]*model.ConversationSummary, 0, len(byPartner))
	for _, conv := range byPartner {
		out = append(out, conv)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageTime.Equal(out[j].LastMessageTime) {
			return out[i].LastMessageTime.After(out[j].LastMessageTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memoryStore) ListThread(_ context.Context, userID, otherUserID int64) ([]*model.MessageWithSender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListThread"); err != nil {
		return nil, err
	}
	var out []*model.MessageWithSender
	for _, m := range s.messages {
		if (m.SenderID == userID && m.ReceiverID == otherUserID) ||
			(m.SenderID == otherUserID && m.ReceiverID == userID) {
			out = append(out, s.withSender(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memoryStore) MarkRead(_ context.Context, receiverID, senderID, upToID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("MarkRead"); err != nil {
		return 0, err
	}
	var n int64
	for _, m := range s.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.IsRead &&
			(upToID == 0 || m.ID <= upToID) {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) CountUnread(_ context.Context, receiverID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CountUnread"); err != nil {
		return 0, err
	}
	var n int64
	for _, m := range s.messages {
		if m.ReceiverID == receiverID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) DeleteBySender(_ context.Context, id, senderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteBySender"); err != nil {
		return err
	}
	m, ok := s.messages[id]
	if !ok || m.SenderID != senderID {
		return repository.ErrMessageNotFound
	}
	delete(s.messages, id)
	return nil
}

func (s *memoryStore) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Exists"); err != nil {
		return false, err
	}
	_, ok := s.users[id]
	return ok, nil
}

func (s *memoryStore) removeUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *memoryStore) isRead(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages[id].IsRead
}

func (s *memoryStore) withSender(m *model.Message) *model.MessageWithSender {
	out := &model.MessageWithSender{Message: *m}
	if u, ok := s.users[m.SenderID]; ok {
		out.Username = u.Username
		out.FullName = u.FullName
		out.AvatarURL = u.AvatarURL
	}
	return out
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []*model.MessageEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event *model.MessageEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []model.MessageEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.MessageEventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// stepClock returns strictly increasing times, one second apart
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newStepClock() *stepClock {
	return &stepClock{cur: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}
