package bot

import (
	"strings"
	"sync"
)

// Withdrawal flow steps. Eligibility is checked before a session exists;
// commit destroys the session.
const (
	stepWaitingName   = "waiting_name"
	stepWaitingPhone  = "waiting_phone"
	stepWaitingMethod = "waiting_method"
	stepConfirming    = "confirming"
)

// minInputLen applies to both the name and the phone inputs.
const minInputLen = 8

// withdrawSession carries the tuple collected across the flow. Amount is
// the balance snapshot taken at eligibility and is never re-read.
type withdrawSession struct {
	Step     string
	Amount   int64
	Fullname string
	Phone    string
	Method   string
}

// sessionStore owns the withdrawal sessions, one per user ID. Sessions
// live only in memory; a process restart loses them, which the handlers
// report to the user as an expired session.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*withdrawSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*withdrawSession)}
}

func (s *sessionStore) create(userID int64, amount int64) *withdrawSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := &withdrawSession{Step: stepWaitingName, Amount: amount}
	s.sessions[userID] = session
	return session
}

func (s *sessionStore) get(userID int64) *withdrawSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[userID]
}

func (s *sessionStore) destroy(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func validInput(text string) bool {
	return len(strings.TrimSpace(text)) >= minInputLen
}

// Payment method callback codes and their display labels.
var paymentMethods = map[string]string{
	"momo":     "Mobile Money (MoMo)",
	"om":       "Orange Money",
	"airtel":   "Airtel Money",
	"moov":     "Moov Money",
	"wave":     "Wave",
	"togocel":  "Togocel",
	"vodafone": "Vodafone Cash",
}

// methodOrder fixes the keyboard layout.
var methodOrder = []string{"momo", "om", "airtel", "moov", "wave", "togocel", "vodafone"}
