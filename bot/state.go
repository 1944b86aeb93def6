package bot

import (
	"sync"

	"teatrlead/internal/flow"
)

// Admin input modes: what the next text message from an admin means.
const (
	adminModeNone       = ""
	adminModeAddLink    = "add_link"
	adminModeEditLink   = "edit_link"
	adminModeSetSetting = "set_setting"
)

// chatState is the per-chat conversational position. Questionnaire answers
// live in the database; this only remembers where in the dialog the chat is.
// AdminTarget is the slug or setting name the next admin input applies to,
// AdminValue the staged settings value awaiting confirmation.
type chatState struct {
	Step        flow.Step
	AdminMode   string
	AdminTarget string
	AdminValue  string
}

type stateStore struct {
	mu     sync.Mutex
	states map[int64]*chatState
}

func newStateStore() *stateStore {
	return &stateStore{states: make(map[int64]*chatState)}
}

func (s *stateStore) get(chatId int64) chatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[chatId]; ok {
		return *st
	}
	return chatState{}
}

func (s *stateStore) setStep(chatId int64, step flow.Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[chatId]
	if !ok {
		st = &chatState{}
		s.states[chatId] = st
	}
	st.Step = step
}

func (s *stateStore) setAdminMode(chatId int64, mode, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[chatId]
	if !ok {
		st = &chatState{}
		s.states[chatId] = st
	}
	st.AdminMode = mode
	st.AdminTarget = target
	st.AdminValue = ""
}

func (s *stateStore) setAdminValue(chatId int64, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[chatId]
	if !ok {
		st = &chatState{}
		s.states[chatId] = st
	}
	st.AdminValue = value
}
