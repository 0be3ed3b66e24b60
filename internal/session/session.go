// Package session implements the process-wide session store described
// in §4.4: a map from session id to modality-tagged state,
// reader/writer serialized per session and at the map level, with a
// background expiry sweeper. Nothing here persists across a process
// restart — that is an explicit non-goal (§1).
package session

// Modality tags which inner state a Session carries (§3, §9's
// "modality-tagged variant" design note).
type Modality int

const (
	ModalityStandard Modality = iota
	ModalityRecall
	ModalityRecallTyv
)

// HistoryItem is one answered question. For Standard/Recall, ID is a
// corpus entry id; for RecallTyv it is a position in the concatenated
// broad+narrow word list (§3).
type HistoryItem struct {
	ID      uint32
	Correct bool
}

// StandardState is the inner state of a standard four-choice session.
type StandardState struct {
	History     []HistoryItem
	CurrentWord uint32
	Question    string
	Candidates  [4]string
	AnswerIndex int
}

// RecallState is the inner state of a recall self-report session.
type RecallState struct {
	History     []HistoryItem
	CurrentWord uint32
}

// RecallTyvState is the inner state of a recall-tyv session. Its
// CurrentWord indexes into the concatenation of the broad and narrow
// curated lists, not the corpus.
type RecallTyvState struct {
	History     []HistoryItem
	CurrentWord uint32
}

// Session is one learner's quiz state (§3). Exactly one of the three
// pointers is non-nil, selected by Modality.
type Session struct {
	Modality  Modality
	Standard  *StandardState
	Recall    *RecallState
	RecallTyv *RecallTyvState
}

// HasDuplicateID reports whether id already appears in this session's
// history, enforcing invariant (i) of §3.
func (s *Session) HasDuplicateID(id uint32) bool {
	for _, item := range s.history() {
		if item.ID == id {
			return true
		}
	}
	return false
}

// HistoryIDSet returns the set of ids already present in history, for
// exclusion-based sampling (§4.2/§4.3).
func (s *Session) HistoryIDSet() map[uint32]struct{} {
	hist := s.history()
	set := make(map[uint32]struct{}, len(hist))
	for _, item := range hist {
		set[item.ID] = struct{}{}
	}
	return set
}

// HistoryLen is the session's answered count (the "ordinal", §4.2).
func (s *Session) HistoryLen() int {
	return len(s.history())
}

// History returns the active modality's answered (id, correct)
// sequence, for estimator input and TYV vector construction.
func (s *Session) History() []HistoryItem {
	return s.history()
}

func (s *Session) history() []HistoryItem {
	switch s.Modality {
	case ModalityStandard:
		return s.Standard.History
	case ModalityRecall:
		return s.Recall.History
	case ModalityRecallTyv:
		return s.RecallTyv.History
	default:
		return nil
	}
}

// AppendHistory appends one answered (id, correct) pair to the active
// modality's history.
func (s *Session) AppendHistory(id uint32, correct bool) {
	item := HistoryItem{ID: id, Correct: correct}
	switch s.Modality {
	case ModalityStandard:
		s.Standard.History = append(s.Standard.History, item)
	case ModalityRecall:
		s.Recall.History = append(s.Recall.History, item)
	case ModalityRecallTyv:
		s.RecallTyv.History = append(s.RecallTyv.History, item)
	}
}

// RemoveLastHistory drops the most recently appended history entry.
// It is used to roll an AppendHistory back out when the advancement
// that was supposed to follow it fails, so a failed submit leaves the
// session exactly as it was before the request (§7).
func (s *Session) RemoveLastHistory() {
	switch s.Modality {
	case ModalityStandard:
		s.Standard.History = s.Standard.History[:len(s.Standard.History)-1]
	case ModalityRecall:
		s.Recall.History = s.Recall.History[:len(s.Recall.History)-1]
	case ModalityRecallTyv:
		s.RecallTyv.History = s.RecallTyv.History[:len(s.RecallTyv.History)-1]
	}
}
