package protocol

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabbie/internal/config"
	"vocabbie/internal/corpus"
	"vocabbie/internal/session"
)

// failingStore wraps a fakeStore and fails the failOn-th call to
// RandomID (Entry calls are not counted), letting a test simulate a corpus
// error partway through a request that has already mutated session
// state in memory.
type failingStore struct {
	*fakeStore
	failOn int
	calls  int
}

func (f *failingStore) RandomID(ctx context.Context, level int, exclude map[uint32]struct{}) (uint32, error) {
	f.calls++
	if f.calls == f.failOn {
		return 0, corpus.ErrExhausted
	}
	return f.fakeStore.RandomID(ctx, level, exclude)
}

// TestSubmitChoose_FailedAdvanceLeavesSessionUnchanged exercises the
// rollback path in handleChoose: a recall submit whose Advance call
// fails must not leave an extra entry in the session's history, and
// the session must still answer a subsequent successful submit.
func TestSubmitChoose_FailedAdvanceLeavesSessionUnchanged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Server: config.ServerConfig{Subpath: ""}}
	store := &failingStore{fakeStore: newFakeStore(), failOn: 2}
	deps := &Deps{
		Corpus:   store,
		Sessions: session.NewStore(time.Hour, time.Hour),
	}
	t.Cleanup(func() { deps.Sessions.Close() })
	r := SetupRouter(cfg, deps)

	code, resp := doRequest(t, r, http.MethodPost, "/start", Message{Details: map[string]string{"kind": "recall"}})
	require.Equal(t, http.StatusOK, code)
	require.NotZero(t, resp.Session)
	id := resp.Session

	var wordBefore uint32
	var lenBefore int
	require.NoError(t, deps.Sessions.With(id, false, func(sess *session.Session) error {
		wordBefore = sess.Recall.CurrentWord
		lenBefore = sess.HistoryLen()
		return nil
	}))

	code, _ = doRequest(t, r, http.MethodPost, "/submit", Message{
		Session: id,
		Details: map[string]string{"action": "choose", "recall": "true"},
	})
	assert.Equal(t, http.StatusInternalServerError, code)

	require.NoError(t, deps.Sessions.With(id, false, func(sess *session.Session) error {
		assert.Equal(t, lenBefore, sess.HistoryLen(), "history must be rolled back after a failed advance")
		assert.Equal(t, wordBefore, sess.Recall.CurrentWord, "current word must be unchanged after a failed advance")
		return nil
	}))

	store.failOn = 0
	code, resp = doRequest(t, r, http.MethodPost, "/submit", Message{
		Session: id,
		Details: map[string]string{"action": "choose", "recall": "false"},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, id, resp.Session)

	require.NoError(t, deps.Sessions.With(id, false, func(sess *session.Session) error {
		assert.Equal(t, lenBefore+1, sess.HistoryLen(), "a subsequent successful submit must still append exactly one entry")
		return nil
	}))
}
