package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabbie/internal/config"
	"vocabbie/internal/corpus"
	"vocabbie/internal/session"
	"vocabbie/internal/tyv"
)

type fakeStore struct {
	entries map[uint32]corpus.Entry
}

func (f *fakeStore) Entry(_ context.Context, id uint32) (corpus.Entry, error) {
	e, ok := f.entries[id]
	if !ok {
		return corpus.Entry{}, corpus.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) RandomID(_ context.Context, level int, exclude map[uint32]struct{}) (uint32, error) {
	for id, e := range f.entries {
		if int(e.Level) != level {
			continue
		}
		if _, skip := exclude[id]; skip {
			continue
		}
		return id, nil
	}
	return 0, corpus.ErrExhausted
}

func (f *fakeStore) Close() error { return nil }

func newFakeStore() *fakeStore {
	entries := make(map[uint32]corpus.Entry)
	id := uint32(1)
	for lv := 0; lv < corpus.NumLevels; lv++ {
		levelIDs := make([]uint32, 0, 6)
		for i := 0; i < 6; i++ {
			levelIDs = append(levelIDs, id)
			id++
		}
		for i, wid := range levelIDs {
			var neighbors []uint32
			for j, other := range levelIDs {
				if j != i {
					neighbors = append(neighbors, other)
				}
			}
			entries[wid] = corpus.Entry{
				ID:           wid,
				Word:         fmt.Sprintf("word%d", wid),
				Freq:         1000 - wid,
				Translations: []string{fmt.Sprintf("trans%d", wid)},
				Level:        uint8(lv),
				Sim:          neighbors,
			}
		}
	}
	return &fakeStore{entries: entries}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Server: config.ServerConfig{Subpath: ""}}
	deps := &Deps{
		Corpus:   newFakeStore(),
		Sessions: session.NewStore(time.Hour, time.Hour),
		TyvLists: tyv.Lists{},
	}
	t.Cleanup(func() { deps.Sessions.Close() })
	return SetupRouter(cfg, deps)
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body Message) (int, Message) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestStart_UnknownKindIsRejected(t *testing.T) {
	r := newTestRouter(t)
	code, resp := doRequest(t, r, http.MethodPost, "/start", Message{Details: map[string]string{"kind": "zzz"}})
	assert.Equal(t, http.StatusOK, code)
	assert.Zero(t, resp.Session)
	assert.Equal(t, "invalid session kind", resp.Details["error"])
}

func TestStart_StandardThenState(t *testing.T) {
	r := newTestRouter(t)
	code, resp := doRequest(t, r, http.MethodPost, "/start", Message{Details: map[string]string{"kind": "standard"}})
	require.Equal(t, http.StatusOK, code)
	require.NotZero(t, resp.Session)

	code, state := doRequest(t, r, http.MethodGet, "/state", Message{Session: resp.Session})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "false", state.Details["result_available"])
	assert.NotEmpty(t, state.Details["question"])
	assert.Len(t, strings.Split(state.Details["candidates"], ";;;"), 4)
}

func TestRoundTrip_StandardSession(t *testing.T) {
	r := newTestRouter(t)
	_, started := doRequest(t, r, http.MethodPost, "/start", Message{Details: map[string]string{"kind": "standard"}})
	id := started.Session
	require.NotZero(t, id)

	for i := 0; i < 24; i++ {
		code, resp := doRequest(t, r, http.MethodPost, "/submit", Message{
			Session: id,
			Details: map[string]string{"action": "choose", "choice": "0"},
		})
		require.Equal(t, http.StatusOK, code)
		require.Contains(t, resp.Details, "correct")
	}

	_, state := doRequest(t, r, http.MethodGet, "/state", Message{Session: id})
	assert.Equal(t, "true", state.Details["result_available"])

	_, finish := doRequest(t, r, http.MethodPost, "/submit", Message{
		Session: id,
		Details: map[string]string{"action": "finish"},
	})
	for _, key := range []string{"uls", "rfwls", "heu"} {
		v, err := strconv.ParseUint(finish.Details[key], 10, 64)
		require.NoError(t, err, "key %s", key)
		assert.LessOrEqual(t, v, uint64(corpus.TotalWords))
	}

	_, after := doRequest(t, r, http.MethodGet, "/state", Message{Session: id})
	assert.Zero(t, after.Session)
}

func TestSubmit_UnknownSessionReturnsZero(t *testing.T) {
	r := newTestRouter(t)
	code, resp := doRequest(t, r, http.MethodPost, "/submit", Message{
		Session: 999999,
		Details: map[string]string{"action": "choose", "choice": "0"},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Zero(t, resp.Session)
	assert.Empty(t, resp.Details)
}

func TestSubmit_FinishBeforeMinimumLeavesSessionAlive(t *testing.T) {
	r := newTestRouter(t)
	_, started := doRequest(t, r, http.MethodPost, "/start", Message{Details: map[string]string{"kind": "recall"}})
	id := started.Session

	_, resp := doRequest(t, r, http.MethodPost, "/submit", Message{
		Session: id,
		Details: map[string]string{"action": "finish"},
	})
	assert.Equal(t, "not enough questions answered", resp.Details["error"])

	_, state := doRequest(t, r, http.MethodGet, "/state", Message{Session: id})
	assert.Equal(t, id, state.Session)
}

func TestStart_RecallTyvRefusedWhenModelUnavailable(t *testing.T) {
	r := newTestRouter(t)
	code, resp := doRequest(t, r, http.MethodPost, "/start", Message{Details: map[string]string{"kind": "recall-tyv"}})
	assert.Equal(t, http.StatusOK, code)
	assert.Zero(t, resp.Session)
	assert.NotEmpty(t, resp.Details["error"])
}

func TestOptions_PreflightReturnsCORSHeaders(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/start", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
