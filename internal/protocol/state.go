package protocol

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"vocabbie/internal/session"
)

// StateHandler reports the current question for a session, shared
// verbatim by GET and POST /state (§6).
func StateHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := parseMessage(c)
		ctx := c.Request.Context()

		var resp Message
		err := deps.Sessions.With(req.Session, false, func(sess *session.Session) error {
			m, err := buildState(ctx, deps, req.Session, sess)
			if err != nil {
				return err
			}
			resp = m
			return nil
		})
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusOK, emptyMessage(0))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func buildState(ctx context.Context, deps *Deps, id uint32, sess *session.Session) (Message, error) {
	details := map[string]string{}
	switch sess.Modality {
	case session.ModalityStandard:
		details["result_available"] = strconv.FormatBool(sess.HistoryLen() >= minAnsweredStandard)
		details["question"] = sess.Standard.Question
		details["candidates"] = strings.Join(sess.Standard.Candidates[:], ";;;")

	case session.ModalityRecall:
		entry, err := deps.Corpus.Entry(ctx, sess.Recall.CurrentWord)
		if err != nil {
			return Message{}, err
		}
		details["result_available"] = strconv.FormatBool(sess.HistoryLen() >= minAnsweredRecall)
		details["question"] = entry.Word

	case session.ModalityRecallTyv:
		details["result_available"] = strconv.FormatBool(sess.HistoryLen() >= minAnsweredTyv)
		details["question"] = deps.TyvLists.WordAt(sess.RecallTyv.CurrentWord)
	}
	return Message{Session: id, Details: details}, nil
}
