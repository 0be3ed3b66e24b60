package protocol

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vocabbie/internal/quiz"
	"vocabbie/internal/session"
)

// StartHandler creates a session for the requested kind and, for
// standard and recall, advances it once so state is immediately
// answerable (§4.5).
func StartHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := parseMessage(c)
		ctx := c.Request.Context()

		switch req.Details["kind"] {
		case kindStandard:
			sess := session.Session{Modality: session.ModalityStandard, Standard: &session.StandardState{}}
			if err := quiz.AdvanceStandard(ctx, deps.Corpus, &sess); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			id, err := deps.Sessions.CreateWith(sess)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, emptyMessage(id))

		case kindRecall:
			sess := session.Session{Modality: session.ModalityRecall, Recall: &session.RecallState{}}
			if err := quiz.AdvanceRecall(ctx, deps.Corpus, &sess); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			id, err := deps.Sessions.CreateWith(sess)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, emptyMessage(id))

		case kindRecallTyv:
			if deps.TyvModel == nil {
				c.JSON(http.StatusOK, errMessage(0, "recall-tyv not available"))
				return
			}
			sess := session.Session{Modality: session.ModalityRecallTyv, RecallTyv: &session.RecallTyvState{}}
			if err := quiz.AdvanceRecallTyv(&sess, len(deps.TyvLists.Broad), len(deps.TyvLists.Narrow)); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			id, err := deps.Sessions.CreateWith(sess)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, emptyMessage(id))

		default:
			c.JSON(http.StatusOK, errMessage(0, "invalid session kind"))
		}
	}
}
