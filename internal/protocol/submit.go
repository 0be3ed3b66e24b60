package protocol

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vocabbie/internal/corpus"
	"vocabbie/internal/estimate"
	"vocabbie/internal/quiz"
	"vocabbie/internal/session"
)

// SubmitHandler answers the current question or finalizes the
// session (§4.5).
func SubmitHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := parseMessage(c)
		ctx := c.Request.Context()

		action, ok := req.Details["action"]
		if !ok {
			c.JSON(http.StatusOK, errMessage(req.Session, "no action specified"))
			return
		}

		var resp Message
		var terminate bool
		err := deps.Sessions.With(req.Session, true, func(sess *session.Session) error {
			m, done, err := handleSubmit(ctx, deps, sess, req, action)
			resp, terminate = m, done
			return err
		})
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusOK, emptyMessage(0))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if terminate {
			deps.Sessions.Terminate(req.Session)
		}
		c.JSON(http.StatusOK, resp)
	}
}

func handleSubmit(ctx context.Context, deps *Deps, sess *session.Session, req Message, action string) (Message, bool, error) {
	switch action {
	case actionChoose:
		return handleChoose(ctx, deps, sess, req)
	case actionFinish:
		return handleFinish(ctx, deps, sess, req)
	default:
		return errMessage(req.Session, "invalid action"), false, nil
	}
}

// handleChoose appends the answered word to history before drawing
// the next one, since the draw must exclude it; if the draw fails,
// the append is rolled back so the session is left exactly as it was
// before the request (§7).
func handleChoose(ctx context.Context, deps *Deps, sess *session.Session, req Message) (Message, bool, error) {
	switch sess.Modality {
	case session.ModalityStandard:
		choiceStr, ok := req.Details["choice"]
		if !ok {
			return errMessage(req.Session, "no choice specified"), false, nil
		}
		choice, err := strconv.Atoi(choiceStr)
		if err != nil || choice < 0 || choice > 3 {
			return errMessage(req.Session, "invalid choice"), false, nil
		}
		correct := choice == sess.Standard.AnswerIndex
		sess.AppendHistory(sess.Standard.CurrentWord, correct)
		if err := quiz.AdvanceStandard(ctx, deps.Corpus, sess); err != nil {
			sess.RemoveLastHistory()
			return Message{}, false, err
		}
		return Message{Session: req.Session, Details: map[string]string{"correct": strconv.FormatBool(correct)}}, false, nil

	case session.ModalityRecall, session.ModalityRecallTyv:
		recallStr, ok := req.Details["recall"]
		if !ok {
			return errMessage(req.Session, "no recall specified"), false, nil
		}
		recall, err := strconv.ParseBool(recallStr)
		if err != nil {
			return errMessage(req.Session, "invalid recall value"), false, nil
		}

		if sess.Modality == session.ModalityRecall {
			sess.AppendHistory(sess.Recall.CurrentWord, recall)
			if err := quiz.AdvanceRecall(ctx, deps.Corpus, sess); err != nil {
				sess.RemoveLastHistory()
				return Message{}, false, err
			}
		} else {
			sess.AppendHistory(sess.RecallTyv.CurrentWord, recall)
			if err := quiz.AdvanceRecallTyv(sess, len(deps.TyvLists.Broad), len(deps.TyvLists.Narrow)); err != nil {
				sess.RemoveLastHistory()
				return Message{}, false, err
			}
		}
		return emptyMessage(req.Session), false, nil

	default:
		return errMessage(req.Session, "invalid session state"), false, nil
	}
}

func handleFinish(ctx context.Context, deps *Deps, sess *session.Session, req Message) (Message, bool, error) {
	minimum := minAnsweredStandard
	if sess.Modality == session.ModalityRecallTyv {
		minimum = minAnsweredTyv
	}
	if sess.HistoryLen() < minimum {
		return errMessage(req.Session, "not enough questions answered"), false, nil
	}

	switch sess.Modality {
	case session.ModalityStandard, session.ModalityRecall:
		evidences, err := buildEvidences(ctx, deps.Corpus, sess.History())
		if err != nil {
			return Message{}, false, err
		}
		details := map[string]string{
			"uls":   strconv.FormatUint(estimate.ULS(evidences), 10),
			"rfwls": strconv.FormatUint(estimate.RFWLS(evidences), 10),
			"heu":   strconv.FormatUint(estimate.Heuristic(evidences), 10),
		}
		return Message{Session: req.Session, Details: details}, true, nil

	case session.ModalityRecallTyv:
		if deps.TyvModel == nil {
			return errMessage(req.Session, "tyv not available"), false, nil
		}
		result, err := deps.TyvModel.Estimate(sess.History())
		if err != nil {
			return Message{}, false, err
		}
		return Message{Session: req.Session, Details: map[string]string{"tyv": strconv.FormatUint(result, 10)}}, true, nil

	default:
		return errMessage(req.Session, "invalid session state"), false, nil
	}
}

func buildEvidences(ctx context.Context, store corpus.Store, history []session.HistoryItem) ([]corpus.Evidence, error) {
	evidences := make([]corpus.Evidence, 0, len(history))
	for _, h := range history {
		entry, err := store.Entry(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		evidences = append(evidences, corpus.Evidence{
			ID:      h.ID,
			Freq:    entry.Freq,
			Level:   entry.Level,
			Correct: h.Correct,
		})
	}
	return evidences, nil
}
