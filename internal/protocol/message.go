// Package protocol implements the three-endpoint wire protocol
// (§4.5/§6): start, state, submit over a uniform session/details
// envelope, plus CORS preflight.
package protocol

// Message is the wire envelope shared by every endpoint (§6).
type Message struct {
	Session uint32            `json:"session"`
	Details map[string]string `json:"details"`
}

func errMessage(sessionID uint32, text string) Message {
	return Message{Session: sessionID, Details: map[string]string{"error": text}}
}

func emptyMessage(sessionID uint32) Message {
	return Message{Session: sessionID, Details: map[string]string{}}
}

const (
	kindStandard  = "standard"
	kindRecall    = "recall"
	kindRecallTyv = "recall-tyv"

	actionChoose = "choose"
	actionFinish = "finish"

	minAnsweredStandard = 24
	minAnsweredRecall   = 24
	minAnsweredTyv      = 60
)
