package protocol

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseMessage reads the envelope from the JSON body when present,
// falling back to query parameters so GET /state (which some clients
// cannot send a body with) behaves identically to its POST alias
// (§6).
func parseMessage(c *gin.Context) Message {
	var msg Message
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&msg); err == nil {
			if msg.Details == nil {
				msg.Details = map[string]string{}
			}
			return msg
		}
	}

	msg.Details = map[string]string{}
	if s := c.Query("session"); s != "" {
		if v, err := strconv.ParseUint(s, 10, 32); err == nil {
			msg.Session = uint32(v)
		}
	}
	for _, key := range []string{"kind", "action", "choice", "recall"} {
		if v := c.Query(key); v != "" {
			msg.Details[key] = v
		}
	}
	return msg
}
