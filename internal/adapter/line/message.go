package line

import (
	"strings"

	"github.com/couchcryptid/forecast-bot/internal/domain"
)

// maxQuickReplyLabel is the platform's limit on quick reply button labels, in characters.
const maxQuickReplyLabel = 20

// Message is an outgoing text message.
type Message struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	QuickReply *QuickReply `json:"quickReply,omitempty"`
}

// QuickReply holds the selectable buttons shown under a message.
type QuickReply struct {
	Items []QuickReplyItem `json:"items"`
}

// QuickReplyItem is one quick reply button.
type QuickReplyItem struct {
	Type   string `json:"type"`
	Action Action `json:"action"`
}

// Action sends Text back as a user message when the button is tapped.
type Action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ReplyMessages renders an outcome as reply messages. Ambiguous outcomes carry
// one quick reply button per candidate whose text is the candidate title, so
// that tapping it searches for that exact title. Candidates with a blank title
// are skipped since the platform rejects empty labels.
func ReplyMessages(o domain.Outcome) []Message {
	msg := Message{Type: "text", Text: o.Message()}
	if o.Kind == domain.OutcomeAmbiguous && len(o.Candidates) > 0 {
		items := make([]QuickReplyItem, 0, len(o.Candidates))
		for _, c := range o.Candidates {
			if strings.TrimSpace(c.Title) == "" {
				continue
			}
			items = append(items, QuickReplyItem{
				Type: "action",
				Action: Action{
					Type:  "message",
					Label: truncateRunes(c.Title, maxQuickReplyLabel),
					Text:  c.Title,
				},
			})
		}
		if len(items) > 0 {
			msg.QuickReply = &QuickReply{Items: items}
		}
	}
	return []Message{msg}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
