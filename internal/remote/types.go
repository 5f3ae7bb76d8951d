package remote

import (
	"strconv"
	"strings"
)

// Record mirrors one entry of the remote /posts collection. The public
// placeholder service only knows title/body/userId; text and category are
// filled in by the simulated server and by quoter's own pushes.
type Record struct {
	ID       int64  `json:"id,omitempty"`
	UserID   int64  `json:"userId,omitempty"`
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	Text     string `json:"text,omitempty"`
	Category string `json:"category,omitempty"`
}

// QuoteText returns the text-bearing field of the record.
func (r Record) QuoteText() string {
	if text := strings.TrimSpace(r.Text); text != "" {
		return text
	}
	return strings.TrimSpace(r.Title)
}

// ServerID returns the record id in the opaque string form stored on quotes.
func (r Record) ServerID() string {
	if r.ID == 0 {
		return ""
	}
	return strconv.FormatInt(r.ID, 10)
}

// pushPayload is the body POSTed for a local quote. title/body keep the
// placeholder service happy; text/category carry the quote itself.
type pushPayload struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	UserID   int64  `json:"userId"`
	Text     string `json:"text"`
	Category string `json:"category"`
}
