package handlers

import (
	"net/http"

	"boardroom-backend/internal/service/mention"
	"boardroom-backend/pkg/api"
)

// Mentions returns a handler for GET /api/mentions?q= offering parser's
// handles. A nil parser offers the defaults.
//
// q is the composer text; suggestions are computed from the fragment after
// its last "@". Without q the whole list is returned.
func Mentions(parser *mention.Parser) http.HandlerFunc {
	if parser == nil {
		parser = mention.NewParser(nil, nil)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var found []mention.Mention
		if q, ok := r.URL.Query()["q"]; ok {
			found = parser.Suggest(q[0])
		} else {
			found = parser.Mentions()
		}

		resp := api.MentionsResponse{Mentions: make([]api.Mention, len(found))}
		for i, m := range found {
			resp.Mentions[i] = api.Mention{ID: m.ID, Display: m.Display, Name: m.Name}
		}
		api.Success(w, http.StatusOK, resp)
	}
}
