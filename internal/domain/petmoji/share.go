package petmoji

import "net/url"

// ShareParam is the query parameter that carries the shared emoji.
const ShareParam = "emoji"

// ShareLink returns page with the emoji set as a query parameter. An empty
// emoji removes the parameter.
func ShareLink(page *url.URL, emoji string) string {
	u := *page
	q := u.Query()
	if emoji != "" {
		q.Set(ShareParam, emoji)
	} else {
		q.Del(ShareParam)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// EmojiFromQuery reads a shared emoji back. Invalid values are ignored.
func EmojiFromQuery(q url.Values) (string, bool) {
	e := q.Get(ShareParam)
	if !ValidEmoji(e) {
		return "", false
	}
	return e, true
}
