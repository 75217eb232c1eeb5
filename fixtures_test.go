package spacetraveling

import (
	"encoding/json"
	"fmt"

	"github.com/eringen/spacetraveling/prismic"
)

const testPublished = "2021-03-15T19:25:28+0000"

func strp(s string) *string { return &s }

func listDoc(uid string) prismic.Document {
	data, _ := json.Marshal(map[string]string{
		"title":    "Title " + uid,
		"subtitle": "Subtitle " + uid,
		"author":   "Author " + uid,
	})
	return prismic.Document{
		ID:                   "id-" + uid,
		UID:                  strp(uid),
		Type:                 "posts",
		FirstPublicationDate: strp(testPublished),
		LastPublicationDate:  strp(testPublished),
		Data:                 data,
	}
}

func detailDoc(uid string, content string) prismic.Document {
	raw := fmt.Sprintf(`{
		"title": "Title %[1]s",
		"subtitle": "Subtitle %[1]s",
		"author": "Author %[1]s",
		"banner": {"url": "https://images.prismic.io/%[1]s.png"},
		"content": %[2]s
	}`, uid, content)
	return prismic.Document{
		ID:                   "id-" + uid,
		UID:                  strp(uid),
		Type:                 "posts",
		FirstPublicationDate: strp(testPublished),
		LastPublicationDate:  strp(testPublished),
		Data:                 json.RawMessage(raw),
	}
}

func respPage(n int, next string, docs ...prismic.Document) *prismic.Response {
	r := &prismic.Response{
		Page:        n,
		ResultsSize: len(docs),
		Results:     docs,
	}
	if next != "" {
		r.NextPage = strp(next)
	}
	return r
}

func uids(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.UID
	}
	return out
}

func listDocJSON(uid string) string {
	raw, _ := json.Marshal(listDoc(uid))
	return string(raw)
}
