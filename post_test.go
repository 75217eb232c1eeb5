package spacetraveling

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eringen/spacetraveling/richtext"
)

var displayDate = regexp.MustCompile(`^\d{2} [a-zç]{3}\. \d{4}$`)

func TestNormalizeListItem(t *testing.T) {
	post, err := NormalizeListItem(listDoc("como-utilizar-hooks"))
	require.NoError(t, err)
	require.Equal(t, Post{
		UID:                  "como-utilizar-hooks",
		FirstPublicationDate: "15 mar. 2021",
		Title:                "Title como-utilizar-hooks",
		Subtitle:             "Subtitle como-utilizar-hooks",
		Author:               "Author como-utilizar-hooks",
	}, post)
	require.Equal(t, "/post/como-utilizar-hooks/", post.Link())
}

func TestNormalizeListItemDatePattern(t *testing.T) {
	dates := []string{
		"2021-01-01T00:00:00+0000",
		"2021-02-28T12:00:00+0000",
		"2020-05-09T23:59:59-0300",
		"2019-09-30T10:00:00Z",
		"2022-12-31T23:00:00.123+01:00",
	}
	for _, d := range dates {
		doc := listDoc("x")
		doc.FirstPublicationDate = strp(d)
		post, err := NormalizeListItem(doc)
		require.NoError(t, err, d)
		require.Regexp(t, displayDate, post.FirstPublicationDate, d)
	}
}

func TestNormalizeListItemNullDate(t *testing.T) {
	doc := listDoc("draft")
	doc.FirstPublicationDate = nil
	post, err := NormalizeListItem(doc)
	require.NoError(t, err)
	require.Equal(t, "", post.FirstPublicationDate)
}

func TestNormalizeListItemInvalidDate(t *testing.T) {
	doc := listDoc("x")
	doc.FirstPublicationDate = strp("yesterday")
	_, err := NormalizeListItem(doc)
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestNormalizeListItemMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field string
	}{
		{"no data", ``, "data"},
		{"null data", `null`, "data"},
		{"no title", `{"subtitle":"s","author":"a"}`, "data.title"},
		{"no subtitle", `{"title":"t","author":"a"}`, "data.subtitle"},
		{"null author", `{"title":"t","subtitle":"s","author":null}`, "data.author"},
		{"wrong type", `{"title":1,"subtitle":"s","author":"a"}`, "decode data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := listDoc("x")
			doc.Data = []byte(tt.data)
			_, err := NormalizeListItem(doc)
			require.ErrorIs(t, err, ErrMalformedRecord)
			require.Contains(t, err.Error(), tt.field)
		})
	}

	doc := listDoc("x")
	doc.UID = nil
	_, err := NormalizeListItem(doc)
	require.ErrorIs(t, err, ErrMalformedRecord)
	require.Contains(t, err.Error(), "uid")
}

func TestNormalizeListItemEmptyStringsAreValid(t *testing.T) {
	doc := listDoc("x")
	doc.Data = []byte(`{"title":"","subtitle":"","author":""}`)
	_, err := NormalizeListItem(doc)
	require.NoError(t, err)
}

func TestDateFormatterLocales(t *testing.T) {
	raw := strp("2021-08-03T15:00:00+0000")

	pt := NewDateFormatter("pt-BR", "America/Sao_Paulo")
	got, err := pt.Format(raw)
	require.NoError(t, err)
	require.Equal(t, "03 ago. 2021", got)

	en := NewDateFormatter("en-US", "UTC")
	got, err = en.Format(raw)
	require.NoError(t, err)
	require.Equal(t, "03 Aug. 2021", got)

	// Unknown locale and zone fall back to pt-BR, São Paulo.
	fallback := NewDateFormatter("not a locale", "Nowhere/Nothing")
	got, err = fallback.Format(strp("2021-03-01T01:00:00+0000"))
	require.NoError(t, err)
	require.Equal(t, "28 fev. 2021", got)
}

func TestAssembleDetail(t *testing.T) {
	doc := detailDoc("hooks", `[
		{"heading": "Proin et varius", "body": [
			{"type": "paragraph", "text": "Nullam dolor sapien", "spans": []},
			{"type": "image", "url": "https://images.prismic.io/x.png", "alt": "x"}
		]},
		{"heading": "Cras laoreet", "body": [
			{"type": "list-item", "text": "one two", "spans": [{"start":0,"end":3,"type":"strong"}]}
		]}
	]`)

	detail, minutes, err := AssembleDetail(doc)
	require.NoError(t, err)
	require.Equal(t, "hooks", detail.UID)
	require.Equal(t, "15 mar. 2021", detail.FirstPublicationDate)
	require.Equal(t, "Title hooks", detail.Title)
	require.Equal(t, "Author hooks", detail.Author)
	require.Equal(t, "https://images.prismic.io/hooks.png", detail.Banner.URL)
	require.Len(t, detail.Content, 2)
	require.Equal(t, "Proin et varius", detail.Content[0].Heading)
	require.Equal(t, []richtext.Block{
		{Type: "paragraph", Text: "Nullam dolor sapien", Spans: []richtext.Span{}},
		{Type: "image", URL: "https://images.prismic.io/x.png", Alt: "x"},
	}, detail.Content[0].Body)
	require.Equal(t, 1, minutes)
}

func TestAssembleDetailRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no heading", `[{"body": []}]`, "heading"},
		{"no body", `[{"heading": "h"}]`, "body"},
		{"duplicate heading", `[{"heading": "h", "body": []}, {"heading": "h", "body": []}]`, "duplicate heading"},
		{"no content", `null`, "data.content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := AssembleDetail(detailDoc("x", tt.content))
			require.ErrorIs(t, err, ErrMalformedRecord)
			require.Contains(t, err.Error(), tt.want)
		})
	}

	doc := detailDoc("x", `[]`)
	doc.Data = []byte(`{"title":"t","author":"a","banner":{}}`)
	_, _, err := AssembleDetail(doc)
	require.ErrorIs(t, err, ErrMalformedRecord)
	require.Contains(t, err.Error(), "banner.url")
}

func TestReadTimeMinutes(t *testing.T) {
	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}

	tests := []struct {
		name    string
		content []ContentBlock
		want    int
	}{
		{"empty", nil, 0},
		{"one word", []ContentBlock{{Heading: "Hello"}}, 1},
		{"exactly 400", []ContentBlock{
			{Heading: words(10), Body: []richtext.Block{{Type: "paragraph", Text: words(190)}}},
			{Heading: words(50), Body: []richtext.Block{{Type: "paragraph", Text: words(150)}}},
		}, 2},
		{"401 rounds up", []ContentBlock{{Heading: words(1), Body: []richtext.Block{{Type: "paragraph", Text: words(400)}}}}, 3},
		{"images count zero", []ContentBlock{{Heading: words(200), Body: []richtext.Block{{Type: "image", URL: "x"}}}}, 1},
		{"double spaces count", []ContentBlock{{Heading: "a  b"}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ReadTimeMinutes(tt.content))
		})
	}

	// Runs of spaces produce empty tokens that still count.
	require.Equal(t, 1, ReadTimeMinutes([]ContentBlock{{Heading: strings.Repeat(" ", 199)}}))
	require.Equal(t, 2, ReadTimeMinutes([]ContentBlock{{Heading: strings.Repeat(" ", 200)}}))
}
