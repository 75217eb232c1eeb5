package spacetraveling

import (
	"encoding/json"
	"fmt"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/richtext"
)

// Post is the list view of a post.
type Post struct {
	UID                  string
	FirstPublicationDate string // display string, e.g. "15 mar. 2021"; "" when unpublished
	Title                string
	Subtitle             string
	Author               string
}

// PostDetail is the post page view.
type PostDetail struct {
	UID                  string
	FirstPublicationDate string
	Title                string
	Author               string
	Banner               Banner
	Content              []ContentBlock
}

type Banner struct {
	URL string
}

// ContentBlock is one titled section of a post. Heading is unique within a
// post and keys the block.
type ContentBlock struct {
	Heading string
	Body    []richtext.Block
}

// Link returns the site path of the post.
func (p Post) Link() string {
	return "/post/" + p.UID + "/"
}

// Pointer fields tell a missing or null field apart from an empty one.
type listData struct {
	Title    *string `json:"title"`
	Subtitle *string `json:"subtitle"`
	Author   *string `json:"author"`
}

type detailData struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Banner *struct {
		URL *string `json:"url"`
	} `json:"banner"`
	Content *[]struct {
		Heading *string           `json:"heading"`
		Body    *[]richtext.Block `json:"body"`
	} `json:"content"`
}

// Normalizer maps raw records onto view entities.
type Normalizer struct {
	Dates DateFormatter
}

// DefaultNormalizer formats dates in pt-BR, São Paulo time.
var DefaultNormalizer = Normalizer{Dates: NewDateFormatter("pt-BR", "America/Sao_Paulo")}

// NormalizeListItem maps raw onto a Post using DefaultNormalizer.
func NormalizeListItem(raw prismic.Document) (Post, error) {
	return DefaultNormalizer.ListItem(raw)
}

// AssembleDetail maps raw onto a PostDetail and estimates its reading time
// using DefaultNormalizer.
func AssembleDetail(raw prismic.Document) (PostDetail, int, error) {
	return DefaultNormalizer.Detail(raw)
}

// ListItem maps raw onto a Post.
func (n Normalizer) ListItem(raw prismic.Document) (Post, error) {
	if raw.UID == nil {
		return Post{}, missingField("", "uid")
	}
	uid := *raw.UID

	var data listData
	if err := decodeData(uid, raw.Data, &data); err != nil {
		return Post{}, err
	}
	switch {
	case data.Title == nil:
		return Post{}, missingField(uid, "data.title")
	case data.Subtitle == nil:
		return Post{}, missingField(uid, "data.subtitle")
	case data.Author == nil:
		return Post{}, missingField(uid, "data.author")
	}

	date, err := n.Dates.Format(raw.FirstPublicationDate)
	if err != nil {
		return Post{}, fmt.Errorf("%s: %w", uid, err)
	}

	return Post{
		UID:                  uid,
		FirstPublicationDate: date,
		Title:                *data.Title,
		Subtitle:             *data.Subtitle,
		Author:               *data.Author,
	}, nil
}

// Detail maps raw onto a PostDetail and returns its reading time in minutes.
// Block bodies are shallow copies of the raw units.
func (n Normalizer) Detail(raw prismic.Document) (PostDetail, int, error) {
	if raw.UID == nil {
		return PostDetail{}, 0, missingField("", "uid")
	}
	uid := *raw.UID

	var data detailData
	if err := decodeData(uid, raw.Data, &data); err != nil {
		return PostDetail{}, 0, err
	}
	switch {
	case data.Title == nil:
		return PostDetail{}, 0, missingField(uid, "data.title")
	case data.Author == nil:
		return PostDetail{}, 0, missingField(uid, "data.author")
	case data.Banner == nil || data.Banner.URL == nil:
		return PostDetail{}, 0, missingField(uid, "data.banner.url")
	case data.Content == nil:
		return PostDetail{}, 0, missingField(uid, "data.content")
	}

	date, err := n.Dates.Format(raw.FirstPublicationDate)
	if err != nil {
		return PostDetail{}, 0, fmt.Errorf("%s: %w", uid, err)
	}

	seen := make(map[string]struct{}, len(*data.Content))
	content := make([]ContentBlock, 0, len(*data.Content))
	for i, c := range *data.Content {
		if c.Heading == nil {
			return PostDetail{}, 0, missingField(uid, fmt.Sprintf("data.content[%d].heading", i))
		}
		if c.Body == nil {
			return PostDetail{}, 0, missingField(uid, fmt.Sprintf("data.content[%d].body", i))
		}
		if _, dup := seen[*c.Heading]; dup {
			return PostDetail{}, 0, fmt.Errorf("%w: %s: duplicate heading %q", ErrMalformedRecord, uid, *c.Heading)
		}
		seen[*c.Heading] = struct{}{}
		content = append(content, ContentBlock{
			Heading: *c.Heading,
			Body:    append([]richtext.Block(nil), *c.Body...),
		})
	}

	detail := PostDetail{
		UID:                  uid,
		FirstPublicationDate: date,
		Title:                *data.Title,
		Author:               *data.Author,
		Banner:               Banner{URL: *data.Banner.URL},
		Content:              content,
	}
	return detail, ReadTimeMinutes(detail.Content), nil
}

func decodeData(uid string, raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return missingField(uid, "data")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s: decode data: %v", ErrMalformedRecord, uid, err)
	}
	return nil
}
