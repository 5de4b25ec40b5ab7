package tgz

import (
	"context"

	"github.com/go-telegram/bot/models"
)

// InlineType is the kind of one inline query result.
type InlineType string

const (
	InlineArticle  InlineType = "article"
	InlinePhoto    InlineType = "photo"
	InlineGif      InlineType = "gif"
	InlineMpeg4Gif InlineType = "mpeg4_gif"
	InlineVideo    InlineType = "video"
	InlineAudio    InlineType = "audio"
	InlineVoice    InlineType = "voice"
	InlineDocument InlineType = "document"
	InlineLocation InlineType = "location"
	InlineVenue    InlineType = "venue"
)

// Inline builds one inline query result for answerInlineQuery.
type Inline struct {
	kind        InlineType
	parseMode   models.ParseMode
	id          string
	title       string
	description string
	text        string
	kbdRows     [][]Button
	params      map[string]any
	fileURL     string
	fileID      string
	thumbURL    string
	mimeType    string
	latitude    float64
	longitude   float64
	address     string
}

func newInline(kind InlineType, parseMode models.ParseMode) *Inline {
	switch kind {
	case InlineArticle, InlinePhoto, InlineGif, InlineMpeg4Gif, InlineVideo,
		InlineAudio, InlineVoice, InlineDocument, InlineLocation, InlineVenue:
	default:
		kind = InlineArticle
	}
	return &Inline{kind: kind, parseMode: parseMode}
}

// ID sets the unique result id.
func (i *Inline) ID(id string) *Inline {
	i.id = id
	return i
}

// Title sets the result title.
func (i *Inline) Title(title string) *Inline {
	i.title = title
	return i
}

// Description sets the result description.
func (i *Inline) Description(description string) *Inline {
	i.description = description
	return i
}

// Text sets the message text (articles) or caption (media results).
func (i *Inline) Text(text string) *Inline {
	i.text = text
	return i
}

// ParseMode overrides the parse mode for this result's content.
func (i *Inline) ParseMode(mode models.ParseMode) *Inline {
	i.parseMode = mode
	return i
}

// FileURL points the result at a media URL.
func (i *Inline) FileURL(url string) *Inline {
	i.fileURL = url
	return i
}

// FileID points the result at an already uploaded file.
func (i *Inline) FileID(id string) *Inline {
	i.fileID = id
	return i
}

// Thumb sets the thumbnail URL.
func (i *Inline) Thumb(url string) *Inline {
	i.thumbURL = url
	return i
}

// MimeType sets the MIME type for video and document results.
func (i *Inline) MimeType(mime string) *Inline {
	i.mimeType = mime
	return i
}

// Coordinates sets the location for location and venue results.
func (i *Inline) Coordinates(latitude, longitude float64) *Inline {
	i.latitude = latitude
	i.longitude = longitude
	return i
}

// Address sets the venue address.
func (i *Inline) Address(address string) *Inline {
	i.address = address
	return i
}

// Kbd attaches an inline keyboard to the result's message.
func (i *Inline) Kbd(rows [][]Button) *Inline {
	i.kbdRows = rows
	return i
}

// Params merges arbitrary extra fields into the result object.
func (i *Inline) Params(params map[string]any) *Inline {
	i.params = params
	return i
}

// Build assembles the result object for answerInlineQuery.
func (i *Inline) Build() (map[string]any, error) {
	result := map[string]any{
		"type": string(i.kind),
		"id":   i.id,
	}

	switch i.kind {
	case InlineArticle:
		result["title"] = i.title
		result["description"] = i.description
		content := map[string]any{"message_text": i.text}
		if i.parseMode != "" {
			content["parse_mode"] = i.parseMode
		}
		result["input_message_content"] = content
	case InlineLocation:
		result["title"] = i.title
		result["latitude"] = i.latitude
		result["longitude"] = i.longitude
	case InlineVenue:
		result["title"] = i.title
		result["latitude"] = i.latitude
		result["longitude"] = i.longitude
		result["address"] = i.address
	default:
		i.buildMedia(result)
	}

	if len(i.kbdRows) > 0 {
		markup, err := InlineKeyboard(i.kbdRows)
		if err != nil {
			return nil, err
		}
		result["reply_markup"] = markup
	}
	for k, v := range i.params {
		result[k] = v
	}
	return result, nil
}

// mediaKeys maps a result kind to its URL and file-id parameter names.
var mediaKeys = map[InlineType][2]string{
	InlinePhoto:    {"photo_url", "photo_file_id"},
	InlineGif:      {"gif_url", "gif_file_id"},
	InlineMpeg4Gif: {"mpeg4_url", "mpeg4_file_id"},
	InlineVideo:    {"video_url", "video_file_id"},
	InlineAudio:    {"audio_url", "audio_file_id"},
	InlineVoice:    {"voice_url", "voice_file_id"},
	InlineDocument: {"document_url", "document_file_id"},
}

func (i *Inline) buildMedia(result map[string]any) {
	keys := mediaKeys[i.kind]
	if i.fileID != "" {
		result[keys[1]] = i.fileID
	} else {
		result[keys[0]] = i.fileURL
		thumb := i.thumbURL
		if thumb == "" {
			thumb = i.fileURL
		}
		switch i.kind {
		case InlinePhoto, InlineGif, InlineMpeg4Gif, InlineVideo, InlineDocument:
			result["thumbnail_url"] = thumb
		}
	}
	if i.title != "" {
		result["title"] = i.title
	}
	if i.description != "" {
		result["description"] = i.description
	}
	if i.text != "" {
		result["caption"] = i.text
		if i.parseMode != "" {
			result["parse_mode"] = i.parseMode
		}
	}
	if i.mimeType != "" {
		result["mime_type"] = i.mimeType
	} else if i.kind == InlineVideo {
		result["mime_type"] = "video/mp4"
	}
}

// AnswerInlineQuery answers the bound update's inline query with the given
// results. Extra params (cache_time, is_personal, next_offset) are merged in.
func (t *TGZ) AnswerInlineQuery(ctx context.Context, results []*Inline, params map[string]any) (*APIResponse, error) {
	built := make([]map[string]any, 0, len(results))
	for _, r := range results {
		obj, err := r.Build()
		if err != nil {
			return nil, err
		}
		built = append(built, obj)
	}
	merged := map[string]any{
		"inline_query_id": t.Update().QueryID(),
		"results":         built,
	}
	for k, v := range params {
		merged[k] = v
	}
	return t.api.Call(ctx, "answerInlineQuery", merged)
}
