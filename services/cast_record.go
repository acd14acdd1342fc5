package services

import (
	"encoding/json"

	"github.com/fenilmodi00/farcaster-gateway/models"
)

// RecordKind tells whether a CastRecord came from the cast or the reply list
type RecordKind string

const (
	RecordKindCast  RecordKind = "cast"
	RecordKindReply RecordKind = "reply"
)

// CastRecord is a cast or reply as returned by any cast document.
// Fields a document did not select are left empty.
type CastRecord struct {
	Kind               RecordKind             `json:"-"`
	CastedBy           *CastAuthor            `json:"castedBy"`
	Channel            *CastChannel           `json:"channel"`
	MoxieEarningsSplit []models.EarningsSplit `json:"moxieEarningsSplit"`
	Embeds             []json.RawMessage      `json:"embeds"`
}

type CastAuthor struct {
	UserID       string   `json:"userId"`
	ProfileImage *string  `json:"profileImage"`
	Fnames       []string `json:"fnames"`
}

type CastChannel struct {
	Name     string  `json:"name"`
	ImageURL *string `json:"imageUrl"`
}

// castDocumentData is the data object shared by every cast document
type castDocumentData struct {
	FarcasterCasts *struct {
		Cast []CastRecord `json:"Cast"`
	} `json:"FarcasterCasts"`
	FarcasterReplies *struct {
		Reply []CastRecord `json:"Reply"`
	} `json:"FarcasterReplies"`
}

// Record returns the first cast, or failing that the first reply, or nil.
func (d castDocumentData) Record() *CastRecord {
	if d.FarcasterCasts != nil && len(d.FarcasterCasts.Cast) > 0 {
		record := d.FarcasterCasts.Cast[0]
		record.Kind = RecordKindCast
		return &record
	}
	if d.FarcasterReplies != nil && len(d.FarcasterReplies.Reply) > 0 {
		record := d.FarcasterReplies.Reply[0]
		record.Kind = RecordKindReply
		return &record
	}
	return nil
}
