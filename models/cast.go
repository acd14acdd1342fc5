package models

import "fmt"

// CastType narrows which upstream record kind a request refers to.
// The zero value means the caller did not say.
type CastType string

const (
	CastTypeUnspecified CastType = ""
	CastTypeCast        CastType = "cast"
	CastTypeReply       CastType = "reply"
)

// ParseCastType accepts "", "cast" and "reply"
func ParseCastType(raw string) (CastType, error) {
	switch CastType(raw) {
	case CastTypeUnspecified, CastTypeCast, CastTypeReply:
		return CastType(raw), nil
	default:
		return CastTypeUnspecified, fmt.Errorf("unknown cast type %q", raw)
	}
}

// CastQuery carries the identifying parameters of a cast-oriented request
type CastQuery struct {
	Type CastType
	Hash string
	URL  string
}

type Embed struct {
	URL *string `json:"url"`
}

type CastEmbeds struct {
	Embeds []Embed `json:"embeds"`
}

type CreatorInfo struct {
	Fid          int64   `json:"fid"`
	Username     *string `json:"username"`
	ProfileImage *string `json:"profileImage"`
}

type ChannelInfo struct {
	Name     string  `json:"name"`
	ImageURL *string `json:"imageUrl"`
}

type CastEarnings struct {
	Earnings EarningsBreakdown `json:"earnings"`
	Creator  CreatorInfo       `json:"creator"`
	Channel  *ChannelInfo      `json:"channel"`
}
