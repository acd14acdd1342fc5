package models

// Earner types reported in a Moxie earnings split
const (
	EarnerTypeChannelFans = "CHANNEL_FANS"
	EarnerTypeCreator     = "CREATOR"
	EarnerTypeNetwork     = "NETWORK"
	EarnerTypeCreatorFans = "CREATOR_FANS"
)

type EarningsSplit struct {
	EarningsAmount float64 `json:"earningsAmount"`
	EarnerType     string  `json:"earnerType"`
}

// EarningsBreakdown accumulates splits per earner category.
// Total is the sum of every split added, recognized or not.
type EarningsBreakdown struct {
	ChannelFans float64 `json:"channelFans"`
	Creator     float64 `json:"creator"`
	Network     float64 `json:"network"`
	CreatorFans float64 `json:"creatorFans"`
	Total       float64 `json:"total"`
}

// Add folds one split into the breakdown and reports whether its earner type was recognized.
func (e *EarningsBreakdown) Add(split EarningsSplit) bool {
	recognized := true
	switch split.EarnerType {
	case EarnerTypeChannelFans:
		e.ChannelFans += split.EarningsAmount
	case EarnerTypeCreator:
		e.Creator += split.EarningsAmount
	case EarnerTypeNetwork:
		e.Network += split.EarningsAmount
	case EarnerTypeCreatorFans:
		e.CreatorFans += split.EarningsAmount
	default:
		recognized = false
	}
	e.Total += split.EarningsAmount
	return recognized
}
