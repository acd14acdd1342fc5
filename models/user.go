package models

// EarningStat is one time window of Moxie earnings for a user
type EarningStat struct {
	AllEarningsAmount      float64 `json:"allEarningsAmount"`
	CastEarningsAmount     float64 `json:"castEarningsAmount"`
	FrameDevEarningsAmount float64 `json:"frameDevEarningsAmount"`
	OtherEarningsAmount    float64 `json:"otherEarningsAmount"`
}

type UserEarnings struct {
	Today    *EarningStat `json:"today"`
	Weekly   *EarningStat `json:"weekly"`
	Lifetime *EarningStat `json:"lifetime"`
}

type FarScore struct {
	FarScore float64 `json:"farScore"`
	FarRank  int64   `json:"farRank"`
}

type FidResult struct {
	Fid uint64 `json:"fid"`
}
