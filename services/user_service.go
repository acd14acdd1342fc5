package services

import (
	"context"
	"strconv"

	"github.com/fenilmodi00/farcaster-gateway/models"
	"github.com/fenilmodi00/farcaster-gateway/shared"
)

// UserService answers user oriented requests
type UserService struct {
	graphql   GraphQLExecutor
	usernames UsernameLookup
}

// NewUserService creates a user service
func NewUserService(graphql GraphQLExecutor, usernames UsernameLookup) *UserService {
	return &UserService{
		graphql:   graphql,
		usernames: usernames,
	}
}

type earningStatWindow struct {
	FarcasterMoxieEarningStat []models.EarningStat `json:"FarcasterMoxieEarningStat"`
}

func (w *earningStatWindow) first() *models.EarningStat {
	if w == nil || len(w.FarcasterMoxieEarningStat) == 0 {
		return nil
	}
	stat := w.FarcasterMoxieEarningStat[0]
	return &stat
}

type userEarningsData struct {
	Today    *earningStatWindow `json:"today"`
	Weekly   *earningStatWindow `json:"weekly"`
	Lifetime *earningStatWindow `json:"lifetime"`
}

// UserEarnings returns the today, weekly and lifetime earnings of fid.
// A window without stats is nil; a nil result means the upstream returned no data.
func (s *UserService) UserEarnings(ctx context.Context, fid uint64) (*models.UserEarnings, error) {
	var data userEarningsData
	found, err := s.graphql.Execute(ctx, userEarningsDocument, map[string]interface{}{
		"fid": strconv.FormatUint(fid, 10),
	}, &data)
	if err != nil || !found {
		return nil, err
	}

	return &models.UserEarnings{
		Today:    data.Today.first(),
		Weekly:   data.Weekly.first(),
		Lifetime: data.Lifetime.first(),
	}, nil
}

type farScoresData struct {
	Socials *struct {
		Social []struct {
			SocialCapital *struct {
				SocialCapitalScore float64 `json:"socialCapitalScore"`
				SocialCapitalRank  int64   `json:"socialCapitalRank"`
			} `json:"socialCapital"`
		} `json:"Social"`
	} `json:"Socials"`
}

// FarScore returns the social capital score and rank of handle, or nil when there is none.
func (s *UserService) FarScore(ctx context.Context, handle string) (*models.FarScore, error) {
	var data farScoresData
	found, err := s.graphql.Execute(ctx, farScoresDocument, map[string]interface{}{
		"handle": handle,
	}, &data)
	if err != nil || !found {
		return nil, err
	}

	if data.Socials == nil || len(data.Socials.Social) == 0 || data.Socials.Social[0].SocialCapital == nil {
		return nil, nil
	}

	capital := data.Socials.Social[0].SocialCapital
	return &models.FarScore{
		FarScore: capital.SocialCapitalScore,
		FarRank:  capital.SocialCapitalRank,
	}, nil
}

// FidByHandle returns the FID registered for handle or ErrUserNotFound
func (s *UserService) FidByHandle(ctx context.Context, handle string) (*models.FidResult, error) {
	fid, found, err := s.usernames.FidByUsername(ctx, handle)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, shared.NewServiceError(shared.ErrorCategoryNotFound, CodeUserNotFound, "no user registered for handle", "UserService", "FidByHandle", ErrUserNotFound)
	}
	return &models.FidResult{Fid: fid}, nil
}
