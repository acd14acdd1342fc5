package services

import (
	"context"
	"strconv"

	"github.com/fenilmodi00/farcaster-gateway/models"
	"github.com/fenilmodi00/farcaster-gateway/shared"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// CastService answers cast embeds and cast earnings requests
type CastService struct {
	graphql  GraphQLExecutor
	resolver *CastResolver
	logger   *logrus.Entry
}

// NewCastService creates a cast service
func NewCastService(graphql GraphQLExecutor, resolver *CastResolver) *CastService {
	return &CastService{
		graphql:  graphql,
		resolver: resolver,
		logger:   logrus.WithField("component", "CastService"),
	}
}

// CastEmbeds returns the embeds of the identified cast, or nil when the upstream has no record.
func (s *CastService) CastEmbeds(ctx context.Context, query models.CastQuery) (*models.CastEmbeds, error) {
	record, err := s.lookup(ctx, query, SelectEmbeds)
	if err != nil || record == nil {
		return nil, err
	}

	embeds := make([]models.Embed, 0, len(record.Embeds))
	for _, raw := range record.Embeds {
		var embed models.Embed
		if value := gjson.GetBytes(raw, "url"); value.Type == gjson.String {
			url := value.String()
			embed.URL = &url
		}
		embeds = append(embeds, embed)
	}

	return &models.CastEmbeds{Embeds: embeds}, nil
}

// CastEarnings returns the earnings breakdown and creator of the identified cast,
// or nil when the upstream has no record.
func (s *CastService) CastEarnings(ctx context.Context, query models.CastQuery) (*models.CastEarnings, error) {
	record, err := s.lookup(ctx, query, SelectEarnings)
	if err != nil || record == nil {
		return nil, err
	}

	result := &models.CastEarnings{
		Earnings: s.BuildEarningsBreakdown(record.MoxieEarningsSplit),
	}

	if author := record.CastedBy; author != nil {
		fid, err := strconv.ParseInt(author.UserID, 10, 64)
		if err != nil {
			fid = 0
		}
		result.Creator.Fid = fid
		if len(author.Fnames) > 0 {
			username := author.Fnames[0]
			result.Creator.Username = &username
		}
		result.Creator.ProfileImage = author.ProfileImage
	}

	if record.Channel != nil {
		result.Channel = &models.ChannelInfo{
			Name:     record.Channel.Name,
			ImageURL: record.Channel.ImageURL,
		}
	}

	return result, nil
}

// BuildEarningsBreakdown folds splits into a breakdown, warning about unknown earner types.
func (s *CastService) BuildEarningsBreakdown(splits []models.EarningsSplit) models.EarningsBreakdown {
	var breakdown models.EarningsBreakdown
	for _, split := range splits {
		if !breakdown.Add(split) {
			s.logger.WithFields(logrus.Fields{
				"earner_type": split.EarnerType,
				"amount":      split.EarningsAmount,
			}).Warn("Unknown earner type")
		}
	}
	return breakdown
}

// lookup resolves the query parameters, runs the matching document and
// normalizes the cast or reply it returns.
func (s *CastService) lookup(ctx context.Context, query models.CastQuery, selection CastSelection) (*CastRecord, error) {
	plan, err := PlanCastLookup(query.Type, query.Hash != "", query.URL != "")
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryValidation, CodeInvalidParameters, "parameters select no lookup", "CastService", "lookup", err).
			WithDetails(map[string]interface{}{"type": query.Type, "has_hash": query.Hash != "", "has_url": query.URL != ""})
	}

	hash := query.Hash
	if plan.Resolve {
		hash, err = s.resolver.Resolve(ctx, query.URL)
		if err != nil {
			return nil, err
		}
	}

	document, err := CastDocument(selection, plan.Variant)
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryConfiguration, CodeGraphQLFailed, "no document for lookup", "CastService", "lookup", err)
	}

	variables := map[string]interface{}{}
	switch plan.Variant.Key {
	case LookupKeyHash:
		variables["hash"] = hash
	case LookupKeyURL:
		variables["url"] = query.URL
	}

	s.logger.WithFields(logrus.Fields{
		"variant":   plan.Variant.String(),
		"selection": selection,
		"resolved":  plan.Resolve,
	}).Debug("Executing cast lookup")

	var data castDocumentData
	found, err := s.graphql.Execute(ctx, document, variables, &data)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return data.Record(), nil
}
