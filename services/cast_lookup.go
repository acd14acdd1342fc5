package services

import "github.com/fenilmodi00/farcaster-gateway/models"

// CastEntity says which upstream record kinds a lookup may return
type CastEntity string

const (
	CastEntityCast   CastEntity = "cast"
	CastEntityReply  CastEntity = "reply"
	CastEntityEither CastEntity = "either"
)

// LookupKey is the identifier a lookup filters on
type LookupKey string

const (
	LookupKeyHash LookupKey = "hash"
	LookupKeyURL  LookupKey = "url"
)

// CastLookupVariant selects one upstream document family
type CastLookupVariant struct {
	Entity CastEntity
	Key    LookupKey
}

func (v CastLookupVariant) String() string {
	return string(v.Entity) + "-by-" + string(v.Key)
}

// CastLookupPlan is the outcome of variant selection. When Resolve is set the
// cast URL must be turned into a hash before Variant is executed.
type CastLookupPlan struct {
	Resolve bool
	Variant CastLookupVariant
}

// PlanCastLookup picks the lookup for a cast-oriented request. It depends only
// on its arguments.
func PlanCastLookup(castType models.CastType, hasHash, hasURL bool) (CastLookupPlan, error) {
	var plan CastLookupPlan

	// a reply or untyped URL has to be resolved to a hash first
	if (castType == models.CastTypeReply || castType == models.CastTypeUnspecified) && !hasHash && hasURL {
		plan.Resolve = true
		hasHash = true
	}

	switch {
	case castType == models.CastTypeCast && hasHash:
		plan.Variant = CastLookupVariant{Entity: CastEntityCast, Key: LookupKeyHash}
	case castType == models.CastTypeReply && hasHash:
		plan.Variant = CastLookupVariant{Entity: CastEntityReply, Key: LookupKeyHash}
	case castType == models.CastTypeUnspecified && hasHash:
		plan.Variant = CastLookupVariant{Entity: CastEntityEither, Key: LookupKeyHash}
	case castType == models.CastTypeCast && hasURL:
		plan.Variant = CastLookupVariant{Entity: CastEntityCast, Key: LookupKeyURL}
	default:
		return CastLookupPlan{}, ErrInvalidParameters
	}

	return plan, nil
}
