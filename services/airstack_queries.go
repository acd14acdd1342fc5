package services

import (
	"fmt"
	"strings"
)

// CastSelection names the payload a cast document asks for
type CastSelection string

const (
	SelectEmbeds   CastSelection = "embeds"
	SelectEarnings CastSelection = "earnings"
)

const castEarningsFields = `castedBy {
        userId
        profileImage
        fnames
      }
      channel {
        name
        imageUrl
      }
      moxieEarningsSplit {
        earningsAmount
        earnerType
      }`

var castSelectionFields = map[CastSelection]string{
	SelectEmbeds:   "embeds",
	SelectEarnings: castEarningsFields,
}

type castDocumentKey struct {
	Selection CastSelection
	Variant   CastLookupVariant
}

// castDocuments maps every supported selection and variant to its GraphQL document
var castDocuments = buildCastDocuments()

func buildCastDocuments() map[castDocumentKey]string {
	variants := []CastLookupVariant{
		{Entity: CastEntityCast, Key: LookupKeyHash},
		{Entity: CastEntityReply, Key: LookupKeyHash},
		{Entity: CastEntityEither, Key: LookupKeyHash},
		{Entity: CastEntityCast, Key: LookupKeyURL},
	}

	documents := make(map[castDocumentKey]string, len(variants)*len(castSelectionFields))
	for selection, fields := range castSelectionFields {
		for _, variant := range variants {
			documents[castDocumentKey{Selection: selection, Variant: variant}] = renderCastDocument(selection, variant, fields)
		}
	}
	return documents
}

func renderCastDocument(selection CastSelection, variant CastLookupVariant, fields string) string {
	var blocks []string
	if variant.Entity == CastEntityCast || variant.Entity == CastEntityEither {
		blocks = append(blocks, renderCastBlock("FarcasterCasts", "Cast", variant.Key, fields))
	}
	if variant.Entity == CastEntityReply || variant.Entity == CastEntityEither {
		blocks = append(blocks, renderCastBlock("FarcasterReplies", "Reply", variant.Key, fields))
	}

	name := operationName(selection, variant)
	return fmt.Sprintf("query %s($%s: String!) {\n%s\n}", name, variant.Key, strings.Join(blocks, "\n"))
}

func renderCastBlock(root, list string, key LookupKey, fields string) string {
	return fmt.Sprintf(`  %s(input: {filter: {%s: {_eq: $%s}}, blockchain: ALL}) {
    %s {
      %s
    }
  }`, root, key, key, list, fields)
}

func operationName(selection CastSelection, variant CastLookupVariant) string {
	entity := map[CastEntity]string{
		CastEntityCast:   "Cast",
		CastEntityReply:  "Reply",
		CastEntityEither: "CastAndReply",
	}[variant.Entity]
	payload := map[CastSelection]string{
		SelectEmbeds:   "Embeds",
		SelectEarnings: "Earnings",
	}[selection]
	key := map[LookupKey]string{
		LookupKeyHash: "Hash",
		LookupKeyURL:  "Url",
	}[variant.Key]
	return entity + payload + "By" + key
}

// CastDocument returns the document for selection and variant
func CastDocument(selection CastSelection, variant CastLookupVariant) (string, error) {
	document, ok := castDocuments[castDocumentKey{Selection: selection, Variant: variant}]
	if !ok {
		return "", fmt.Errorf("no %s document for %s lookup", selection, variant)
	}
	return document, nil
}

const userEarningsStatFields = `FarcasterMoxieEarningStat {
      allEarningsAmount
      castEarningsAmount
      frameDevEarningsAmount
      otherEarningsAmount
    }`

// userEarningsDocument fetches the three earning windows of one user in a single request
var userEarningsDocument = fmt.Sprintf(`query MoxieEarnings($fid: String!) {
  today: FarcasterMoxieEarningStats(input: {timeframe: TODAY, blockchain: ALL, filter: {entityType: {_eq: USER}, entityId: {_eq: $fid}}}) {
    %[1]s
  }
  weekly: FarcasterMoxieEarningStats(input: {timeframe: WEEKLY, blockchain: ALL, filter: {entityType: {_eq: USER}, entityId: {_eq: $fid}}}) {
    %[1]s
  }
  lifetime: FarcasterMoxieEarningStats(input: {timeframe: LIFETIME, blockchain: ALL, filter: {entityType: {_eq: USER}, entityId: {_eq: $fid}}}) {
    %[1]s
  }
}`, userEarningsStatFields)

const farScoresDocument = `query FarScores($handle: String!) {
  Socials(input: {filter: {profileName: {_eq: $handle}, dappName: {_eq: farcaster}}, blockchain: ethereum}) {
    Social {
      socialCapital {
        socialCapitalScore
        socialCapitalRank
      }
    }
  }
}`
