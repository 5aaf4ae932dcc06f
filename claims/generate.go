package claims

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/povhealth/claimspager/config"
)

// Reference value sets for generated claims.
var (
	RecoveryMethods = []string{
		"IMMEDIATE_RECOUPMENT",
		"EXTENDED_REPAYMENT_SCHEDULE",
		"DIRECT_PAYMENT",
		"PENDING",
		"OFFSET",
	}
	ClaimSystemCodes = []string{
		"NCPDP_D0",
		"NCPDP_5",
		"INTERNAL",
		"X12_837P",
		"PDE",
	}
)

// MinServiceDate is the earliest allowed generated service date.
var MinServiceDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

const alnumUpper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randAlnum(n int) string {
	return gonanoid.MustGenerate(alnumUpper, n)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// BuildParams are the inputs for one synthetic claim. Only the provider id,
// service dates and claim-system claim id are required; everything else is
// defaulted or randomized from the reference sets.
type BuildParams struct {
	BillingProviderTin string
	ServiceBeginDate   time.Time
	ServiceEndDate     time.Time
	ClaimSystemClaimID string
	ProviderID         string
	ClaimSystemCode    string
	RecoveryMethod     string
}

// BuildClaim builds one claim document. Explicit ClaimSystemCode or
// RecoveryMethod values outside the reference sets are rejected.
func BuildClaim(p BuildParams) (Claim, error) {
	if p.ClaimSystemCode != "" && !contains(ClaimSystemCodes, p.ClaimSystemCode) {
		return Claim{}, fmt.Errorf("claim system code must be one of %v, got %q", ClaimSystemCodes, p.ClaimSystemCode)
	}
	if p.RecoveryMethod != "" && !contains(RecoveryMethods, p.RecoveryMethod) {
		return Claim{}, fmt.Errorf("recovery method must be one of %v, got %q", RecoveryMethods, p.RecoveryMethod)
	}

	code := p.ClaimSystemCode
	if code == "" {
		code = ClaimSystemCodes[rand.Intn(len(ClaimSystemCodes))]
	}
	method := p.RecoveryMethod
	if method == "" {
		method = RecoveryMethods[rand.Intn(len(RecoveryMethods))]
	}

	providerID := p.ProviderID
	if providerID == "" {
		providerID = randAlnum(8)
	}

	overpayment := round2(10 + rand.Float64()*4990)
	recouped := round2(rand.Float64() * overpayment * 0.9)
	balance := round2(overpayment - recouped)

	// lastUpdatedTs lands between serviceEndDate and now.
	end := p.ServiceEndDate
	now := time.Now().UTC()
	if now.Before(end) {
		now = end.Add(time.Second)
	}
	lastUpdated := end.Add(time.Duration(rand.Int63n(int64(now.Sub(end)) + 1)))

	return Claim{
		RenderingProvider: RenderingProvider{
			ProviderName: "Rendering " + gofakeit.LastName(),
		},
		BillingProvider: BillingProvider{
			ProviderTin:          p.BillingProviderTin,
			PatientAccountNumber: randAlnum(8 + rand.Intn(5)),
			ProviderID:           providerID,
			ProviderNpi:          gofakeit.DigitN(10),
			ProviderName:         "Provider " + p.BillingProviderTin,
		},
		ServiceBeginDate: p.ServiceBeginDate,
		ServiceEndDate:   p.ServiceEndDate,
		PatientInformation: PatientInformation{
			FullName: gofakeit.Name(),
		},
		Identifiers: Identifiers{
			ClaimSystemCode:    code,
			ClaimSystemClaimID: p.ClaimSystemClaimID,
		},
		LastUpdatedTs: lastUpdated,
		ProcessedAmounts: ProcessedAmounts{
			OverpaymentBalance: Amount{Amount: balance},
			OverpaymentAmount:  Amount{Amount: overpayment},
			RecoupedAmount:     Amount{Amount: recouped},
		},
		RecoveryMethod: method,
	}, nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// ProviderCount pairs a synthetic provider id with its claim count.
type ProviderCount struct {
	ProviderID string
	ClaimCount int
}

// ProviderClaimCounts expands the tier configuration into one entry per
// provider. Provider ids follow the TT-NNNNNN form (tier index + provider
// index), which keeps them unique across tiers.
func ProviderClaimCounts(dg config.DataGeneration) []ProviderCount {
	var counts []ProviderCount
	for tierIdx, tier := range dg.Tiers {
		for provIdx := 0; provIdx < tier.NumProviders; provIdx++ {
			counts = append(counts, ProviderCount{
				ProviderID: fmt.Sprintf("%02d-%06d", tierIdx, provIdx),
				ClaimCount: tier.ClaimsPerProvider,
			})
		}
	}
	return counts
}

// randomServiceDates picks begin/end inside [start, end] with begin <= end
// and a coverage span of at most 14 days.
func randomServiceDates(start, end time.Time) (time.Time, time.Time) {
	deltaDays := int(end.Sub(start).Hours() / 24)
	if deltaDays < 0 {
		deltaDays = 0
	}

	startOffset := 0
	if deltaDays > 0 {
		startOffset = rand.Intn(deltaDays + 1)
	}
	begin := start.AddDate(0, 0, startOffset)

	spanDays := deltaDays - startOffset
	if spanDays > 14 {
		spanDays = 14
	}
	endOffset := 0
	if spanDays > 0 {
		endOffset = rand.Intn(spanDays + 1)
	}
	return begin, begin.AddDate(0, 0, endOffset)
}

// GenerateForProvider builds n claims for one provider with service dates
// random in [dateStart, dateEnd]. offset keeps claim-system ids unique when
// generating in chunks.
func GenerateForProvider(providerID string, n int, dateStart, dateEnd time.Time, offset int) ([]Claim, error) {
	docs := make([]Claim, 0, n)
	for i := 0; i < n; i++ {
		begin, end := randomServiceDates(dateStart, dateEnd)
		doc, err := BuildClaim(BuildParams{
			BillingProviderTin: providerID,
			ServiceBeginDate:   begin,
			ServiceEndDate:     end,
			ClaimSystemClaimID: fmt.Sprintf("gen-%s-%d", providerID, offset+i),
			ProviderID:         providerID,
		})
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Inserter is the slice of *mongo.Collection the seeder needs.
type Inserter interface {
	InsertMany(ctx context.Context, documents []any, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// Seed generates claims per the tier configuration and inserts them in
// batches. progress, when non-nil, is called after each batch with
// (inserted, expected). Returns the number of documents inserted.
func Seed(ctx context.Context, coll Inserter, dg config.DataGeneration, progress func(inserted, total int)) (int, error) {
	dateStart, err := time.Parse("2006-01-02", dg.DateStart)
	if err != nil {
		return 0, fmt.Errorf("invalid data_generation.date_start: %w", err)
	}
	dateEnd, err := time.Parse("2006-01-02", dg.DateEnd)
	if err != nil {
		return 0, fmt.Errorf("invalid data_generation.date_end: %w", err)
	}
	batchSize := dg.BatchSize
	if batchSize <= 0 {
		batchSize = 10000
	}

	counts := ProviderClaimCounts(dg)
	totalExpected := 0
	for _, c := range counts {
		totalExpected += c.ClaimCount
	}

	inserted := 0
	for _, pc := range counts {
		for offset := 0; offset < pc.ClaimCount; offset += batchSize {
			chunk := pc.ClaimCount - offset
			if chunk > batchSize {
				chunk = batchSize
			}
			docs, err := GenerateForProvider(pc.ProviderID, chunk, dateStart, dateEnd, offset)
			if err != nil {
				return inserted, err
			}
			batch := make([]any, len(docs))
			for i := range docs {
				batch[i] = docs[i]
			}
			if _, err := coll.InsertMany(ctx, batch); err != nil {
				return inserted, fmt.Errorf("insert claims for provider %s: %w", pc.ProviderID, err)
			}
			inserted += len(docs)
			if progress != nil {
				progress(inserted, totalExpected)
			}
		}
	}
	return inserted, nil
}
