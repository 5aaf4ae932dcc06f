// Package report provides the facet-by-provider summary: a full-collection
// aggregation grouping claims by billing provider. No pagination contract
// applies here; this is a reporting read path.
package report

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/povhealth/claimspager/query"
)

// DefaultSampleSize bounds sampleClaimIds per provider so high-volume
// providers do not blow up the group stage output.
const DefaultSampleSize = 3

// Options configures the by-provider summary. The date range uses the same
// overlap semantics as the paginated read path.
type Options struct {
	DateStart             string
	DateEnd               string
	IncludeSampleClaimIDs bool
	SampleSize            int
}

// ProviderSummary is one row of the report, largest providers first.
type ProviderSummary struct {
	ProviderID          string               `bson:"providerId" json:"providerId"`
	Count               int64                `bson:"count" json:"count"`
	MinServiceBeginDate time.Time            `bson:"minServiceBeginDate" json:"minServiceBeginDate"`
	MaxServiceEndDate   time.Time            `bson:"maxServiceEndDate" json:"maxServiceEndDate"`
	SampleClaimIDs      []primitive.ObjectID `bson:"sampleClaimIds,omitempty" json:"sampleClaimIds,omitempty"`
}

// Aggregator is the slice of *mongo.Collection the report needs.
type Aggregator interface {
	Aggregate(ctx context.Context, pipeline any, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

// Pipeline builds the facet-by-provider aggregation: optional overlap date
// match, group by provider with count/min/max, optional bounded id sample,
// sort by count descending, clean projection.
func Pipeline(opts Options) (mongo.Pipeline, error) {
	var pipeline mongo.Pipeline

	match, err := query.DateRangeFilter(opts.DateStart, opts.DateEnd)
	if err != nil {
		return nil, err
	}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	group := bson.M{
		"_id":                 "$billingProvider.providerId",
		"count":               bson.M{"$sum": 1},
		"minServiceBeginDate": bson.M{"$min": "$serviceBeginDate"},
		"maxServiceEndDate":   bson.M{"$max": "$serviceEndDate"},
	}
	if opts.IncludeSampleClaimIDs {
		group["sampleClaimIds"] = bson.M{"$push": "$_id"}
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: group}})

	if opts.IncludeSampleClaimIDs {
		sampleSize := opts.SampleSize
		if sampleSize <= 0 {
			sampleSize = DefaultSampleSize
		}
		pipeline = append(pipeline, bson.D{{Key: "$addFields", Value: bson.M{
			"sampleClaimIds": bson.M{"$slice": bson.A{"$sampleClaimIds", sampleSize}},
		}}})
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":                 0,
			"providerId":          "$_id",
			"count":               1,
			"minServiceBeginDate": 1,
			"maxServiceEndDate":   1,
			"sampleClaimIds":      1,
		}}},
	)

	return pipeline, nil
}

// ByProvider runs the facet-by-provider aggregation and returns the provider
// summaries sorted by count descending.
func ByProvider(ctx context.Context, coll Aggregator, opts Options) ([]ProviderSummary, error) {
	pipeline, err := Pipeline(opts)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate claims by provider: %w", err)
	}
	defer cur.Close(ctx)

	var summaries []ProviderSummary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("decode provider summaries: %w", err)
	}
	return summaries, nil
}
