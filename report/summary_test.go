package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/povhealth/claimspager/query"
)

func stage(t *testing.T, pipeline mongo.Pipeline, idx int, op string) any {
	t.Helper()
	require.Greater(t, len(pipeline), idx)
	require.Equal(t, op, pipeline[idx][0].Key)
	return pipeline[idx][0].Value
}

func TestPipelineNoDateFilter(t *testing.T) {
	p, err := Pipeline(Options{})
	require.NoError(t, err)
	require.Len(t, p, 3)

	group := stage(t, p, 0, "$group").(bson.M)
	assert.Equal(t, "$billingProvider.providerId", group["_id"])
	assert.Equal(t, bson.M{"$sum": 1}, group["count"])
	assert.Equal(t, bson.M{"$min": "$serviceBeginDate"}, group["minServiceBeginDate"])
	assert.Equal(t, bson.M{"$max": "$serviceEndDate"}, group["maxServiceEndDate"])
	assert.NotContains(t, group, "sampleClaimIds")

	sort := stage(t, p, 1, "$sort").(bson.D)
	assert.Equal(t, bson.D{{Key: "count", Value: -1}}, sort)

	stage(t, p, 2, "$project")
}

func TestPipelineWithDateFilter(t *testing.T) {
	p, err := Pipeline(Options{DateStart: "2002-01-01", DateEnd: "2002-06-30"})
	require.NoError(t, err)
	require.Len(t, p, 4)

	match := stage(t, p, 0, "$match").(bson.M)
	assert.Equal(t, bson.M{"$gte": time.Date(2002, 1, 1, 0, 0, 0, 0, time.UTC)}, match["serviceEndDate"])
	assert.Equal(t, bson.M{"$lte": time.Date(2002, 6, 30, 0, 0, 0, 0, time.UTC)}, match["serviceBeginDate"])
}

func TestPipelineInvalidDate(t *testing.T) {
	_, err := Pipeline(Options{DateStart: "bogus"})
	assert.ErrorIs(t, err, query.ErrInvalidDateFormat)
}

func TestPipelineSampleIDsCapped(t *testing.T) {
	p, err := Pipeline(Options{IncludeSampleClaimIDs: true, SampleSize: 5})
	require.NoError(t, err)
	require.Len(t, p, 4)

	group := stage(t, p, 0, "$group").(bson.M)
	assert.Equal(t, bson.M{"$push": "$_id"}, group["sampleClaimIds"])

	addFields := stage(t, p, 1, "$addFields").(bson.M)
	assert.Equal(t, bson.M{"$slice": bson.A{"$sampleClaimIds", 5}}, addFields["sampleClaimIds"])
}

func TestPipelineSampleSizeDefault(t *testing.T) {
	p, err := Pipeline(Options{IncludeSampleClaimIDs: true})
	require.NoError(t, err)

	addFields := stage(t, p, 1, "$addFields").(bson.M)
	assert.Equal(t, bson.M{"$slice": bson.A{"$sampleClaimIds", DefaultSampleSize}}, addFields["sampleClaimIds"])
}

// fakeAggregator returns canned summary documents.
type fakeAggregator struct {
	docs        []any
	gotPipeline mongo.Pipeline
}

func (f *fakeAggregator) Aggregate(ctx context.Context, pipeline any, opts ...*options.AggregateOptions) (*mongo.Cursor, error) {
	f.gotPipeline = pipeline.(mongo.Pipeline)
	return mongo.NewCursorFromDocuments(f.docs, nil, nil)
}

func TestByProvider(t *testing.T) {
	id := primitive.NewObjectID()
	agg := &fakeAggregator{docs: []any{
		bson.M{
			"providerId":          "00-000001",
			"count":               250,
			"minServiceBeginDate": time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC),
			"maxServiceEndDate":   time.Date(2002, 11, 30, 0, 0, 0, 0, time.UTC),
			"sampleClaimIds":      bson.A{id},
		},
		bson.M{
			"providerId":          "01-000002",
			"count":               10,
			"minServiceBeginDate": time.Date(2001, 5, 1, 0, 0, 0, 0, time.UTC),
			"maxServiceEndDate":   time.Date(2001, 5, 20, 0, 0, 0, 0, time.UTC),
		},
	}}

	summaries, err := ByProvider(context.Background(), agg, Options{IncludeSampleClaimIDs: true})
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "00-000001", summaries[0].ProviderID)
	assert.EqualValues(t, 250, summaries[0].Count)
	assert.Equal(t, []primitive.ObjectID{id}, summaries[0].SampleClaimIDs)
	assert.Equal(t, "01-000002", summaries[1].ProviderID)
	assert.Empty(t, summaries[1].SampleClaimIDs)

	require.NotEmpty(t, agg.gotPipeline)
}

func TestByProviderBadDate(t *testing.T) {
	agg := &fakeAggregator{}
	_, err := ByProvider(context.Background(), agg, Options{DateEnd: "2002/01/01"})
	assert.ErrorIs(t, err, query.ErrInvalidDateFormat)
	assert.Nil(t, agg.gotPipeline, "no round trip on invalid input")
}
