package query

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/povhealth/claimspager/claims"
	"github.com/povhealth/claimspager/logging/logger"
)

// DefaultPageSize is used when a request leaves PageSize unset.
const DefaultPageSize = 100

// Strategy selects how "total + first page" is computed.
type Strategy string

const (
	// StrategyCountAndFind runs two index-friendly operations: a count and a
	// sorted, limited find. Usually the faster path for large providers.
	StrategyCountAndFind Strategy = "count_and_find"
	// StrategyFacet runs a single aggregation with parallel count and page
	// branches. One round trip, more server-side work.
	StrategyFacet Strategy = "facet"
)

// Collection is the slice of *mongo.Collection the engine needs. Narrowed so
// strategies can be exercised against in-memory fakes.
type Collection interface {
	CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error)
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	Aggregate(ctx context.Context, pipeline any, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

// PageRequest is the caller-facing request shape. Exactly one of Cursor,
// BeforeCursor, LastPage (or none, meaning first page) selects the strategy.
type PageRequest struct {
	ProviderID   string `validate:"required"`
	DateStart    string
	DateEnd      string
	PageSize     int
	Cursor       *Cursor
	BeforeCursor *Cursor
	LastPage     bool
	IncludeCount bool
	Strategy     Strategy
}

// Page is the uniform result shape of every page strategy. NextCursor is set
// if and only if the fetch proved strictly more matching records exist beyond
// the returned page. Total and NumPages are nil when no count was requested.
type Page struct {
	Total      *int64         `json:"total,omitempty"`
	PageSize   int            `json:"pageSize"`
	NumPages   *int64         `json:"numPages,omitempty"`
	Documents  []claims.Claim `json:"documents"`
	NextCursor *Cursor        `json:"nextCursor,omitempty"`
}

// Engine runs page strategies against one claims collection. It is stateless;
// a single Engine is safe for concurrent use as long as the underlying
// collection handle is (the official driver's is).
type Engine struct {
	coll            Collection
	validate        *validator.Validate
	log             *logger.Logger
	defaultPageSize int
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultPageSize overrides the page size applied when a request leaves
// PageSize unset.
func WithDefaultPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultPageSize = n
		}
	}
}

// WithLogger sets the logger used for per-request debug logging.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine creates a pagination engine over the given collection.
func NewEngine(coll Collection, opts ...Option) *Engine {
	e := &Engine{
		coll:            coll,
		validate:        validator.New(),
		log:             logger.StdLogger(),
		defaultPageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// checkRequest validates inputs before any store round trip. PageSize zero
// means "use the default"; a negative value is rejected outright.
func (e *Engine) checkRequest(req PageRequest) (int, error) {
	if err := e.validate.Struct(req); err != nil {
		return 0, fmt.Errorf("invalid page request: %w", err)
	}
	switch {
	case req.PageSize < 0:
		return 0, fmt.Errorf("%w: got %d", ErrInvalidPageSize, req.PageSize)
	case req.PageSize == 0:
		return e.defaultPageSize, nil
	default:
		return req.PageSize, nil
	}
}

// Sort orders for the keyset scan. Both must include _id as final tie-breaker
// or pagination duplicates/skips records when many claims share dates.
var (
	orderAsc = bson.D{
		{Key: "serviceBeginDate", Value: 1},
		{Key: "serviceEndDate", Value: 1},
		{Key: "_id", Value: 1},
	}
	orderDesc = bson.D{
		{Key: "serviceBeginDate", Value: -1},
		{Key: "serviceEndDate", Value: -1},
		{Key: "_id", Value: -1},
	}
)

// claimLess compares two claims by the full ordering key.
func claimLess(a, b claims.Claim) bool {
	if !a.ServiceBeginDate.Equal(b.ServiceBeginDate) {
		return a.ServiceBeginDate.Before(b.ServiceBeginDate)
	}
	if !a.ServiceEndDate.Equal(b.ServiceEndDate) {
		return a.ServiceEndDate.Before(b.ServiceEndDate)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// sortAscending re-sorts a batch fetched in descending index order back to
// display order. Sorts strictly by the ordering key, not arrival order.
func sortAscending(docs []claims.Claim) {
	sort.Slice(docs, func(i, j int) bool { return claimLess(docs[i], docs[j]) })
}

// fetch runs a sorted, limited find and decodes the batch. Every fetch is
// bounded by an explicit limit.
func (e *Engine) fetch(ctx context.Context, filter bson.M, order bson.D, limit int64) ([]claims.Claim, error) {
	cur, err := e.coll.Find(ctx, filter, options.Find().SetSort(order).SetLimit(limit))
	if err != nil {
		return nil, storeErr("find claims", err)
	}
	defer cur.Close(ctx)

	var docs []claims.Claim
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr("decode claims", err)
	}
	return docs, nil
}

// forwardPage trims a pageSize+1 batch and derives the next cursor from the
// last record of the trimmed page. total may be nil when no count ran.
func forwardPage(docs []claims.Claim, pageSize int, total *int64) *Page {
	hasMore := len(docs) > pageSize
	if hasMore {
		docs = docs[:pageSize]
	}
	if docs == nil {
		docs = []claims.Claim{}
	}

	p := &Page{PageSize: pageSize, Documents: docs}
	if total != nil {
		t := *total
		p.Total = &t
		numPages := (t + int64(pageSize) - 1) / int64(pageSize)
		p.NumPages = &numPages
	}
	if hasMore && len(docs) > 0 {
		c := CursorFromClaim(docs[len(docs)-1])
		p.NextCursor = &c
	}
	return p
}

// Count returns the number of claims matching the base filter.
func (e *Engine) Count(ctx context.Context, req PageRequest) (int64, error) {
	if err := e.validate.Struct(req); err != nil {
		return 0, fmt.Errorf("invalid page request: %w", err)
	}
	base, err := BaseFilter(req.ProviderID, req.DateStart, req.DateEnd)
	if err != nil {
		return 0, err
	}
	n, err := e.coll.CountDocuments(ctx, base)
	if err != nil {
		return 0, storeErr("count claims", err)
	}
	return n, nil
}

// Find runs a plain filtered find in ordering-key order, bounded by limit.
func (e *Engine) Find(ctx context.Context, req PageRequest, limit int64) ([]claims.Claim, error) {
	if err := e.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid page request: %w", err)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageSize, limit)
	}
	base, err := BaseFilter(req.ProviderID, req.DateStart, req.DateEnd)
	if err != nil {
		return nil, err
	}
	return e.fetch(ctx, base, orderAsc, limit)
}

// FirstPageCountAndFind computes total + first page with two index-friendly
// operations: a count of the base filter, then a pageSize+1 ascending fetch.
func (e *Engine) FirstPageCountAndFind(ctx context.Context, req PageRequest) (*Page, error) {
	pageSize, err := e.checkRequest(req)
	if err != nil {
		return nil, err
	}
	base, err := BaseFilter(req.ProviderID, req.DateStart, req.DateEnd)
	if err != nil {
		return nil, err
	}

	total, err := e.coll.CountDocuments(ctx, base)
	if err != nil {
		return nil, storeErr("count claims", err)
	}
	docs, err := e.fetch(ctx, base, orderAsc, int64(pageSize+1))
	if err != nil {
		return nil, err
	}

	e.log.Debug(ctx, "first page fetched", "strategy", StrategyCountAndFind,
		"provider_id", req.ProviderID, "total", total, "fetched", len(docs))
	return forwardPage(docs, pageSize, &total), nil
}

// facetResult mirrors the two branches of the first-page aggregation.
type facetResult struct {
	Total []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
	FirstPage []claims.Claim `bson:"firstPage"`
}

// FirstPageFacet computes total + first page in a single aggregation round
// trip: one branch counts all matches, the other fetches the sorted
// pageSize+1 page. Result is identical to FirstPageCountAndFind.
func (e *Engine) FirstPageFacet(ctx context.Context, req PageRequest) (*Page, error) {
	pageSize, err := e.checkRequest(req)
	if err != nil {
		return nil, err
	}
	base, err := BaseFilter(req.ProviderID, req.DateStart, req.DateEnd)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: base}},
		bson.D{{Key: "$facet", Value: bson.M{
			"total": bson.A{bson.M{"$count": "count"}},
			"firstPage": bson.A{
				bson.M{"$sort": orderAsc},
				bson.M{"$limit": pageSize + 1},
			},
		}}},
	}

	cur, err := e.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr("aggregate first page", err)
	}
	defer cur.Close(ctx)

	var results []facetResult
	if err := cur.All(ctx, &results); err != nil {
		return nil, storeErr("decode first page aggregation", err)
	}
	if len(results) == 0 {
		var zero int64
		return forwardPage(nil, pageSize, &zero), nil
	}

	facet := results[0]
	var total int64
	if len(facet.Total) > 0 {
		total = facet.Total[0].Count
	}

	e.log.Debug(ctx, "first page fetched", "strategy", StrategyFacet,
		"provider_id", req.ProviderID, "total", total, "fetched", len(facet.FirstPage))
	return forwardPage(facet.FirstPage, pageSize, &total), nil
}

// NextPage fetches the page after req.Cursor: keyset "after" filter, ascending
// sort, pageSize+1 fetch. When IncludeCount is set a count of the base filter
// runs concurrently with the fetch; the two reads are independent and may
// reflect slightly different points in time.
func (e *Engine) NextPage(ctx context.Context, req PageRequest) (*Page, error) {
	pageSize, err := e.checkRequest(req)
	if err != nil {
		return nil, err
	}
	if req.Cursor == nil {
		return nil, fmt.Errorf("%w: next page requires a cursor", ErrInvalidCursor)
	}
	base, err := BaseFilter(req.ProviderID, req.DateStart, req.DateEnd)
	if err != nil {
		return nil, err
	}

	type countResult struct {
		n   int64
		err error
	}
	var countCh chan countResult
	if req.IncludeCount {
		countCh = make(chan countResult, 1)
		go func() {
			n, err := e.coll.CountDocuments(ctx, base)
			countCh <- countResult{n: n, err: err}
		}()
	}

	docs, err := e.fetch(ctx, AfterFilter(base, *req.Cursor), orderAsc, int64(pageSize+1))

	var total *int64
	if countCh != nil {
		res := <-countCh
		if err == nil && res.err != nil {
			return nil, storeErr("count claims", res.err)
		}
		if res.err == nil {
			total = &res.n
		}
	}
	if err != nil {
		return nil, err
	}

	return forwardPage(docs, pageSize, total), nil
}

// PreviousPage fetches the page before req.BeforeCursor. The descending scan
// returns records nearest the cursor first, so the batch is re-sorted
// ascending in memory before returning. The returned cursor points at the
// last record of the re-sorted batch so the caller can go forward again.
func (e *Engine) PreviousPage(ctx context.Context, req PageRequest) (*Page, error) {
	pageSize, err := e.checkRequest(req)
	if err != nil {
		return nil, err
	}
	if req.BeforeCursor == nil {
		return nil, fmt.Errorf("%w: previous page requires a before-cursor", ErrInvalidCursor)
	}
	base, err := BaseFilter(req.ProviderID, req.DateStart, req.DateEnd)
	if err != nil {
		return nil, err
	}

	docs, err := e.fetch(ctx, BeforeFilter(base, *req.BeforeCursor), orderDesc, int64(pageSize))
	if err != nil {
		return nil, err
	}
	sortAscending(docs)
	if docs == nil {
		docs = []claims.Claim{}
	}

	p := &Page{PageSize: pageSize, Documents: docs}
	if len(docs) > 0 {
		// The record at the before-cursor lies beyond this page, so a forward
		// cursor is always valid for a non-empty previous page.
		c := CursorFromClaim(docs[len(docs)-1])
		p.NextCursor = &c
	}
	return p, nil
}

// LastPage fetches the final page by scanning the index in reverse: exactly
// pageSize records (no +1, nothing follows the last page), re-sorted
// ascending. Cost is bounded by pageSize regardless of collection size; a
// total, if wanted, is a separate Count call.
func (e *Engine) LastPage(ctx context.Context, req PageRequest) (*Page, error) {
	pageSize, err := e.checkRequest(req)
	if err != nil {
		return nil, err
	}
	base, err := BaseFilter(req.ProviderID, req.DateStart, req.DateEnd)
	if err != nil {
		return nil, err
	}

	docs, err := e.fetch(ctx, base, orderDesc, int64(pageSize))
	if err != nil {
		return nil, err
	}
	sortAscending(docs)
	if docs == nil {
		docs = []claims.Claim{}
	}

	return &Page{PageSize: pageSize, Documents: docs}, nil
}

// Run dispatches a request to the matching strategy: Cursor selects next
// page, BeforeCursor previous page, LastPage the reverse scan, and none of
// them the first page (via req.Strategy, default count-and-find). Setting
// more than one selector is rejected before any round trip.
func (e *Engine) Run(ctx context.Context, req PageRequest) (*Page, error) {
	selectors := 0
	if req.Cursor != nil {
		selectors++
	}
	if req.BeforeCursor != nil {
		selectors++
	}
	if req.LastPage {
		selectors++
	}
	if selectors > 1 {
		return nil, errors.New("at most one of cursor, beforeCursor and lastPage may be set")
	}

	switch {
	case req.Cursor != nil:
		return e.NextPage(ctx, req)
	case req.BeforeCursor != nil:
		return e.PreviousPage(ctx, req)
	case req.LastPage:
		page, err := e.LastPage(ctx, req)
		if err != nil {
			return nil, err
		}
		if req.IncludeCount {
			// Deliberately a separate count: bundling it into the reverse
			// scan would force the O(n) pass LastPage exists to avoid.
			total, err := e.Count(ctx, req)
			if err != nil {
				return nil, err
			}
			page.Total = &total
			numPages := (total + int64(page.PageSize) - 1) / int64(page.PageSize)
			page.NumPages = &numPages
		}
		return page, nil
	case req.Strategy == StrategyFacet:
		return e.FirstPageFacet(ctx, req)
	default:
		return e.FirstPageCountAndFind(ctx, req)
	}
}
