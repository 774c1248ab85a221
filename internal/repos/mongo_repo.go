package repos

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"txdash/internal/domain"
	applog "txdash/internal/log"
)

const recordsCollection = "products"

// MongoRepo is the MongoDB RecordStore. Aggregations run server side.
type MongoRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func OpenMongo(ctx context.Context, uri, dbName string) (*MongoRepo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	coll := client.Database(dbName).Collection(recordsCollection)
	if _, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: recordOrder()},
		{Keys: bson.D{{Key: "dateOfSale", Value: 1}}},
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return &MongoRepo{client: client, coll: coll}, nil
}

func (r *MongoRepo) ReplaceAll(ctx context.Context, recs []domain.Record) error {
	docs := make([]any, 0, len(recs))
	for _, rec := range recs {
		rec.DateOfSale = rec.DateOfSale.UTC()
		docs = append(docs, rec)
	}
	replace := func(ctx context.Context) error {
		if _, err := r.coll.DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("delete records: %w", err)
		}
		if len(docs) == 0 {
			return nil
		}
		if _, err := r.coll.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert records: %w", err)
		}
		return nil
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(context.Background())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, replace(sc)
	})
	if err == nil || !transactionsUnsupported(err) {
		return err
	}

	// standalone servers reject transactions; readers may briefly see a
	// partially seeded collection on this path
	applog.L().Warn("mongo.replace.no_tx", zap.Error(err))
	return replace(ctx)
}

func (r *MongoRepo) All(ctx context.Context) ([]domain.Record, error) {
	return r.find(ctx, bson.D{}, options.Find().SetSort(recordOrder()))
}

func (r *MongoRepo) Page(ctx context.Context, search string, limit, offset int) ([]domain.Record, error) {
	opts := options.Find().
		SetSort(recordOrder()).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	return r.find(ctx, searchFilter(search), opts)
}

func (r *MongoRepo) find(ctx context.Context, filter any, opts *options.FindOptions) ([]domain.Record, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []domain.Record{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepo) SoldAmount(ctx context.Context, w domain.Window) (float64, error) {
	cur, err := r.coll.Aggregate(ctx, soldAmountPipeline(w))
	if err != nil {
		return 0, err
	}
	var res []struct {
		TotalAmount float64 `bson:"totalAmount"`
	}
	if err := cur.All(ctx, &res); err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[0].TotalAmount, nil
}

func (r *MongoRepo) CountBySold(ctx context.Context, w domain.Window, sold bool) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{
		{Key: "sold", Value: sold},
		windowFilter(w),
	})
}

func (r *MongoRepo) CountInBucket(ctx context.Context, w domain.Window, b domain.PriceBucket) (int64, error) {
	return r.coll.CountDocuments(ctx, bucketFilter(w, b))
}

func (r *MongoRepo) CountByCategory(ctx context.Context, w domain.Window) ([]domain.CategoryCount, error) {
	cur, err := r.coll.Aggregate(ctx, categoryPipeline(w))
	if err != nil {
		return nil, err
	}
	var res []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cur.All(ctx, &res); err != nil {
		return nil, err
	}
	out := make([]domain.CategoryCount, 0, len(res))
	for _, x := range res {
		out = append(out, domain.CategoryCount{Category: x.Category, Count: x.Count})
	}
	return out, nil
}

func (r *MongoRepo) Ping(ctx context.Context) error { return r.client.Ping(ctx, readpref.Primary()) }

func (r *MongoRepo) Close() error { return r.client.Disconnect(context.Background()) }

// recordOrder sorts by source id; ids may repeat, so _id breaks ties and
// keeps skip/limit pages stable.
func recordOrder() bson.D {
	return bson.D{{Key: "id", Value: 1}, {Key: "_id", Value: 1}}
}

func windowFilter(w domain.Window) bson.E {
	return bson.E{Key: "dateOfSale", Value: bson.D{
		{Key: "$gte", Value: w.Start},
		{Key: "$lt", Value: w.End},
	}}
}

// searchFilter matches the term literally; price is compared through its
// string form since a regex never matches a numeric field.
func searchFilter(search string) bson.D {
	if search == "" {
		return bson.D{}
	}
	pattern := regexp.QuoteMeta(search)
	rx := bson.D{{Key: "$regex", Value: pattern}, {Key: "$options", Value: "i"}}
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "title", Value: rx}},
		bson.D{{Key: "description", Value: rx}},
		bson.D{{Key: "$expr", Value: bson.D{{Key: "$regexMatch", Value: bson.D{
			{Key: "input", Value: bson.D{{Key: "$toString", Value: "$price"}}},
			{Key: "regex", Value: pattern},
			{Key: "options", Value: "i"},
		}}}}},
	}}}
}

func bucketFilter(w domain.Window, b domain.PriceBucket) bson.D {
	lowOp := "$gt"
	if b.Inclusive {
		lowOp = "$gte"
	}
	price := bson.D{{Key: lowOp, Value: b.Low}}
	if !b.Open {
		price = append(price, bson.E{Key: "$lte", Value: b.Max})
	}
	return bson.D{
		{Key: "price", Value: price},
		windowFilter(w),
	}
}

func soldAmountPipeline(w domain.Window) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "sold", Value: true}, windowFilter(w)}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalAmount", Value: bson.D{{Key: "$sum", Value: "$price"}}},
		}}},
	}
}

func categoryPipeline(w domain.Window) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{windowFilter(w)}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func transactionsUnsupported(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 20 { // IllegalOperation
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Transaction numbers are only allowed") ||
		strings.Contains(msg, "transactions are not supported")
}
