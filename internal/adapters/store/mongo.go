package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gamekeep/gamekeep/internal/domain/model"
	"github.com/gamekeep/gamekeep/pkg/metrics"
)

// Mongo implements Store on a MongoDB database. One document per config and
// per score record; all filters are equality predicates on the compound key
// fields, so every operation stays single-collection.
type Mongo struct {
	db     *mongo.Database
	prefix string
}

// NewMongo wraps an already-connected database handle.
func NewMongo(db *mongo.Database, opts ...Option) *Mongo {
	s := &Mongo{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureIndexes creates the unique compound-key indexes plus the ranked-read
// index on score records. Safe to call on every startup.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := s.col(CollectionLeaderboardConfigs).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "applicationId", Value: 1}, {Key: "key", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return storageErr("ensure_indexes", err)
	}

	_, err = s.col(CollectionScoreRecords).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "applicationId", Value: 1}, {Key: "leaderboardKey", Value: 1}, {Key: "playerId", Value: 1}},
			Options: unique,
		},
		{
			Keys: bson.D{{Key: "applicationId", Value: 1}, {Key: "leaderboardKey", Value: 1}, {Key: "value", Value: -1}, {Key: "lastUpdatedAt", Value: 1}},
		},
	})
	if err != nil {
		return storageErr("ensure_indexes", err)
	}

	_, err = s.col(CollectionCounterConfigs).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "applicationId", Value: 1}, {Key: "key", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return storageErr("ensure_indexes", err)
	}
	return nil
}

func (s *Mongo) col(name string) *mongo.Collection {
	return s.db.Collection(s.prefix + name)
}

func configFilter(appID, key string) bson.M {
	return bson.M{"applicationId": appID, "key": key}
}

func scoreFilter(appID, key string) bson.M {
	return bson.M{"applicationId": appID, "leaderboardKey": key}
}

func (s *Mongo) GetLeaderboardConfig(ctx context.Context, appID, key string) (model.LeaderboardConfig, error) {
	const op = "get_leaderboard_config"
	defer observe(op, time.Now())

	var cfg model.LeaderboardConfig
	err := s.col(CollectionLeaderboardConfigs).FindOne(ctx, configFilter(appID, key)).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.LeaderboardConfig{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError(op)
		return model.LeaderboardConfig{}, storageErr(op, err)
	}
	return cfg, nil
}

func (s *Mongo) PutLeaderboardConfig(ctx context.Context, cfg model.LeaderboardConfig) error {
	const op = "put_leaderboard_config"
	defer observe(op, time.Now())

	_, err := s.col(CollectionLeaderboardConfigs).UpdateOne(ctx,
		configFilter(cfg.ApplicationID, cfg.Key),
		bson.M{"$set": cfg},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		metrics.RecordStoreError(op)
		return storageErr(op, err)
	}
	return nil
}

func (s *Mongo) SetLeaderboardNextReset(ctx context.Context, appID, key string, next *time.Time) error {
	const op = "set_leaderboard_next_reset"
	defer observe(op, time.Now())

	update := bson.M{"$set": bson.M{"nextResetAt": next}}
	if next == nil {
		update = bson.M{"$unset": bson.M{"nextResetAt": ""}}
	}
	res, err := s.col(CollectionLeaderboardConfigs).UpdateOne(ctx, configFilter(appID, key), update)
	if err != nil {
		metrics.RecordStoreError(op)
		return storageErr(op, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Mongo) DeleteLeaderboardConfig(ctx context.Context, appID, key string) error {
	const op = "delete_leaderboard_config"
	defer observe(op, time.Now())

	if _, err := s.col(CollectionLeaderboardConfigs).DeleteOne(ctx, configFilter(appID, key)); err != nil {
		metrics.RecordStoreError(op)
		return storageErr(op, err)
	}
	return nil
}

func (s *Mongo) GetScoreRecord(ctx context.Context, appID, key, playerID string) (model.ScoreRecord, error) {
	const op = "get_score_record"
	defer observe(op, time.Now())

	filter := scoreFilter(appID, key)
	filter["playerId"] = playerID

	var rec model.ScoreRecord
	err := s.col(CollectionScoreRecords).FindOne(ctx, filter).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.ScoreRecord{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError(op)
		return model.ScoreRecord{}, storageErr(op, err)
	}
	return rec, nil
}

func (s *Mongo) UpsertScoreRecord(ctx context.Context, rec model.ScoreRecord) error {
	const op = "upsert_score_record"
	defer observe(op, time.Now())

	filter := scoreFilter(rec.ApplicationID, rec.LeaderboardKey)
	filter["playerId"] = rec.PlayerID

	_, err := s.col(CollectionScoreRecords).UpdateOne(ctx, filter,
		bson.M{"$set": rec},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		metrics.RecordStoreError(op)
		return storageErr(op, err)
	}
	return nil
}

func (s *Mongo) TopScores(ctx context.Context, appID, key string, dir model.SortDirection, skip, limit int) ([]model.ScoreRecord, error) {
	const op = "top_scores"
	defer observe(op, time.Now())

	valueOrder := -1
	if dir == model.Ascending {
		valueOrder = 1
	}
	// Tie-break by lastUpdatedAt ascending (earlier submission ranks higher),
	// then playerId so the order is total.
	sortSpec := bson.D{
		{Key: "value", Value: valueOrder},
		{Key: "lastUpdatedAt", Value: 1},
		{Key: "playerId", Value: 1},
	}

	cur, err := s.col(CollectionScoreRecords).Find(ctx, scoreFilter(appID, key),
		options.Find().SetSort(sortSpec).SetSkip(int64(skip)).SetLimit(int64(limit)),
	)
	if err != nil {
		metrics.RecordStoreError(op)
		return nil, storageErr(op, err)
	}

	records := make([]model.ScoreRecord, 0, limit)
	if err := cur.All(ctx, &records); err != nil {
		metrics.RecordStoreError(op)
		return nil, storageErr(op, err)
	}
	return records, nil
}

func (s *Mongo) DeleteScores(ctx context.Context, appID, key string) (int64, error) {
	const op = "delete_scores"
	defer observe(op, time.Now())

	res, err := s.col(CollectionScoreRecords).DeleteMany(ctx, scoreFilter(appID, key))
	if err != nil {
		metrics.RecordStoreError(op)
		return 0, storageErr(op, err)
	}
	return res.DeletedCount, nil
}

func (s *Mongo) CountScores(ctx context.Context, appID, key string) (int64, error) {
	const op = "count_scores"
	defer observe(op, time.Now())

	n, err := s.col(CollectionScoreRecords).CountDocuments(ctx, scoreFilter(appID, key))
	if err != nil {
		metrics.RecordStoreError(op)
		return 0, storageErr(op, err)
	}
	return n, nil
}

func (s *Mongo) TotalScores(ctx context.Context) (int64, error) {
	const op = "total_scores"
	defer observe(op, time.Now())

	n, err := s.col(CollectionScoreRecords).EstimatedDocumentCount(ctx)
	if err != nil {
		metrics.RecordStoreError(op)
		return 0, storageErr(op, err)
	}
	return n, nil
}

func (s *Mongo) GetCounterConfig(ctx context.Context, appID, key string) (model.CounterConfig, error) {
	const op = "get_counter_config"
	defer observe(op, time.Now())

	var cfg model.CounterConfig
	err := s.col(CollectionCounterConfigs).FindOne(ctx, configFilter(appID, key)).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.CounterConfig{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError(op)
		return model.CounterConfig{}, storageErr(op, err)
	}
	return cfg, nil
}

func (s *Mongo) PutCounterConfig(ctx context.Context, cfg model.CounterConfig) error {
	const op = "put_counter_config"
	defer observe(op, time.Now())

	_, err := s.col(CollectionCounterConfigs).UpdateOne(ctx,
		configFilter(cfg.ApplicationID, cfg.Key),
		bson.M{"$set": cfg},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		metrics.RecordStoreError(op)
		return storageErr(op, err)
	}
	return nil
}

func (s *Mongo) DeleteCounterConfig(ctx context.Context, appID, key string) error {
	const op = "delete_counter_config"
	defer observe(op, time.Now())

	if _, err := s.col(CollectionCounterConfigs).DeleteOne(ctx, configFilter(appID, key)); err != nil {
		metrics.RecordStoreError(op)
		return storageErr(op, err)
	}
	return nil
}

func observe(op string, start time.Time) {
	metrics.RecordStoreOpLatency(op, float64(time.Since(start).Milliseconds()))
}
