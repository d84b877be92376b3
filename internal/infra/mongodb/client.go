// Package mongodb stores submissions and sessions in MongoDB and streams changes to them through
// change streams. Change streams need a replica set (a single-node one is enough).
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	SubmissionsCollection = "submissions"
	SessionsCollection    = "sessions"
)

// Connect opens a client and checks the primary is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	slog.Info("mongo connected")
	return client, nil
}

// EnsureIndexes creates the per-session listing index on submissions.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(SubmissionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "session_code", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return err
}

// normalize converts the driver's BSON container types into plain maps and slices.
func normalize(v any) any {
	switch x := v.(type) {
	case bson.M:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	case primitive.DateTime:
		return x.Time()
	}
	return v
}

func document(raw bson.M) map[string]any {
	doc, _ := normalize(raw).(map[string]any)
	return doc
}

const subscriptionBuffer = 8

// watchCollection opens a change stream with pipeline and emits load's result once up front and
// again after every matching change. load reports false when there is nothing to emit yet.
func watchCollection[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, load func(context.Context) (T, bool), failed func(error) T) (<-chan T, func(), error) {
	ctx, stop := context.WithCancel(ctx)
	stream, err := coll.Watch(ctx, pipeline)
	if err != nil {
		stop()
		return nil, nil, fmt.Errorf("watch %s: %w", coll.Name(), err)
	}

	out := make(chan T, subscriptionBuffer)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer close(out)
		defer stream.Close(context.Background())

		emit := func() {
			v, ok := load(ctx)
			if !ok || ctx.Err() != nil {
				return
			}
			send(out, v)
		}

		emit()
		for stream.Next(ctx) {
			emit()
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			slog.Warn("change stream ended", "collection", coll.Name(), "error", err)
			send(out, failed(err))
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			<-finished
		})
	}
	return out, cancel, nil
}

// send drops the oldest pending value when the subscriber lags.
func send[T any](out chan T, v T) {
	select {
	case out <- v:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- v:
	default:
	}
}
