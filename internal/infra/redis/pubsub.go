package redis

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

const subscriptionBuffer = 8

// watchChannel subscribes to a notification channel and emits load's result once up front and
// again after every notification. Notifications carry no payload; the full state is reloaded.
// load reports false when there is nothing to emit yet.
func watchChannel[T any](ctx context.Context, client *redis.Client, channel string, load func(context.Context) (T, bool)) (<-chan T, func(), error) {
	ctx, stop := context.WithCancel(ctx)
	pubsub := client.Subscribe(ctx, channel)
	// Wait for the subscription to be confirmed so no notification after this call is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		stop()
		_ = pubsub.Close()
		return nil, nil, err
	}
	msgs := pubsub.Channel()

	out := make(chan T, subscriptionBuffer)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer close(out)

		emit := func() {
			v, ok := load(ctx)
			if !ok || ctx.Err() != nil {
				return
			}
			send(out, v)
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				emit()
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			_ = pubsub.Close()
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
