package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const backgroundTimeout = 15 * time.Second

// background runs fire-and-forget side effects such as emails so a slow
// provider never holds up the response. Wait blocks until all of them finish.
type background struct {
	wg sync.WaitGroup
}

func (b *background) Go(task string, fn func(ctx context.Context) error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Error().Err(err).Str("task", task).Msg("background task failed")
		}
	}()
}

func (b *background) Wait() {
	b.wg.Wait()
}
