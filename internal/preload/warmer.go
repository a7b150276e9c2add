package preload

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// WarmCatalog resolves every sentence of the text source with bounded
// concurrency, so a freshly uploaded catalog is fully synthesized before
// anyone studies it. Individual failures are logged and counted but do
// not stop the pass; the summary error reports how many sentences failed.
func (s *Scheduler) WarmCatalog(ctx context.Context, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 3
	}

	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0
	failed := 0

	for i := 0; ; i++ {
		text, ok := s.texts.SentenceText(i)
		if !ok {
			break
		}
		total++
		if !s.claim(text) {
			continue
		}

		wg.Add(1)
		go func(text string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			artifact, err := s.resolver.Resolve(ctx, text)
			if err != nil {
				s.unclaim(text)
				log.Printf("[Preload] Catalog warm-up failed for one sentence: %v", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			artifact.Release()
		}(text)
	}

	wg.Wait()

	if failed > 0 {
		return fmt.Errorf("catalog warm-up completed with %d errors out of %d sentences", failed, total)
	}

	log.Printf("[Preload] Catalog warm-up complete: %d sentences", total)
	return nil
}
