package xray

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fjglira/xraysync/internal/domain"
)

// UploadBatch uploads every document in paths, retrying throttled requests
// according to the retry policy. A failing document never stops the batch.
//
// In sequential mode results follow the order of paths. In parallel mode up
// to the configured number of workers run at once, each with its own HTTP
// session, and results follow completion order.
func (c *Client) UploadBatch(ctx context.Context, paths []string) domain.BatchResult {
	log := c.log.WithField("run", uuid.NewString()[:8])
	log.Infof("Uploading %d document(s) with %s", len(paths), c)

	var result domain.BatchResult
	if c.parallel {
		result = c.uploadParallel(ctx, log, paths)
	} else {
		result = c.uploadSequential(ctx, log, paths)
	}

	log.Infof("Upload complete: %d succeeded, %d failed", len(result.Succeeded), len(result.Failed))
	return result
}

func (c *Client) uploadSequential(ctx context.Context, log *logrus.Entry, paths []string) domain.BatchResult {
	var result domain.BatchResult
	for i, path := range paths {
		if i > 0 {
			if err := c.sleep(ctx, c.policy.Cooldown); err != nil {
				abortRemaining(&result, paths[i:], err)
				break
			}
		}
		if err := c.uploadWithRetry(ctx, log, c.session, path); err != nil {
			log.Warnf("Upload failed for %s: %v", path, err)
			result.AddFailure(path, err)
			continue
		}
		log.Infof("Uploaded %s", path)
		result.AddSuccess(path)
	}
	return result
}

func (c *Client) uploadParallel(ctx context.Context, log *logrus.Entry, paths []string) domain.BatchResult {
	var (
		mu     sync.Mutex
		result domain.BatchResult
	)

	g := new(errgroup.Group)
	g.SetLimit(c.workers)

	for i, path := range paths {
		if i > 0 {
			if err := c.sleep(ctx, c.policy.Cooldown); err != nil {
				mu.Lock()
				abortRemaining(&result, paths[i:], err)
				mu.Unlock()
				break
			}
		}
		g.Go(func() error {
			session := c.newSession()
			defer session.CloseIdleConnections()

			err := c.uploadWithRetry(ctx, log, session, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warnf("Upload failed for %s: %v", path, err)
				result.AddFailure(path, err)
				return nil
			}
			log.Infof("Uploaded %s", path)
			result.AddSuccess(path)
			return nil
		})
	}

	_ = g.Wait()
	return result
}

// uploadWithRetry uploads path, waiting and retrying while the response is
// retryable and attempts remain. The last error is returned on give-up.
func (c *Client) uploadWithRetry(ctx context.Context, log *logrus.Entry, session *http.Client, path string) error {
	for attempt := 0; ; attempt++ {
		err := c.upload(ctx, session, path)
		if err == nil {
			return nil
		}
		if !Retryable(err) || attempt >= c.policy.Retries {
			return err
		}

		wait := c.policy.Wait(err, attempt, c.now())
		log.Warnf("Upload of %s throttled (%v); retry %d/%d in %s", path, err, attempt+1, c.policy.Retries, wait)
		if sleepErr := c.sleep(ctx, wait); sleepErr != nil {
			return domain.NewError(domain.PhaseUpload, path, "retry aborted", sleepErr)
		}
	}
}

func abortRemaining(result *domain.BatchResult, paths []string, err error) {
	for _, p := range paths {
		result.AddFailure(p, domain.NewError(domain.PhaseUpload, p, "batch cancelled", err))
	}
}
