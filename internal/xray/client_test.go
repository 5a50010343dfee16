package xray

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/fjglira/xraysync/internal/domain"
)

// recorder captures requests seen by a fake import endpoint.
type recorder struct {
	mu      sync.Mutex
	bodies  []string
	headers []http.Header
	calls   atomic.Int32
}

func (r *recorder) record(req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies = append(r.bodies, string(body))
	r.headers = append(r.headers, req.Header.Clone())
	r.calls.Add(1)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func writeDoc(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}

// fakeSleep records requested waits without blocking.
type fakeSleep struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (f *fakeSleep) sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.waits = append(f.waits, d)
	f.mu.Unlock()
	return ctx.Err()
}

func (f *fakeSleep) recorded() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.waits...)
}

var _ = Describe("Client", func() {
	var (
		dir    string
		rec    *recorder
		server *httptest.Server
		client *Client
		sleeps *fakeSleep
		policy RetryPolicy
	)

	newClient := func(handler http.HandlerFunc, parallel bool) {
		server = httptest.NewServer(handler)
		client = NewClient(Options{
			Token:    "tok-123",
			Endpoint: server.URL,
			Timeout:  5 * time.Second,
			Policy:   policy,
			Parallel: parallel,
			Workers:  3,
			Log:      quietLogger(),
		})
		client.sleep = sleeps.sleep
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		rec = &recorder{}
		sleeps = &fakeSleep{}
		policy = RetryPolicy{Retries: 2, BaseDelay: time.Second, Backoff: 2, Cooldown: 500 * time.Millisecond}
	})

	AfterEach(func() {
		if client != nil {
			client.Close()
		}
		if server != nil {
			server.Close()
		}
		client, server = nil, nil
	})

	Describe("Upload", func() {
		It("should post the compacted document with auth headers", func() {
			newClient(func(w http.ResponseWriter, r *http.Request) {
				rec.record(r)
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"jobId":"abc"}`))
			}, false)
			path := writeDoc(dir, "a.json", "[\n  {\n    \"testtype\": \"Manual\"\n  }\n]\n")

			Expect(client.Upload(context.Background(), path)).To(Succeed())
			Expect(rec.bodies).To(Equal([]string{`[{"testtype":"Manual"}]`}))
			Expect(rec.headers[0].Get("Authorization")).To(Equal("Bearer tok-123"))
			Expect(rec.headers[0].Get("Content-Type")).To(Equal("application/json"))
		})

		It("should report a missing document as an IO error without a request", func() {
			newClient(func(w http.ResponseWriter, r *http.Request) {
				rec.record(r)
			}, false)

			err := client.Upload(context.Background(), filepath.Join(dir, "missing.json"))
			Expect(domain.IsPhase(err, domain.PhaseIO)).To(BeTrue())
			Expect(rec.calls.Load()).To(BeZero())
		})

		It("should reject invalid JSON before sending", func() {
			newClient(func(w http.ResponseWriter, r *http.Request) {
				rec.record(r)
			}, false)
			path := writeDoc(dir, "bad.json", "{not json")

			err := client.Upload(context.Background(), path)
			Expect(domain.IsPhase(err, domain.PhaseParse)).To(BeTrue())
			Expect(rec.calls.Load()).To(BeZero())
		})

		It("should surface the server message of a rejected import", func() {
			newClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"Project BAD does not exist"}`))
			}, false)
			path := writeDoc(dir, "a.json", "[]")

			err := client.Upload(context.Background(), path)
			Expect(err).To(MatchError(ContainSubstring("Project BAD does not exist")))
			Expect(domain.IsPhase(err, domain.PhaseUpload)).To(BeTrue())
		})
	})

	Describe("UploadBatch", func() {
		It("should wait until nextValidRequestDate after a 429", func() {
			now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			next := now.Add(10 * time.Second).Format(time.RFC3339Nano)
			newClient(func(w http.ResponseWriter, r *http.Request) {
				rec.record(r)
				if rec.calls.Load() == 1 {
					w.WriteHeader(http.StatusTooManyRequests)
					_, _ = w.Write([]byte(`{"error":"rate limited","nextValidRequestDate":"` + next + `"}`))
					return
				}
				w.WriteHeader(http.StatusOK)
			}, false)
			client.now = func() time.Time { return now }
			path := writeDoc(dir, "a.json", "[]")

			result := client.UploadBatch(context.Background(), []string{path})
			Expect(result.Succeeded).To(Equal([]string{path}))
			Expect(result.Failed).To(BeEmpty())
			Expect(rec.calls.Load()).To(BeEquivalentTo(2))
			Expect(sleeps.recorded()).To(HaveLen(1))
			Expect(sleeps.recorded()[0]).To(BeNumerically(">=", 10*time.Second))
		})

		It("should give up after the configured retries with the last message", func() {
			newClient(func(w http.ResponseWriter, r *http.Request) {
				rec.record(r)
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"An import job is Already In Progress"}`))
			}, false)
			path := writeDoc(dir, "a.json", "[]")

			result := client.UploadBatch(context.Background(), []string{path})
			Expect(result.Succeeded).To(BeEmpty())
			Expect(result.Failed).To(HaveLen(1))
			Expect(result.Failed[0].Reason).To(ContainSubstring("Already In Progress"))
			Expect(rec.calls.Load()).To(BeEquivalentTo(3))
			Expect(sleeps.recorded()).To(Equal([]time.Duration{time.Second, 2 * time.Second}))
		})

		It("should not retry other failures", func() {
			newClient(func(w http.ResponseWriter, r *http.Request) {
				rec.record(r)
				w.WriteHeader(http.StatusInternalServerError)
			}, false)
			path := writeDoc(dir, "a.json", "[]")

			result := client.UploadBatch(context.Background(), []string{path})
			Expect(result.Failed).To(HaveLen(1))
			Expect(rec.calls.Load()).To(BeEquivalentTo(1))
			Expect(sleeps.recorded()).To(BeEmpty())
		})

		It("should cool down between documents and keep going after a failure", func() {
			newClient(func(w http.ResponseWriter, r *http.Request) {
				rec.record(r)
				w.WriteHeader(http.StatusOK)
			}, false)
			a := writeDoc(dir, "a.json", "[]")
			b := writeDoc(dir, "b.json", "[]")
			missing := filepath.Join(dir, "missing.json")

			result := client.UploadBatch(context.Background(), []string{a, missing, b})
			Expect(result.Succeeded).To(Equal([]string{a, b}))
			Expect(result.Failed).To(HaveLen(1))
			Expect(result.Failed[0].Path).To(Equal(missing))
			Expect(sleeps.recorded()).To(Equal([]time.Duration{500 * time.Millisecond, 500 * time.Millisecond}))
		})

		It("should mark remaining documents failed when cancelled", func() {
			newClient(func(w http.ResponseWriter, r *http.Request) {
				rec.record(r)
				w.WriteHeader(http.StatusOK)
			}, false)
			a := writeDoc(dir, "a.json", "[]")
			b := writeDoc(dir, "b.json", "[]")
			ctx, cancel := context.WithCancel(context.Background())
			client.sleep = func(context.Context, time.Duration) error {
				cancel()
				return context.Canceled
			}

			result := client.UploadBatch(ctx, []string{a, b})
			Expect(result.Succeeded).To(Equal([]string{a}))
			Expect(result.Failed).To(HaveLen(1))
			Expect(result.Failed[0].Path).To(Equal(b))
		})

		It("should give every parallel upload its own session", func() {
			newClient(func(w http.ResponseWriter, r *http.Request) {
				rec.record(r)
				w.WriteHeader(http.StatusOK)
			}, true)
			var sessions atomic.Int32
			client.newSession = func() *http.Client {
				sessions.Add(1)
				return client.defaultSession()
			}
			paths := []string{
				writeDoc(dir, "a.json", "[]"),
				writeDoc(dir, "b.json", "[]"),
				writeDoc(dir, "c.json", "[]"),
				writeDoc(dir, "d.json", "[]"),
			}

			result := client.UploadBatch(context.Background(), paths)
			Expect(result.Succeeded).To(ConsistOf(paths))
			Expect(result.Total()).To(Equal(len(paths)))
			Expect(sessions.Load()).To(BeEquivalentTo(len(paths)))
			Expect(rec.calls.Load()).To(BeEquivalentTo(len(paths)))
		})
	})

	Describe("String", func() {
		It("should describe the mode", func() {
			newClient(func(http.ResponseWriter, *http.Request) {}, true)
			Expect(client.String()).To(ContainSubstring("parallel x3"))
		})
	})
})
