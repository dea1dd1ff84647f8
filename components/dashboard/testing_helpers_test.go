package dashboard

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
)

type stubClient struct {
	mu    sync.Mutex
	calls map[string]int

	products      func(ctx context.Context) ([]Product, error)
	search        func(ctx context.Context, q string) ([]Product, error)
	filter        func(ctx context.Context, category string) ([]Product, error)
	addProduct    func(ctx context.Context, form ProductForm) (MutationResult, error)
	upload        func(ctx context.Context, upload CatalogUpload) (MutationResult, error)
	deleteProduct func(ctx context.Context, index int) (MutationResult, error)
	movements     func(ctx context.Context, q MovementQuery) ([]Movement, error)
	unresolved    func(ctx context.Context, q CaseQuery) ([]UnresolvedCase, error)
	resolve       func(ctx context.Context, id string) (MutationResult, error)
	notes         func(ctx context.Context, id, notes string) (MutationResult, error)
	analytics     func(ctx context.Context, days int) (AnalyticsSnapshot, error)
	problems      func(ctx context.Context) (ProblemAnalysis, error)
}

func newStubClient() *stubClient {
	return &stubClient{calls: map[string]int{}}
}

func (s *stubClient) hit(name string) {
	s.mu.Lock()
	s.calls[name]++
	s.mu.Unlock()
}

func (s *stubClient) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubClient) ListProducts(ctx context.Context) ([]Product, error) {
	s.hit("ListProducts")
	if s.products == nil {
		return nil, nil
	}
	return s.products(ctx)
}

func (s *stubClient) SearchProducts(ctx context.Context, q string) ([]Product, error) {
	s.hit("SearchProducts")
	if s.search == nil {
		return nil, nil
	}
	return s.search(ctx, q)
}

func (s *stubClient) FilterProducts(ctx context.Context, category string) ([]Product, error) {
	s.hit("FilterProducts")
	if s.filter == nil {
		return nil, nil
	}
	return s.filter(ctx, category)
}

func (s *stubClient) AddProduct(ctx context.Context, form ProductForm) (MutationResult, error) {
	s.hit("AddProduct")
	if s.addProduct == nil {
		return MutationResult{}, nil
	}
	return s.addProduct(ctx, form)
}

func (s *stubClient) UploadCatalog(ctx context.Context, upload CatalogUpload) (MutationResult, error) {
	s.hit("UploadCatalog")
	if s.upload == nil {
		return MutationResult{}, nil
	}
	return s.upload(ctx, upload)
}

func (s *stubClient) DeleteProduct(ctx context.Context, index int) (MutationResult, error) {
	s.hit("DeleteProduct")
	if s.deleteProduct == nil {
		return MutationResult{}, nil
	}
	return s.deleteProduct(ctx, index)
}

func (s *stubClient) ListMovements(ctx context.Context, q MovementQuery) ([]Movement, error) {
	s.hit("ListMovements")
	if s.movements == nil {
		return nil, nil
	}
	return s.movements(ctx, q)
}

func (s *stubClient) ListUnresolved(ctx context.Context, q CaseQuery) ([]UnresolvedCase, error) {
	s.hit("ListUnresolved")
	if s.unresolved == nil {
		return nil, nil
	}
	return s.unresolved(ctx, q)
}

func (s *stubClient) ResolveCase(ctx context.Context, id string) (MutationResult, error) {
	s.hit("ResolveCase")
	if s.resolve == nil {
		return MutationResult{}, nil
	}
	return s.resolve(ctx, id)
}

func (s *stubClient) AddCaseNotes(ctx context.Context, id, notes string) (MutationResult, error) {
	s.hit("AddCaseNotes")
	if s.notes == nil {
		return MutationResult{}, nil
	}
	return s.notes(ctx, id, notes)
}

func (s *stubClient) FetchAnalytics(ctx context.Context, days int) (AnalyticsSnapshot, error) {
	s.hit("FetchAnalytics")
	if s.analytics == nil {
		return AnalyticsSnapshot{}, nil
	}
	return s.analytics(ctx, days)
}

func (s *stubClient) FetchProblemAnalysis(ctx context.Context) (ProblemAnalysis, error) {
	s.hit("FetchProblemAnalysis")
	if s.problems == nil {
		return ProblemAnalysis{}, nil
	}
	return s.problems(ctx)
}

// manualScheduler fires callbacks only when the test advances its clock.
type manualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*manualTask
}

type manualTask struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Stopper {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &manualTask{at: s.now + d, fn: f}
	s.tasks = append(s.tasks, task)
	return task
}

func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()
	for {
		s.mu.Lock()
		sort.SliceStable(s.tasks, func(i, j int) bool { return s.tasks[i].at < s.tasks[j].at })
		var next *manualTask
		for _, task := range s.tasks {
			if !task.fired && !task.stopped && task.at <= target {
				next = task
				break
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.fired = true
		s.now = next.at
		s.mu.Unlock()
		next.fn()
	}
}

type stubRenderer struct {
	mu    sync.Mutex
	calls []string
	data  []any
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, name)
	r.data = append(r.data, data)
	r.mu.Unlock()
	html := "<" + name + ">"
	for _, w := range out {
		_, _ = io.WriteString(w, html)
	}
	return html, nil
}

type recordingActivity struct {
	mu     sync.Mutex
	events []ActivityEvent
}

func (r *recordingActivity) Notify(_ context.Context, evt ActivityEvent) error {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
	return nil
}

func testLogger() (*log.Logger, *memory.Handler) {
	h := memory.New()
	return &log.Logger{Handler: h, Level: log.DebugLevel}, h
}

func newTestController(client *stubClient, sched *manualScheduler, mutate ...func(*ControllerOptions)) *Controller {
	logger, _ := testLogger()
	opts := ControllerOptions{
		Client:    client,
		Scheduler: sched,
		Logger:    logger,
		Session:   "s1",
		Location:  time.UTC,
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	c, err := NewController(opts)
	if err != nil {
		panic(err)
	}
	return c
}
