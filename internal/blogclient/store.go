package blogclient

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

type Action string

const (
	ActionCreateBlog         Action = "createBlog"
	ActionEditBlog           Action = "editBlog"
	ActionGetAllBlogs        Action = "getAllBlogs"
	ActionGetByID            Action = "getById"
	ActionGetByCategory      Action = "getByCategory"
	ActionGetFeatured        Action = "getFeatured"
	ActionDeleteBlog         Action = "deleteBlog"
	ActionToggleFeatured     Action = "toggleFeatured"
	ActionUploadImage        Action = "uploadImage"
	ActionFetchMonthlyStats  Action = "fetchMonthlyStats"
	ActionFetchCategoryStats Action = "fetchCategoryStats"
	ActionFetchTotalBlogs    Action = "fetchTotalBlogs"
	ActionFetchVisitStats    Action = "fetchVisitStats"
	ActionRecordVisit        Action = "recordVisit"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// State is the client-side cache. Blogs mirrors the last list-all or category fetch and is
// patched locally after create, edit, toggle and delete, so it may drift from server order
// until the next fetch.
type State struct {
	Blogs         []Blog
	Featured      []Blog
	Blog          *Blog
	MonthlyStats  []MonthlyStat
	CategoryStats []CategoryStat
	VisitStats    []VisitStat
	TotalBlogs    int
	UploadedURL   string

	Status map[Action]Status
	Errors map[Action]string
}

// StatusOf returns the last known status of action, StatusIdle if it never ran.
func (st State) StatusOf(action Action) Status {
	if s, ok := st.Status[action]; ok {
		return s
	}
	return StatusIdle
}

func (st State) clone() State {
	c := st
	c.Blogs = append([]Blog(nil), st.Blogs...)
	c.Featured = append([]Blog(nil), st.Featured...)
	c.MonthlyStats = append([]MonthlyStat(nil), st.MonthlyStats...)
	c.CategoryStats = append([]CategoryStat(nil), st.CategoryStats...)
	c.VisitStats = append([]VisitStat(nil), st.VisitStats...)
	if st.Blog != nil {
		b := *st.Blog
		c.Blog = &b
	}

	c.Status = make(map[Action]Status, len(st.Status))
	for k, v := range st.Status {
		c.Status[k] = v
	}
	c.Errors = make(map[Action]string, len(st.Errors))
	for k, v := range st.Errors {
		c.Errors[k] = v
	}
	return c
}

type Store struct {
	client   *Client
	notifier Notifier

	// notifyMu is held from a state change until its snapshot has reached every
	// subscriber, so subscribers see snapshots in the order the changes were made.
	notifyMu sync.Mutex

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

func NewStore(client *Client, notifier Notifier) *Store {
	if notifier == nil {
		notifier = NewLogNotifier(nil)
	}

	return &Store{
		client:   client,
		notifier: notifier,
		state: State{
			Blogs:  []Blog{},
			Status: make(map[Action]Status),
			Errors: make(map[Action]string),
		},
		subs: make(map[int]func(State)),
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Loading reports whether any action is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.state.Status {
		if st == StatusLoading {
			return true
		}
	}
	return false
}

// Subscribe registers fn to receive a snapshot after every state change. Snapshots are
// delivered synchronously and in order; fn may read the store but must not start an
// action from the same goroutine.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) update(fn func(*State)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.clone()
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snapshot)
	}
}

// outcome is what a successful call contributes: the server message and the cache change.
type outcome struct {
	message string
	apply   func(*State)
}

// run drives one action through loading and into succeeded or failed. Only the entry for
// action is touched, so concurrent actions keep independent terminal states. successMsg
// empty means the action succeeds silently.
func (s *Store) run(ctx context.Context, action Action, successMsg, failureMsg string, call func(context.Context) (*outcome, error)) error {
	s.update(func(st *State) {
		st.Status[action] = StatusLoading
		delete(st.Errors, action)
	})

	out, err := call(ctx)
	if err != nil {
		msg := errorMessage(err, failureMsg)
		s.update(func(st *State) {
			st.Status[action] = StatusFailed
			st.Errors[action] = msg
		})
		s.notifier.Error(msg)
		return err
	}

	s.update(func(st *State) {
		if out.apply != nil {
			out.apply(st)
		}
		st.Status[action] = StatusSucceeded
	})

	if successMsg != "" {
		if out.message != "" {
			successMsg = out.message
		}
		s.notifier.Success(successMsg)
	}

	return nil
}

func errorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if len(apiErr.Fields) > 0 {
			return apiErr.Error()
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return fallback
}

func replaceBlog(blogs []Blog, b Blog) []Blog {
	for i := range blogs {
		if blogs[i].ID == b.ID {
			blogs[i] = b
		}
	}
	return blogs
}

func removeBlog(blogs []Blog, id string) []Blog {
	kept := blogs[:0]
	for _, b := range blogs {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	return kept
}

// CreateBlog appends the created blog to Blogs without refetching.
func (s *Store) CreateBlog(ctx context.Context, in BlogInput) error {
	return s.run(ctx, ActionCreateBlog, "Blog created successfully", "Failed to create blog", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.CreateBlog(ctx, in)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message, apply: func(st *State) {
			st.Blogs = append(st.Blogs, resp.Blog)
		}}, nil
	})
}

func (s *Store) EditBlog(ctx context.Context, id string, patch BlogPatch) error {
	return s.run(ctx, ActionEditBlog, "Blog updated successfully", "Failed to update blog", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.EditBlog(ctx, id, patch)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message, apply: func(st *State) {
			st.Blogs = replaceBlog(st.Blogs, resp.Blog)
			st.Featured = replaceBlog(st.Featured, resp.Blog)
			if st.Blog != nil && st.Blog.ID == resp.Blog.ID {
				b := resp.Blog
				st.Blog = &b
			}
		}}, nil
	})
}

func (s *Store) GetAllBlogs(ctx context.Context) error {
	return s.run(ctx, ActionGetAllBlogs, "", "Failed to fetch blogs", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.GetBlogs(ctx)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message, apply: func(st *State) {
			st.Blogs = resp.Blogs
		}}, nil
	})
}

func (s *Store) GetByID(ctx context.Context, id string) error {
	return s.run(ctx, ActionGetByID, "", "Failed to fetch blog", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.GetBlog(ctx, id)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message, apply: func(st *State) {
			b := resp.Blog
			st.Blog = &b
		}}, nil
	})
}

// GetByCategory replaces Blogs with the blogs in category.
func (s *Store) GetByCategory(ctx context.Context, category string) error {
	return s.run(ctx, ActionGetByCategory, "", "Failed to fetch blogs", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.GetBlogsByCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message, apply: func(st *State) {
			st.Blogs = resp.Blogs
		}}, nil
	})
}

func (s *Store) GetFeatured(ctx context.Context) error {
	return s.run(ctx, ActionGetFeatured, "", "Failed to fetch featured blogs", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.GetFeaturedBlogs(ctx)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message, apply: func(st *State) {
			st.Featured = resp.Blogs
		}}, nil
	})
}

// DeleteBlog filters the deleted blog out of the cache without refetching.
func (s *Store) DeleteBlog(ctx context.Context, id string) error {
	return s.run(ctx, ActionDeleteBlog, "Blog deleted successfully", "Failed to delete blog", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.DeleteBlog(ctx, id)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message, apply: func(st *State) {
			st.Blogs = removeBlog(st.Blogs, id)
			st.Featured = removeBlog(st.Featured, id)
			if st.Blog != nil && st.Blog.ID == id {
				st.Blog = nil
			}
		}}, nil
	})
}

// ToggleFeatured updates the matching entry in Blogs with the server's new flag.
func (s *Store) ToggleFeatured(ctx context.Context, id string) error {
	return s.run(ctx, ActionToggleFeatured, "Featured status toggled successfully", "Failed to toggle featured status", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.ToggleFeatured(ctx, id)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message, apply: func(st *State) {
			st.Blogs = replaceBlog(st.Blogs, resp.Blog)
			switch {
			case !resp.Blog.IsFeatured:
				st.Featured = removeBlog(st.Featured, id)
			case containsBlog(st.Featured, id):
				st.Featured = replaceBlog(st.Featured, resp.Blog)
			default:
				st.Featured = append(st.Featured, resp.Blog)
			}
			if st.Blog != nil && st.Blog.ID == id {
				b := resp.Blog
				st.Blog = &b
			}
		}}, nil
	})
}

func containsBlog(blogs []Blog, id string) bool {
	for _, b := range blogs {
		if b.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) UploadImage(ctx context.Context, filename string, r io.Reader) error {
	return s.run(ctx, ActionUploadImage, "Image uploaded successfully", "Failed to upload image", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.UploadImage(ctx, filename, r)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message, apply: func(st *State) {
			st.UploadedURL = resp.SecureURL
		}}, nil
	})
}

func (s *Store) FetchMonthlyStats(ctx context.Context) error {
	return s.run(ctx, ActionFetchMonthlyStats, "", "Failed to fetch monthly stats", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.MonthlyStats(ctx)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message, apply: func(st *State) {
			st.MonthlyStats = resp.Stats
		}}, nil
	})
}

func (s *Store) FetchCategoryStats(ctx context.Context) error {
	return s.run(ctx, ActionFetchCategoryStats, "", "Failed to fetch category stats", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.CategoryStats(ctx)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message, apply: func(st *State) {
			st.CategoryStats = resp.Stats
		}}, nil
	})
}

func (s *Store) FetchTotalBlogs(ctx context.Context) error {
	return s.run(ctx, ActionFetchTotalBlogs, "", "Failed to fetch total blogs", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.TotalBlogs(ctx)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message, apply: func(st *State) {
			st.TotalBlogs = resp.Total
		}}, nil
	})
}

func (s *Store) FetchVisitStats(ctx context.Context) error {
	return s.run(ctx, ActionFetchVisitStats, "", "Failed to fetch visit stats", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.VisitStats(ctx)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message, apply: func(st *State) {
			st.VisitStats = resp.Stats
		}}, nil
	})
}

func (s *Store) RecordVisit(ctx context.Context, page string) error {
	return s.run(ctx, ActionRecordVisit, "", "Failed to record visit", func(ctx context.Context) (*outcome, error) {
		resp, err := s.client.RecordVisit(ctx, page)
		if err != nil {
			return nil, err
		}
		return &outcome{message: resp.Message}, nil
	})
}

// AutoRefresh refetches every blog each interval until ctx is done. Failures are reported
// through the notifier like any other action.
// A non-positive interval disables refreshing.
func (s *Store) AutoRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = s.GetAllBlogs(ctx)
		case <-ctx.Done():
			return
		}
	}
}
