package service

import (
	"context"
	"errors"
	"time"

	"github.com/AlibekovAA/secure-blog/internal/blog/domain"
	"github.com/AlibekovAA/secure-blog/internal/blog/repository"
	"github.com/AlibekovAA/secure-blog/internal/cache"
	"github.com/AlibekovAA/secure-blog/internal/common/clock"
	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
	"github.com/AlibekovAA/secure-blog/internal/common/resilience"
	"github.com/AlibekovAA/secure-blog/internal/consistency"
	"github.com/AlibekovAA/secure-blog/internal/observability/metrics"
)

type PostService struct {
	store       repository.PostStore
	posts       *cache.ReadCache[domain.Post]
	recent      *cache.ReadCache[[]domain.Post]
	renderer    *Renderer
	validator   *postValidator
	breaker     *resilience.CircuitBreaker
	poll        consistency.Config
	recentLimit int
	clock       clock.Clock
	log         *logger.Logger
}

type PostServiceDeps struct {
	Store    repository.PostStore
	Posts    *cache.ReadCache[domain.Post]
	Recent   *cache.ReadCache[[]domain.Post]
	Renderer *Renderer
	Clock    clock.Clock
	Log      *logger.Logger
}

type PostServiceConfig struct {
	Poll                    consistency.Config
	RecentLimit             int
	CircuitBreakerThreshold int32
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

func NewPostService(deps PostServiceDeps, config PostServiceConfig) *PostService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = NewRenderer()
	}
	limit := config.RecentLimit
	if limit <= 0 {
		limit = constants.RecentPostsLimit
	}
	return &PostService{
		store:     deps.Store,
		posts:     deps.Posts,
		recent:    deps.Recent,
		renderer:  renderer,
		validator: newPostValidator(),
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  config.CircuitBreakerThreshold,
			Timeout:    config.CircuitBreakerTimeout,
			ResetAfter: config.CircuitBreakerReset,
			Name:       "post_store",
			Clock:      clk,
			Logger:     deps.Log,
		}),
		poll:        config.Poll,
		recentLimit: limit,
		clock:       clk,
		log:         deps.Log,
	}
}

type CreatePostInput struct {
	Subject string
	Content string
}

// PostView is a post ready for display. Age is how long ago the underlying
// data was read from the store; zero means it was just read.
type PostView struct {
	Post        domain.Post
	SubjectText string
	ContentHTML string
	Age         time.Duration
}

type RecentView struct {
	Posts []PostView
	Age   time.Duration
}

// Create stores a post and waits until the store serves it back, then seeds
// both cache views so the next read sees the new post.
func (s *PostService) Create(ctx context.Context, author string, input CreatePostInput) (PostView, error) {
	normalized, err := s.validator.normalize(input)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"author": author,
			"action": "post_validation_failed",
		}).Warnf("post validation failed: %v", err)
		return PostView{}, err
	}

	var id int64
	err = s.breaker.Call(ctx, func(ctx context.Context) error {
		var insertErr error
		id, insertErr = s.store.Insert(ctx, domain.NewPost{
			Subject:   normalized.Subject,
			Content:   normalized.Content,
			Author:    author,
			CreatedAt: s.clock.Now().UTC(),
		})
		return insertErr
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"author": author,
			"action": "post_insert_failed",
		}).Errorf("post insert failed: %v", err)
		return PostView{}, storeError("POST_INSERT_FAILED", "failed to save post", err)
	}
	metrics.PostsCreatedTotal.Inc()

	post, err := consistency.AwaitVisible(ctx, s.fetchPost(id), consistency.WithConfig(s.poll))
	if err != nil {
		if errors.Is(err, ErrNotVisible) {
			s.log.WithFields(ctx, logger.Fields{
				"post_id": id,
				"action":  "post_not_visible",
			}).Warn("post written but not yet visible")
			return PostView{}, ErrNotVisible.WithCause(err).WithDetails(map[string]any{"id": id})
		}
		// The insert is durable; a request deadline that expires while
		// waiting is reported like an exhausted poll.
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.WithFields(ctx, logger.Fields{
				"post_id": id,
				"action":  "post_not_visible",
			}).Warn("request deadline reached before post became visible")
			return PostView{}, ErrNotVisible.WithCause(err).WithDetails(map[string]any{"id": id})
		}
		if errors.Is(err, context.Canceled) {
			return PostView{}, err
		}
		return PostView{}, storeError("POST_READ_FAILED", "failed to read post", err)
	}

	if err := s.posts.Put(ctx, cache.PostKey(post.ID), post); err != nil {
		s.cacheWriteFailed(ctx, cache.PostKey(post.ID), err)
	}
	s.refreshRecent(ctx, post)

	s.log.WithFields(ctx, logger.Fields{
		"post_id": post.ID,
		"author":  author,
		"action":  "post_created",
	}).Info("post created")

	return s.view(post, 0), nil
}

// Get serves a post from the cache when present, otherwise from the store.
func (s *PostService) Get(ctx context.Context, id int64) (PostView, error) {
	key := cache.PostKey(id)
	if post, age, ok := s.posts.Get(ctx, key); ok {
		return s.view(post, age), nil
	}

	post, found, err := s.fetchPost(id)(ctx)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"post_id": id,
			"action":  "post_read_failed",
		}).Errorf("post read failed: %v", err)
		return PostView{}, storeError("POST_READ_FAILED", "failed to read post", err)
	}
	if !found {
		return PostView{}, ErrPostNotFound.WithDetails(map[string]any{"id": id})
	}

	if err := s.posts.Put(ctx, key, post); err != nil {
		s.cacheWriteFailed(ctx, key, err)
	}
	return s.view(post, 0), nil
}

// Recent returns the newest posts, newest first.
func (s *PostService) Recent(ctx context.Context) (RecentView, error) {
	if posts, age, ok := s.recent.Get(ctx, cache.RecentKey); ok {
		return s.recentView(posts, age), nil
	}

	posts, err := s.listRecent(ctx)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "recent_read_failed",
		}).Errorf("recent posts read failed: %v", err)
		return RecentView{}, storeError("RECENT_READ_FAILED", "failed to read posts", err)
	}

	if err := s.recent.Put(ctx, cache.RecentKey, posts); err != nil {
		s.cacheWriteFailed(ctx, cache.RecentKey, err)
	}
	return s.recentView(posts, 0), nil
}

// FlushCache drops every cached view; subsequent reads go to the store.
func (s *PostService) FlushCache(ctx context.Context) {
	s.posts.FlushAll(ctx)
}

func (s *PostService) fetchPost(id int64) consistency.FetchFunc[domain.Post] {
	return func(ctx context.Context) (domain.Post, bool, error) {
		var (
			post  domain.Post
			found bool
		)
		err := s.breaker.Call(ctx, func(ctx context.Context) error {
			var findErr error
			post, found, findErr = s.store.FindByID(ctx, id)
			return findErr
		})
		return post, found, err
	}
}

func (s *PostService) listRecent(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var listErr error
		posts, listErr = s.store.ListRecent(ctx, s.recentLimit)
		return listErr
	})
	return posts, err
}

// refreshRecent rebuilds the recent list after a write. A lagging store may
// not list the new post yet, so it is merged in by hand.
func (s *PostService) refreshRecent(ctx context.Context, created domain.Post) {
	posts, err := s.listRecent(ctx)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"post_id": created.ID,
			"action":  "recent_refresh_failed",
		}).Warnf("recent refresh failed, dropping cached list: %v", err)
		if delErr := s.recent.Delete(ctx, cache.RecentKey); delErr != nil {
			s.cacheWriteFailed(ctx, cache.RecentKey, delErr)
		}
		return
	}

	posts = mergeRecent(posts, created, s.recentLimit)
	if err := s.recent.Put(ctx, cache.RecentKey, posts); err != nil {
		s.cacheWriteFailed(ctx, cache.RecentKey, err)
	}
}

func mergeRecent(posts []domain.Post, created domain.Post, limit int) []domain.Post {
	for _, p := range posts {
		if p.ID == created.ID {
			return posts
		}
	}
	merged := make([]domain.Post, 0, len(posts)+1)
	merged = append(merged, created)
	merged = append(merged, posts...)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func (s *PostService) cacheWriteFailed(ctx context.Context, key string, err error) {
	s.log.WithFields(ctx, logger.Fields{
		"key":    key,
		"action": "cache_write_failed",
	}).Warnf("cache write failed: %v", err)
}

func (s *PostService) view(post domain.Post, age time.Duration) PostView {
	return PostView{
		Post:        post,
		SubjectText: s.renderer.Subject(post.Subject),
		ContentHTML: s.renderer.Content(post.Content),
		Age:         age,
	}
}

func (s *PostService) recentView(posts []domain.Post, age time.Duration) RecentView {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, s.view(p, age))
	}
	return RecentView{Posts: views, Age: age}
}
