package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/AlibekovAA/secure-blog/internal/blog/domain"
)

type pendingPost struct {
	post domain.Post
	// hiddenReads counts the reads that still miss this post.
	hiddenReads int
}

// EventualStore is an in-memory PostStore whose reads trail its writes. A new
// post stays invisible for a fixed number of reads, which gives dev mode and
// tests a deterministic replication lag.
type EventualStore struct {
	mu     sync.Mutex
	nextID int64
	lag    int
	posts  map[int64]*pendingPost
}

func NewEventualStore(visibilityLag int) *EventualStore {
	if visibilityLag < 0 {
		visibilityLag = 0
	}
	return &EventualStore{
		lag:   visibilityLag,
		posts: make(map[int64]*pendingPost),
	}
}

func (s *EventualStore) Insert(_ context.Context, post domain.NewPost) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.posts[s.nextID] = &pendingPost{
		post: domain.Post{
			ID:        s.nextID,
			Subject:   post.Subject,
			Content:   post.Content,
			Author:    post.Author,
			CreatedAt: post.CreatedAt,
		},
		hiddenReads: s.lag,
	}
	return s.nextID, nil
}

func (s *EventualStore) FindByID(ctx context.Context, id int64) (domain.Post, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Post{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return domain.Post{}, false, nil
	}
	if p.hiddenReads > 0 {
		p.hiddenReads--
		return domain.Post{}, false, nil
	}
	return p.post, true, nil
}

func (s *EventualStore) ListRecent(ctx context.Context, limit int) ([]domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	visible := make([]domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if p.hiddenReads > 0 {
			p.hiddenReads--
			continue
		}
		visible = append(visible, p.post)
	}

	sort.Slice(visible, func(i, j int) bool {
		if visible[i].CreatedAt.Equal(visible[j].CreatedAt) {
			return visible[i].ID > visible[j].ID
		}
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	if limit > 0 && len(visible) > limit {
		visible = visible[:limit]
	}
	return visible, nil
}
