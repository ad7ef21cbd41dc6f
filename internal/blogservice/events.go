package blogservice

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/sushihentaime/blogcms/internal/common"
)

// BlogEvent is published on the blog exchange after every successful write.
type BlogEvent struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Author string `json:"author"`
}

// publish is best effort: the write has already been committed, so a broker failure is only logged.
func (s *BlogService) publish(ctx context.Context, key common.BindingKey, blog *Blog) {
	if s.mb == nil {
		return
	}

	data, err := json.Marshal(BlogEvent{ID: blog.ID, Title: blog.Title, Slug: blog.Slug, Author: blog.Author})
	if err != nil {
		s.logger.Error("could not marshal blog event", slog.String("error", err.Error()))
		return
	}

	err = s.mb.Publish(ctx, data, key, common.BlogExchange)
	if err != nil {
		s.logger.Error("could not publish blog event", slog.String("key", string(key)), slog.String("id", blog.ID), slog.String("error", err.Error()))
	}
}

// invalidate drops every cached blog read.
func (s *BlogService) invalidate() {
	if s.c != nil {
		s.c.DeletePrefix(common.CacheKeyBlogPrefix())
	}
}

// SyncCache flushes the local blog cache whenever any instance publishes a blog event.
// It returns once the subscription is established and keeps consuming until ctx is done.
func (s *BlogService) SyncCache(ctx context.Context, bc common.BroadcastConsumer) error {
	msgs, err := bc.ConsumeBroadcast(common.BlogAnyKey, common.BlogExchange)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.invalidate()
				s.logger.Debug("blog cache invalidated", slog.String("key", msg.RoutingKey))
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}
