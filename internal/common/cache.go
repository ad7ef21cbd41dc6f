package common

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache struct {
	*cache.Cache
}

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{cache.New(expirationTime, cleanupTime)}
}

func (c *Cache) Set(key string, value interface{}, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.Cache.Set(key, value, expiration[0])
		return
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.Cache.Get(key)
}

// DeletePrefix removes every entry whose key starts with prefix.
func (c *Cache) DeletePrefix(prefix string) {
	for key := range c.Cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.Cache.Delete(key)
		}
	}
}

func (c *Cache) Flush() {
	c.Cache.Flush()
}

const blogKeyPrefix = "blog"

func CacheKeyBlog(id string) string {
	return blogKeyPrefix + ":" + id
}

func CacheKeyBlogs() string {
	return blogKeyPrefix + "s:all"
}

// CacheKeyBlogPrefix matches every key produced by CacheKeyBlog and CacheKeyBlogs.
func CacheKeyBlogPrefix() string {
	return blogKeyPrefix
}

func CacheKeyUserByAccessToken(hash []byte) string {
	return "user_by_access_token:" + string(hash)
}

func CacheKeyUserPrefix() string {
	return "user_by_access_token:"
}
