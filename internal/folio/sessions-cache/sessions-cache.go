// Package sessionscache реализует кратковременный кеш результатов проверки сессии в API контента.
//
// Фронт при загрузке страницы запрашивает сразу несколько защищённых адресов. Без кеша каждая такая
// страница вызывает отдельную проверку сессии в API; с кешем результат для одних и тех же cookie
// и заголовка Authorization переиспользуется в течение ttl.
package sessionscache

import (
	"sync"
	"time"
)

const DefaultTTL = 15 * time.Second

type sessionInfo struct {
	hasSession bool
	checkedAt  time.Time
}

type SessionsCache struct {
	m   map[string]sessionInfo
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
}

func NewSessionsCache(ttl time.Duration) *SessionsCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SessionsCache{
		m:   make(map[string]sessionInfo),
		ttl: ttl,
		now: time.Now,
	}
}

// Get возвращает сохранённый результат проверки. ok=false, если результата нет или он устарел.
func (c *SessionsCache) Get(key string) (hasSession bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.m[key]
	if !ok {
		return false, false
	}
	if c.now().After(info.checkedAt.Add(c.ttl)) {
		delete(c.m, key)
		return false, false
	}
	return info.hasSession, true
}

func (c *SessionsCache) Store(key string, hasSession bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = sessionInfo{hasSession: hasSession, checkedAt: c.now()}
}

// Cleanup удаляет устаревшие записи.
func (c *SessionsCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	deadline := c.now().Add(-c.ttl)
	n := 0
	for key, info := range c.m {
		if info.checkedAt.Before(deadline) {
			delete(c.m, key)
			n++
		}
	}
	return n
}
