package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"tzu-threatmodel/internal/aggregate"
	"tzu-threatmodel/internal/dto"
)

// Loader: загрузка сохранённых угроз системы.
type Loader func(ctx context.Context, systemID string) ([]dto.Threat, error)

// Cache хранит агрегаты редакторов по паре (рабочая сессия, система).
// Срок жизни отсчитывается от последнего обращения.
type Cache struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, *aggregate.Aggregate]
}

func NewCache(size int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[string, *aggregate.Aggregate](size, nil, ttl)}
}

func key(workspaceID, systemID string) string {
	return workspaceID + "/" + systemID
}

// touch продлевает срок записи: expirable.LRU.Get его не сдвигает.
// Тот же указатель кладётся обратно, поэтому идущее сохранение не теряется.
func (c *Cache) touch(k string) (*aggregate.Aggregate, bool) {
	agg, ok := c.lru.Get(k)
	if ok {
		c.lru.Add(k, agg)
	}
	return agg, ok
}

// Get возвращает агрегат без загрузки и продлевает его срок.
func (c *Cache) Get(workspaceID, systemID string) (*aggregate.Aggregate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touch(key(workspaceID, systemID))
}

// GetOrLoad отдаёт агрегат из кэша или загружает угрозы системы в новый.
// Загрузка идёт под блокировкой: два запроса одного редактора не создадут два агрегата.
func (c *Cache) GetOrLoad(ctx context.Context, workspaceID, systemID string, load Loader) (*aggregate.Aggregate, error) {
	k := key(workspaceID, systemID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if agg, ok := c.touch(k); ok {
		return agg, nil
	}

	threats, err := load(ctx, systemID)
	if err != nil {
		return nil, err
	}
	agg := aggregate.New(systemID)
	agg.Load(threats)
	c.lru.Add(k, agg)
	return agg, nil
}

// Discard выбрасывает агрегат вместе с несохранёнными правками.
func (c *Cache) Discard(workspaceID, systemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Remove(key(workspaceID, systemID))
}

func (c *Cache) Len() int {
	return c.lru.Len()
}
