package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keys and patterns for list and peek responses
const (
	ProductsListKey         = "products:list"
	IncomingListKey         = "invoices:incoming:list"
	OutgoingListKey         = "invoices:outgoing:list"
	NextNumberKeyFmt        = "invoices:%s:next_number"
	ProductsByDateKeyFmt    = "products:by_date:%s"
	productPattern          = "products:*"
	DefaultListTTL          = 5 * time.Minute
	DefaultNextNumberTTL    = 30 * time.Second
	defaultOperationTimeout = 2 * time.Second
)

var client *redis.Client

// generation counts invalidations; a pre-warm only stores its result if none happened since it started
var (
	generationMu sync.Mutex
	generation   uint64
)

func currentGeneration() uint64 {
	generationMu.Lock()
	defer generationMu.Unlock()
	return generation
}

// bumpGeneration must run before the keys are deleted
func bumpGeneration() {
	generationMu.Lock()
	generation++
	generationMu.Unlock()
}

// storeIfCurrent writes data only when no invalidation happened after gen was read
func storeIfCurrent(ctx context.Context, gen uint64, key string, data []byte, ttl time.Duration) bool {
	generationMu.Lock()
	defer generationMu.Unlock()
	if gen != generation {
		return false
	}
	SetCached(ctx, key, data, ttl)
	return true
}

// Options configures the connection made by Init
type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Init connects to Redis. On failure the package stays disabled and every
// helper below degrades to a cache miss.
func Init(opts Options) error {
	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		client = nil
		return err
	}
	client = c
	return nil
}

// SetClient swaps the client in use; nil disables caching
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the Redis client, nil when caching is disabled
func GetClient() *redis.Client {
	return client
}

// Close releases the connection pool
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// NextNumberKey is the peek cache key for an invoice kind
func NextNumberKey(kind string) string {
	return fmt.Sprintf(NextNumberKeyFmt, kind)
}

// ProductsByDateKey is the cache key for one day of by-date-and-storage
func ProductsByDateKey(day string) string {
	return fmt.Sprintf(ProductsByDateKeyFmt, day)
}

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	bumpGeneration()
	if client == nil {
		return
	}
	var keys []string
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if iter.Err() == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	bumpGeneration()
	if client == nil {
		return
	}
	client.Del(ctx, keys...)
}

// InvalidateProductCaches clears product lists and by-date views.
// Called when: product CRUD, and every committed invoice mutation.
func InvalidateProductCaches(ctx context.Context) {
	InvalidatePattern(ctx, productPattern)
}

// InvalidateInvoiceCaches clears the list and next-number cache of one invoice kind
// together with every product view, since invoices move stock.
func InvalidateInvoiceCaches(ctx context.Context, kind string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultOperationTimeout)
	defer cancel()

	switch kind {
	case "incoming":
		InvalidateKeys(ctx, IncomingListKey, NextNumberKey(kind))
	case "outgoing":
		InvalidateKeys(ctx, OutgoingListKey, NextNumberKey(kind))
	}
	// outgoing invoice reads join product names
	InvalidateKeys(ctx, OutgoingListKey)
	InvalidateProductCaches(ctx)
}

// IsHealthy returns true if Redis connection is working
func IsHealthy(ctx context.Context) bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, defaultOperationTimeout)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}

// PreWarmKey fills a key in the background after an invalidation.
// The result is dropped if another invalidation lands while the fetch runs.
func PreWarmKey(key string, fetcher func(ctx context.Context) ([]byte, error), ttl time.Duration) {
	if client == nil {
		return
	}

	gen := currentGeneration()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		data, err := fetcher(ctx)
		if err != nil {
			// next request falls through to the database
			return
		}
		storeIfCurrent(ctx, gen, key, data, ttl)
	}()
}
