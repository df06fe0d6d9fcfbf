package stats

import (
	"time"

	"github.com/phambaophuc/image-converter/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	TotalsKey  = "converter:stats"
	FormatsKey = "converter:formats"
)

type StatsService struct {
	redisClient *redis.Client
}

type ServiceOptions struct {
	MaxRetries int
	Timeout    time.Duration
}

var DefaultOptions = ServiceOptions{
	MaxRetries: 3,
	Timeout:    5 * time.Second,
}

func NewStatsService(cfg config.RedisConfig, opts ...ServiceOptions) *StatsService {
	options := DefaultOptions
	if len(opts) > 0 {
		options = opts[0]
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   options.MaxRetries,
		DialTimeout:  options.Timeout,
		ReadTimeout:  options.Timeout,
		WriteTimeout: options.Timeout,
	})

	return NewStatsServiceWithClient(redisClient)
}

func NewStatsServiceWithClient(client *redis.Client) *StatsService {
	return &StatsService{redisClient: client}
}

func (s *StatsService) Close() error {
	return s.redisClient.Close()
}
