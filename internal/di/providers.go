package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"LevelBias/internal/domain/repository"
	"LevelBias/internal/handler/api"
	"LevelBias/internal/handler/ws"
	internalrepo "LevelBias/internal/repository"
	icache "LevelBias/internal/service/cache"
	"LevelBias/internal/usecase"
	pkgcache "LevelBias/pkg/cache"
	pkgch "LevelBias/pkg/clickhouse"
	"LevelBias/pkg/config"
	xhttp "LevelBias/pkg/http"
	pkgkafka "LevelBias/pkg/kafka"
	applogger "LevelBias/pkg/logger"
	"LevelBias/pkg/metrics"
	"LevelBias/pkg/queue"
	"LevelBias/pkg/server"

	goredis "github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS levelbias",
		"CREATE TABLE IF NOT EXISTS levelbias.rt_candles_1s (bucket DateTime, symbol LowCardinality(String), open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=MergeTree ORDER BY (symbol, bucket)",
		"CREATE TABLE IF NOT EXISTS levelbias.rt_candles_1m (bucket DateTime, symbol LowCardinality(String), open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=MergeTree ORDER BY (symbol, bucket)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when no brokers
// are configured. The audit trail is optional infrastructure.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideBytesCache picks the level-cache backing: layered memory+Redis
// when Redis is enabled, otherwise in-process TTL map.
func ProvideBytesCache(cfg *config.Config) (icache.BytesCache, error) {
	if !cfg.Redis.Enabled {
		return icache.NewTTLCache(), nil
	}
	host, port := splitAddr(cfg.Redis.Addr)
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return icache.NewServiceCache(pkgcache.NewLayeredCache(rc)), nil
}

func splitAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}

// ProvideLevelCache creates the reference-level price cache.
func ProvideLevelCache(store icache.BytesCache) *icache.LevelCache {
	return icache.NewLevelCache(store)
}

// ProvideCandleStore creates the ClickHouse candle reader.
func ProvideCandleStore(chClient *pkgch.Client, l *applogger.Logger) repository.CandleStore {
	store := internalrepo.NewCHCandleStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideWeightStore creates the YAML-backed weight configuration store.
func ProvideWeightStore(cfg *config.Config) (repository.WeightStore, error) {
	return internalrepo.NewFileWeightStore(cfg.Prediction.WeightsFile)
}

// ProvidePredictionStore creates ClickHouse prediction storage.
func ProvidePredictionStore(chClient *pkgch.Client, cfg *config.Config) repository.PredictionStore {
	return internalrepo.NewCHPredictionStore(chClient.DB(), cfg.ClickHouse.PredictionTable)
}

// ProvideAuditPublisher creates the Kafka weight-change audit publisher,
// or nil when Kafka is not configured.
func ProvideAuditPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.AuditPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaAuditPublisher(producer, cfg.Kafka.AuditTopic)
}

// ProvideRedisQueue creates the async persistence queue with the
// prediction persist job registered, or nil when Redis is disabled.
func ProvideRedisQueue(cfg *config.Config, l *applogger.Logger, predStore repository.PredictionStore) *queue.RedisQueue {
	if !cfg.Redis.Enabled {
		return nil
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rq := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.QueueSize,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, client, queue.ModeProducerConsumer)
	rq.RegisterJob(usecase.NewPredictionPersistJob(predStore, l))
	return rq
}

// ProvideHub creates the WebSocket broadcast hub.
func ProvideHub(l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

// ProvidePredictUseCase creates the prediction use case.
func ProvidePredictUseCase(
	cfg *config.Config,
	candles repository.CandleStore,
	weights repository.WeightStore,
	levels *icache.LevelCache,
	rq *queue.RedisQueue,
	predStore repository.PredictionStore,
	m repository.Metrics,
	hub *ws.Hub,
	l *applogger.Logger,
) *usecase.PredictUseCase {
	var q queue.QueueService
	if rq != nil {
		q = rq
	}
	uc := usecase.NewPredictUseCase(candles, weights, levels, q, m)
	uc.SetLogger(l)
	uc.SetBroadcaster(hub)
	uc.SetDefaultN(cfg.Prediction.DefaultN)
	if q == nil {
		uc.SetPredictionStore(predStore)
	}
	return uc
}

// ProvideCandlesUseCase creates the candle retrieval use case.
func ProvideCandlesUseCase(store repository.CandleStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideWeightsUseCase creates the weight configuration use case.
func ProvideWeightsUseCase(store repository.WeightStore, audit repository.AuditPublisher, l *applogger.Logger) *usecase.WeightsUseCase {
	uc := usecase.NewWeightsUseCase(store, audit)
	uc.SetLogger(l)
	return uc
}

// ProvideHTTPHandler creates the REST handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	predict *usecase.PredictUseCase,
	candles *usecase.CandlesUseCase,
	weights *usecase.WeightsUseCase,
) xhttp.Handler {
	return api.NewPredictionEchoHandler(l, predict, candles, weights)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	chClient *pkgch.Client,
	rq *queue.RedisQueue,
	hub *ws.Hub,
	handler xhttp.Handler,
	predStore repository.PredictionStore,
	audit repository.AuditPublisher,
	levels *icache.LevelCache,
) *server.App {
	return server.New(cfg, l, chClient, rq, hub, handler, predStore, audit, levels)
}
