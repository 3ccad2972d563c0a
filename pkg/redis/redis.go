package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	AnalysisTTL    = 24 * time.Hour
	analysisPrefix = "analysis:"
)

// ErrCacheMiss is returned when no result is stored for a video hash.
var ErrCacheMiss = errors.New("cache miss")

// CachedAnalysis is the subset of an analysis worth replaying for an
// identical upload.
type CachedAnalysis struct {
	Event           string `json:"event"`
	Risk            string `json:"risk"`
	Precaution      string `json:"precaution"`
	FramesProcessed int    `json:"frames_processed"`
	FramesMatched   int    `json:"frames_matched"`
}

type IRedis interface {
	GetAnalysis(ctx context.Context, videoHash string) (CachedAnalysis, error)
	SetAnalysis(ctx context.Context, videoHash string, result CachedAnalysis, expiration time.Duration) error
}

type redisClient struct {
	client *redis.Client
	log    *logrus.Logger
}

func New(log *logrus.Logger) IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	log.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		log.Info("Successfully connected to Redis")
	}

	return NewWithClient(client, log)
}

func NewWithClient(client *redis.Client, log *logrus.Logger) IRedis {
	return &redisClient{client: client, log: log}
}

func analysisKey(videoHash string) string {
	return analysisPrefix + videoHash
}

func (r *redisClient) GetAnalysis(ctx context.Context, videoHash string) (CachedAnalysis, error) {
	key := analysisKey(videoHash)
	r.log.Debug(fmt.Sprintf("Getting analysis for key %s", key))

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return CachedAnalysis{}, ErrCacheMiss
	} else if err != nil {
		r.log.Error(fmt.Sprintf("Error getting analysis for key %s: %v", key, err))
		return CachedAnalysis{}, err
	}

	var result CachedAnalysis
	if err := json.Unmarshal(val, &result); err != nil {
		return CachedAnalysis{}, fmt.Errorf("decode cached analysis: %w", err)
	}

	return result, nil
}

func (r *redisClient) SetAnalysis(ctx context.Context, videoHash string, result CachedAnalysis, expiration time.Duration) error {
	key := analysisKey(videoHash)

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode cached analysis: %w", err)
	}

	if err := r.client.Set(ctx, key, payload, expiration).Err(); err != nil {
		r.log.Error(fmt.Sprintf("Error setting analysis for key %s: %v", key, err))
		return err
	}

	r.log.Debug(fmt.Sprintf("Cached analysis for key %s with expiration %v", key, expiration))
	return nil
}
