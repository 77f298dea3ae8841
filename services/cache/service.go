package cache

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/redis/go-redis/v9"

	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/logger"
	"github.com/mailroomhq/mailroom/internal/tracing"
)

type redisCacheService struct {
	client *redis.Client
	log    logger.Logger
}

func NewRedisCacheService(client *redis.Client, log logger.Logger) interfaces.CacheService {
	return &redisCacheService{
		client: client,
		log:    log,
	}
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (s *redisCacheService) InvalidateEmailList(ctx context.Context, userID, folderID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "redisCacheService.InvalidateEmailList")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUserId(span, userID)

	return s.invalidate(ctx, span, EmailListKey(userID, folderID))
}

func (s *redisCacheService) InvalidateFolders(ctx context.Context, userID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "redisCacheService.InvalidateFolders")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUserId(span, userID)

	return s.invalidate(ctx, span, FoldersKey(userID))
}

func (s *redisCacheService) InvalidateContacts(ctx context.Context, userID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "redisCacheService.InvalidateContacts")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUserId(span, userID)

	return s.invalidate(ctx, span, ContactsKey(userID))
}

func (s *redisCacheService) invalidate(ctx context.Context, span opentracing.Span, key string) error {
	span.LogKV("cache.key", key)

	if err := s.client.Del(ctx, key).Err(); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
