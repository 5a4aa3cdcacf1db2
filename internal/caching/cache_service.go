package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"imeitrack/internal/models"
)

type CacheService interface {
	// Unit caching
	GetUnit(ctx context.Context, imei string) (*models.InventoryUnit, error)
	SetUnit(ctx context.Context, unit *models.InventoryUnit, ttl time.Duration) error
	DeleteUnit(ctx context.Context, imei string) error
	DeleteUnits(ctx context.Context, imeis []string) error

	// Transfer caching
	GetTransfer(ctx context.Context, id string) (*models.Transfer, error)
	SetTransfer(ctx context.Context, transfer *models.Transfer, ttl time.Duration) error
	DeleteTransfer(ctx context.Context, id string) error

	// One-time re-auth credentials for the bulk mutation guard
	StoreReauthToken(ctx context.Context, userID, tokenHash string, ttl time.Duration) error
	ConsumeReauthToken(ctx context.Context, userID, tokenHash string) (bool, error)

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetUnit(ctx context.Context, imei string) (*models.InventoryUnit, error) {
	key := fmt.Sprintf("imeitrack:unit:%s", imei)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var unit models.InventoryUnit
	if err := json.Unmarshal(data, &unit); err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *redisCacheService) SetUnit(ctx context.Context, unit *models.InventoryUnit, ttl time.Duration) error {
	key := fmt.Sprintf("imeitrack:unit:%s", unit.IMEI)
	data, err := json.Marshal(unit)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteUnit(ctx context.Context, imei string) error {
	key := fmt.Sprintf("imeitrack:unit:%s", imei)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) DeleteUnits(ctx context.Context, imeis []string) error {
	if len(imeis) == 0 {
		return nil
	}
	keys := make([]string, 0, len(imeis))
	for _, imei := range imeis {
		keys = append(keys, fmt.Sprintf("imeitrack:unit:%s", imei))
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCacheService) GetTransfer(ctx context.Context, id string) (*models.Transfer, error) {
	key := fmt.Sprintf("imeitrack:transfer:%s", id)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var transfer models.Transfer
	if err := json.Unmarshal(data, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *redisCacheService) SetTransfer(ctx context.Context, transfer *models.Transfer, ttl time.Duration) error {
	key := fmt.Sprintf("imeitrack:transfer:%s", transfer.ID.String())
	data, err := json.Marshal(transfer)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteTransfer(ctx context.Context, id string) error {
	key := fmt.Sprintf("imeitrack:transfer:%s", id)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) StoreReauthToken(ctx context.Context, userID, tokenHash string, ttl time.Duration) error {
	key := fmt.Sprintf("imeitrack:reauth:%s:%s", userID, tokenHash)
	return r.client.Set(ctx, key, "1", ttl).Err()
}

// ConsumeReauthToken validates and deletes the credential in one step so it
// can only be spent once.
func (r *redisCacheService) ConsumeReauthToken(ctx context.Context, userID, tokenHash string) (bool, error) {
	key := fmt.Sprintf("imeitrack:reauth:%s:%s", userID, tokenHash)
	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
