package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"ressarcimento-service/internal/models"
)

// CacheStats estatísticas do cache
type CacheStats struct {
	Hits          int64
	Misses        int64
	TotalRequests int64
	TotalKeys     int
}

// NotaCache mantém o índice de notas fiscais por (empresa, competência) em
// dois níveis: memória local e Redis. As notas são somente leitura para o
// motor, então o cache só precisa ser invalidado quando a competência é
// reaberta ou quando o pipeline externo reimporta dados.
type NotaCache struct {
	// L1: memória local
	l1Cache map[string][]models.NotaFiscal
	l1Mutex sync.RWMutex

	// L2: Redis
	redisClient *redis.Client

	ttl    time.Duration
	logger *zap.Logger

	statsMutex sync.RWMutex
	hits       int64
	misses     int64
}

// NewNotaCache cria uma nova instância do cache. Com redisClient nil o
// cache opera só no nível L1.
func NewNotaCache(redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *NotaCache {
	return &NotaCache{
		l1Cache:     make(map[string][]models.NotaFiscal),
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

func chaveNotas(empresa string, comp models.Competencia) string {
	return fmt.Sprintf("notas:%s:%s", empresa, comp)
}

// GetNotas busca o índice de notas de uma competência com cache multi-nível
func (nc *NotaCache) GetNotas(ctx context.Context, empresa string, comp models.Competencia) ([]models.NotaFiscal, bool) {
	chave := chaveNotas(empresa, comp)

	nc.l1Mutex.RLock()
	notas, ok := nc.l1Cache[chave]
	nc.l1Mutex.RUnlock()
	if ok {
		nc.recordHit()
		return notas, true
	}

	if nc.redisClient != nil {
		data, err := nc.redisClient.Get(ctx, chave).Result()
		if err == nil {
			if err := json.Unmarshal([]byte(data), &notas); err == nil {
				nc.l1Mutex.Lock()
				nc.l1Cache[chave] = notas
				nc.l1Mutex.Unlock()
				nc.recordHit()
				return notas, true
			}
			nc.logger.Warn("Entrada corrompida no cache de notas", zap.String("chave", chave), zap.Error(err))
		}
	}

	nc.recordMiss()
	return nil, false
}

// SetNotas armazena o índice nos dois níveis
func (nc *NotaCache) SetNotas(ctx context.Context, empresa string, comp models.Competencia, notas []models.NotaFiscal) error {
	chave := chaveNotas(empresa, comp)

	nc.l1Mutex.Lock()
	nc.l1Cache[chave] = notas
	nc.l1Mutex.Unlock()

	if nc.redisClient == nil {
		return nil
	}

	data, err := json.Marshal(notas)
	if err != nil {
		return err
	}
	return nc.redisClient.Set(ctx, chave, data, nc.ttl).Err()
}

// Invalidate remove o índice de uma competência nos dois níveis
func (nc *NotaCache) Invalidate(ctx context.Context, empresa string, comp models.Competencia) error {
	chave := chaveNotas(empresa, comp)

	nc.l1Mutex.Lock()
	delete(nc.l1Cache, chave)
	nc.l1Mutex.Unlock()

	if nc.redisClient == nil {
		return nil
	}
	return nc.redisClient.Del(ctx, chave).Err()
}

// GetStats retorna estatísticas do cache
func (nc *NotaCache) GetStats() CacheStats {
	nc.statsMutex.RLock()
	defer nc.statsMutex.RUnlock()

	nc.l1Mutex.RLock()
	totalKeys := len(nc.l1Cache)
	nc.l1Mutex.RUnlock()

	return CacheStats{
		Hits:          nc.hits,
		Misses:        nc.misses,
		TotalRequests: nc.hits + nc.misses,
		TotalKeys:     totalKeys,
	}
}

func (nc *NotaCache) recordHit() {
	nc.statsMutex.Lock()
	nc.hits++
	nc.statsMutex.Unlock()
}

func (nc *NotaCache) recordMiss() {
	nc.statsMutex.Lock()
	nc.misses++
	nc.statsMutex.Unlock()
}
