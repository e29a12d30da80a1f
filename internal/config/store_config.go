package config

import "time"

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	sessionStoreEnvVar   = "SESSION_STORE"
	redisAddrEnvVar      = "REDIS_ADDR"
	redisPasswordEnvVar  = "REDIS_PASSWORD"
	redisDBEnvVar        = "REDIS_DB"
	redisKeyPrefixEnvVar = "REDIS_KEY_PREFIX"
	sweepIntervalEnvVar  = "SESSION_SWEEP_INTERVAL"
)

type StoreConfig interface {
	GetSessionStore() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
	GetSweepInterval() time.Duration
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetSessionStore() string {
	return GetEnv(sessionStoreEnvVar, SessionStoreMemory)
}

func (Store) GetRedisAddr() string {
	return GetEnv(redisAddrEnvVar, "localhost:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv(redisPasswordEnvVar, "")
}

func (Store) GetRedisDB() int {
	return GetEnvInt(redisDBEnvVar, 0)
}

func (Store) GetRedisKeyPrefix() string {
	return GetEnv(redisKeyPrefixEnvVar, "bff:")
}

func (Store) GetSweepInterval() time.Duration {
	return GetEnvDuration(sweepIntervalEnvVar, 5*time.Minute)
}
