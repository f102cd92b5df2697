package factory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	"uservault/internal/auth"
	"uservault/internal/config"
	"uservault/internal/domain"
	"uservault/internal/repository"
	"uservault/internal/service"
	"uservault/pkg/cache"
	"uservault/pkg/database"
	"uservault/pkg/logger"
)

type Factory interface {
	GetLogger() logger.Logger
	GetConfig() *config.Config
	GetDB() *sql.DB
	GetRedisClient() *redis.Client
	GetCache() cache.Cache
	GetTokenIssuer() *auth.TokenIssuer

	GetUserRepository() domain.UserRepository
	GetAuthService() domain.AuthService
	GetUserService() domain.UserService
}

type AppFactory struct {
	config      *config.Config
	logger      logger.Logger
	db          *sql.DB
	redisClient *redis.Client
	cache       cache.Cache
	tokenIssuer *auth.TokenIssuer

	userRepository domain.UserRepository
	authService    domain.AuthService
	userService    domain.UserService
}

func NewFactory() (Factory, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.LogLevel(cfg.LogLevel), nil)

	db, err := database.Open(cfg.Database.Path, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	cacheInstance := cache.NewRedisCache(redisClient, log, "uservault")

	factory := &AppFactory{
		config:      cfg,
		logger:      log,
		db:          db,
		redisClient: redisClient,
		cache:       cacheInstance,
		tokenIssuer: auth.NewTokenIssuer([]byte(cfg.JWT.SecretKey), cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TTL),
	}

	factory.initServices()

	return factory, nil
}

func (f *AppFactory) initServices() {
	f.userRepository = repository.NewUserRepository(f.db, f.logger)

	hasher := auth.NewPasswordHasher(f.config.Auth.BcryptCost)

	f.authService = service.NewAuthService(f.userRepository, hasher, f.tokenIssuer, f.logger)

	baseUserService := service.NewUserService(f.userRepository, f.logger)
	f.userService = service.NewCachedUserService(baseUserService, f.cache, f.config.Cache.TTL, f.logger)
}

func (f *AppFactory) GetLogger() logger.Logger {
	return f.logger
}

func (f *AppFactory) GetConfig() *config.Config {
	return f.config
}

func (f *AppFactory) GetDB() *sql.DB {
	return f.db
}

func (f *AppFactory) GetRedisClient() *redis.Client {
	return f.redisClient
}

func (f *AppFactory) GetCache() cache.Cache {
	return f.cache
}

func (f *AppFactory) GetTokenIssuer() *auth.TokenIssuer {
	return f.tokenIssuer
}

func (f *AppFactory) GetUserRepository() domain.UserRepository {
	return f.userRepository
}

func (f *AppFactory) GetAuthService() domain.AuthService {
	return f.authService
}

func (f *AppFactory) GetUserService() domain.UserService {
	return f.userService
}
