package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrMangoye/Project/common/database"
	"github.com/MrMangoye/Project/common/logger"
	commonredis "github.com/MrMangoye/Project/common/redis"
	"github.com/MrMangoye/Project/internal/config"
	httpapi "github.com/MrMangoye/Project/internal/http"
	"github.com/MrMangoye/Project/internal/repository"
	"github.com/MrMangoye/Project/internal/service"
	"github.com/MrMangoye/Project/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "familytree-data")
	if err != nil {
		log, _ = zap.NewProduction()
	}
	defer log.Sync()

	// Repositories：DB 不可用时回退到内存实现（本地联调）
	var db *sql.DB
	var persons repository.PersonsRepository
	var families repository.FamiliesRepository
	var calendar repository.EventsRepository
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for familytree-data")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}
	if db != nil {
		persons = repository.NewPostgresPersonsRepository(db)
		families = repository.NewPostgresFamiliesRepository(db)
		calendar = repository.NewPostgresEventsRepository(db)
	} else {
		persons = repository.NewMemoryPersonsRepo()
		families = repository.NewMemoryFamiliesRepo()
		calendar = repository.NewMemoryEventsRepo()
	}

	// Redis：家族写锁 + 成员变更事件；不可用时使用进程内锁
	var redisClient *commonredis.Client
	var locker store.FamilyLocker = store.NewMutexFamilyLocker()
	var events service.EventPublisher = service.NopEventPublisher{}
	if cfg.RedisEnabled {
		c := commonredis.NewRedisClient(&cfg.Redis)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := commonredis.Ping(pingCtx, c)
		cancel()
		if err == nil {
			redisClient = c
			locker = store.NewRedisFamilyLocker(c, cfg.FamilyLock.TTL, cfg.FamilyLock.Wait)
			events = service.NewRedisEventPublisher(c, cfg.EventsStream, log)
			log.Info("Redis enabled for familytree-data", zap.String("addr", cfg.Redis.Addr))
		} else {
			log.Warn("Redis enabled but ping failed, using in-process family lock", zap.Error(err))
			_ = c.Close()
		}
	}

	familySvc := service.NewFamilyService(families, persons, events, log)
	memberSvc := service.NewMemberService(persons, families, locker, events, log)
	relSvc := service.NewRelationshipService(persons, families, log)
	analyticsSvc := service.NewAnalyticsService(persons, families, calendar, log)
	eventSvc := service.NewFamilyEventService(calendar, persons, families, log)

	router := httpapi.NewRouter(log)
	router.RegisterFamilyRoutes(httpapi.NewFamilyHandler(familySvc, analyticsSvc, log))
	router.RegisterMemberRoutes(httpapi.NewMemberHandler(memberSvc, relSvc,
		repository.NewFamilyMembersLoader(families, persons), log))
	router.RegisterFamilyEventRoutes(httpapi.NewFamilyEventHandler(eventSvc, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = database.Close(db)
	}
}
