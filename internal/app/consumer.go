package app

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka/consumer"
	"go-payroll/internal/rbac/infra"
	"go-payroll/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer runs both Kafka consumers (default salary creation, paystub
// archiving) until interrupted.
func RunConsumer(cfg Config, logger *zap.Logger) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode, 5,
	)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		return err
	}
	defer rdb.Close()

	enforcer, err := infra.NewEnforcer(cfg.RBACModelPath)
	if err != nil {
		return err
	}

	registry := NewRegistry(gormDB, sqlDB, rdb, enforcer, logger)

	salaryReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		GroupID: "payroll.default-salary",
		Topic:   events.EmployeeCreatedTopic,
	})
	defer salaryReader.Close()

	paystubReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		GroupID: "payroll.paystub-archiver",
		Topic:   events.PayrollPaystubRequestedTopic,
	})
	defer paystubReader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		consumer.RunDefaultSalaryConsumer(ctx, salaryReader, registry.EmployeeSalaryService, logger)
	}()
	go func() {
		defer wg.Done()
		consumer.RunPaystubArchiver(ctx, paystubReader, registry.PayrollService, cfg.PaystubArchiveDir, logger)
	}()

	wg.Wait()
	return nil
}
