//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shareloop/service-sharing/internal/application"
	"github.com/shareloop/service-sharing/internal/events"
	"github.com/shareloop/service-sharing/internal/repository"
	"github.com/shareloop/service-sharing/pkg/auth"
	"github.com/shareloop/service-sharing/pkg/clock"
	"github.com/shareloop/service-sharing/pkg/kafka"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// sharingStack holds wired-up service components.
type sharingStack struct {
	Users           *application.UserService
	Items           *application.ItemService
	Bookings        *application.BookingService
	Requests        *application.RequestService
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_sharing",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_sharing sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.UserModel{},
		&repository.RequestModel{},
		&repository.ItemModel{},
		&repository.BookingModel{},
		&repository.CommentModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, events.TopicBookingEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupSharingStack wires up the full service stack against the containers.
func setupSharingStack(t *testing.T, db *gorm.DB, brokers []string) *sharingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	clk := clock.NewSystem()

	userRepo := repository.NewGormUserRepository(db)
	itemRepo := repository.NewGormItemRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	requestRepo := repository.NewGormRequestRepository(db)

	jwtManager := auth.NewJWTManager("integration-test-secret", 15*time.Minute, 24*time.Hour)
	producer := kafka.NewProducer(brokers, logger)

	return &sharingStack{
		Users:           application.NewUserService(userRepo, jwtManager, clk, logger),
		Items:           application.NewItemService(itemRepo, bookingRepo, commentRepo, userRepo, clk, logger),
		Bookings:        application.NewBookingService(bookingRepo, itemRepo, userRepo, producer, clk, logger),
		Requests:        application.NewRequestService(requestRepo, itemRepo, userRepo, clk, logger),
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// registerUser creates a user through the service and returns its DTO.
func registerUser(t *testing.T, stack *sharingStack, name, email string) application.UserDTO {
	t.Helper()
	registered, err := stack.Users.Register(context.Background(), application.CreateUserRequest{
		Name:  name,
		Email: email,
	})
	require.NoError(t, err)
	return registered.User
}

// createItem lists an available item through the service and returns its DTO.
func createItem(t *testing.T, stack *sharingStack, ownerID uuid.UUID, name, description string) application.ItemDTO {
	t.Helper()
	available := true
	dto, err := stack.Items.Create(context.Background(), ownerID, application.CreateItemRequest{
		Name:        name,
		Description: description,
		Available:   &available,
	})
	require.NoError(t, err)
	return *dto
}

// fetchBookingModel reads the raw bookings row.
func fetchBookingModel(t *testing.T, db *gorm.DB, bookingID uuid.UUID) repository.BookingModel {
	t.Helper()
	var model repository.BookingModel
	require.NoError(t, db.Where("id = ?", bookingID).First(&model).Error)
	return model
}

// consumeOneEvent reads the topic through the consumer until it finds an
// event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	consumer := kafka.NewConsumer(brokers, groupID, topic, logger)
	defer func() { _ = consumer.Close() }()

	found := make(chan kafka.CloudEvent, 1)
	go func() {
		_ = consumer.Consume(ctx, func(_ context.Context, msg kafkago.Message) error {
			ce, err := kafka.ParseCloudEvent(msg.Value)
			if err != nil {
				return nil
			}
			if ce.Type == expectedType {
				select {
				case found <- ce:
				default:
				}
			}
			return nil
		})
	}()

	select {
	case ce := <-found:
		return ce
	case <-ctx.Done():
		t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
		return kafka.CloudEvent{}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
