package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lapak/internal/handlers"
	"lapak/internal/middleware"
	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"
	"lapak/pkg/rabbitmq"
)

func main() {
	app, cleanup, err := NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer cleanup()

	appPort := viper.GetString("APP_PORT")
	log.Printf("Starting server on %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// NewApp wires configuration, storage, messaging, services, and routes into
// a ready-to-listen Fiber app. The returned cleanup closes the RabbitMQ
// connection, if one was opened.
func NewApp() (*fiber.App, func(), error) {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("JWT_SECRET", "lapak-dev-secret")
	viper.SetDefault("TOKEN_TTL_HOURS", 24)
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	// Storage: Postgres when a DSN is configured, otherwise the in-memory
	// repositories with seeded demo data.
	var (
		productRepo repositories.ProductRepository
		userRepo    repositories.UserRepository
		demoMode    bool
	)
	if dsn := viper.GetString("DATABASE_DSN"); dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		err = db.AutoMigrate(&models.User{}, &models.Product{}, &models.CartItem{}, &models.PurchaseItem{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		productRepo = repositories.NewGORMProductRepository(db)
		userRepo = repositories.NewGORMUserRepository(db)
	} else {
		log.Println("DATABASE_DSN not set, running on in-memory repositories")
		mockProducts := repositories.NewMockProductRepository()
		productRepo = mockProducts
		userRepo = repositories.NewMockUserRepository(mockProducts)
		demoMode = true
	}

	// Messaging: optional. Without a broker the checkout flow simply skips
	// event publishing.
	var events services.EventPublisher
	cleanup := func() {}
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: url})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		events = mqClient
		cleanup = func() {
			if err := mqClient.Close(); err != nil {
				log.Printf("Error closing RabbitMQ client: %v", err)
			}
		}

		err = mqClient.ConsumeSaleEvents(func(msg amqp.Delivery) error {
			log.Printf("Sale event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
			return nil
		})
		if err != nil {
			log.Printf("Failed to start sale-event consumer: %v", err)
		}
	}

	tokenTTL := time.Duration(viper.GetInt("TOKEN_TTL_HOURS")) * time.Hour
	authService := services.NewAuthService(userRepo, viper.GetString("JWT_SECRET"), tokenTTL)
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(userRepo, productRepo, events)
	userService := services.NewUserService(userRepo)

	if demoMode {
		seedDemoData(authService, productRepo)
	}

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	userHandler := handlers.NewUserHandler(userService, cartService)

	app := fiber.New()
	app.Use(logger.New())

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	productHandler.RegisterPublicRoutes(api)

	private := api.Group("", middleware.AuthRequired(authService))
	productHandler.RegisterPrivateRoutes(private)
	userHandler.RegisterRoutes(private)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, cleanup, nil
}

// seedDemoData populates the in-memory repositories with two accounts and a
// few listings so the API is explorable out of the box.
func seedDemoData(authService *services.AuthService, productRepo repositories.ProductRepository) {
	users := []models.User{
		{Username: "alice", Email: "alice@example.com", Password: "password123"},
		{Username: "bob", Email: "bob@example.com", Password: "password123"},
	}
	for i := range users {
		if err := authService.RegisterUser(&users[i]); err != nil {
			log.Printf("Error seeding user %s: %v", users[i].Username, err)
		}
	}

	products := []models.Product{
		{Title: "Used ThinkPad X1", Description: "Battery holds a full day, minor scratches on the lid", Category: "Electronics", Price: 450, OwnerID: users[0].ID},
		{Title: "Oak bookshelf", Description: "Solid oak, five shelves, pickup only", Category: "Furniture", Price: 80, OwnerID: users[0].ID},
		{Title: "Road bike", Description: "Aluminium frame, recently serviced, new tires", Category: "Sports", Price: 220, OwnerID: users[1].ID},
	}
	for i := range products {
		products[i].Image = models.DefaultProductImage
		if err := productRepo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Title, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Title, products[i].ID)
		}
	}
}
