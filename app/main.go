package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sushihentaime/blogcms/internal/blogservice"
	"github.com/sushihentaime/blogcms/internal/common"
	"github.com/sushihentaime/blogcms/internal/imageservice"
	"github.com/sushihentaime/blogcms/internal/mailservice"
	"github.com/sushihentaime/blogcms/internal/userservice"
	"github.com/sushihentaime/blogcms/migrations"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	db          *sql.DB
	userService *userservice.UserService
	blogService *blogservice.BlogService
	mailService *mailservice.MailService
	broker      *common.MessageBroker
}

func main() {
	configFile := flag.String("config", ".env", "path to the dotenv configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(*configFile)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := cfg.validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *Config, logger *slog.Logger) error {
	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}
	defer common.CloseDB(db)

	if err := common.Migrate(db, migrations.FS); err != nil {
		return err
	}

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		return fmt.Errorf("failed to connect to the message broker: %w", err)
	}
	defer broker.Close()

	if err := common.SetupUserExchange(broker); err != nil {
		return fmt.Errorf("failed to setup the user exchange: %w", err)
	}

	if err := common.SetupBlogExchange(broker); err != nil {
		return fmt.Errorf("failed to setup the blog exchange: %w", err)
	}

	images, err := newImageProvider(cfg)
	if err != nil {
		return err
	}

	cache := common.NewCache(cfg.CacheTTL, 2*cfg.CacheTTL)

	templates, err := mailservice.NewTemplate()
	if err != nil {
		return err
	}
	mailer := mailservice.NewMailer(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword, cfg.MailSender, templates)

	app := &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		userService: userservice.NewUserService(db, broker, cache, logger),
		blogService: blogservice.NewBlogService(db, cache, broker, images, logger),
		mailService: mailservice.NewMailService(broker, mailer, cfg.MailEditor, logger),
		broker:      broker,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.blogService.SyncCache(ctx, broker); err != nil {
		return fmt.Errorf("failed to subscribe to blog events: %w", err)
	}

	if err := app.mailService.SendActivationEmail(); err != nil {
		return err
	}

	if err := app.mailService.SendNewBlogEmail(); err != nil {
		return err
	}

	return app.serve(cfg.Port)
}

func newImageProvider(cfg *Config) (imageservice.Provider, error) {
	switch cfg.ImageProvider {
	case "local":
		return imageservice.NewLocalProvider(cfg.UploadDir, cfg.UploadBaseURL), nil
	default:
		return imageservice.NewCloudinaryProvider(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	}
}
