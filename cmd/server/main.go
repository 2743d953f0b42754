// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/promopilot/promopilot-backend/internal/controller"
	"github.com/promopilot/promopilot-backend/internal/db"
	"github.com/promopilot/promopilot-backend/internal/event"
	"github.com/promopilot/promopilot-backend/internal/ledger"
	"github.com/promopilot/promopilot-backend/internal/repository"
	"github.com/promopilot/promopilot-backend/internal/sender"
	"github.com/promopilot/promopilot-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()

	orderRepo := &repository.OrderRepository{DB: db.DB}
	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	postRepo := &repository.PostRepository{DB: db.DB}
	channelRepo := &repository.ChannelRepository{DB: db.DB}

	// Notification hooks go to RabbitMQ when configured, otherwise in-process.
	var bus event.Bus
	if url := os.Getenv("AMQP_URL"); url != "" {
		amqpBus, err := event.NewAMQPBus(url)
		if err != nil {
			log.Fatal("failed to connect to RabbitMQ:", err)
		}
		defer amqpBus.Close()
		bus = amqpBus
	} else {
		log.Println("⚠️ AMQP_URL not set, using in-memory event bus")
		bus = event.NewInMemoryBus()
	}

	channels, err := channelRepo.ListAll()
	if err != nil {
		log.Fatal("failed to load channel registry:", err)
	}
	postable := 0
	for _, ch := range channels {
		if ch.CanPost {
			postable++
		}
	}
	log.Printf("📋 channel registry: %d channel(s), %d postable\n", len(channels), postable)

	ledgerClient := ledger.NewClient(os.Getenv("LEDGER_API_URL"))
	tgSender := sender.NewTelegramSender(os.Getenv("BOT_TOKEN"))

	materializer := &service.CampaignMaterializer{Campaigns: campaignRepo}

	watcher := &service.PaymentWatcher{
		Orders:       orderRepo,
		Ledger:       ledgerClient,
		Materializer: materializer,
		Bus:          bus,
		Wallet:       os.Getenv("WALLET_ADDRESS"),
		Interval:     envDuration("WATCH_INTERVAL", 10*time.Second),
		TolerancePct: int64(envInt("AMOUNT_TOLERANCE_PCT", service.DefaultTolerancePct)),
	}

	aggregator := &service.ProgressAggregator{Campaigns: campaignRepo, Bus: bus}

	dispatcher := &service.ChannelDispatcher{
		Channels:  channelRepo,
		Posts:     postRepo,
		Campaigns: campaignRepo,
		Sender:    tgSender,
		Bus:       bus,
	}

	scheduler := &service.PublishScheduler{
		Posts:      postRepo,
		Dispatcher: dispatcher,
		Progress:   aggregator,
		Interval:   envDuration("TICK_INTERVAL", 30*time.Second),
		BatchSize:  envInt("DISPATCH_BATCH", 50),
	}

	orderService := &service.OrderService{OrderRepo: orderRepo}
	campaignService := &service.CampaignService{CampaignRepo: campaignRepo, PostRepo: postRepo}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Orders still pending in the store get their watchers back after a restart.
	respawned, err := watcher.Respawn(ctx)
	if err != nil {
		log.Fatal("failed to respawn watchers:", err)
	}
	log.Printf("🔄 respawned %d payment watcher(s)\n", respawned)

	scheduler.Start(ctx)
	defer scheduler.Stop()

	orderController := &controller.OrderController{
		OrderService: orderService,
		Watcher:      watcher,
		WatchCtx:     ctx,
	}
	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
	}

	r := chi.NewRouter()

	r.Post("/orders", orderController.CreateOrder)
	r.Get("/orders/{id}", orderController.GetOrder)
	r.Get("/campaigns/{id}", campaignController.GetCampaignDetails)
	r.Get("/campaigns/{id}/status", campaignController.GetCampaignStatus)
	r.Post("/posts/{id}/requeue", campaignController.RequeuePost)

	srv := &http.Server{Addr: ":8080", Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Println("🚀 Server running on :8080")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}

	// Watcher writes are single atomic row updates, so draining here just
	// lets in-flight ticks finish cleanly.
	watcher.Wait()
	log.Println("👋 shutdown complete")
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
