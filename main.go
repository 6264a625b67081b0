package main

import (
	"context"
	"log"

	api "momentum-backend/cmd/api"
	"momentum-backend/internal/chain/delivery"
	chainRepo "momentum-backend/internal/chain/repository"
	"momentum-backend/internal/chain/scheduler"
	chainUsecase "momentum-backend/internal/chain/usecase"
	"momentum-backend/internal/notification"
	userRepo "momentum-backend/internal/user/repository"
	"momentum-backend/pkg/config"
	"momentum-backend/pkg/fcm"
	"momentum-backend/pkg/firestore"
)

func main() {
	// Load configuration
	cfg := config.Load()

	ctx := context.Background()

	// Initialize Firestore
	firestoreClient, err := firestore.NewClient(ctx, cfg.GoogleProjectID, cfg.FirebaseCredentials)
	if err != nil {
		log.Fatal("Failed to connect to Firestore:", err)
	}
	defer firestoreClient.Close()

	// Initialize repositories (dependency injection)
	chainRepository := chainRepo.NewChainRepository(firestoreClient)
	userRepository := userRepo.NewUserRepository(firestoreClient)

	// Initialize FCM Client (optional, fan-out works without it)
	var notifier chainUsecase.Notifier
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			notifier = notification.NewChainNotifier(userRepository, fcmClient)
		}
	} else {
		log.Printf("[WARN] No Firebase credentials configured, FCM disabled")
	}

	// Initialize use case (dependency injection)
	fanoutUsecase := chainUsecase.NewChainFanoutUsecase(chainRepository, notifier)

	// Start the chain event listener (Pub/Sub)
	listener, err := delivery.NewListener(cfg.GoogleProjectID, cfg.ChainEventsTopic, cfg.ChainEventsSub, fanoutUsecase, cfg.FirebaseCredentials)
	if err != nil {
		log.Fatal("Failed to initialize chain event listener:", err)
	}
	defer listener.Close()
	go listener.Start(ctx)

	// Start the expiry scheduler
	expiryScheduler := scheduler.NewExpiryScheduler(fanoutUsecase, cfg.SweepSchedule)
	if err := expiryScheduler.Start(); err != nil {
		log.Fatal("Failed to start expiry scheduler:", err)
	}
	defer expiryScheduler.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(fanoutUsecase)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
