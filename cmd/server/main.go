package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Advaitgaur004/Urban-ride-server/internal/config"
	"github.com/Advaitgaur004/Urban-ride-server/internal/database"
	"github.com/Advaitgaur004/Urban-ride-server/internal/handler"
	"github.com/Advaitgaur004/Urban-ride-server/internal/lifecycle"
	"github.com/Advaitgaur004/Urban-ride-server/internal/middleware"
	"github.com/Advaitgaur004/Urban-ride-server/internal/queue"
	"github.com/Advaitgaur004/Urban-ride-server/internal/repository"
	"github.com/Advaitgaur004/Urban-ride-server/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: rate limiting and OTP login disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	queueRepo := repository.NewQueueRepo(db)
	slots := repository.NewSlotRepo(db)
	participations := repository.NewParticipationRepo(db)
	var otp *repository.OTPRepo
	if rdb != nil {
		otp = repository.NewOTPRepo(rdb)
	}

	engine := lifecycle.NewService(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	otpH := handler.NewOTPHandler(cfg, users, tokens, otp)
	vehicleH := handler.NewVehicleHandler(engine, vehicles)
	slotH := handler.NewSlotHandler(engine, slots, vehicles, users, participations)
	paymentH := handler.NewPaymentHandler(participations)
	adminH := handler.NewAdminHandler(users, tokens, vehicles, queueRepo)

	// Broker consumers write delivery lines under logs/ and survive
	// broker restarts on their own.
	go func() {
		if err := queue.StartSlotFinalizedConsumer(); err != nil {
			log.Printf("ride-consumer stopped: %v", err)
		}
	}()
	go func() {
		if err := queue.StartOTPEmailConsumer(); err != nil {
			log.Printf("otp-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterPublic(e, slotH)
	router.RegisterAuth(e, authH, otpH, cfg.JWTSecret)
	router.RegisterRider(e, slotH, paymentH, cfg.JWTSecret)
	router.RegisterDriver(e, vehicleH, slotH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
