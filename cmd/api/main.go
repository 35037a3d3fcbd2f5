package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sedifex/sedifex-backend/internal/docstore"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
	"github.com/sedifex/sedifex-backend/internal/modules/billing"
	"github.com/sedifex/sedifex-backend/internal/modules/closeout"
	"github.com/sedifex/sedifex-backend/internal/modules/customer"
	"github.com/sedifex/sedifex-backend/internal/modules/payment"
	"github.com/sedifex/sedifex-backend/internal/modules/product"
	"github.com/sedifex/sedifex-backend/internal/modules/sales"
	"github.com/sedifex/sedifex-backend/internal/modules/store"
	"github.com/sedifex/sedifex-backend/internal/modules/team"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}
	ctx := context.Background()

	db, verifier, directory := buildBackend(ctx)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(auth.Middleware(verifier))
	router.Handle("/metrics", promhttp.Handler())

	billingConfig := billing.DefaultConfig()
	if days, err := strconv.Atoi(os.Getenv("TRIAL_DAYS")); err == nil && days > 0 {
		billingConfig.TrialDays = days
	}
	for planID := range billingConfig.PlanCodes {
		if code := os.Getenv("PAYSTACK_PLAN_" + string(planID)); code != "" {
			billingConfig.PlanCodes[planID] = code
		}
	}

	// ── Workspace & roster ──────────────────────────────────
	teamRepo := team.NewDocstoreRepository(db)
	teamService := team.NewService(teamRepo, directory)
	team.NewHandler(teamService).RegisterRoutes(router)

	storeService := store.NewService(db, db, directory, billingConfig)
	store.NewHandler(storeService).RegisterRoutes(router)

	billing.NewHandler(billingConfig).RegisterRoutes(router)

	// ── Commerce ────────────────────────────────────────────
	productRepo := product.NewDocstoreRepository(db)
	productService := product.NewService(productRepo, nil)
	product.NewHandler(productService).RegisterRoutes(router)

	customerService := customer.NewService(customer.NewDocstoreRepository(db))
	customer.NewHandler(customerService).RegisterRoutes(router)

	salesRepo := sales.NewDocstoreRepository(db)
	sales.NewHandler(sales.NewService(salesRepo)).RegisterRoutes(router)

	noteThreshold, _ := strconv.ParseFloat(os.Getenv("CLOSEOUT_NOTE_THRESHOLD"), 64)
	closeoutService := closeout.NewService(closeout.NewDocstoreRepository(db), salesRepo, noteThreshold)
	closeout.NewHandler(closeoutService).RegisterRoutes(router)

	// ── Subscription checkout ───────────────────────────────
	gateway := payment.NewPaystackGateway(os.Getenv("PAYSTACK_SECRET_KEY"), os.Getenv("PAYSTACK_BASE_URL"))
	paymentService := payment.NewService(payment.NewDocstoreRepository(db), gateway, storeService, billingConfig)
	payment.NewHandler(paymentService).RegisterRoutes(router)

	// ── Start server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Sedifex API server starting on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}

// buildBackend selects the document store, token verifier, and user
// directory from DOCSTORE_BACKEND: firestore (production), postgres
// (self-hosted), anything else an in-process memory store for local
// development.
func buildBackend(ctx context.Context) (docstore.Store, auth.Verifier, auth.Directory) {
	switch os.Getenv("DOCSTORE_BACKEND") {
	case "firestore":
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: os.Getenv("FIREBASE_PROJECT_ID")})
		if err != nil {
			log.Fatal(err)
		}
		authClient, err := app.Auth(ctx)
		if err != nil {
			log.Fatal(err)
		}
		fsClient, err := firestore.NewClient(ctx, os.Getenv("FIREBASE_PROJECT_ID"))
		if err != nil {
			log.Fatal(err)
		}
		return docstore.NewFirestoreStore(fsClient), auth.NewFirebaseVerifier(authClient), auth.NewFirebaseDirectory(authClient)
	case "postgres":
		db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
		if err != nil {
			log.Fatal(err)
		}
		if err := db.Ping(); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Successfully connected to the database!")
		return docstore.NewPostgresStore(db), devVerifier(), auth.NewMemoryDirectory()
	default:
		log.Println("Using in-memory document store; data will not survive a restart")
		return docstore.NewMemoryStore(), devVerifier(), auth.NewMemoryDirectory()
	}
}

func devVerifier() auth.Verifier {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret"
	}
	return auth.NewHS256Verifier(secret)
}
