// syncd is the edge companion daemon a Sedifex POS terminal runs next to its
// UI. It owns the offline-tolerant state: the durable pending-operation
// queue, the bounded read cache, and the active-store resolver, and it
// replays queued work against the backend whenever connectivity returns.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/docstore"
	"github.com/sedifex/sedifex-backend/internal/kv"
	"github.com/sedifex/sedifex-backend/internal/modules/activestore"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
	"github.com/sedifex/sedifex-backend/internal/modules/cache"
	"github.com/sedifex/sedifex-backend/internal/modules/closeout"
	"github.com/sedifex/sedifex-backend/internal/modules/customer"
	"github.com/sedifex/sedifex-backend/internal/modules/pendingops"
	"github.com/sedifex/sedifex-backend/internal/modules/product"
	"github.com/sedifex/sedifex-backend/internal/modules/sales"
	"github.com/sedifex/sedifex-backend/internal/modules/team"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}
	ctx := context.Background()

	uid := os.Getenv("SYNCD_UID")
	if uid == "" {
		log.Fatal("SYNCD_UID is required: the daemon acts for one signed-in operator")
	}
	// the terminal talks to syncd over loopback; the operator's identity is
	// pinned at startup
	caller := &auth.Context{UID: uid, Token: map[string]interface{}{"role": "staff"}}

	// ── Local durable storage ───────────────────────────────
	local := buildLocalStore()
	notifier := kv.NewNotifier()

	// ── Remote document store ───────────────────────────────
	remote := buildRemoteStore(ctx)

	// ── Offline core ────────────────────────────────────────
	queue := pendingops.NewQueue(local)
	snapshots := cache.NewSnapshots(local, cacheLimits())

	productRepo := product.NewDocstoreRepository(remote)
	productService := product.NewService(productRepo, queue)
	replayer := pendingops.NewReplayer(queue, product.NewReplayWriter(productRepo))

	customerRepo := customer.NewDocstoreRepository(remote)
	salesRepo := sales.NewDocstoreRepository(remote)
	noteThreshold, _ := strconv.ParseFloat(os.Getenv("CLOSEOUT_NOTE_THRESHOLD"), 64)
	closeoutService := closeout.NewService(closeout.NewDocstoreRepository(remote), salesRepo, noteThreshold)

	teamRepo := team.NewDocstoreRepository(remote)
	resolver := activestore.NewResolver(local, notifier, team.NewMembershipSource(teamRepo), uid)
	go resolver.Listen(ctx)

	// ── Sync loop ───────────────────────────────────────────
	limits := cacheLimits()
	sync := func(ctx context.Context, trigger activestore.Trigger) {
		status := resolver.Resolve(ctx)
		storeID := status.StoreID
		if storeID == "" {
			return
		}
		if err := replayer.Replay(ctx, storeID); err != nil {
			log.Printf("syncd: replay (%s): %v", trigger, err)
			return
		}
		refreshCache(ctx, snapshots, limits, storeID, customerRepo, productRepo, salesRepo)
	}
	interval := 30 * time.Second
	if seconds, err := strconv.Atoi(os.Getenv("SYNC_INTERVAL_SECONDS")); err == nil && seconds > 0 {
		interval = time.Duration(seconds) * time.Second
	}
	scheduler := activestore.NewScheduler(interval, sync)
	scheduler.Start(ctx)
	defer scheduler.Stop()
	scheduler.Fire(activestore.TriggerManual)

	// ── Local API ───────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Handle("/metrics", promhttp.Handler())

	router.Get("/v1/active-store", func(w http.ResponseWriter, r *http.Request) {
		callable.Respond(w, http.StatusOK, resolver.Status())
	})
	router.Post("/v1/active-store", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StoreID string `json:"store_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			callable.WriteError(w, callable.New(callable.CodeInvalidArgument, "Invalid request body"))
			return
		}
		previous := resolver.ActiveStoreID()
		resolver.SetActiveStoreID(req.StoreID)
		if previous != "" && previous != req.StoreID {
			snapshots.ClearStore(previous)
			queue.ClearStore(previous)
		}
		scheduler.Fire(activestore.TriggerManual)
		callable.Respond(w, http.StatusOK, resolver.Status())
	})
	router.Post("/v1/active-store/resolve", func(w http.ResponseWriter, r *http.Request) {
		callable.Respond(w, http.StatusOK, resolver.Resolve(r.Context()))
	})

	router.Get("/v1/pending-ops", func(w http.ResponseWriter, r *http.Request) {
		ops := queue.List(r.URL.Query().Get("store_id"))
		if ops == nil {
			ops = []pendingops.Operation{}
		}
		callable.Respond(w, http.StatusOK, map[string]interface{}{"operations": ops})
	})
	router.Post("/v1/replay", func(w http.ResponseWriter, r *http.Request) {
		scheduler.Fire(activestore.TriggerManual)
		callable.Respond(w, http.StatusAccepted, map[string]interface{}{"ok": true})
	})
	router.Post("/v1/online", func(w http.ResponseWriter, r *http.Request) {
		// the terminal's network watcher reports connectivity changes here
		scheduler.Fire(activestore.TriggerOnline)
		callable.Respond(w, http.StatusAccepted, map[string]interface{}{"ok": true})
	})
	router.Post("/v1/visible", func(w http.ResponseWriter, r *http.Request) {
		scheduler.Fire(activestore.TriggerVisible)
		callable.Respond(w, http.StatusAccepted, map[string]interface{}{"ok": true})
	})

	router.Post("/v1/products", func(w http.ResponseWriter, r *http.Request) {
		var in product.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			callable.WriteError(w, callable.New(callable.CodeInvalidArgument, "Invalid request body"))
			return
		}
		p, err := productService.Create(r.Context(), caller, resolver.ActiveStoreID(), in)
		if err != nil {
			callable.WriteError(w, err)
			return
		}
		callable.Respond(w, http.StatusCreated, p)
	})
	router.Put("/v1/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in product.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			callable.WriteError(w, callable.New(callable.CodeInvalidArgument, "Invalid request body"))
			return
		}
		p, err := productService.Update(r.Context(), caller, resolver.ActiveStoreID(), chi.URLParam(r, "id"), in)
		if err != nil {
			callable.WriteError(w, err)
			return
		}
		callable.Respond(w, http.StatusOK, p)
	})

	router.Get("/v1/cache/customers", func(w http.ResponseWriter, r *http.Request) {
		callable.Respond(w, http.StatusOK, map[string]interface{}{
			"customers": snapshots.LoadCustomers(resolver.ActiveStoreID()),
		})
	})
	router.Get("/v1/cache/products", func(w http.ResponseWriter, r *http.Request) {
		callable.Respond(w, http.StatusOK, map[string]interface{}{
			"products": snapshots.LoadProducts(resolver.ActiveStoreID()),
		})
	})
	router.Get("/v1/cache/sales", func(w http.ResponseWriter, r *http.Request) {
		callable.Respond(w, http.StatusOK, map[string]interface{}{
			"sales": snapshots.LoadSales(resolver.ActiveStoreID()),
		})
	})

	router.Post("/v1/closeout/preview", func(w http.ResponseWriter, r *http.Request) {
		var in closeout.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			callable.WriteError(w, callable.New(callable.CodeInvalidArgument, "Invalid request body"))
			return
		}
		result, err := closeoutService.Preview(r.Context(), caller, resolver.ActiveStoreID(), in)
		if err != nil {
			callable.WriteError(w, err)
			return
		}
		callable.Respond(w, http.StatusOK, result)
	})
	router.Post("/v1/closeout", func(w http.ResponseWriter, r *http.Request) {
		var in closeout.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			callable.WriteError(w, callable.New(callable.CodeInvalidArgument, "Invalid request body"))
			return
		}
		record, err := closeoutService.Close(r.Context(), caller, resolver.ActiveStoreID(), in)
		if err != nil {
			callable.WriteError(w, err)
			return
		}
		callable.Respond(w, http.StatusCreated, record)
	})

	port := os.Getenv("SYNCD_PORT")
	if port == "" {
		port = "8090"
	}
	fmt.Printf("Sedifex sync daemon listening on 127.0.0.1:%s\n", port)
	log.Fatal(http.ListenAndServe("127.0.0.1:"+port, router))
}

func buildLocalStore() kv.Store {
	path := os.Getenv("SYNCD_DB_PATH")
	if path == "" {
		log.Println("SYNCD_DB_PATH not set; queue and cache will not survive a restart")
		return kv.NewMemoryStore()
	}
	store, err := kv.NewSQLiteStore(path)
	if err != nil {
		log.Fatal(err)
	}
	return store
}

func buildRemoteStore(ctx context.Context) docstore.Store {
	switch os.Getenv("DOCSTORE_BACKEND") {
	case "firestore":
		client, err := firestore.NewClient(ctx, os.Getenv("FIREBASE_PROJECT_ID"))
		if err != nil {
			log.Fatal(err)
		}
		return docstore.NewFirestoreStore(client)
	case "postgres":
		db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
		if err != nil {
			log.Fatal(err)
		}
		if err := db.Ping(); err != nil {
			log.Fatal(err)
		}
		return docstore.NewPostgresStore(db)
	default:
		log.Println("Using in-memory document store; for local development only")
		return docstore.NewMemoryStore()
	}
}

func cacheLimits() cache.Limits {
	limits := cache.DefaultLimits()
	if v, err := strconv.Atoi(os.Getenv("CUSTOMER_CACHE_LIMIT")); err == nil && v > 0 {
		limits.Customers = v
	}
	if v, err := strconv.Atoi(os.Getenv("PRODUCT_CACHE_LIMIT")); err == nil && v > 0 {
		limits.Products = v
	}
	if v, err := strconv.Atoi(os.Getenv("SALES_CACHE_LIMIT")); err == nil && v > 0 {
		limits.Sales = v
	}
	return limits
}

// refreshCache mirrors the hot collections into the local snapshot store,
// pre-trimmed to the configured limits.
func refreshCache(ctx context.Context, snapshots *cache.Snapshots, limits cache.Limits, storeID string,
	customers customer.Repository, products product.Repository, salesRepo sales.Repository) {
	if rows, err := customers.ListByStore(ctx, storeID, limits.Customers); err != nil {
		log.Printf("syncd: refresh customers: %v", err)
	} else {
		snapshots.SaveCustomers(storeID, rows)
	}
	if rows, err := products.ListByStore(ctx, storeID, limits.Products); err != nil {
		log.Printf("syncd: refresh products: %v", err)
	} else {
		snapshots.SaveProducts(storeID, rows)
	}
	if rows, err := salesRepo.ListRecent(ctx, storeID, limits.Sales); err != nil {
		log.Printf("syncd: refresh sales: %v", err)
	} else {
		snapshots.SaveSales(storeID, rows)
	}
}
