package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/quote-inbox/config"
	"github.com/d60-Lab/quote-inbox/internal/cache"
	"github.com/d60-Lab/quote-inbox/internal/diagnostics"
	"github.com/d60-Lab/quote-inbox/internal/model"
	"github.com/d60-Lab/quote-inbox/internal/repository"
	"github.com/d60-Lab/quote-inbox/internal/service"
	"github.com/d60-Lab/quote-inbox/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	k = max(0, min(k, len(xs)-1))
	return xs[k]
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

var roles = []model.Role{model.RoleCustomer, model.RoleSupplier, model.RoleAdmin}

func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))

	quotes := envInt("QUOTES", 2000)
	perQuote := envInt("MESSAGES", 12)
	parties := envInt("PARTIES", 50)
	requests := envInt("REQUESTS", 600)
	workers := envInt("WORKERS", 8)

	// 本地压测：每次重建表
	for _, tbl := range []string{"quote_message_reads", "quote_kickoff_tasks", "quote_messages", "quote_invites", "supplier_bids", "suppliers", "customers", "quotes"} {
		mustDo(db.Migrator().DropTable(tbl))
	}
	mustDo(db.AutoMigrate(&model.Quote{}, &model.Customer{}, &model.Supplier{}, &model.SupplierBid{},
		&model.QuoteInvite{}, &model.QuoteMessage{}, &model.KickoffTask{}, &model.MessageRead{}))

	fmt.Printf("Seeding %d quotes x %d messages, %d customers/suppliers...\n", quotes, perQuote, parties)
	seed(db, quotes, perQuote, parties)

	caps := repository.NewNegotiator(db, nil).Capabilities(ctx)
	messages := repository.NewMessageStore(db, caps)
	var unread repository.UnreadReader = repository.NewUnreadRepository(db, messages, caps)

	var unreadCache *cache.UnreadCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		mustDo(client.Ping(ctx).Err())
		client.FlushDB(ctx)
		unreadCache = cache.NewUnreadCache(unread, client, cfg.Redis.UnreadTTL)
		unread = unreadCache
	}

	svc := service.NewInboxService(service.InboxDeps{
		Quotes:          repository.NewQuoteRepository(db, caps),
		Parties:         repository.NewPartyRepository(db),
		SupplierSignals: repository.NewSupplierSignalRepository(db, caps),
		Messages:        messages,
		Aggregator:      repository.NewSignalAggregator(db, caps),
		Kickoff:         repository.NewKickoffRepository(db, caps),
		Unread:          unread,
		Diagnostics:     diagnostics.Nop(),
	}, service.DefaultInboxOptions())

	fmt.Printf("Running %d inbox loads with %d workers (driver=%s, aggregate=%v)\n", requests, workers, cfg.Database.Driver, caps.Aggregate)
	for _, role := range roles {
		durations, rows := run(ctx, svc, role, parties, requests, workers)
		fmt.Printf("%-9s avg=%v p95=%v p99=%v avg_rows=%d\n", role, avg(durations), pct(durations, 0.95), pct(durations, 0.99), rows)
	}
	if unreadCache != nil {
		c := unreadCache.Counters()
		fmt.Printf("unread cache hits=%d misses=%d\n", c.Hits, c.Misses)
	}
}

func run(ctx context.Context, svc service.InboxService, role model.Role, parties, requests, workers int) ([]time.Duration, int) {
	jobs := make(chan int)
	var (
		mu        sync.Mutex
		durations = make([]time.Duration, 0, requests)
		totalRows int
		wg        sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				viewer := service.Viewer{Role: role, UserID: fmt.Sprintf("u-%s-%d", role, i%parties)}
				if role == model.RoleAdmin {
					viewer.UserID = "ops"
				}
				start := time.Now()
				rows := must(svc.Load(ctx, viewer))
				d := time.Since(start)
				mu.Lock()
				durations = append(durations, d)
				totalRows += len(rows)
				mu.Unlock()
			}
		}()
	}
	for i := 0; i < requests; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return durations, totalRows / max(1, requests)
}

func seed(db *gorm.DB, quotes, perQuote, parties int) {
	rnd := rand.New(rand.NewSource(42))
	base := time.Now().Add(-30 * 24 * time.Hour)

	customers := make([]model.Customer, parties)
	suppliers := make([]model.Supplier, parties)
	for i := 0; i < parties; i++ {
		customers[i] = model.Customer{ID: uuid.NewString(), UserID: fmt.Sprintf("u-customer-%d", i), Email: fmt.Sprintf("buyer%d@example.com", i)}
		suppliers[i] = model.Supplier{ID: uuid.NewString(), UserID: fmt.Sprintf("u-supplier-%d", i), PrimaryEmail: fmt.Sprintf("sales%d@example.com", i)}
	}
	mustDo(db.CreateInBatches(&customers, 500).Error)
	mustDo(db.CreateInBatches(&suppliers, 500).Error)

	qs := make([]model.Quote, 0, quotes)
	var (
		bids     []model.SupplierBid
		invites  []model.QuoteInvite
		msgs     []model.QuoteMessage
		kickoffs []model.KickoffTask
	)
	for i := 0; i < quotes; i++ {
		id := uuid.NewString()
		q := model.Quote{
			ID:            id,
			Title:         fmt.Sprintf("RFQ %05d", i),
			Status:        "open",
			CustomerEmail: customers[rnd.Intn(parties)].Email,
			UpdatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		bidder := suppliers[rnd.Intn(parties)]
		bids = append(bids, model.SupplierBid{ID: uuid.NewString(), QuoteID: id, SupplierID: bidder.ID, Status: "submitted"})
		invites = append(invites, model.QuoteInvite{ID: uuid.NewString(), QuoteID: id, SupplierID: suppliers[rnd.Intn(parties)].ID})

		if rnd.Float64() < 0.3 {
			q.Status = "awarded"
			q.AwardedSupplierID = &bidder.ID
			for k := 0; k < 5; k++ {
				kickoffs = append(kickoffs, model.KickoffTask{
					ID: uuid.NewString(), QuoteID: id, SupplierID: bidder.ID,
					TaskKey: fmt.Sprintf("task_%d", k), Completed: rnd.Intn(2) == 0,
				})
			}
		}
		qs = append(qs, q)

		at := q.UpdatedAt
		for m := 0; m < perQuote; m++ {
			at = at.Add(time.Duration(1+rnd.Intn(120)) * time.Minute)
			msgs = append(msgs, model.QuoteMessage{
				ID: uuid.NewString(), QuoteID: id, SenderRole: string(roles[rnd.Intn(len(roles))]),
				Body: fmt.Sprintf("message %d on %s", m, q.Title), CreatedAt: at,
			})
		}
	}
	mustDo(db.CreateInBatches(&qs, 500).Error)
	mustDo(db.CreateInBatches(&bids, 1000).Error)
	mustDo(db.CreateInBatches(&invites, 1000).Error)
	mustDo(db.CreateInBatches(&msgs, 1000).Error)
	if len(kickoffs) > 0 {
		mustDo(db.CreateInBatches(&kickoffs, 1000).Error)
	}
}
