// README: Bench cases: environment, schema, HTTP API, reseed race and load checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"

	fleetGeoKey = "fleet:taxis"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Schema: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				var missing []string
				for _, table := range []string{"taxis", "fare_rates"} {
					var exists bool
					err := r.db.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+table).Scan(&exists)
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if !exists {
						missing = append(missing, table)
					}
				}
				if len(missing) > 0 {
					return Result{Status: statusFail, Note: "missing " + strings.Join(missing, ", ")}
				}
				return Result{Status: statusPass}
			},
		},
		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}),
		httpCaseMethod("API: reseed fleet", http.MethodPost, base+"/api/taxis", nil, []int{201}),
		httpCaseMethod("API: list taxis", http.MethodGet, base+"/api/taxis", nil, []int{200}),
		httpCaseMethod("API: nearby taxis (straight line)", http.MethodGet, base+"/api/taxis/nearby?radius_km=1", nil, []int{200}),
		httpCaseMethod("API: nearest taxi (driving)", http.MethodGet, base+"/api/nearby-taxi", nil, []int{200}),
		httpCaseMethod("API: call taxi", http.MethodPost, base+"/api/call-taxi",
			map[string]any{"destination_address": r.cfg.Destination}, []int{200}),
		httpCaseMethod("API: call taxi, unknown address", http.MethodPost, base+"/api/call-taxi",
			map[string]any{"destination_address": "zzzz 존재하지 않는 주소 99999"}, []int{400}),
		{
			Name: "Race: concurrent reseeds leave one whole fleet",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentReseed(ctx, r, base)
			},
		},
		{
			Name: "Redis: GEO index matches stored fleet",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil || r.db == nil {
					return Result{Status: statusSkip, Note: "needs db and redis"}
				}
				indexed, err := r.redis.ZCard(ctx, fleetGeoKey).Result()
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				var stored int64
				if err := r.db.QueryRow(ctx, `SELECT count(*) FROM taxis`).Scan(&stored); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if indexed != stored {
					return Result{Status: statusFail, Note: fmt.Sprintf("indexed=%d stored=%d", indexed, stored)}
				}
				return Result{Status: statusPass, Note: fmt.Sprintf("taxis=%d", stored)}
			},
		},
		{
			Name: "Perf: nearby taxis load",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/taxis/nearby")
			},
		},
	}
}

func httpCaseMethod(name, method, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, err := http.NewRequestWithContext(ctx, method, url, reader)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			note := fmt.Sprintf("status=%d", resp.StatusCode)
			if contains(okStatuses, resp.StatusCode) {
				return Result{Status: statusPass, Latency: latency, Note: note}
			}
			return Result{Status: statusFail, Latency: latency, Note: note}
		},
	}
}

func concurrentReseed(ctx context.Context, r *Runner, base string) Result {
	var wg sync.WaitGroup
	var failed atomic.Int64

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/taxis", nil)
			resp, err := r.httpc.Do(req)
			if err != nil {
				failed.Add(1)
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusCreated {
				failed.Add(1)
			}
		}()
	}
	wg.Wait()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/taxis", nil)
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	defer resp.Body.Close()

	var body struct {
		Taxis []json.RawMessage `json:"taxis"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	note := fmt.Sprintf("fleet=%d failed_reseeds=%d", len(body.Taxis), failed.Load())
	if len(body.Taxis) != r.cfg.FleetSize {
		return Result{Status: statusFail, Note: note}
	}
	return Result{Status: statusPass, Note: note}
}

func perfLoad(ctx context.Context, r *Runner, url string) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
				resp, err := r.httpc.Do(req)
				if err != nil {
					errCount.Add(1)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				count.Add(1)
			}
		}()
	}
	wg.Wait()

	if count.Load() == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount.Load())}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}
