// landlordauth-loadtest hammers the session client against a landlord
// backend and reports latency percentiles for the login and profile paths.
// Without -base-url it spins up an in-process stub backend, which makes the
// numbers a measure of client overhead rather than network or server time.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roomrental/landlordauth/api"
	"github.com/roomrental/landlordauth/client"
	"github.com/roomrental/landlordauth/storage"
)

func main() {
	var (
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase (login + profile)")
		baseURL     = flag.String("base-url", "", "backend base URL; if empty, an in-process stub is used")
		email       = flag.String("email", "load@example.com", "login email")
		password    = flag.String("password", "load-password", "login password")
	)
	flag.Parse()

	if *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	url := *baseURL
	if url == "" {
		srv := httptest.NewServer(newStubHandler())
		defer srv.Close()
		url = srv.URL
		fmt.Printf("using in-process stub at %s\n", url)
	} else {
		fmt.Printf("using backend at %s\n", url)
	}

	creds := api.Credentials{Email: *email, Password: *password, DeviceName: "loadtest"}

	clients := make([]*client.Client, *concurrency)
	for i := range clients {
		c, err := client.New(client.Config{
			BaseURL:    url,
			UserAgent:  "landlordauth-loadtest",
			MaxRetries: -1,
			Store:      storage.NewStore(storage.NewMemory(), "", nil),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "client build failed: %v\n", err)
			os.Exit(1)
		}
		clients[i] = c
	}

	loginStats := runPhase(*ops, clients, func(c *client.Client) error {
		_, err := c.Login(ctx, creds)
		return err
	})

	// Every worker holds a token after the login phase, so the profile
	// phase measures the authenticated path.
	profileStats := runPhase(*ops, clients, func(c *client.Client) error {
		_, err := c.GetProfile(ctx)
		return err
	})

	for _, c := range clients {
		c.Logout(ctx)
	}

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("profile", profileStats)
}

func runPhase(ops int, clients []*client.Client, fn func(*client.Client) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for _, c := range clients {
		wg.Add(1)
		go func(c *client.Client) {
			defer wg.Done()
			for {
				if int(atomic.AddInt64(&cursor, 1)) > ops {
					return
				}
				t0 := time.Now()
				err := fn(c)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// stub backend accepting any credentials, issuing one shared token.

const stubToken = "loadtest-token"

func newStubHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /landlord/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "Login successful", api.Session{
			User:  stubUser(),
			Token: stubToken,
		})
	})
	mux.HandleFunc("GET /landlord/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+stubToken {
			writeEnvelope(w, http.StatusUnauthorized, false, "Unauthenticated.", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, true, "", stubUser())
	})
	mux.HandleFunc("POST /landlord/logout", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "Logged out", nil)
	})
	return mux
}

func stubUser() api.User {
	return api.User{
		ID:              1,
		Name:            "Load Tester",
		Email:           "load@example.com",
		Roles:           []string{"landlord"},
		PropertiesCount: 1,
		CreatedAt:       "2025-01-01T00:00:00Z",
	}
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data any) {
	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Envelope{
		Success: success,
		Message: message,
		Data:    raw,
	})
}
