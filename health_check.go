//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fenilmodi00/farcaster-gateway/config"
	"github.com/fenilmodi00/farcaster-gateway/database"
	"github.com/fenilmodi00/farcaster-gateway/services"
	"github.com/fenilmodi00/farcaster-gateway/shared"
)

const probeHandle = "dwr.eth"

func main() {
	fmt.Printf("🏥 Farcaster Gateway Health Check - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 50))

	cfg := config.LoadConfig()
	factory := shared.NewHTTPClientFactory(cfg.Airstack.Timeout)
	defer factory.CleanupAllClients()

	healthScore := 0
	totalTests := 4

	// Test 1: Cache backend
	fmt.Printf("🗄️  Cache (%s): ", cfg.Cache.Backend)
	if err := pingCache(cfg.Cache); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Println("✅ OK")
		healthScore++
	}

	// Test 2: Warpcast
	fmt.Print("👤 Warpcast: ")
	users := services.NewUserService(
		services.NewAirstackClient(cfg.Airstack, factory, nil),
		services.NewWarpcastClient(cfg.Warpcast, factory, nil),
	)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Warpcast.Timeout)
	if result, err := users.FidByHandle(ctx, probeHandle); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Printf("✅ OK (%s is fid %d)\n", probeHandle, result.Fid)
		healthScore++
	}
	cancel()

	// Test 3: Airstack
	fmt.Print("📈 Airstack: ")
	ctx, cancel = context.WithTimeout(context.Background(), cfg.Airstack.Timeout)
	if score, err := users.FarScore(ctx, probeHandle); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else if score == nil {
		fmt.Println("✅ OK (no far score)")
		healthScore++
	} else {
		fmt.Printf("✅ OK (far score %.2f)\n", score.FarScore)
		healthScore++
	}
	cancel()

	// Test 4: Neynar
	fmt.Print("📡 Neynar: ")
	castURL := os.Getenv("HEALTH_CHECK_CAST_URL")
	if castURL == "" {
		castURL = "https://warpcast.com/" + probeHandle
	}
	neynar := services.NewNeynarClient(cfg.Neynar, factory, nil)
	ctx, cancel = context.WithTimeout(context.Background(), cfg.Neynar.Timeout)
	if hash, found, err := neynar.CastByURL(ctx, castURL); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else if !found {
		fmt.Println("✅ OK (reachable, cast not found)")
		healthScore++
	} else {
		fmt.Printf("✅ OK (resolved %s)\n", hash)
		healthScore++
	}
	cancel()

	// Overall health
	fmt.Println(strings.Repeat("-", 50))
	healthPercent := float64(healthScore) / float64(totalTests) * 100

	if healthScore == totalTests {
		fmt.Printf("🎉 SYSTEM HEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else if healthScore >= totalTests/2 {
		fmt.Printf("⚠️  SYSTEM DEGRADED: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else {
		fmt.Printf("❌ SYSTEM UNHEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	}

	fmt.Printf("⏰ Check completed at: %s\n", time.Now().Format("15:04:05"))
}

func pingCache(cfg config.CacheConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	switch cfg.Backend {
	case config.CacheBackendRedis:
		store := database.NewRedisStore(cfg)
		defer store.Close()
		return store.Ping(ctx)
	case config.CacheBackendPostgres:
		db, err := database.Connect(cfg.DatabaseURL, database.DefaultPoolConfig())
		if err != nil {
			return err
		}
		defer db.Close()
		return database.HealthCheck(ctx, db)
	default:
		return nil
	}
}
