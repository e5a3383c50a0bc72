package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/bus"
	"fenrir/internal/engine"
	fenrirhttp "fenrir/internal/http"
	"fenrir/internal/ledger"
	"fenrir/internal/metrics"
)

var defaultSymbols = []string{"AAPL", "MSFT", "TSLA", "GOOGL", "META", "INTC", "JPM", "AMZN"}

func symbolsFromEnv() []string {
	raw := os.Getenv("FENRIR_SYMBOLS")
	if raw == "" {
		return defaultSymbols
	}
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			symbols = append(symbols, trimmed)
		}
	}
	if len(symbols) == 0 {
		return defaultSymbols
	}
	return symbols
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	symbols := symbolsFromEnv()
	natsURL := envOr("FENRIR_NATS_URL", "nats://127.0.0.1:4222")
	httpAddr := envOr("FENRIR_HTTP_ADDR", "0.0.0.0:8080")

	natsBus, err := bus.Connect(natsURL)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to nats")
	}
	defer natsBus.Close()

	m := metrics.New()

	led := ledger.New()
	if err := led.Subscribe(natsBus, symbols); err != nil {
		log.Fatal().Err(err).Msg("unable to subscribe ledger to trade events")
	}

	eng := engine.NewMatchingEngine(symbols)
	eng.OnReject(func(symbol string) {
		m.SymbolsRejected.Inc()
		log.Warn().Str("symbol", symbol).Msg("order rejected for unknown symbol")
	})

	inbound, err := bus.NewInboundAdapter(natsBus, symbols)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to subscribe to inbound orders")
	}
	defer inbound.Close()

	outbound := metrics.InstrumentSink(bus.NewOutboundAdapter(natsBus), m)

	httpServer := fenrirhttp.New(httpAddr, natsBus, led, m)

	t, ctx := tomb.WithContext(ctx)

	t.Go(func() error {
		return eng.Run(ctx, inbound, outbound)
	})

	t.Go(func() error {
		return httpServer.Run(ctx)
	})

	log.Info().Strs("symbols", symbols).Str("http_addr", httpAddr).Msg("fenrir running")

	<-ctx.Done()
	if err := t.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("fenrir exited with error")
	}
}
