package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	v1 "github.com/PaulBabatuyi/roomChat-gRPC/api/chat/v1"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/auth"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/chat"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/config"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/data"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/db"
	pkglog "github.com/PaulBabatuyi/roomChat-gRPC/internal/log"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/middleware"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/notify"
)

const shutdownTimeout = 10 * time.Second

// stores groups the store implementations selected by STORE.
type stores struct {
	users    chat.UserStore
	rooms    chat.RoomStore
	msgs     chat.MessageStore
	accounts AccountStore
	db       *db.Client
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "chat-api",
	})
	logger := pkglog.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := pkglog.L()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer func() { _ = st.db.Close(context.Background()) }()
	}

	g, gctx := errgroup.WithContext(ctx)

	notifier, err := openNotifier(gctx, g, cfg, st)
	if err != nil {
		return err
	}

	jwtMgr, err := newJWTManager(cfg.Auth)
	if err != nil {
		return err
	}

	// Register/Login by email, SendMessage per user. A small burst allows quick retries.
	authLimiter := middleware.NewLimiterStore(cfg.Limits.AuthPerMinute, 3, time.Minute)
	defer authLimiter.Stop()
	sendLimiter := middleware.NewLimiterStore(cfg.Limits.SendPerMinute, 10, time.Minute)
	defer sendLimiter.Stop()

	serverOpts, err := tlsOptions(cfg.Server)
	if err != nil {
		return err
	}
	serverOpts = append(serverOpts,
		grpc.ChainUnaryInterceptor(
			pkglog.UnaryServerInterceptor(logger),
			middleware.RateLimitUnaryInterceptor(authLimiter, publicMethods, middleware.ByEmail),
			authUnaryInterceptor(jwtMgr),
			middleware.RateLimitUnaryInterceptor(sendLimiter, map[string]bool{
				v1.ChatService_SendMessage_FullMethodName: true,
			}, byUser),
		),
		grpc.ChainStreamInterceptor(
			pkglog.StreamServerInterceptor(logger),
			authStreamInterceptor(jwtMgr),
		),
	)
	grpcServer := grpc.NewServer(serverOpts...)

	svc := chat.NewService(st.users, st.rooms, st.msgs, notifier)
	registerService(grpcServer, newServer(svc, st.accounts, jwtMgr))

	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	metricsSrv := newMetricsServer(cfg.Metrics.Address)

	g.Go(func() error {
		logger.Info().Str("addr", listenAddr).Str("store", cfg.Store).Str("notifier", cfg.Notifier).Msg("gRPC server listening")
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Metrics.Address).Msg("metrics server listening")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		// live subscriptions only end when their feed does
		if hub, ok := notifier.(*notify.Hub); ok {
			hub.Close()
		}
		stopGRPC(grpcServer, shutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		l := pkglog.L()
		l.Warn().Msg("using in-memory store; data is lost on restart")
		m := data.NewMemory()
		return &stores{users: m, rooms: m, msgs: m, accounts: m}, nil
	}

	dbClient, err := db.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	if err := dbClient.CreateIndexes(ctx); err != nil {
		_ = dbClient.Close(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	users := data.NewUsersStore(dbClient.UsersCollection())
	return &stores{
		users:    users,
		rooms:    data.NewRoomsStore(dbClient.RoomsCollection()),
		msgs:     data.NewMessagesStore(dbClient.MessagesCollection(), dbClient.LedgerHeadsCollection()),
		accounts: users,
		db:       dbClient,
	}, nil
}

// openNotifier builds the notifier selected by NOTIFIER and starts its
// background relay in g, if it has one.
func openNotifier(ctx context.Context, g *errgroup.Group, cfg *config.Config, st *stores) (notify.Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierRedis:
		client, err := notify.DialRedis(ctx, notify.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		r := notify.NewRedis(client, cfg.Redis.Prefix)
		g.Go(func() error {
			defer client.Close()
			r.Run(ctx)
			return nil
		})
		return r, nil

	case config.NotifierMongo:
		hub := notify.NewHub()
		feed := data.NewChangeFeed(st.db.Database(), hub)
		g.Go(func() error {
			feed.Run(ctx)
			return nil
		})
		return hub, nil
	}
	return notify.NewHub(), nil
}

// newJWTManager uses JWT_KEYS when set so that keys can be rotated; otherwise
// the single JWT_SECRET.
func newJWTManager(cfg config.AuthConfig) (*auth.JWTManager, error) {
	keys, err := cfg.KeyMap()
	if err != nil {
		return nil, err
	}
	if len(keys) > 0 {
		return auth.NewJWTManagerFromKeys(keys, cfg.ActiveKid, cfg.TokenTTL), nil
	}
	return auth.NewJWTManager(cfg.Secret, cfg.TokenTTL), nil
}

func tlsOptions(cfg config.ServerConfig) ([]grpc.ServerOption, error) {
	if cfg.TLSCert == "" || cfg.TLSKey == "" {
		if cfg.RequireTLS {
			return nil, errors.New("REQUIRE_TLS is true but TLS_CERT/TLS_KEY are not configured")
		}
		l := pkglog.L()
		l.Warn().Msg("TLS not configured; serving plaintext gRPC")
		return nil, nil
	}
	creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certs: %w", err)
	}
	return []grpc.ServerOption{grpc.Creds(creds)}, nil
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

// stopGRPC drains in-flight calls, forcing the rest closed after timeout.
func stopGRPC(s *grpc.Server, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		s.Stop()
	}
}
