package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xtding233/pack-sim/internal/api"
	"github.com/xtding233/pack-sim/internal/packrules"
	"github.com/xtding233/pack-sim/internal/rpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC servers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		wg := &sync.WaitGroup{}
		onExit := make(chan error, 3)

		gin.SetMode(gin.ReleaseMode)
		router := api.NewRouter(&api.Server{
			Catalog: a.catalog,
			Packs:   a.packs,
			Store:   a.store,
			Log:     a.log.Named("api"),
		}, a.cfg.API.CorsOrigins)
		httpSrv := &http.Server{Addr: a.cfg.API.Addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

		// both listeners are bound before anything starts serving
		httpLis, err := net.Listen("tcp", a.cfg.API.Addr)
		if err != nil {
			return errors.Wrapf(err, "listen %s", a.cfg.API.Addr)
		}
		var grpcLis net.Listener
		if a.cfg.GRPC.Addr != "" {
			grpcLis, err = net.Listen("tcp", a.cfg.GRPC.Addr)
			if err != nil {
				_ = httpLis.Close()
				return errors.Wrapf(err, "listen %s", a.cfg.GRPC.Addr)
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			a.log.Info("http server listening", zap.String("addr", httpLis.Addr().String()))
			if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				onExit <- errors.Wrap(err, "serve http")
			}
		}()

		if grpcLis != nil {
			grpcSrv := rpc.NewServer(&rpc.Service{
				Catalog: a.catalog,
				Packs:   a.packs,
				Store:   a.store,
				Log:     a.log.Named("rpc"),
			}, a.log.Named("grpc"))
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := grpcSrv.Serve(ctx, grpcLis); err != nil {
					onExit <- err
				}
			}()
		}

		if loader, ok := a.rules.(*packrules.Loader); ok && a.cfg.Rules.Watch {
			w := packrules.NewWatcher(loader, a.log.Named("rules"), nil)
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := w.Run(ctx); err != nil {
					a.log.Warn("rules watcher stopped", zap.Error(err))
				}
			}()
		}

		onSignal := make(chan os.Signal, 1)
		signal.Notify(onSignal, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(onSignal)

		var exitErr error
		select {
		case sig := <-onSignal:
			a.log.Info("exit by signal", zap.String("signal", sig.String()))
		case exitErr = <-onExit:
			a.log.Error("exit by error", zap.Error(exitErr))
		}

		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("http shutdown", zap.Error(err))
		}
		wg.Wait()
		return exitErr
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", "", "HTTP listen address")
	f.String("grpc-addr", "", "gRPC listen address, empty keeps the config value")
	f.Bool("watch-rules", false, "reload pack rules when files change")
	_ = v.BindPFlag("api.addr", f.Lookup("addr"))
	_ = v.BindPFlag("grpc.addr", f.Lookup("grpc-addr"))
	_ = v.BindPFlag("rules.watch", f.Lookup("watch-rules"))
	rootCmd.AddCommand(serveCmd)
}
