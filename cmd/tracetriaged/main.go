package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	"github.com/tracetriage/tracetriage/internal/httputil"
	"github.com/tracetriage/tracetriage/internal/logutil"
)

type environment struct {
	config ServiceConfig
}

var release string

func newEnvironment() (*environment, error) {
	var e environment
	if err := cleanenv.ReadEnv(&e.config); err != nil {
		return nil, err
	}
	return &e, nil
}

func (e *environment) newRouter() (*httprouter.Router, error) {
	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		return nil, err
	}

	routes := []struct {
		method  string
		path    string
		handler http.HandlerFunc
	}{
		{http.MethodGet, "/analyze", e.getAnalysis},
		{http.MethodGet, "/explain", e.getExplanation},
		{http.MethodGet, "/health", e.getHealth},
	}

	router := httprouter.New()

	for _, route := range routes {
		router.Handler(route.method, route.path, compress(route.handler))
	}

	return router, nil
}

func main() {
	logutil.ConfigureLogger()

	env, err := newEnvironment()
	if err != nil {
		log.Fatal().Err(err).Msg("error setting up environment")
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:                   env.config.SentryDSN,
		Environment:           env.config.Environment,
		Release:               release,
		BeforeSendTransaction: httputil.SetHTTPStatusCodeTag,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("can't initialize sentry")
	}

	router, err := env.newRouter()
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal().Err(err).Msg("error setting up the router")
	}

	server := http.Server{
		Addr:    ":" + env.config.Port,
		Handler: sentryhttp.New(sentryhttp.Options{}).Handle(router),
	}

	waitForShutdown := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		cctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(cctx); err != nil {
			sentry.CaptureException(err)
			log.Err(err).Msg("error shutting down server")
		}

		close(waitForShutdown)
	}()

	log.Info().Str("port", env.config.Port).Msg("serving")
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		sentry.CaptureException(err)
		log.Err(err).Msg("server failed")
	}

	<-waitForShutdown

	sentry.Flush(5 * time.Second)
}
