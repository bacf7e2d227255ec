// Package httpx selects the serving transport. The default engine is
// net/http; fasthttp is available for deployments that want its connection
// handling, with the shared net/http handler tree adapted onto it.
package httpx

import (
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"anonymchat/pkg/logger"
)

const (
	EngineNetHTTP  = "nethttp"
	EngineFastHTTP = "fasthttp"
)

// Serve blocks serving h on addr with the chosen engine. TLS is used when
// both cert and key paths are set. An unknown engine is an error rather
// than a silent fallback.
func Serve(engine, addr, certFile, keyFile string, h http.Handler) error {
	switch engine {
	case "", EngineNetHTTP:
		srv := &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		logger.Info("serving", "engine", EngineNetHTTP, "addr", addr, "tls", certFile != "" && keyFile != "")
		if certFile != "" && keyFile != "" {
			return srv.ListenAndServeTLS(certFile, keyFile)
		}
		return srv.ListenAndServe()
	case EngineFastHTTP:
		srv := &fasthttp.Server{
			Handler:            fasthttpadaptor.NewFastHTTPHandler(h),
			Name:               "anonymchat",
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       30 * time.Second,
			MaxRequestBodySize: 32 << 20,
		}
		logger.Info("serving", "engine", EngineFastHTTP, "addr", addr, "tls", certFile != "" && keyFile != "")
		if certFile != "" && keyFile != "" {
			return srv.ListenAndServeTLS(addr, certFile, keyFile)
		}
		return srv.ListenAndServe(addr)
	default:
		return fmt.Errorf("unknown server engine: %s", engine)
	}
}
