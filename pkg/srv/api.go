/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package srv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/HWQuantum/coincidence-counter/pkg/acquisition"
	"github.com/HWQuantum/coincidence-counter/pkg/coincidence"
	"github.com/HWQuantum/coincidence-counter/pkg/config"
	"github.com/HWQuantum/coincidence-counter/pkg/log"
	"github.com/HWQuantum/coincidence-counter/pkg/store"
)

const shutdownTimeout = 5 * time.Second

type Pair struct {
	Index int   `json:"index"`
	A     uint8 `json:"a"`
	B     uint8 `json:"b"`
}

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	measurer *Measurer
	store    *store.Store
}

func NewApiServer(ctx context.Context, cfg *config.Config, measurer *Measurer, st *store.Store) *ApiServer {
	log.Info("Initializing API server with address: %s port: %d", cfg.API.Address, cfg.API.Port)
	s := &ApiServer{
		Context:  ctx,
		Config:   cfg,
		measurer: measurer,
		store:    st,
	}
	s.configureRouter()
	return s
}

// Handler wraps the router with access logging and panic recovery
func (s *ApiServer) Handler() http.Handler {
	recovery := handlers.RecoveryHandler(handlers.PrintRecoveryStack(log.Enabled(log.DebugLevel)))
	return recovery(handlers.LoggingHandler(log.Writer(), s.Router))
}

// Run serves until the server context is done
func (s *ApiServer) Run() error {
	addr := fmt.Sprintf("%s:%d", s.Config.API.Address, s.Config.API.Port)
	log.Info("Starting API server: %s", addr)
	httpServer := &http.Server{
		Handler: s.Handler(),
		Addr:    addr,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-s.Context.Done():
		log.Info("Shutting down API server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/measure", s.handleMeasure()).Methods("POST")
	subRouter.HandleFunc("/runs", s.handleRuns()).Methods("GET")
	subRouter.HandleFunc("/runs/{id}", s.handleRun()).Methods("GET")
	subRouter.HandleFunc("/pairs", s.handlePairs()).Methods("GET")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error while encoding response: %s", err)
	}
}

func measureStatus(err error) int {
	var badRequest ErrBadRequest
	var aborted acquisition.ErrAborted
	switch {
	case errors.As(err, &badRequest):
		return http.StatusBadRequest
	case errors.As(err, &aborted):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

// capturePath places a capture file named by a remote client inside dir.
// Only new plain file names are accepted.
func capturePath(dir, name string) (string, error) {
	if dir == "" {
		return "", ErrBadRequest{What: "capture files are disabled, api.capture_dir is not set"}
	}
	if name == "." || name == ".." || filepath.IsAbs(name) || filepath.Base(name) != name {
		return "", ErrBadRequest{What: fmt.Sprintf("capture file %q must be a plain file name", name)}
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return "", ErrBadRequest{What: fmt.Sprintf("capture file %q already exists", name)}
	}
	return path, nil
}

func (s *ApiServer) handleMeasure() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := MeasureRequest{}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		log.Debug("Handling measure request: %+v", req)
		if req.CaptureFile != "" {
			path, err := capturePath(s.Config.API.CaptureDir, req.CaptureFile)
			if err != nil {
				http.Error(w, err.Error(), measureStatus(err))
				return
			}
			req.CaptureFile = path
		}

		run, err := s.measurer.Measure(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), measureStatus(err))
			return
		}
		writeJSON(w, run)
	}
}

func (s *ApiServer) handleRuns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			var err error
			if limit, err = strconv.Atoi(v); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		runs, err := s.store.ListRuns(limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if runs == nil {
			runs = []*store.Run{}
		}
		writeJSON(w, runs)
	}
}

func (s *ApiServer) handleRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		run, err := s.store.GetRun(id)
		if err != nil {
			status := http.StatusInternalServerError
			var notFound store.ErrRunNotFound
			if errors.As(err, &notFound) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		writeJSON(w, run)
	}
}

func Pairs() []Pair {
	pairs := make([]Pair, coincidence.NumPairs)
	for i := range pairs {
		a, b := coincidence.IndexToPair(i)
		pairs[i] = Pair{Index: i, A: a, B: b}
	}
	return pairs
}

func (s *ApiServer) handlePairs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Pairs())
	}
}
