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

package command

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/imroc/req"

	"github.com/HWQuantum/coincidence-counter/pkg/config"
	"github.com/HWQuantum/coincidence-counter/pkg/srv"
	"github.com/HWQuantum/coincidence-counter/pkg/store"
)

// ApiClient talks to a running `serve` instance
type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s:%d/api", cfg.API.Address, cfg.API.Port),
	}
}

func statusError(r *req.Resp) error {
	body := strings.TrimSpace(r.String())
	if body == "" {
		return errors.New(r.Response().Status)
	}
	return fmt.Errorf("%s: %s", r.Response().Status, body)
}

// Measure asks the server to run one acquisition and returns the stored run
func (c *ApiClient) Measure(request srv.MeasureRequest) (*store.Run, error) {
	r, err := req.Post(fmt.Sprintf("%s/measure", c.ApiPrefix), req.BodyJSON(&request))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, statusError(r)
	}
	run := &store.Run{}
	if err := r.ToJSON(run); err != nil {
		return nil, err
	}
	return run, nil
}

func (c *ApiClient) ListRuns(limit int) ([]*store.Run, error) {
	r, err := req.Get(fmt.Sprintf("%s/runs?limit=%d", c.ApiPrefix, limit))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, statusError(r)
	}
	var runs []*store.Run
	if err := r.ToJSON(&runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (c *ApiClient) GetRun(id string) (*store.Run, error) {
	r, err := req.Get(fmt.Sprintf("%s/runs/%s", c.ApiPrefix, id))
	if err != nil {
		return nil, err
	}
	switch r.Response().StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, store.ErrRunNotFound{ID: id}
	default:
		return nil, statusError(r)
	}
	run := &store.Run{}
	if err := r.ToJSON(run); err != nil {
		return nil, err
	}
	return run, nil
}

func (c *ApiClient) Pairs() ([]srv.Pair, error) {
	r, err := req.Get(fmt.Sprintf("%s/pairs", c.ApiPrefix))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, statusError(r)
	}
	var pairs []srv.Pair
	if err := r.ToJSON(&pairs); err != nil {
		return nil, err
	}
	return pairs, nil
}
