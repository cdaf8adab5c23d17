// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package query

import (
	"net/url"
	"strconv"

	"github.com/blinklabs-io/goiroha/ledger/predicate"
)

const ProtocolName = "query"

const (
	ParamStart = "start"
	ParamLimit = "limit"
)

// Pagination restricts a collection query to a window of results. A zero Limit means no limit.
type Pagination struct {
	Start uint32
	Limit uint32
}

func (p Pagination) params() url.Values {
	ret := url.Values{}
	if p.Start > 0 {
		ret.Set(ParamStart, strconv.FormatUint(uint64(p.Start), 10))
	}
	if p.Limit > 0 {
		ret.Set(ParamLimit, strconv.FormatUint(uint64(p.Limit), 10))
	}
	return ret
}

// ParsePagination reads pagination from request parameters
func ParsePagination(params url.Values) (Pagination, error) {
	var ret Pagination
	if tmp := params.Get(ParamStart); tmp != "" {
		start, err := strconv.ParseUint(tmp, 10, 32)
		if err != nil {
			return Pagination{}, err
		}
		ret.Start = uint32(start)
	}
	if tmp := params.Get(ParamLimit); tmp != "" {
		limit, err := strconv.ParseUint(tmp, 10, 32)
		if err != nil {
			return Pagination{}, err
		}
		ret.Limit = uint32(limit)
	}
	return ret, nil
}

// Apply returns the window of the provided length selected by the pagination
func (p Pagination) Apply(length int) (int, int) {
	start := min(int(p.Start), length)
	end := length
	if p.Limit > 0 {
		end = min(start+int(p.Limit), length)
	}
	return start, end
}

// RequestConfig holds the per-request settings of a query
type RequestConfig struct {
	Filter     predicate.Predicate
	Pagination Pagination
}

// RequestOptionFunc is a type that represents functions that modify the request config
type RequestOptionFunc func(*RequestConfig)

// NewRequestConfig returns a new request config object with the provided options
func NewRequestConfig(options ...RequestOptionFunc) RequestConfig {
	c := RequestConfig{}
	for _, option := range options {
		option(&c)
	}
	return c
}

// WithPredicate asks the peer to filter results with the provided predicate
func WithPredicate(p predicate.Predicate) RequestOptionFunc {
	return func(c *RequestConfig) {
		c.Filter = p
	}
}

// WithPagination asks the peer for a window of the results
func WithPagination(start uint32, limit uint32) RequestOptionFunc {
	return func(c *RequestConfig) {
		c.Pagination = Pagination{Start: start, Limit: limit}
	}
}
