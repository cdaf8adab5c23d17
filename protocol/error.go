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

package protocol

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoPeerUrl        = errors.New("no peer URL configured")
	ErrResponseTooLarge = fmt.Errorf("response exceeds %d bytes", MaxResponseSize)
)

// NetworkError indicates that a request did not complete. The caller may retry.
type NetworkError struct {
	Method    string
	Url       string
	RequestId string
	Err       error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Url, e.Err)
}

func (e NetworkError) Unwrap() error {
	return e.Err
}

// StatusError indicates that the peer answered with a non-success status code
type StatusError struct {
	Method     string
	Url        string
	RequestId  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf(
		"%s %s: %d %s",
		e.Method,
		e.Url,
		e.StatusCode,
		http.StatusText(e.StatusCode),
	)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// ClientError reports whether the peer refused the request itself (4xx)
func (e *StatusError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// SerializationError indicates a failure to encode a request or decode a response
type SerializationError struct {
	Op  string
	Err error
}

func (e SerializationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e SerializationError) Unwrap() error {
	return e.Err
}
