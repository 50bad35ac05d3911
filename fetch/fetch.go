// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fetch downloads descriptor set documents over HTTP, retrying with
// exponential backoff until one arrives.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Backoff configures the delay between attempts.
type Backoff struct {
	Initial    time.Duration // Delay after the first failure.
	Max        time.Duration // Upper bound of the delay.
	Multiplier float64       // Growth of the delay after each failure.
}

// DefaultBackoff starts at one second and grows by half after every failure,
// up to a minute.
var DefaultBackoff = Backoff{
	Initial:    time.Second,
	Max:        time.Minute,
	Multiplier: 1.5,
}

// withDefaults fills the unset fields of b from DefaultBackoff. A multiplier
// below one counts as unset.
func (b Backoff) withDefaults() Backoff {
	if b.Initial <= 0 {
		b.Initial = DefaultBackoff.Initial
	}
	if b.Max <= 0 {
		b.Max = DefaultBackoff.Max
	}
	if b.Multiplier < 1 {
		b.Multiplier = DefaultBackoff.Multiplier
	}
	return b
}

func (b Backoff) next(delay time.Duration) time.Duration {
	return min(b.Max, time.Duration(float64(delay)*b.Multiplier))
}

// Client fetches a descriptor set document from a URL.
type Client struct {
	URL string
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
	// Unset fields are taken from DefaultBackoff.
	Backoff Backoff
	// If nil, failures are not logged.
	Logger logrus.FieldLogger
}

// Fetch requests the document until a response with a 2xx status and a valid
// JSON body arrives, and returns the body. There is no limit on the number of
// attempts; Fetch only gives up when ctx is done, returning ctx.Err(), or
// when the URL is invalid.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid descriptor URL %q: %w", c.URL, err)
	}
	req.Header.Set("Accept", "application/json")

	backoff := c.Backoff.withDefaults()
	logger := c.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	delay := min(backoff.Initial, backoff.Max)
	for attempt := 1; ; attempt++ {
		body, err := c.attempt(req)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.WithError(err).WithFields(logrus.Fields{
			"url":      c.URL,
			"attempt":  attempt,
			"retry_in": delay,
		}).Warn("Could not fetch schema descriptors")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay = backoff.next(delay)
	}
}

func (c *Client) attempt(req *http.Request) ([]byte, error) {
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req.Clone(req.Context()))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("response is not valid JSON")
	}
	return body, nil
}
