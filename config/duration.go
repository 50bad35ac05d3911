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

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// NullDuration is a nullable time.Duration, in the same vein as the
// nullable types of gopkg.in/guregu/null.v3.
//
// It is read from Go duration strings ("1m30s") or from bare numbers,
// which are taken as milliseconds.
type NullDuration struct {
	Duration time.Duration
	Valid    bool
}

// NewNullDuration returns a NullDuration with the given value and validity.
func NewNullDuration(d time.Duration, valid bool) NullDuration {
	return NullDuration{Duration: d, Valid: valid}
}

// NullDurationFrom returns a valid NullDuration.
func NullDurationFrom(d time.Duration) NullDuration {
	return NullDuration{Duration: d, Valid: true}
}

// ValueOrZero returns the duration if valid and zero otherwise.
func (d NullDuration) ValueOrZero() time.Duration {
	if !d.Valid {
		return 0
	}
	return d.Duration
}

func parseDuration(s string) (time.Duration, error) {
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a valid duration value", s)
	}
	return d, nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text is null.
func (d *NullDuration) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*d = NullDuration{}
		return nil
	}
	v, err := parseDuration(string(data))
	if err != nil {
		return err
	}
	*d = NullDurationFrom(v)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *NullDuration) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(`null`)) {
		*d = NullDuration{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := parseDuration(s)
		if err != nil {
			return err
		}
		*d = NullDurationFrom(v)
		return nil
	}
	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("'%s' is not a valid duration value", string(data))
	}
	*d = NullDurationFrom(time.Duration(ms * float64(time.Millisecond)))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d NullDuration) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte(`null`), nil
	}
	return json.Marshal(d.Duration.String())
}
