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

package model

import "fmt"

// Kind is the kind of an [Entity].
type Kind int

const (
	KindPackage Kind = iota + 1
	KindMessage
	KindEnum
	KindService
	// KindOption is an extension field declared at the top level of a file.
	KindOption
)

// Kinds lists every kind, in the order used for reports.
var Kinds = []Kind{KindPackage, KindMessage, KindEnum, KindService, KindOption}

var kindNames = map[Kind]string{
	KindPackage: "package",
	KindMessage: "message",
	KindEnum:    "enum",
	KindService: "service",
	KindOption:  "option",
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the kind with the given name, as returned by String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// MarshalText implements [encoding.TextMarshaler].
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (k *Kind) UnmarshalText(text []byte) error {
	kind, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown kind %q", text)
	}
	*k = kind
	return nil
}

// MemberKind is the kind of a [Member].
type MemberKind int

const (
	MemberField MemberKind = iota + 1
	MemberValue
	MemberMethod
)

// String implements [fmt.Stringer].
func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberValue:
		return "value"
	case MemberMethod:
		return "method"
	default:
		return fmt.Sprintf("MemberKind(%d)", int(k))
	}
}
