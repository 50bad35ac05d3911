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

// Package protodoc turns compiled protobuf schemas into a browsable,
// documented model.
//
// The input is a file descriptor set, in protobuf JSON or binary form, or a
// set of .proto sources that are compiled on the fly. Building a model has
// two phases:
//
//  1. Resolve source code info. Every file carries its comments and spans
//     as a table of locations keyed by paths of field numbers. These are
//     interpreted against the file's descriptors and collected into a
//     table keyed by file and path.
//     Also see: sourceinfo.Resolve
//  2. Build the entity tree. Packages are synthesized from the dotted
//     package names of the files, and every message, enum, service and
//     top-level extension becomes an entity under its package or enclosing
//     message, with its source info attached.
//     Also see: model.Build
//
// [Build] does both for a JSON document. A [Loader] reads any mix of
// descriptor set files and .proto sources from a file system, merges and
// filters them, and then does both.
//
// Neither phase fails on bad source code info. A location whose path does not
// make sense for its file is dropped and reported as a warning to the
// optional reporter.Reporter. Only a document that is not a descriptor set
// at all is an error.
//
// The resulting model is immutable. Programs that reload descriptors build a
// new model each time and swap it in whole; see package snapshot.
package protodoc
