// Copyright 2025 Poiesic Systems
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


// Package match ranks funding opportunities against researcher profiles.
//
// The Engine queries the opportunity store with a profile's embedding and
// converts raw cosine distances into confidence percentages via Normalize.
//
// Confidence scores are batch-relative: each query's distances are min-max
// normalized against the range observed in that result set, then spread
// with an exponential transform and mapped into [20, 95]. Identical
// opportunities can therefore receive different scores across queries with
// different result sets. Scores order results within a single query; they
// are not absolute measures of fit.
package match
