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


package match

import "math"

const (
	confidenceFloor   = 20
	confidenceCeiling = 95
	// spreadFactor controls how aggressively strong matches are separated
	// from weak ones; raw similarities cluster near the center otherwise.
	spreadFactor = 3.0
	// rangeEpsilon keeps the min-max division stable for near-degenerate batches.
	rangeEpsilon = 1e-10
)

// Normalize converts a raw cosine distance into a confidence percentage.
//
// corpusMinDistance and corpusMaxDistance are the smallest and largest
// distances observed in the current query batch. The normalization is
// batch-relative: the same raw distance can map to different confidence
// values across two queries with different result sets. That is documented
// behavior, not a defect: scores rank results within one query and are
// not comparable across queries.
//
// The pipeline: clamp distance to [0,2], convert to similarity
// s = 1 - distance/2, min-max normalize s against the batch's similarity
// range, spread with t = 1 - e^(-3n), and map into [20, 95].
//
// A degenerate batch (corpusMax == corpusMin, e.g. a single result) maps
// to the midpoint of the output range.
func Normalize(distance, corpusMinDistance, corpusMaxDistance float64) int {
	if corpusMaxDistance == corpusMinDistance {
		return int(math.Round(confidenceFloor + (confidenceCeiling-confidenceFloor)/2.0))
	}

	s := distanceToSimilarity(distance)
	sMin := distanceToSimilarity(corpusMaxDistance)
	sMax := distanceToSimilarity(corpusMinDistance)

	n := (s - sMin) / (sMax - sMin + rangeEpsilon)
	t := 1 - math.Exp(-spreadFactor*n)
	confidence := confidenceFloor + t*(confidenceCeiling-confidenceFloor)

	if confidence < confidenceFloor {
		return confidenceFloor
	}
	if confidence > confidenceCeiling {
		return confidenceCeiling
	}
	return int(math.Round(confidence))
}

// distanceToSimilarity maps a cosine distance in [0,2] to similarity in [0,1].
// Out-of-range distances are clamped first.
func distanceToSimilarity(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	if distance > 2 {
		distance = 2
	}
	return 1 - distance/2
}
