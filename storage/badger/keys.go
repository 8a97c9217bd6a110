package badger

import (
	"fmt"

	"github.com/poiesic/fundmatch/core"
)

// Key prefixes for different data types. Each store owns its own prefix;
// the prefixes never overlap, which is what keeps the collections isolated.
const (
	opportunityPrefix   = "opprec"
	opportunityFpPrefix = "oppfpr"
	opportunitySeq      = "oppseqn"
	profilePrefix       = "prfrec"
	documentPrefix      = "docrec"
	documentOwnerPrefix = "docown"
	fingerprintPrefix   = "fpidx"
)

// makeOpportunityKey generates a key for an opportunity record by ID.
func makeOpportunityKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", opportunityPrefix, id))
}

// makeOpportunityFpKey generates a key for the fingerprint lookup index.
func makeOpportunityFpKey(fp core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", opportunityFpPrefix, fp))
}

// makeProfileKey generates a key for a profile record by ID.
func makeProfileKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", profilePrefix, id))
}

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentOwnerKey generates a composite key for the profile ownership index.
// Format: prefix:profileID:documentID
func makeDocumentOwnerKey(profileId, docId core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d:%d", documentOwnerPrefix, profileId, docId))
}

// makePartialDocumentOwnerKey generates a partial key for ownership queries.
func makePartialDocumentOwnerKey(profileId core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d:", documentOwnerPrefix, profileId))
}

// makeFingerprintKey generates a key for a fingerprint index entry.
func makeFingerprintKey(fp core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", fingerprintPrefix, fp))
}
