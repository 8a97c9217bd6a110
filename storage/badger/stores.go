package badger

import "github.com/poiesic/fundmatch/storage"

// Stores bundles the typed stores that share one backend.
type Stores struct {
	Opportunities storage.OpportunityStore
	Profiles      storage.ProfileStore
	Documents     storage.DocumentStore
	Fingerprints  storage.FingerprintIndex
	Backend       *Backend
}

// Close closes the stores and the backend, in dependency order.
func (s *Stores) Close() error {
	var firstErr error
	for _, c := range []interface{ Close() error }{
		s.Opportunities, s.Profiles, s.Documents, s.Fingerprints, s.Backend,
	} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewStores opens a backend at path and wires all typed stores over it.
// Caller must Close the result when done.
func NewStores(path string) (*Stores, error) {
	return newStores(path, false)
}

func newStores(path string, inMemory bool) (*Stores, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}

	opportunities, err := NewOpportunityStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	profiles, err := NewProfileStore(backend)
	if err != nil {
		opportunities.Close()
		backend.Close()
		return nil, err
	}

	documents, err := NewDocumentStore(backend)
	if err != nil {
		profiles.Close()
		opportunities.Close()
		backend.Close()
		return nil, err
	}

	fingerprints, err := NewFingerprintIndex(backend)
	if err != nil {
		documents.Close()
		profiles.Close()
		opportunities.Close()
		backend.Close()
		return nil, err
	}

	return &Stores{
		Opportunities: opportunities,
		Profiles:      profiles,
		Documents:     documents,
		Fingerprints:  fingerprints,
		Backend:       backend,
	}, nil
}
