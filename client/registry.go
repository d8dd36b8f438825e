package client

import (
	"sync"
	"time"
)

type request struct {
	DocumentID string
	Accessed   time.Time
}

// mediate access to the requests-map using a mutex
// needed because the map is also maintained by a GO-routine
var registry = struct {
	sync.RWMutex
	requests map[string]request // key is IP or domain-action (eg. document-search)
}{}

// Registry remembers the last document a client requested, used to
// tell page refreshes apart from real visits before counting them.
type Registry struct {
}

func (r Registry) Initialize() {
	registry.requests = make(map[string]request)
}

// Continue reports whether the request counts as a new visit
func (r Registry) Continue(client string, documentID string) bool {

	// combination of client & document found = this was a page refresh
	registry.RLock()
	found := !(registry.requests[client].DocumentID == documentID)
	registry.RUnlock()

	// add or update the last (relevant) request
	req := request{
		DocumentID: documentID,
		Accessed:   time.Now(),
	}

	registry.Lock()
	registry.requests[client] = req
	registry.Unlock()

	return found
}

// Flush removes requests from the registry which are older than 15 minutes
// usually called by a GO-routine that runs in a ticker
func (r Registry) Flush() {

	registry.Lock()
	now := time.Now()
	if len(registry.requests) > 5000 {
		// it's safe to just delete expired keys, since iterations over maps are not ordered
		for key, value := range registry.requests {
			// remove if last access was 15 mins ago
			if now.Sub(value.Accessed).Minutes() > 15 {
				delete(registry.requests, key)
			}
		}
	}
	registry.Unlock()
}

// Count returns how many different clients are currently active
func (r Registry) Count() int {
	registry.RLock()
	cnt := len(registry.requests)
	registry.RUnlock()
	return cnt
}

// Dump returns the last accessed document and timestamp for each client
func (r Registry) Dump(max int) []request {

	registry.RLock()
	defer registry.RUnlock()

	var res []request
	var req request
	i := 0
	for _, v := range registry.requests {
		if i > max {
			break
		}
		i++

		req.DocumentID = v.DocumentID
		req.Accessed = v.Accessed

		res = append(res, req)
	}

	return res
}
