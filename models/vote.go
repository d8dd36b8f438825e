package models

import (
	"context"
	"math"
	"sync"
	"time"

	"doc-garage/apperror"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// vote (action) type
// stored and transferred as readable strings (no look-up indirection here,
// two values only and clients send them verbatim)
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// default half-life of a vote's influence on the ranking signal
const DefaultHalfLifeHours = 7 * 24

// VoteEvent represents the (single) vote action of a user on a document.
// There is at most one live event per (document, user) pair; when a user
// flips the vote, the event is updated in place.
type VoteEvent struct {
	ID         primitive.ObjectID `json:"-" bson:"_id"`
	DocumentID string             `json:"documentID" bson:"documentID"`
	UserID     string             `json:"userID" bson:"userID"`
	Vote       string             `json:"vote" bson:"vote"`
	VoteTS     time.Time          `json:"voteTS" bson:"voteTS"` // stored separately because users can change their vote
}

// VoteResult represents the counter state after a cast.
// Changed=false means the user repeated the same action - that is a regular
// answer, not an error (clients use it to grey-out the button)
type VoteResult struct {
	Changed   bool  `json:"changed"`
	UpVotes   int32 `json:"upVotes"`
	DownVotes int32 `json:"downVotes"`
}

// VoteSignal is the decayed weight sum per direction (see DecayedScores)
type VoteSignal struct {
	Up   float64 `json:"up"`
	Down float64 `json:"down"`
}

// VoteModel provides the logics to the data type
type VoteModel struct {
	Documents DocumentStore
	Votes     VoteStore
	// half-life of the decayed signal in hours (0 = default 7 days)
	HalfLifeHours float64
}

// https://blog.golang.org/maps
// mediate access to the lock-map using mutex
// votes are a two-store read-modify-write, so concurrent casts on the same
// document would lose counter updates without this serialization
var voteLocks = struct {
	sync.Mutex
	locks map[string]*voteLock
}{locks: make(map[string]*voteLock)}

type voteLock struct {
	mu       sync.Mutex
	accessed time.Time
}

func documentLock(documentID string) *sync.Mutex {
	voteLocks.Lock()
	l, ok := voteLocks.locks[documentID]
	if !ok {
		l = new(voteLock)
		voteLocks.locks[documentID] = l
	}
	l.accessed = time.Now()
	voteLocks.Unlock()
	return &l.mu
}

// FlushVoteLocks removes locks from the registry which have been idle for
// more than 15 minutes - a cast holds its lock for seconds at most
// usually called by a GO-routine that runs in a ticker
func FlushVoteLocks() {

	voteLocks.Lock()
	now := time.Now()
	if len(voteLocks.locks) > 5000 {
		// it's safe to just delete expired keys, since iterations over maps are not ordered
		for key, value := range voteLocks.locks {
			// remove if last access was 15 mins ago
			if now.Sub(value.accessed).Minutes() > 15 {
				delete(voteLocks.locks, key)
			}
		}
	}
	voteLocks.Unlock()
}

// CastVote is used to vote for/against a document.
// State machine per (document, user):
//   no event yet        -> insert event, +1 on the matching counter
//   same vote again     -> no writes, Changed=false
//   opposite vote       -> update event, move one count over (floored at 0)
// Every mutating path touches the document's interaction timestamp.
// The event is always written before the counters; if the second write is
// lost, the counters drift but remain recomputable from the event history.
func (v VoteModel) CastVote(documentID string, userID string, vote string) (*VoteResult, error) {

	if vote != VoteUp && vote != VoteDown {
		return nil, ErrInvalidVoteType
	}

	// one writer per document
	lock := documentLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // nach 10 Sekunden abbrechen

	document, err := v.Documents.GetByID(ctx, documentID)
	if err != nil {
		if err == apperror.ErrNoData {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	now := time.Now()
	upVotes := document.UpVotes
	downVotes := document.DownVotes

	existing, err := v.Votes.FindOne(ctx, documentID, userID)
	switch {
	case err == apperror.ErrNoData:
		// first vote of this user on this document
		event := &VoteEvent{
			ID:         primitive.NewObjectID(),
			DocumentID: documentID,
			UserID:     userID,
			Vote:       vote,
			VoteTS:     now,
		}
		if err := v.Votes.Insert(ctx, event); err != nil {
			return nil, err
		}

		if vote == VoteUp {
			upVotes++
		} else {
			downVotes++
		}

	case err != nil:
		return nil, err

	default:
		if existing.Vote == vote {
			// user repeated the same action - nothing to write
			return &VoteResult{Changed: false, UpVotes: upVotes, DownVotes: downVotes}, nil
		}

		// vote flip: update the event, then move one count over
		if err := v.Votes.Update(ctx, existing.ID, vote, now); err != nil {
			return nil, err
		}

		if vote == VoteUp {
			upVotes++
			downVotes--
		} else {
			downVotes++
			upVotes--
		}

		// counts must never go negative (guards against accounting drift)
		if upVotes < 0 {
			upVotes = 0
		}
		if downVotes < 0 {
			downVotes = 0
		}
	}

	err = v.Documents.UpdateCounters(ctx, documentID, upVotes, downVotes, now)
	if err != nil {
		return nil, err
	}

	return &VoteResult{Changed: true, UpVotes: upVotes, DownVotes: downVotes}, nil
}

// DecayedScores aggregates the exponentially time-decayed vote weights for a
// set of documents in one batched scan. A vote's weight halves every
// half-life, so older votes count less towards the ranking signal.
// Pure read - no side effects; an empty id set does not query the store.
func (v VoteModel) DecayedScores(ctx context.Context, documentIDs []string) (map[string]VoteSignal, error) {

	signals := make(map[string]VoteSignal, len(documentIDs))
	if len(documentIDs) == 0 {
		return signals, nil
	}

	events, err := v.Votes.FindByDocumentIDs(ctx, documentIDs)
	if err != nil {
		if err == apperror.ErrNoData {
			return signals, nil
		}
		return nil, err
	}

	halfLife := v.HalfLifeHours
	if halfLife <= 0 {
		halfLife = DefaultHalfLifeHours
	}
	lambda := math.Ln2 / halfLife

	// a single clock for all age computations
	now := time.Now()

	for _, event := range events {
		ageHours := now.Sub(event.VoteTS).Hours()
		if ageHours < 0 {
			// clock skew between writers - treat as fresh
			ageHours = 0
		}
		weight := math.Exp(-lambda * ageHours)

		signal := signals[event.DocumentID]
		switch event.Vote {
		case VoteUp:
			signal.Up += weight
		case VoteDown:
			signal.Down += weight
		}
		signals[event.DocumentID] = signal
	}

	return signals, nil
}

// GetUserVotes returns the vote actions of a user
// usually used for items displayed in lists, so the buttons can be pre-set
func (v VoteModel) GetUserVotes(userID string) ([]VoteEvent, error) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // nach 10 Sekunden abbrechen

	votes, err := v.Votes.FindByUserID(ctx, userID, 20)
	if err != nil {
		return nil, err
	}

	// check for empty result set (no error raised by find)
	if len(votes) == 0 {
		return nil, apperror.ErrNoData
	}

	return votes, nil
}
