package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scanrate_backend/platform/apperr"
	"scanrate_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// Store keeps one Session per user in Redis. Sessions are transient by
// nature, so they expire after the configured TTL; an expired session
// simply restarts the dialogue from AwaitingCode.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a session store on an existing Redis client.
func NewStore(client *redis.Client, cfg config.RedisConfig) *Store {
	return &Store{
		client: client,
		ttl:    cfg.GetSessionTTL(),
	}
}

// envelope tags the serialized session with its state so Get can decode
// the right variant.
type envelope struct {
	State State           `json:"state"`
	Data  json.RawMessage `json:"data"`
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

// Get loads the user's session. A missing or expired session decodes to
// AwaitingCode.
func (s *Store) Get(ctx context.Context, userID int64) (Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return AwaitingCode{}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "could not load session", err).WithOp("conversation.Get")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// A corrupt session is unrecoverable; restart the dialogue.
		return AwaitingCode{}, nil
	}

	switch env.State {
	case StateAwaitingQuality:
		var sess AwaitingQuality
		if err := json.Unmarshal(env.Data, &sess); err != nil {
			return AwaitingCode{}, nil
		}
		return sess, nil
	case StateAwaitingReview:
		var sess AwaitingReview
		if err := json.Unmarshal(env.Data, &sess); err != nil {
			return AwaitingCode{}, nil
		}
		return sess, nil
	case StateConfirmUpdate:
		var sess ConfirmUpdate
		if err := json.Unmarshal(env.Data, &sess); err != nil {
			return AwaitingCode{}, nil
		}
		return sess, nil
	default:
		return AwaitingCode{}, nil
	}
}

// Put saves the user's session and refreshes its TTL.
func (s *Store) Put(ctx context.Context, userID int64, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not encode session", err).WithOp("conversation.Put")
	}
	raw, err := json.Marshal(envelope{State: sess.State(), Data: data})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not encode session", err).WithOp("conversation.Put")
	}

	if err := s.client.Set(ctx, sessionKey(userID), raw, s.ttl).Err(); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "could not save session", err).WithOp("conversation.Put")
	}
	return nil
}

// Clear removes the user's session, resetting them to AwaitingCode.
func (s *Store) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "could not clear session", err).WithOp("conversation.Clear")
	}
	return nil
}
