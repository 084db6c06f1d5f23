package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
	"github.com/AnshRaj112/therapeutes-vaud/pkg/utils"
)

const (
	// DefaultSessionTTL is 7 days
	DefaultSessionTTL = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// AccountSessionsKeyPrefix is the Redis key prefix for the account->sessions set
	AccountSessionsKeyPrefix = "account_sessions:"

	sessionTokenBytes = 32
)

// Session is the server-side record behind a session cookie.
type Session struct {
	Token     string
	AccountID uuid.UUID
	Role      models.Role
}

func (s *Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// SessionStore keeps opaque session tokens in Redis.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create issues a new token for the account. Other sessions of the same
// account stay valid.
func (s *SessionStore) Create(ctx context.Context, accountID uuid.UUID, role models.Role) (*Session, error) {
	token, err := utils.RandomToken(sessionTokenBytes)
	if err != nil {
		return nil, err
	}

	sessionKey := SessionKeyPrefix + token
	accountKey := AccountSessionsKeyPrefix + accountID.String()

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey, accountID.String()+"|"+string(role), s.ttl)
		pipe.SAdd(ctx, accountKey, token)
		pipe.Expire(ctx, accountKey, s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &Session{Token: token, AccountID: accountID, Role: role}, nil
}

// Validate resolves a token. ok is false for unknown, expired or malformed
// sessions; err is only set when Redis itself fails.
func (s *SessionStore) Validate(ctx context.Context, token string) (*Session, bool, error) {
	if token == "" {
		return nil, false, nil
	}

	val, err := s.rdb.Get(ctx, SessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	idStr, role, found := strings.Cut(val, "|")
	if !found {
		return nil, false, nil
	}
	accountID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, false, nil
	}

	return &Session{Token: token, AccountID: accountID, Role: models.Role(role)}, true, nil
}

// Invalidate removes a single session.
func (s *SessionStore) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	sess, ok, err := s.Validate(ctx, token)
	if err != nil {
		return err
	}
	if ok {
		s.rdb.SRem(ctx, AccountSessionsKeyPrefix+sess.AccountID.String(), token)
	}

	return s.rdb.Del(ctx, SessionKeyPrefix+token).Err()
}

// InvalidateAccount removes every session of an account.
func (s *SessionStore) InvalidateAccount(ctx context.Context, accountID uuid.UUID) error {
	accountKey := AccountSessionsKeyPrefix + accountID.String()

	tokens, err := s.rdb.SMembers(ctx, accountKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, SessionKeyPrefix+t)
	}
	keys = append(keys, accountKey)

	return s.rdb.Del(ctx, keys...).Err()
}
