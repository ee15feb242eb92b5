// Package session keeps the list of revoked session ids. A revoked id stays
// listed until the token it belongs to would have expired anyway.
package session

import (
	"context"
	"time"

	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/redisclient"
)

type Revoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Memory is a per-process revocation list.
type Memory struct {
	revoked *cache.Cache[struct{}]
}

func NewMemory() *Memory {
	return &Memory{revoked: cache.New[struct{}](time.Hour)}
}

func (m *Memory) Revoke(_ context.Context, jti string, until time.Time) error {
	m.revoked.SetUntil(jti, struct{}{}, until)
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked.Get(jti)
	return ok, nil
}

// Redis shares the revocation list between instances.
type Redis struct {
	client *redisclient.Client
	now    func() time.Time
}

func NewRedis(client *redisclient.Client) *Redis {
	return &Redis{client: client, now: time.Now}
}

func revokedKey(jti string) string {
	return "taskhub:session:revoked:" + jti
}

func (r *Redis) Revoke(ctx context.Context, jti string, until time.Time) error {
	return r.client.SetFlag(ctx, revokedKey(jti), until.Sub(r.now()))
}

func (r *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.client.HasFlag(ctx, revokedKey(jti))
}
