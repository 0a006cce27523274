package relationship

import (
	"context"
	"sync"
	"time"

	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/requestcontext"
)

// StoreTx provides a transactional boundary for relationship mutations.
// Implementations may wrap a database transaction or, in-memory, a sharded
// lock. The callback's context carries the transaction for stores to pick up.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Sharded mutexes instead of a single global lock: operations are distributed
// across N shards based on a hash of the attorney ID, reducing contention
// under concurrent load.
const numShards = 128

// defaultTxTimeout is the maximum duration for a relationship transaction.
const defaultTxTimeout = 5 * time.Second

// ShardedTx is the in-memory StoreTx. It serializes mutations per attorney
// shard; the memory stores provide their own field-level safety.
type ShardedTx struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

func NewShardedTx() *ShardedTx {
	return &ShardedTx{}
}

func (t *ShardedTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := t.selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// selectShard picks a shard from the attorney ID in context, or shard 0 when
// the context carries none.
func (t *ShardedTx) selectShard(ctx context.Context) int {
	attorneyID := requestcontext.AttorneyID(ctx)
	if attorneyID.IsNil() {
		return 0
	}
	return int(fnv1a(attorneyID.String()) % numShards)
}

// fnv1a gives better hash distribution than simple multiply-add.
func fnv1a(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
