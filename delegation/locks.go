// Copyright 2025 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package delegation

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/semaphore"
)

// defaultLocks is shared by every client that does not bring its own registry,
// so two clients for the same EOA in one process never race for a nonce.
var defaultLocks = NewLockRegistry()

// LockRegistry hands out one exclusive lock per account address.
type LockRegistry struct {
	mu    sync.Mutex
	locks map[common.Address]*semaphore.Weighted
}

// NewLockRegistry creates an empty registry.
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{locks: make(map[common.Address]*semaphore.Weighted)}
}

func (r *LockRegistry) lock(addr common.Address) *semaphore.Weighted {
	r.mu.Lock()
	defer r.mu.Unlock()

	sem, ok := r.locks[addr]
	if !ok {
		sem = semaphore.NewWeighted(1)
		r.locks[addr] = sem
	}
	return sem
}

// Acquire blocks until the lock of addr is free or ctx is done. On success the
// returned function releases the lock, it must be called exactly once.
func (r *LockRegistry) Acquire(ctx context.Context, addr common.Address) (func(), error) {
	sem := r.lock(addr)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(func() { sem.Release(1) }) }, nil
}

// Held reports whether the lock of addr is currently taken.
func (r *LockRegistry) Held(addr common.Address) bool {
	sem := r.lock(addr)
	if sem.TryAcquire(1) {
		sem.Release(1)
		return false
	}
	return true
}
