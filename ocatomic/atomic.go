// Package ocatomic provides small atomic value wrappers, reconstructed
// from aistore's cmn/atomic call-site shape (Load/Store/Add/CAS) since the
// package itself was not present in the retrieved source sample — only its
// use sites were (xact/qui.go, transport/api.go, cmn/cos/uuid.go).
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package ocatomic

import "sync/atomic"

type Int32 struct{ v int32 }

func (i *Int32) Load() int32      { return atomic.LoadInt32(&i.v) }
func (i *Int32) Store(n int32)    { atomic.StoreInt32(&i.v, n) }
func (i *Int32) Add(n int32) int32 { return atomic.AddInt32(&i.v, n) }
func (i *Int32) CAS(old, n int32) bool {
	return atomic.CompareAndSwapInt32(&i.v, old, n)
}

type Int64 struct{ v int64 }

func (i *Int64) Load() int64      { return atomic.LoadInt64(&i.v) }
func (i *Int64) Store(n int64)    { atomic.StoreInt64(&i.v, n) }
func (i *Int64) Add(n int64) int64 { return atomic.AddInt64(&i.v, n) }

type Bool struct{ v int32 }

func (b *Bool) Load() bool { return atomic.LoadInt32(&b.v) != 0 }
func (b *Bool) Store(v bool) {
	var n int32
	if v {
		n = 1
	}
	atomic.StoreInt32(&b.v, n)
}

type Uint32 struct{ v uint32 }

func (u *Uint32) Load() uint32       { return atomic.LoadUint32(&u.v) }
func (u *Uint32) Store(n uint32)     { atomic.StoreUint32(&u.v, n) }
func (u *Uint32) Add(n uint32) uint32 { return atomic.AddUint32(&u.v, n) }
