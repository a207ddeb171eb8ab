package stdlib

import (
	"math/rand"
	"sync"

	"github.com/satori/go.uuid"
	"github.com/sean-/seed"
	"github.com/tremor-rt/tremor/value"
)

// randGen is seeded once via sean-/seed, the teacher's library for
// pulling real entropy (crypto/rand, falling back to time) instead of
// math/rand's fixed default seed — the same seeding call the teacher
// makes at process start for its own randomized identifiers.
var (
	randMu  sync.Mutex
	randGen = rand.New(rand.NewSource(seed.MustInt64()))
)

func registerRandom(r *Registry) {
	r.Register("random", "float", func(args []value.Value) (value.Value, error) {
		randMu.Lock()
		defer randMu.Unlock()
		return value.Float(randGen.Float64()), nil
	})
	r.Register("random", "integer", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("random", "integer", 2, len(args))
		}
		lo, ok := args[0].(value.Int)
		if !ok {
			return nil, typeErr("random", "integer", 0, "integer", args[0])
		}
		hi, ok := args[1].(value.Int)
		if !ok {
			return nil, typeErr("random", "integer", 1, "integer", args[1])
		}
		if hi <= lo {
			return lo, nil
		}
		randMu.Lock()
		defer randMu.Unlock()
		return lo + value.Int(randGen.Int63n(int64(hi-lo))), nil
	})
	r.Register("random", "bool", func(args []value.Value) (value.Value, error) {
		randMu.Lock()
		defer randMu.Unlock()
		return value.Bool(randGen.Intn(2) == 1), nil
	})
	r.Register("random", "uuid4", func(args []value.Value) (value.Value, error) {
		return value.Str(uuid.NewV4().String()), nil
	})
	r.Register("random", "string", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("random", "string", 1, len(args))
		}
		n, ok := args[0].(value.Int)
		if !ok {
			return nil, typeErr("random", "string", 0, "integer", args[0])
		}
		const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
		out := make([]byte, n)
		randMu.Lock()
		for i := range out {
			out[i] = alphabet[randGen.Intn(len(alphabet))]
		}
		randMu.Unlock()
		return value.Str(out), nil
	})
}
