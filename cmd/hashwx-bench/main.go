// Command hashwx-bench drives a seed range through HashWX and reports
// throughput, the best (lowest) hash seen, and a XOR checksum of every
// hash produced, mirroring original_source/src/bench.c.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/xyproto/env/v2"

	hashwx "github.com/tevador/hashwx-go"
)

var workerKey = struct{ k0, k1 uint64 }{0xb443266e0c61253a, 0x85cfeef0bcbdb1e9}

type jobResult struct {
	totalHashes int64
	bestHash    uint64
	hashSum     uint64
}

func runWorker(ctx *hashwx.Context, start, step, end, nonces int, threshold uint64) jobResult {
	res := jobResult{bestHash: math.MaxUint64}

	for seed := start; seed < end; seed += step {
		seedBytes := deriveSeed(uint64(seed))
		if err := ctx.Make(seedBytes); err != nil {
			fmt.Fprintf(os.Stderr, "make: %v\n", err)
			os.Exit(1)
		}
		for nonce := 0; nonce < nonces; nonce++ {
			h := ctx.Exec(uint64(nonce))
			res.hashSum ^= h
			if h < res.bestHash {
				res.bestHash = h
			}
			if h < threshold {
				fmt.Printf("hash (%d, %d) below threshold: %016x\n", seed, nonce, h)
			}
		}
		res.totalHashes += int64(nonces)
	}
	return res
}

// deriveSeed expands an integer seed index into a 32-byte HashWX seed by
// XORing the index, shifted left by 0..3 bits, into workerKey's words
// (k0, k1, k0, k1) and writing the four results little-endian.
func deriveSeed(seed uint64) [hashwx.SeedSize]byte {
	var out [hashwx.SeedSize]byte
	v0 := workerKey.k0 ^ seed
	v1 := workerKey.k1 ^ seed<<1
	v2 := workerKey.k0 ^ seed<<2
	v3 := workerKey.k1 ^ seed<<3
	words := [4]uint64{v0, v1, v2, v3}
	for i, w := range words {
		for b := 0; b < 8; b++ {
			out[i*8+b] = byte(w >> (8 * b))
		}
	}
	return out
}

func main() {
	diff := flag.Int("diff", env.Int("HASHWX_DIFF", math.MaxInt32), "target difficulty")
	start := flag.Int("start", env.Int("HASHWX_START", 0), "first seed index")
	seeds := flag.Int("seeds", env.Int("HASHWX_SEEDS", 10000), "number of seeds to test")
	nonces := flag.Int("nonces", env.Int("HASHWX_NONCES", 512), "nonces per seed")
	threads := flag.Int("threads", env.Int("HASHWX_THREADS", 1), "worker goroutines")
	interpret := flag.Bool("interpret", env.Bool("HASHWX_INTERPRET", false), "use the portable interpreter instead of the native JIT")
	flag.Parse()

	kind := hashwx.KindCompiled
	if *interpret {
		kind = hashwx.KindInterpreted
	}

	diffEx := uint64(*diff) * 1000
	threshold := uint64(math.MaxUint64) / diffEx
	seedsEnd := *start + *seeds

	fmt.Printf("Interpret: %v, Target diff.: %d, Threads: %d\n", *interpret, diffEx, *threads)
	fmt.Printf("Testing seeds %d-%d with %d nonces each ...\n", *start, seedsEnd-1, *nonces)

	contexts := make([]*hashwx.Context, *threads)
	for i := range contexts {
		ctx, err := hashwx.Alloc(kind)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v. Try with --interpret\n", err)
			os.Exit(1)
		}
		contexts[i] = ctx
	}
	defer func() {
		for _, c := range contexts {
			c.Close()
		}
	}()

	results := make([]jobResult, *threads)
	t0 := time.Now()

	var wg sync.WaitGroup
	for thd := 0; thd < *threads; thd++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			results[id] = runWorker(contexts[id], *start+id, *threads, seedsEnd, *nonces, threshold)
		}(thd)
	}
	wg.Wait()
	elapsed := time.Since(t0).Seconds()

	var totalHashes int64
	var hashSum uint64
	bestHash := uint64(math.MaxUint64)
	for _, r := range results {
		totalHashes += r.totalHashes
		hashSum ^= r.hashSum
		if r.bestHash < bestHash {
			bestHash = r.bestHash
		}
	}

	fmt.Printf("Total hashes: %d\n", totalHashes)
	fmt.Printf("%f hashes/sec.\n", float64(totalHashes)/elapsed)
	fmt.Printf("%f seeds/sec.\n", float64(*seeds)/elapsed)
	fmt.Printf("Best hash: %016x (diff: %d)\n", bestHash, uint64(math.MaxUint64)/bestHash)
	fmt.Printf("Hash sum: %016x\n", hashSum)
}
