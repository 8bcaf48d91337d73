package rng

// Seed derivation is hierarchical: masterSeed → roundSeed → streamSeed.
// Identical (seed, round) pairs reproduce every draw on every stream across
// process restarts; consuming one stream never perturbs a sibling.

// StreamName identifies one of the five independent per-round streams.
type StreamName string

const (
	StreamDeals      StreamName = "deals"
	StreamEvents     StreamName = "events"
	StreamSimulation StreamName = "simulation"
	StreamMarket     StreamName = "market"
	StreamCosmetic   StreamName = "cosmetic"
)

// RoundStreams bundles the five streams derived for a single round.
type RoundStreams struct {
	Deals      *Stream
	Events     *Stream
	Simulation *Stream
	Market     *Stream
	Cosmetic   *Stream
}

// RoundSeed derives the per-round seed from the master seed.
func RoundSeed(master uint32, round int) uint32 {
	return avalanche(master ^ uint32(round)*2654435761)
}

// StreamSeed derives a named stream's seed from a round seed.
func StreamSeed(roundSeed uint32, name StreamName) uint32 {
	return mixKey(roundSeed, string(name))
}

// StreamsFor derives all five streams for (master, round).
func StreamsFor(master uint32, round int) *RoundStreams {
	rs := RoundSeed(master, round)
	return &RoundStreams{
		Deals:      New(StreamSeed(rs, StreamDeals)),
		Events:     New(StreamSeed(rs, StreamEvents)),
		Simulation: New(StreamSeed(rs, StreamSimulation)),
		Market:     New(StreamSeed(rs, StreamMarket)),
		Cosmetic:   New(StreamSeed(rs, StreamCosmetic)),
	}
}

// SeedFromString hashes an arbitrary string (entity IDs, challenge codes)
// into a 32-bit seed. FNV-1a with a final avalanche pass.
func SeedFromString(s string) uint32 {
	return mixKey(2166136261, s)
}

// mixKey folds key bytes into state FNV-1a style, then avalanches. This is
// the fork hash: collision-resistant enough for realistic key spaces
// (string entity IDs, small occurrence counters).
func mixKey(state uint32, key string) uint32 {
	h := state ^ 2166136261
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= 16777619
	}
	return avalanche(h)
}

// avalanche is the murmur3 fmix32 finalizer.
func avalanche(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}
